package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"
	pretty_table "github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/lmittmann/tint"
	"github.com/urfave/cli/v3"

	"github.com/flakehound/detector/api"
	"github.com/flakehound/detector/internal/detect"
	"github.com/flakehound/detector/internal/history"
)

func main() {
	cmd := &cli.Command{
		Name:  "flakehound",
		Usage: "re-run a failing test many times in parallel and measure how often it reproduces",
		Commands: []*cli.Command{
			runCommand(),
			historyCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "run a detection job against a repository",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "repo",
				Usage:    "repository URL or local path",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "cmd",
				Usage:    "test command to repeat",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "runs",
				Usage: "number of times to run the test command",
				Value: api.DefaultRuns,
			},
			&cli.IntFlag{
				Name:  "parallelism",
				Usage: "maximum concurrent runs",
				Value: api.DefaultParallelism,
			},
			&cli.StringFlag{
				Name:  "framework",
				Usage: "skip detection and use this framework (python|go|ts-jest|ts-vitest|js-mocha)",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "per-run timeout, overriding the repository config",
			},
			&cli.BoolFlag{
				Name:  "no-install",
				Usage: "skip dependency installation",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print the raw job summary as JSON",
			},
			&cli.BoolFlag{
				Name:  "no-history",
				Usage: "do not record the summary in the history store",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "enable debug logging",
			},
		},
		Action: runAction,
	}
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	log := newLogger(cmd.Bool("verbose"))

	req := api.JobRequest{
		Repo:        cmd.String("repo"),
		TestCommand: cmd.String("cmd"),
		Runs:        int(cmd.Int("runs")),
		Parallelism: int(cmd.Int("parallelism")),
		Framework:   cmd.String("framework"),
	}

	opts := []detect.Option{}
	if d := cmd.Duration("timeout"); d > 0 {
		opts = append(opts, detect.WithRunTimeout(d))
	}
	if cmd.Bool("no-install") {
		opts = append(opts, detect.WithoutInstall())
	}

	started := time.Now()
	summary, err := detect.New(log, opts...).Run(ctx, req)
	if err != nil {
		return err
	}

	if !cmd.Bool("no-history") {
		store, err := history.New(history.DefaultDir())
		if err != nil {
			log.Warn("history store unavailable", "error", err)
		} else if _, err := store.Append(req.Repo, req.TestCommand, summary); err != nil {
			log.Warn("failed to record history", "error", err)
		}
	}

	if cmd.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	printSummary(summary, time.Since(started))
	return nil
}

func printSummary(summary *api.JobSummary, elapsed time.Duration) {
	fmt.Println()
	fmt.Printf("Framework:    %s\n", summary.Framework)
	fmt.Printf("Runs:         %d (parallelism %d)\n", summary.TotalRuns, summary.Parallelism)
	fmt.Printf("Failures:     %d\n", summary.Failures)
	fmt.Printf("Repro rate:   %.1f%%\n", summary.ReproRate*100)
	fmt.Printf("Severity:     %s\n", colorSeverity(summary.Severity))
	fmt.Printf("Elapsed:      %s\n", elapsed.Round(time.Millisecond))

	failed := make([]api.RunResult, 0, summary.Failures)
	for _, r := range summary.Results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	if len(failed) == 0 {
		return
	}

	fmt.Println()
	t := pretty_table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(pretty_table.Row{"Attempt", "Exit", "Stderr"})
	for _, r := range failed {
		exit := "-"
		if r.ExitCode != nil {
			exit = fmt.Sprintf("%d", *r.ExitCode)
		}
		t.AppendRow(pretty_table.Row{r.Attempt, exit, truncate(r.Stderr, 80)})
	}
	t.SetColumnConfigs([]pretty_table.ColumnConfig{
		{Name: "Exit", Align: text.AlignCenter},
	})
	t.Render()
}

func colorSeverity(s api.Severity) string {
	switch s {
	case api.SeverityCritical:
		return color.New(color.FgHiRed, color.Bold).Sprint(string(s))
	case api.SeverityHigh:
		return color.New(color.FgHiRed).Sprint(string(s))
	case api.SeverityMedium:
		return color.New(color.FgHiYellow).Sprint(string(s))
	case api.SeverityLow:
		return color.New(color.FgHiGreen).Sprint(string(s))
	default:
		return color.New(color.FgGreen).Sprint(string(s))
	}
}

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "list recent detection jobs",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "n",
				Usage: "number of entries to show",
				Value: 20,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			store, err := history.New(history.DefaultDir())
			if err != nil {
				return err
			}
			entries, err := store.Recent(int(cmd.Int("n")))
			if err != nil {
				return err
			}

			t := pretty_table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(pretty_table.Row{"When", "Repo", "Command", "Runs", "Repro", "Severity"})
			for _, e := range entries {
				t.AppendRow(pretty_table.Row{
					e.RecordedAt.Local().Format(time.DateTime),
					truncate(e.Repo, 40),
					truncate(e.TestCommand, 30),
					e.Summary.TotalRuns,
					fmt.Sprintf("%.1f%%", e.Summary.ReproRate*100),
					string(e.Summary.Severity),
				})
			}
			t.Render()
			return nil
		},
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}
