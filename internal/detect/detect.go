// Package detect wires the detection pipeline together: validation,
// repository acquisition, framework detection, best-effort dependency
// installation, parallel execution and result aggregation.
package detect

import (
	"context"
	"log/slog"
	"time"

	"github.com/flakehound/detector/api"
	"github.com/flakehound/detector/internal/acquire"
	"github.com/flakehound/detector/internal/framework"
	"github.com/flakehound/detector/internal/install"
	"github.com/flakehound/detector/internal/repocfg"
	"github.com/flakehound/detector/internal/report"
	"github.com/flakehound/detector/internal/runner"
	"github.com/flakehound/detector/internal/validate"
)

// Detector runs flakiness-detection jobs. Safe for sequential reuse;
// each job gets its own ephemeral workspace.
type Detector struct {
	log         *slog.Logger
	runTimeout  time.Duration // 0 means use the repository config
	skipInstall bool
}

type Option func(*Detector)

// WithRunTimeout forces a per-run timeout regardless of what the
// repository config asks for.
func WithRunTimeout(d time.Duration) Option {
	return func(det *Detector) { det.runTimeout = d }
}

// WithoutInstall disables dependency installation entirely.
func WithoutInstall() Option {
	return func(det *Detector) { det.skipInstall = true }
}

func New(log *slog.Logger, opts ...Option) *Detector {
	d := &Detector{log: log}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run executes one job from validated request to job summary.
//
// Only a ValidationError or an acquisition failure aborts without a
// summary. Installation failures are advisory and every run-level
// failure is encoded into the summary itself, which always carries
// exactly req.Runs results.
func (d *Detector) Run(ctx context.Context, req api.JobRequest) (*api.JobSummary, error) {
	if err := validate.Request(req); err != nil {
		return nil, err
	}

	ws, err := acquire.Acquire(ctx, d.log, req.Repo)
	if err != nil {
		return nil, err
	}
	defer ws.Close()

	cfg := repocfg.Load(d.log, ws.Dir())

	var fw framework.Framework
	if req.Framework != "" {
		fw = framework.Parse(req.Framework)
		d.log.Info("using explicit framework", "framework", fw)
	} else {
		fw = framework.Detect(ws.Dir())
		d.log.Info("detected framework", "framework", fw)
	}

	if !d.skipInstall {
		install.Dependencies(ctx, d.log, fw, ws.Dir())
	}

	timeout := cfg.Timeout()
	if d.runTimeout > 0 {
		timeout = d.runTimeout
	}

	pool := runner.New(d.log, runner.WithRunTimeout(timeout))
	results, err := pool.Execute(ctx, fw, req.TestCommand, ws.Dir(), req.Runs, req.Parallelism)
	if err != nil {
		return nil, err
	}

	summary := report.Summarize(results, req.Parallelism, fw, cfg.Severity)
	d.log.Info("job finished",
		"total_runs", summary.TotalRuns,
		"failures", summary.Failures,
		"repro_rate", summary.ReproRate,
		"severity", summary.Severity)

	return summary, nil
}
