// Package runner executes the test command N times under a bounded
// worker pool, each run isolated by a seeded environment overlay and
// a timeout.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sync/errgroup"

	"github.com/flakehound/detector/api"
	"github.com/flakehound/detector/internal/framework"
)

// DefaultRunTimeout bounds a single test-command execution.
const DefaultRunTimeout = 300 * time.Second

const (
	seedMin = 1
	seedMax = 1_000_000
)

// Pool runs a tokenized test command repeatedly with bounded
// concurrency.
type Pool struct {
	log        *slog.Logger
	runTimeout time.Duration
}

type Option func(*Pool)

// WithRunTimeout overrides the per-run timeout. A run exceeding it is
// converted into a failing result; sibling runs are unaffected.
func WithRunTimeout(d time.Duration) Option {
	return func(p *Pool) {
		if d > 0 {
			p.runTimeout = d
		}
	}
}

func New(log *slog.Logger, opts ...Option) *Pool {
	p := &Pool{
		log:        log,
		runTimeout: DefaultRunTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Execute runs testCommand exactly runs times inside dir, at most
// parallelism at once, and returns exactly runs results sorted
// ascending by attempt. A run's timeout, launch failure or even a
// panicking worker is encoded as a failing result rather than an
// error; the returned slice length invariant holds on every path.
func (p *Pool) Execute(
	ctx context.Context,
	fw framework.Framework,
	testCommand string,
	dir string,
	runs int,
	parallelism int,
) ([]api.RunResult, error) {

	// Tokenize once. Arguments are passed as a list directly to the
	// process launcher; nothing is re-interpreted per run.
	argv, err := SplitCommand(testCommand)
	if err != nil {
		return nil, fmt.Errorf("failed to tokenize test command: %w", err)
	}

	p.log.Info("running tests",
		"command", argv, "runs", runs, "parallelism", parallelism,
		"framework", fw, "timeout", p.runTimeout)

	collected := xsync.NewMapOf[int, api.RunResult]()

	grp := new(errgroup.Group)
	grp.SetLimit(parallelism)
	for i := 0; i < runs; i++ {
		attempt := i
		grp.Go(func() error {
			collected.Store(attempt, p.runOnce(ctx, fw, argv, dir, attempt))
			return nil
		})
	}
	// Tasks never return errors; the join is what matters here.
	_ = grp.Wait()

	// A worker that died before storing its result still owes the
	// output an entry.
	results := make([]api.RunResult, 0, runs)
	for i := 0; i < runs; i++ {
		res, ok := collected.Load(i)
		if !ok {
			p.log.Error("worker produced no result, synthesizing failure", "attempt", i)
			res = api.RunResult{
				Attempt: i,
				Stderr:  "ERROR: worker produced no result",
				Passed:  false,
			}
		}
		results = append(results, res)
	}

	sort.Slice(results, func(a, b int) bool {
		return results[a].Attempt < results[b].Attempt
	})

	return results, nil
}

// runOnce executes a single attempt. It never panics past the worker
// pool: recovered panics become failing results.
func (p *Pool) runOnce(
	ctx context.Context,
	fw framework.Framework,
	argv []string,
	dir string,
	attempt int,
) (res api.RunResult) {

	defer func() {
		if r := recover(); r != nil {
			p.log.Error("worker panicked", "attempt", attempt, "panic", r)
			res = api.RunResult{
				Attempt: attempt,
				Stderr:  fmt.Sprintf("ERROR: %v", r),
				Passed:  false,
			}
		}
	}()

	seed := seedMin + rand.IntN(seedMax-seedMin)

	runCtx, cancel := context.WithTimeout(ctx, p.runTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.Dir = dir
	// Private overlay per run; the base environment is never mutated.
	cmd.Env = append(os.Environ(),
		fw.SeedEnvVar()+"="+strconv.Itoa(seed),
		"ATTEMPT="+strconv.Itoa(attempt),
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		p.log.Warn("run timed out", "attempt", attempt, "timeout", p.runTimeout)
		return api.RunResult{
			Attempt: attempt,
			Stderr:  "TIMEOUT",
			Passed:  false,
		}
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			// Launch failure: executable not found, permission denied…
			p.log.Warn("run failed to launch", "attempt", attempt, "error", err)
			return api.RunResult{
				Attempt: attempt,
				Stderr:  fmt.Sprintf("ERROR: %v", err),
				Passed:  false,
			}
		}
	}

	exitCode := cmd.ProcessState.ExitCode()
	p.log.Debug("run finished", "attempt", attempt, "seed", seed, "exit_code", exitCode)

	return api.RunResult{
		Attempt:  attempt,
		ExitCode: &exitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Passed:   exitCode == 0,
	}
}
