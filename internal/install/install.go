// Package install performs best-effort dependency installation for
// the detected framework. Failure is never fatal: a detection job's
// value should not be blocked by an installation hiccup the test
// command might not even need.
package install

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/flakehound/detector/internal/framework"
)

// Timeout bounds a single install invocation.
const Timeout = 300 * time.Second

// Dependencies runs the framework's install command inside dir when
// its dependency manifest is present. A missing manifest skips
// installation silently; a failed or timed-out install is logged as
// a warning and the job proceeds.
func Dependencies(ctx context.Context, log *slog.Logger, fw framework.Framework, dir string) {
	argv := fw.InstallCommand()
	if argv == nil {
		log.Debug("no dependency installation configured", "framework", fw)
		return
	}

	manifest := fw.Manifest()
	if _, err := os.Stat(filepath.Join(dir, manifest)); err != nil {
		log.Debug("no manifest found, skipping dependency installation",
			"framework", fw, "manifest", manifest)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()

	log.Info("installing dependencies", "framework", fw)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			log.Warn("dependency installation timed out",
				"framework", fw, "timeout", Timeout)
			return
		}
		log.Warn("failed to install dependencies",
			"framework", fw, "error", err, "output", string(out))
		return
	}

	log.Info("installed dependencies", "framework", fw)
}
