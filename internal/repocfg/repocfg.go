// Package repocfg loads per-repository detection defaults from a
// .flakehound.toml committed in the target repository. The file is
// advisory: caller-supplied request fields always win, and a missing
// or malformed file falls back to the built-in defaults.
package repocfg

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/flakehound/detector/internal/report"
)

const FileName = ".flakehound.toml"

// Config are the repository-level defaults.
type Config struct {
	Runs           int               `toml:"runs"`
	Parallelism    int               `toml:"parallelism"`
	TimeoutSeconds int               `toml:"timeout_seconds"`
	Severity       report.Thresholds `toml:"severity_thresholds"`
}

func Default() Config {
	return Config{
		TimeoutSeconds: 300,
		Severity:       report.DefaultThresholds(),
	}
}

// Timeout returns the per-run timeout the config asks for.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Load reads dir's .flakehound.toml merged over the defaults.
func Load(log *slog.Logger, dir string) Config {
	cfg := Default()

	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("failed to read repository config", "path", path, "error", err)
		}
		return cfg
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		log.Warn("failed to parse repository config, using defaults",
			"path", path, "error", err)
		return Default()
	}

	if err := cfg.check(); err != nil {
		log.Warn("ignoring invalid repository config", "path", path, "error", err)
		return Default()
	}

	log.Debug("loaded repository config", "path", path)
	return cfg
}

func (c Config) check() error {
	if c.Runs < 0 {
		return fmt.Errorf("runs must not be negative, got %d", c.Runs)
	}
	if c.Parallelism < 0 {
		return fmt.Errorf("parallelism must not be negative, got %d", c.Parallelism)
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be positive, got %d", c.TimeoutSeconds)
	}
	t := c.Severity
	if t.Critical < t.High || t.High < t.Medium || t.Medium < t.Low {
		return fmt.Errorf("severity thresholds must be ordered critical >= high >= medium >= low")
	}
	return nil
}
