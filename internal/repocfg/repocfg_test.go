package repocfg_test

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flakehound/detector/internal/repocfg"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	path := filepath.Join(dir, repocfg.FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg := repocfg.Load(discardLogger(), t.TempDir())

	assert.Equal(t, 300*time.Second, cfg.Timeout())
	assert.Equal(t, 0.9, cfg.Severity.Critical)
	assert.Equal(t, 0.5, cfg.Severity.High)
	assert.Equal(t, 0.1, cfg.Severity.Medium)
	assert.Equal(t, 0.0, cfg.Severity.Low)
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
runs = 50
parallelism = 8
timeout_seconds = 60

[severity_thresholds]
critical = 0.8
high = 0.4
medium = 0.2
low = 0.01
`)

	cfg := repocfg.Load(discardLogger(), dir)

	assert.Equal(t, 50, cfg.Runs)
	assert.Equal(t, 8, cfg.Parallelism)
	assert.Equal(t, 60*time.Second, cfg.Timeout())
	assert.Equal(t, 0.8, cfg.Severity.Critical)
	assert.Equal(t, 0.01, cfg.Severity.Low)
}

func TestLoadPartialOverrideKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "timeout_seconds = 120\n")

	cfg := repocfg.Load(discardLogger(), dir)

	assert.Equal(t, 120*time.Second, cfg.Timeout())
	assert.Equal(t, 0.9, cfg.Severity.Critical)
}

func TestLoadMalformedFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "runs = [not toml")

	cfg := repocfg.Load(discardLogger(), dir)
	assert.Equal(t, repocfg.Default(), cfg)
}

func TestLoadRejectsUnorderedThresholds(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[severity_thresholds]
critical = 0.1
high = 0.5
medium = 0.2
low = 0.0
`)

	cfg := repocfg.Load(discardLogger(), dir)
	assert.Equal(t, repocfg.Default(), cfg)
}

func TestLoadRejectsNonPositiveTimeout(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "timeout_seconds = 0\n")

	cfg := repocfg.Load(discardLogger(), dir)
	assert.Equal(t, repocfg.Default(), cfg)
}
