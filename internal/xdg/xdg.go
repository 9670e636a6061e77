// Package xdg resolves XDG Base Directory Specification paths for
// state the detector keeps between invocations.
package xdg

import (
	"os"
	"path/filepath"
)

// StateHome returns the base directory for user-specific state data,
// honoring XDG_STATE_HOME with the spec's ~/.local/state fallback.
func StateHome() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return dir
	}
	return filepath.Join(homeDir(), ".local", "state")
}

// CacheHome returns the base directory for user-specific cached
// data, honoring XDG_CACHE_HOME with the ~/.cache fallback.
func CacheHome() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return dir
	}
	return filepath.Join(homeDir(), ".cache")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
		if home == "" {
			home = os.TempDir()
		}
	}
	return home
}
