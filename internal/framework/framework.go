// Package framework detects which test-runner family a repository
// uses and carries the install and seeding conventions for each.
package framework

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Framework is the closed set of recognized test-runner families.
type Framework string

const (
	Python   Framework = "python"
	Go       Framework = "go"
	TsJest   Framework = "ts-jest"
	TsVitest Framework = "ts-vitest"
	JsMocha  Framework = "js-mocha"
	Unknown  Framework = "unknown"
)

// Parse maps an override string onto a known framework. Anything
// unrecognized collapses to Unknown, mirroring detection fallback.
func Parse(s string) Framework {
	switch Framework(s) {
	case Python, Go, TsJest, TsVitest, JsMocha:
		return Framework(s)
	default:
		return Unknown
	}
}

// InstallCommand returns the dependency-install argv for the
// framework, or nil when no installation is configured.
func (f Framework) InstallCommand() []string {
	switch f {
	case Python:
		return []string{"pip", "install", "-q", "-r", "requirements.txt"}
	case Go:
		return []string{"go", "mod", "download"}
	case TsJest, TsVitest, JsMocha:
		return []string{"npm", "install", "--silent"}
	default:
		return nil
	}
}

// Manifest returns the dependency-manifest filename whose presence
// gates installation, or "" when the framework has none.
func (f Framework) Manifest() string {
	switch f {
	case Python:
		return "requirements.txt"
	case Go:
		return "go.mod"
	case TsJest, TsVitest, JsMocha:
		return "package.json"
	default:
		return ""
	}
}

// SeedEnvVar returns the environment variable a run's random seed is
// injected through.
func (f Framework) SeedEnvVar() string {
	switch f {
	case Go:
		return "GO_TEST_SEED"
	case TsJest:
		return "JEST_SEED"
	case TsVitest:
		return "VITE_TEST_SEED"
	case JsMocha:
		return "MOCHA_SEED"
	default:
		// python and unknown share the generic variable
		return "TEST_SEED"
	}
}

// Detect inspects the repository tree and returns the first matching
// framework. Dependency-manifest-specific markers are checked before
// generic ones; no match yields Unknown. Pure filesystem inspection,
// no side effects.
func Detect(dir string) Framework {
	if exists(filepath.Join(dir, "go.mod")) {
		return Go
	}

	if fw, ok := detectNode(filepath.Join(dir, "package.json")); ok {
		return fw
	}

	if exists(filepath.Join(dir, "requirements.txt")) ||
		exists(filepath.Join(dir, "pyproject.toml")) ||
		exists(filepath.Join(dir, "setup.py")) {
		return Python
	}

	return Unknown
}

// detectNode distinguishes jest, vitest and mocha projects by their
// declared dependencies. An unreadable or malformed package.json is
// treated as no match.
func detectNode(packageJSON string) (Framework, bool) {
	data, err := os.ReadFile(packageJSON)
	if err != nil {
		return Unknown, false
	}

	var pkg struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return Unknown, false
	}

	deps := make(map[string]string, len(pkg.Dependencies)+len(pkg.DevDependencies))
	for k, v := range pkg.Dependencies {
		deps[k] = v
	}
	for k, v := range pkg.DevDependencies {
		deps[k] = v
	}

	switch {
	case hasKey(deps, "jest"):
		return TsJest, true
	case hasKey(deps, "vitest"):
		return TsVitest, true
	case hasKey(deps, "mocha"):
		return JsMocha, true
	}
	return Unknown, false
}

func hasKey(m map[string]string, key string) bool {
	_, ok := m[key]
	return ok
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
