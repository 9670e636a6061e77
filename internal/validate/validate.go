package validate

import (
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/flakehound/detector/api"
)

// ValidationError names the offending request field and the
// constraint it violated.
type ValidationError struct {
	Field      string
	Constraint string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Constraint)
}

// remoteSchemes are the prefixes accepted for remote repositories.
// Anything else must resolve as a local path.
var remoteSchemes = mapset.NewSet(
	"https://",
	"http://",
	"ssh://",
	"git://",
	"git@",
)

// IsRemote reports whether repo names a remote repository rather
// than a local path.
func IsRemote(repo string) bool {
	for scheme := range remoteSchemes.Iter() {
		if strings.HasPrefix(repo, scheme) {
			return true
		}
	}
	return false
}

// Request checks the job request against range and shape constraints.
// It has no side effects and performs no filesystem or network
// access; it must run before anything that does.
func Request(req api.JobRequest) error {
	if req.Repo == "" {
		return &ValidationError{
			Field:      "repo",
			Constraint: "must not be empty",
		}
	}
	if !IsRemote(req.Repo) && !looksLikePath(req.Repo) {
		return &ValidationError{
			Field: "repo",
			Constraint: fmt.Sprintf(
				"must start with one of %s or be a filesystem path",
				remoteSchemes.String()),
		}
	}
	if strings.TrimSpace(req.TestCommand) == "" {
		return &ValidationError{
			Field:      "test_command",
			Constraint: "must not be empty",
		}
	}
	if req.Runs < api.MinRuns || req.Runs > api.MaxRuns {
		return &ValidationError{
			Field: "runs",
			Constraint: fmt.Sprintf("must be between %d and %d, got %d",
				api.MinRuns, api.MaxRuns, req.Runs),
		}
	}
	if req.Parallelism < api.MinParallelism || req.Parallelism > api.MaxParallelism {
		return &ValidationError{
			Field: "parallelism",
			Constraint: fmt.Sprintf("must be between %d and %d, got %d",
				api.MinParallelism, api.MaxParallelism, req.Parallelism),
		}
	}
	return nil
}

// looksLikePath is a shape check only; existence is the acquirer's
// concern.
func looksLikePath(repo string) bool {
	return strings.HasPrefix(repo, "/") ||
		strings.HasPrefix(repo, "./") ||
		strings.HasPrefix(repo, "../") ||
		repo == "." || repo == ".."
}
