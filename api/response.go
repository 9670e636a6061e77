package api

// RunResult is the outcome of one test-command execution. Exactly one
// is produced per attempt index in [0, runs).
type RunResult struct {
	Attempt int `json:"attempt"`

	// ExitCode is nil when the run timed out or never launched.
	ExitCode *int `json:"exit_code"`

	Stdout string `json:"stdout"`
	// Stderr carries "TIMEOUT" or an "ERROR: …" marker for
	// non-process failures.
	Stderr string `json:"stderr"`

	Passed bool `json:"passed"`
}

// Severity classifies a reproduction rate.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
	SeverityNone     Severity = "NONE"
)

// JobSummary is the terminal artifact of a job. Results has length
// exactly TotalRuns and is sorted ascending by attempt.
type JobSummary struct {
	TotalRuns   int    `json:"total_runs"`
	Parallelism int    `json:"parallelism"`
	Framework   string `json:"framework"`

	Failures  int     `json:"failures"`
	ReproRate float64 `json:"repro_rate"`

	Severity Severity `json:"severity"`

	Results []RunResult `json:"results"`
}
