package api

const (
	DefaultRuns        = 10
	DefaultParallelism = 4

	MinRuns = 1
	MaxRuns = 1000

	MinParallelism = 1
	MaxParallelism = 50
)

// JobRequest describes a single flakiness-detection job. It is
// immutable once accepted: the core never writes back into it.
type JobRequest struct {
	// Repo is either a remote URL with an allowed scheme prefix
	// or a local filesystem path.
	Repo string `json:"repo"`

	// TestCommand is tokenized into an argument list without
	// shell interpretation.
	TestCommand string `json:"test_command"`

	Runs        int `json:"runs,omitempty"`
	Parallelism int `json:"parallelism,omitempty"`

	// Framework bypasses detection when non-empty.
	Framework string `json:"framework,omitempty"`
}

// WithDefaults returns a copy of the request with zero-valued
// optional fields replaced by their defaults.
func (r JobRequest) WithDefaults() JobRequest {
	if r.Runs == 0 {
		r.Runs = DefaultRuns
	}
	if r.Parallelism == 0 {
		r.Parallelism = DefaultParallelism
	}
	return r
}
