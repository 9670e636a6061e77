// Package publish defines the edge through which finished job
// summaries leave the core. The core never depends on transport or
// serialization details beyond this interface.
package publish

import "github.com/flakehound/detector/api"

// Sink receives the terminal artifact of a job. There is no
// in-progress streaming; only complete summaries are delivered.
type Sink interface {
	Publish(jobID string, summary *api.JobSummary) error
	PublishError(jobID string, jobErr error) error
}
