// Package natspub publishes job summaries to a NATS subject.
package natspub

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/flakehound/detector/api"
)

type natsSink struct {
	nc      *nats.Conn
	subject string
}

// New creates a sink that publishes summaries to the given subject.
func New(nc *nats.Conn, subject string) *natsSink {
	return &natsSink{nc: nc, subject: subject}
}

type envelope struct {
	JobID   string          `json:"job_id"`
	Error   *string         `json:"error,omitempty"`
	Summary *api.JobSummary `json:"summary,omitempty"`
}

func (s *natsSink) Publish(jobID string, summary *api.JobSummary) error {
	return s.send(envelope{JobID: jobID, Summary: summary})
}

func (s *natsSink) PublishError(jobID string, jobErr error) error {
	msg := jobErr.Error()
	return s.send(envelope{JobID: jobID, Error: &msg})
}

func (s *natsSink) send(env envelope) error {
	b, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal summary envelope: %w", err)
	}
	if err := s.nc.Publish(s.subject, b); err != nil {
		return fmt.Errorf("failed to publish summary to NATS: %w", err)
	}
	return nil
}
