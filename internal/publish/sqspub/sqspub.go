// Package sqspub publishes job summaries to an SQS result queue.
package sqspub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/flakehound/detector/api"
)

type sqsSink struct {
	sqsClient *sqs.Client
	queueUrl  string
}

// New builds a sink backed by the default AWS config chain.
func New(ctx context.Context, region string, queueUrl string) (*sqsSink, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	return &sqsSink{
		sqsClient: sqs.NewFromConfig(cfg),
		queueUrl:  queueUrl,
	}, nil
}

type envelope struct {
	JobID   string          `json:"job_id"`
	Error   *string         `json:"error,omitempty"`
	Summary *api.JobSummary `json:"summary,omitempty"`
}

func (s *sqsSink) Publish(jobID string, summary *api.JobSummary) error {
	return s.send(envelope{JobID: jobID, Summary: summary})
}

func (s *sqsSink) PublishError(jobID string, jobErr error) error {
	msg := jobErr.Error()
	return s.send(envelope{JobID: jobID, Error: &msg})
}

func (s *sqsSink) send(env envelope) error {
	b, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal summary envelope: %w", err)
	}

	_, err = s.sqsClient.SendMessage(context.TODO(), &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueUrl),
		MessageBody: aws.String(string(b)),
	})
	if err != nil {
		return fmt.Errorf("failed to send summary to SQS: %w", err)
	}
	return nil
}
