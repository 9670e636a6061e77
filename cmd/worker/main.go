package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/lmittmann/tint"
	"github.com/nats-io/nats.go"

	"github.com/flakehound/detector/api"
	"github.com/flakehound/detector/internal/detect"
	"github.com/flakehound/detector/internal/environment"
	"github.com/flakehound/detector/internal/history"
	"github.com/flakehound/detector/internal/publish"
	"github.com/flakehound/detector/internal/publish/natspub"
	"github.com/flakehound/detector/internal/publish/sqspub"
)

// jobMsg is the envelope the invocation adapter delivers. The reply
// subject tells the worker where the summary should go.
type jobMsg struct {
	JobID        string         `json:"job_id"`
	ReplySubject string         `json:"reply_subject"`
	Request      api.JobRequest `json:"request"`
}

func main() {
	log := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.Kitchen,
	}))

	cfg := environment.ReadEnvConfig(log)

	nc, err := nats.Connect(cfg.NatsURL, nats.Name("flakehound-worker"))
	if err != nil {
		log.Error("failed to connect to NATS", "url", cfg.NatsURL, "error", err)
		os.Exit(1)
	}
	defer nc.Close()

	store, err := history.New(history.DefaultDir())
	if err != nil {
		log.Warn("history store unavailable", "error", err)
		store = nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	detector := detect.New(log)

	// Queue subscription so multiple workers share the job stream.
	sub, err := nc.QueueSubscribe(cfg.RequestSubject, "flakehound", func(m *nats.Msg) {
		handleJob(ctx, log, nc, cfg, detector, store, m)
	})
	if err != nil {
		log.Error("failed to subscribe", "subject", cfg.RequestSubject, "error", err)
		os.Exit(1)
	}
	defer func() { _ = sub.Drain() }()

	log.Info("worker listening", "subject", cfg.RequestSubject)
	<-ctx.Done()
	log.Info("worker shutting down")
}

func handleJob(
	ctx context.Context,
	log *slog.Logger,
	nc *nats.Conn,
	cfg *environment.EnvConfig,
	detector *detect.Detector,
	store *history.Store,
	m *nats.Msg,
) {
	var msg jobMsg
	if err := json.Unmarshal(m.Data, &msg); err != nil {
		log.Warn("discarding malformed job message", "error", err)
		return
	}
	if msg.JobID == "" {
		msg.JobID = uuid.NewString()
	}

	sink := resolveSink(ctx, log, nc, cfg, msg)

	log.Info("job received", "job_id", msg.JobID, "repo", msg.Request.Repo)

	// The adapter resolves defaults; the core sees a complete request.
	summary, err := detector.Run(ctx, msg.Request.WithDefaults())
	if err != nil {
		log.Error("job failed before producing a summary", "job_id", msg.JobID, "error", err)
		if pubErr := sink.PublishError(msg.JobID, err); pubErr != nil {
			log.Error("failed to publish job error", "job_id", msg.JobID, "error", pubErr)
		}
		return
	}

	if pubErr := sink.Publish(msg.JobID, summary); pubErr != nil {
		log.Error("failed to publish summary", "job_id", msg.JobID, "error", pubErr)
	}

	if store != nil {
		if _, err := store.Append(msg.Request.Repo, msg.Request.TestCommand, summary); err != nil {
			log.Warn("failed to record history", "job_id", msg.JobID, "error", err)
		}
	}
}

// resolveSink prefers the message's reply subject; an SQS result
// queue configured in the environment wins over nothing at all.
func resolveSink(
	ctx context.Context,
	log *slog.Logger,
	nc *nats.Conn,
	cfg *environment.EnvConfig,
	msg jobMsg,
) publish.Sink {
	if msg.ReplySubject != "" {
		return natspub.New(nc, msg.ReplySubject)
	}
	if cfg.SqsQueueURL != "" {
		sink, err := sqspub.New(ctx, cfg.AwsRegion, cfg.SqsQueueURL)
		if err == nil {
			return sink
		}
		log.Warn("failed to build SQS sink, falling back to log", "error", err)
	}
	return logSink{log: log}
}

// logSink is the sink of last resort for fire-and-forget jobs.
type logSink struct {
	log *slog.Logger
}

func (s logSink) Publish(jobID string, summary *api.JobSummary) error {
	s.log.Info("job summary",
		"job_id", jobID,
		"total_runs", summary.TotalRuns,
		"failures", summary.Failures,
		"repro_rate", summary.ReproRate,
		"severity", summary.Severity)
	return nil
}

func (s logSink) PublishError(jobID string, jobErr error) error {
	s.log.Error("job error", "job_id", jobID, "error", jobErr)
	return nil
}
