package environment

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// EnvConfig carries the worker's transport settings.
type EnvConfig struct {
	NatsURL        string
	RequestSubject string
	SqsQueueURL    string
	AwsRegion      string
}

// ReadEnvConfig loads a .env file when present and resolves the
// worker environment with sensible local defaults.
func ReadEnvConfig(log *slog.Logger) *EnvConfig {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file loaded", "error", err)
	}

	cfg := &EnvConfig{
		NatsURL:        getEnv("NATS_URL", "nats://localhost:4222"),
		RequestSubject: getEnv("FLAKEHOUND_SUBJECT", "flakehound.jobs"),
		SqsQueueURL:    os.Getenv("FLAKEHOUND_SQS_URL"),
		AwsRegion:      getEnv("AWS_REGION", "eu-central-1"),
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
