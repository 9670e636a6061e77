// Package history records finished job summaries for trend analysis.
// Each record is a zstd-compressed JSON file named by uuid so
// concurrent jobs never collide.
package history

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/flakehound/detector/api"
	"github.com/flakehound/detector/internal/xdg"
)

const recordExt = ".json.zst"

// Entry is one stored job summary with its request context.
type Entry struct {
	ID          string          `json:"id"`
	RecordedAt  time.Time       `json:"recorded_at"`
	Repo        string          `json:"repo"`
	TestCommand string          `json:"test_command"`
	Summary     *api.JobSummary `json:"summary"`
}

// Store appends and lists entries under a single directory.
type Store struct {
	dir string
}

// DefaultDir is where the CLI keeps its history between invocations.
func DefaultDir() string {
	return filepath.Join(xdg.StateHome(), "flakehound", "history")
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Append stores one finished job. Failure to record history is
// reported but never affects the job outcome.
func (s *Store) Append(repo, testCommand string, summary *api.JobSummary) (string, error) {
	entry := Entry{
		ID:          uuid.NewString(),
		RecordedAt:  time.Now().UTC(),
		Repo:        repo,
		TestCommand: testCommand,
		Summary:     summary,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return "", fmt.Errorf("failed to marshal history entry: %w", err)
	}

	path := filepath.Join(s.dir, entry.ID+recordExt)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create history record: %w", err)
	}

	enc, err := zstd.NewWriter(file)
	if err != nil {
		_ = file.Close()
		return "", fmt.Errorf("failed to create zstd writer: %w", err)
	}
	if _, err := enc.Write(data); err != nil {
		_ = enc.Close()
		_ = file.Close()
		return "", fmt.Errorf("failed to write history record: %w", err)
	}
	if err := enc.Close(); err != nil {
		_ = file.Close()
		return "", fmt.Errorf("failed to flush history record: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close history record: %w", err)
	}

	return entry.ID, nil
}

// Recent returns up to n entries, newest first. Unreadable records
// are skipped rather than failing the listing.
func (s *Store) Recent(n int) ([]Entry, error) {
	names, err := filepath.Glob(filepath.Join(s.dir, "*"+recordExt))
	if err != nil {
		return nil, fmt.Errorf("failed to list history directory: %w", err)
	}

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		entry, err := readRecord(name)
		if err != nil {
			continue
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(a, b int) bool {
		return entries[a].RecordedAt.After(entries[b].RecordedAt)
	})

	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}

func readRecord(path string) (Entry, error) {
	var entry Entry

	file, err := os.Open(path)
	if err != nil {
		return entry, err
	}
	defer file.Close()

	dec, err := zstd.NewReader(file)
	if err != nil {
		return entry, err
	}
	defer dec.Close()

	data, err := io.ReadAll(dec)
	if err != nil {
		return entry, err
	}

	if err := json.Unmarshal(data, &entry); err != nil {
		return entry, err
	}
	return entry, nil
}
