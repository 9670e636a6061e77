package history_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flakehound/detector/api"
	"github.com/flakehound/detector/internal/history"
)

func summary(failures, total int, severity api.Severity) *api.JobSummary {
	return &api.JobSummary{
		TotalRuns:   total,
		Parallelism: 4,
		Framework:   "python",
		Failures:    failures,
		ReproRate:   float64(failures) / float64(total),
		Severity:    severity,
	}
}

func TestAppendAndRecentRoundtrip(t *testing.T) {
	store, err := history.New(t.TempDir())
	require.NoError(t, err)

	id, err := store.Append("https://github.com/example/flaky", "pytest tests/",
		summary(3, 10, api.SeverityMedium))
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	entries, err := store.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, id, e.ID)
	assert.Equal(t, "https://github.com/example/flaky", e.Repo)
	assert.Equal(t, "pytest tests/", e.TestCommand)
	require.NotNil(t, e.Summary)
	assert.Equal(t, 3, e.Summary.Failures)
	assert.Equal(t, api.SeverityMedium, e.Summary.Severity)
}

func TestRecentLimitsAndOrders(t *testing.T) {
	store, err := history.New(t.TempDir())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := store.Append("repo", "cmd", summary(i, 10, api.SeverityLow))
		require.NoError(t, err)
	}

	entries, err := store.Recent(3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	for i := 1; i < len(entries); i++ {
		assert.False(t, entries[i].RecordedAt.After(entries[i-1].RecordedAt),
			"entries must be newest first")
	}
}

func TestRecentEmptyStore(t *testing.T) {
	store, err := history.New(t.TempDir())
	require.NoError(t, err)

	entries, err := store.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
