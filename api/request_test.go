package api_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flakehound/detector/api"
)

func TestWithDefaults(t *testing.T) {
	req := api.JobRequest{Repo: "r", TestCommand: "c"}.WithDefaults()
	assert.Equal(t, api.DefaultRuns, req.Runs)
	assert.Equal(t, api.DefaultParallelism, req.Parallelism)

	req = api.JobRequest{Repo: "r", TestCommand: "c", Runs: 3, Parallelism: 2}.WithDefaults()
	assert.Equal(t, 3, req.Runs)
	assert.Equal(t, 2, req.Parallelism)
}

func TestRunResultJSONShape(t *testing.T) {
	// exit_code must serialize as null for timed-out runs, not be
	// omitted.
	r := api.RunResult{Attempt: 4, Stderr: "TIMEOUT"}
	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"attempt":4,"exit_code":null,"stdout":"","stderr":"TIMEOUT","passed":false}`,
		string(b))
}
