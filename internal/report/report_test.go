package report_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flakehound/detector/api"
	"github.com/flakehound/detector/internal/framework"
	"github.com/flakehound/detector/internal/report"
)

func TestClassify(t *testing.T) {
	th := report.DefaultThresholds()

	cases := []struct {
		rate float64
		want api.Severity
	}{
		{1.0, api.SeverityCritical},
		{0.9, api.SeverityCritical},
		{0.899, api.SeverityHigh},
		{0.5, api.SeverityHigh},
		{0.499, api.SeverityMedium},
		{0.1, api.SeverityMedium},
		{0.099, api.SeverityLow},
		{0.001, api.SeverityLow},
		{0.0, api.SeverityNone},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, th.Classify(tc.rate), "rate %v", tc.rate)
	}
}

func results(passed ...bool) []api.RunResult {
	res := make([]api.RunResult, len(passed))
	for i, p := range passed {
		code := 0
		if !p {
			code = 1
		}
		res[i] = api.RunResult{Attempt: i, ExitCode: &code, Passed: p}
	}
	return res
}

func TestSummarizeAllPassing(t *testing.T) {
	sum := report.Summarize(results(true, true, true, true, true),
		2, framework.Python, report.DefaultThresholds())

	assert.Equal(t, 5, sum.TotalRuns)
	assert.Equal(t, 2, sum.Parallelism)
	assert.Equal(t, "python", sum.Framework)
	assert.Equal(t, 0, sum.Failures)
	assert.Equal(t, 0.0, sum.ReproRate)
	assert.Equal(t, api.SeverityNone, sum.Severity)
	assert.Len(t, sum.Results, 5)
}

func TestSummarizeAllFailing(t *testing.T) {
	all := make([]bool, 20)
	sum := report.Summarize(results(all...),
		5, framework.Go, report.DefaultThresholds())

	assert.Equal(t, 20, sum.Failures)
	assert.Equal(t, 1.0, sum.ReproRate)
	assert.Equal(t, api.SeverityCritical, sum.Severity)
}

func TestSummarizeRoundsToThreeDecimals(t *testing.T) {
	// 1 failure in 3 runs: 0.333…
	sum := report.Summarize(results(false, true, true),
		1, framework.Unknown, report.DefaultThresholds())
	assert.Equal(t, 0.333, sum.ReproRate)

	// 2 in 3: 0.666… rounds up.
	sum = report.Summarize(results(false, false, true),
		1, framework.Unknown, report.DefaultThresholds())
	assert.Equal(t, 0.667, sum.ReproRate)
}

func TestSummarizeEmptyResults(t *testing.T) {
	sum := report.Summarize(nil, 1, framework.Unknown, report.DefaultThresholds())
	require.NotNil(t, sum)
	assert.Equal(t, 0, sum.TotalRuns)
	assert.Equal(t, 0.0, sum.ReproRate)
	assert.Equal(t, api.SeverityNone, sum.Severity)
}

func TestCustomThresholds(t *testing.T) {
	th := report.Thresholds{Critical: 0.8, High: 0.4, Medium: 0.2, Low: 0.05}

	assert.Equal(t, api.SeverityCritical, th.Classify(0.8))
	assert.Equal(t, api.SeverityHigh, th.Classify(0.4))
	assert.Equal(t, api.SeverityMedium, th.Classify(0.2))
	assert.Equal(t, api.SeverityLow, th.Classify(0.06))
	assert.Equal(t, api.SeverityNone, th.Classify(0.05))
	assert.Equal(t, api.SeverityNone, th.Classify(0.0))
}
