// Package report turns collected run results into a job summary and
// maps the reproduction rate to a severity tier. Pure computation
// over already-collected data.
package report

import (
	"math"

	"github.com/flakehound/detector/api"
	"github.com/flakehound/detector/internal/framework"
)

// Thresholds are the ordered inclusive lower bounds for severity
// classification; ties resolve upward. Low is a strict lower bound:
// a rate of exactly Low maps to NONE.
type Thresholds struct {
	Critical float64 `toml:"critical"`
	High     float64 `toml:"high"`
	Medium   float64 `toml:"medium"`
	Low      float64 `toml:"low"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		Critical: 0.9,
		High:     0.5,
		Medium:   0.1,
		Low:      0.0,
	}
}

// Classify maps a reproduction rate onto a severity tier. A rate at
// or above Critical is almost certainly a real bug, not flakiness.
func (t Thresholds) Classify(reproRate float64) api.Severity {
	switch {
	case reproRate >= t.Critical:
		return api.SeverityCritical
	case reproRate >= t.High:
		return api.SeverityHigh
	case reproRate >= t.Medium:
		return api.SeverityMedium
	case reproRate > t.Low:
		return api.SeverityLow
	default:
		return api.SeverityNone
	}
}

// Summarize merges per-run outcomes into the terminal job artifact.
// Results are expected sorted by attempt with no gaps; the summary
// echoes the request's runs and parallelism.
func Summarize(
	results []api.RunResult,
	parallelism int,
	fw framework.Framework,
	thresholds Thresholds,
) *api.JobSummary {

	failures := 0
	for _, r := range results {
		if !r.Passed {
			failures++
		}
	}

	rate := 0.0
	if len(results) > 0 {
		rate = round3(float64(failures) / float64(len(results)))
	}

	return &api.JobSummary{
		TotalRuns:   len(results),
		Parallelism: parallelism,
		Framework:   string(fw),
		Failures:    failures,
		ReproRate:   rate,
		Severity:    thresholds.Classify(rate),
		Results:     results,
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
