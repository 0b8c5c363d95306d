// Package report aggregates batch outcomes into a run report, renders the
// console summary and writes the optional durable record.
package report

import (
	"time"

	"github.com/samlyndon/vdxconvert/internal/batch"
)

// RunReport is the immutable aggregate over all outcomes of one run.
type RunReport struct {
	Total         int
	Succeeded     int
	Skipped       int
	Failed        int
	TotalDuration time.Duration
	AvgDuration   time.Duration
	Outcomes      []batch.Outcome
	Failures      []batch.Outcome
}

// Summarize is a pure aggregation over the ordered outcome list. An empty
// list is a valid zero report, not an error.
func Summarize(outcomes []batch.Outcome) RunReport {
	r := RunReport{
		Total:    len(outcomes),
		Outcomes: outcomes,
	}
	for _, o := range outcomes {
		r.TotalDuration += o.Duration
		switch o.Status {
		case batch.StatusSucceeded:
			r.Succeeded++
		case batch.StatusSkipped:
			r.Skipped++
		case batch.StatusFailed:
			r.Failed++
			r.Failures = append(r.Failures, o)
		}
	}
	if r.Total > 0 {
		r.AvgDuration = r.TotalDuration / time.Duration(r.Total)
	}
	return r
}
