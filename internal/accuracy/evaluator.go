// Package accuracy compares model-predicted impact labels with human labels
// over a dataset in a single pass.
package accuracy

import (
	"errors"

	"impact-eval/internal/dataset"
	"impact-eval/internal/impact"

	"github.com/rs/zerolog/log"
)

// MetricsInterface receives per-record counts as the evaluator runs.
type MetricsInterface interface {
	RecordEvaluated(match bool)
	RecordSkipped(field string)
}

// Skip describes an item that was left out of every count.
type Skip struct {
	Index int    `json:"index"`
	Field string `json:"field"`
	Error string `json:"error"`
}

// Evaluator accumulates an AccuracyReport from a sequence of items.
type Evaluator struct {
	labels  impact.Labels
	metrics MetricsInterface
}

// NewEvaluator creates an evaluator recognizing labels. metrics may be nil.
func NewEvaluator(labels impact.Labels, metrics MetricsInterface) *Evaluator {
	return &Evaluator{labels: labels, metrics: metrics}
}

// Evaluate makes one left-to-right pass over items. Items missing a required
// field are logged, listed in Skipped and excluded from all counts.
func (e *Evaluator) Evaluate(items []dataset.Item) *Report {
	report := newReport()

	for i, item := range items {
		rec, err := item.Record()
		if err != nil {
			field := fieldOf(err)
			log.Warn().
				Int("index", i).
				Str("field", field).
				Err(err).
				Msg("Data format error, missing required field")
			report.Skipped = append(report.Skipped, Skip{Index: i, Field: field, Error: err.Error()})
			if e.metrics != nil {
				e.metrics.RecordSkipped(field)
			}
			continue
		}

		e.add(report, rec)
	}

	log.Debug().
		Int("total", report.Total).
		Int("matches", report.Matches).
		Int("skipped", len(report.Skipped)).
		Msg("Evaluation complete")

	return report
}

func (e *Evaluator) add(r *Report, rec dataset.Record) {
	match := rec.HumanImpact == rec.ModelImpact

	r.Total++
	if match {
		r.Matches++
	}

	r.Human.Add(rec.HumanImpact)
	r.Model.Add(rec.ModelImpact)

	switch {
	case e.labels.IsRise(rec.HumanImpact):
		r.TotalUp++
		if e.labels.IsRise(rec.ModelImpact) {
			r.CorrectUp++
		}
	case e.labels.IsFall(rec.HumanImpact):
		r.TotalDown++
		if e.labels.IsFall(rec.ModelImpact) {
			r.CorrectDown++
		}
	}

	if e.metrics != nil {
		e.metrics.RecordEvaluated(match)
	}
}

func fieldOf(err error) string {
	var missing *dataset.MissingFieldError
	if errors.As(err, &missing) {
		return missing.Field
	}
	var invalid *dataset.InvalidFieldError
	if errors.As(err, &invalid) {
		return invalid.Field
	}
	return "unknown"
}
