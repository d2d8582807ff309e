// Package metrics provides Prometheus metrics for an evaluation run.
//
// A run is a short-lived batch job, so the metrics are not served over HTTP.
// They can be written to a file in the text exposition format for a
// node_exporter textfile collector to pick up.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for an evaluation run.
type Metrics struct {
	RecordsEvaluated prometheus.Counter     // Records with both labels present
	RecordsSkipped   *prometheus.CounterVec // Skipped records by offending field
	Matches          prometheus.Counter     // Records where human and model labels agree
	Accuracy         *prometheus.GaugeVec   // Accuracy percentage by class (overall, rise, fall)
	Recommendations  *prometheus.CounterVec // Recommendations by source distribution and action
	LoadDuration     prometheus.Histogram   // Time spent loading the dataset

	gatherer prometheus.Gatherer
}

// New creates metrics registered on a fresh registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.NewRegistry())
}

// NewWithRegistry creates metrics registered on registry.
func NewWithRegistry(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)
	return &Metrics{
		RecordsEvaluated: factory.NewCounter(prometheus.CounterOpts{
			Name: "impact_records_evaluated_total",
			Help: "Total number of records with both impact labels",
		}),
		RecordsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "impact_records_skipped_total",
			Help: "Total number of records skipped for a missing or invalid field",
		}, []string{"field"}),
		Matches: factory.NewCounter(prometheus.CounterOpts{
			Name: "impact_matches_total",
			Help: "Total number of records where the model label equals the human label",
		}),
		Accuracy: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "impact_accuracy_percent",
			Help: "Model accuracy in percent",
		}, []string{"class"}),
		Recommendations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "impact_recommendations_total",
			Help: "Recommendations derived from impact distributions",
		}, []string{"source", "action"}),
		LoadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "impact_load_duration_seconds",
			Help:    "Duration of dataset loading in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		gatherer: registry,
	}
}

// WriteTextfile writes the current metric values to path in the text
// exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.gatherer); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}
