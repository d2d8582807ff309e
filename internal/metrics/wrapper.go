package metrics

// Wrapper adapts Metrics to the small recording interfaces used by the
// evaluator and the CLI, so neither depends on Prometheus types.
type Wrapper struct {
	m *Metrics
}

func NewWrapper(m *Metrics) *Wrapper {
	return &Wrapper{m: m}
}

func (w *Wrapper) RecordEvaluated(match bool) {
	w.m.RecordsEvaluated.Inc()
	if match {
		w.m.Matches.Inc()
	}
}

func (w *Wrapper) RecordSkipped(field string) {
	w.m.RecordsSkipped.WithLabelValues(field).Inc()
}

func (w *Wrapper) AccuracySet(class string, percent float64) {
	w.m.Accuracy.WithLabelValues(class).Set(percent)
}

func (w *Wrapper) RecommendationInc(source, action string) {
	w.m.Recommendations.WithLabelValues(source, action).Inc()
}

func (w *Wrapper) LoadDurationObserve(seconds float64) {
	w.m.LoadDuration.Observe(seconds)
}
