// Package report renders an evaluation as text or JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	"impact-eval/internal/accuracy"
	"impact-eval/internal/advice"
	"impact-eval/internal/common"
	"impact-eval/internal/impact"
)

// Result bundles an accuracy report with the recommendations derived from
// its two distributions.
type Result struct {
	Source      string
	Report      *accuracy.Report
	HumanAdvice advice.Recommendation
	ModelAdvice advice.Recommendation
}

// NewResult evaluates both recommendations for r.
func NewResult(source string, r *accuracy.Report, labels impact.Labels) *Result {
	return &Result{
		Source:      source,
		Report:      r,
		HumanAdvice: advice.Recommend(r.Human, labels),
		ModelAdvice: advice.Recommend(r.Model, labels),
	}
}

// Reporter writes a Result to out.
type Reporter struct {
	out          io.Writer
	showFall     bool
	outputFormat string
}

// NewReporter creates a reporter. showFall adds the fall-class accuracy line
// to text output.
func NewReporter(out io.Writer, outputFormat string, showFall bool) *Reporter {
	return &Reporter{
		out:          out,
		showFall:     showFall,
		outputFormat: outputFormat,
	}
}

// Write renders res in the configured format.
func (r *Reporter) Write(res *Result) error {
	switch r.outputFormat {
	case common.OutputText, "":
		return r.writeText(res)
	case common.OutputJSON:
		return r.writeJSON(res)
	default:
		return fmt.Errorf("unknown output format: %s", r.outputFormat)
	}
}

func (r *Reporter) writeText(res *Result) error {
	rep := res.Report
	w := &errWriter{w: r.out}

	w.printf("Total sample count: %d\n", rep.Total)
	w.printf("Matching count: %d\n", rep.Matches)
	w.printf("Accuracy: %.2f%%\n\n", rep.OverallAccuracy())
	w.printf("Accuracy for rise: %.2f%%\n", rep.UpAccuracy())
	if r.showFall {
		w.printf("Accuracy for fall: %.2f%%\n\n", rep.DownAccuracy())
	}

	w.printf("Human-labeled impact distribution:\n")
	for _, e := range rep.Human.Entries() {
		w.printf("%s: %d times\n", e.Label, e.Count)
	}

	w.printf("\n=== Trading advice based on human labels ===\n")
	w.printf("%s\n", res.HumanAdvice)

	w.printf("\nModel predicted impact1 distribution:\n")
	for _, e := range rep.Model.Entries() {
		w.printf("%s: %d times\n", e.Label, e.Count)
	}

	w.printf("\n=== Trading advice based on model predictions ===\n")
	w.printf("%s\n", res.ModelAdvice)

	return w.err
}

type jsonAccuracy struct {
	Overall float64 `json:"overall"`
	Rise    float64 `json:"rise"`
	Fall    float64 `json:"fall"`
}

type jsonAdvice struct {
	advice.Recommendation
	Text string `json:"text"`
}

type jsonReport struct {
	Source            string              `json:"source"`
	Total             int                 `json:"total"`
	Matches           int                 `json:"matches"`
	TotalUp           int                 `json:"total_up"`
	CorrectUp         int                 `json:"correct_up"`
	TotalDown         int                 `json:"total_down"`
	CorrectDown       int                 `json:"correct_down"`
	Accuracy          jsonAccuracy        `json:"accuracy"`
	HumanDistribution []impact.LabelCount `json:"human_distribution"`
	ModelDistribution []impact.LabelCount `json:"model_distribution"`
	HumanAdvice       jsonAdvice          `json:"human_advice"`
	ModelAdvice       jsonAdvice          `json:"model_advice"`
	Skipped           []accuracy.Skip     `json:"skipped"`
	GeneratedAt       time.Time           `json:"generated_at"`
}

func (r *Reporter) writeJSON(res *Result) error {
	rep := res.Report
	doc := jsonReport{
		Source:      res.Source,
		Total:       rep.Total,
		Matches:     rep.Matches,
		TotalUp:     rep.TotalUp,
		CorrectUp:   rep.CorrectUp,
		TotalDown:   rep.TotalDown,
		CorrectDown: rep.CorrectDown,
		Accuracy: jsonAccuracy{
			Overall: round2(rep.OverallAccuracy()),
			Rise:    round2(rep.UpAccuracy()),
			Fall:    round2(rep.DownAccuracy()),
		},
		HumanDistribution: nonNil(rep.Human.Entries()),
		ModelDistribution: nonNil(rep.Model.Entries()),
		HumanAdvice:       jsonAdvice{Recommendation: res.HumanAdvice, Text: res.HumanAdvice.String()},
		ModelAdvice:       jsonAdvice{Recommendation: res.ModelAdvice, Text: res.ModelAdvice.String()},
		Skipped:           rep.Skipped,
		GeneratedAt:       time.Now().UTC(),
	}
	if doc.Skipped == nil {
		doc.Skipped = []accuracy.Skip{}
	}

	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode JSON report: %w", err)
	}
	return nil
}

// errWriter keeps the first write error so formatting code stays linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func nonNil(entries []impact.LabelCount) []impact.LabelCount {
	if entries == nil {
		return []impact.LabelCount{}
	}
	return entries
}
