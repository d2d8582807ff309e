package accuracy

import "impact-eval/internal/impact"

// Report holds the counts gathered by one evaluation.
//
// CorrectUp <= TotalUp <= Total, CorrectDown <= TotalDown <= Total and
// Matches <= Total always hold. Both distributions sum to Total.
type Report struct {
	Total       int
	Matches     int
	Human       *impact.Distribution
	Model       *impact.Distribution
	TotalUp     int
	CorrectUp   int
	TotalDown   int
	CorrectDown int
	Skipped     []Skip
}

func newReport() *Report {
	return &Report{
		Human: impact.NewDistribution(),
		Model: impact.NewDistribution(),
	}
}

// OverallAccuracy is the share of matching records in percent.
func (r *Report) OverallAccuracy() float64 {
	return percent(r.Matches, r.Total)
}

// UpAccuracy is the share of human-rise records the model also labeled rise.
func (r *Report) UpAccuracy() float64 {
	return percent(r.CorrectUp, r.TotalUp)
}

// DownAccuracy is the share of human-fall records the model also labeled fall.
func (r *Report) DownAccuracy() float64 {
	return percent(r.CorrectDown, r.TotalDown)
}

// percent returns part/whole*100, or 0 when whole is 0.
func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
