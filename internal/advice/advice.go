// Package advice derives a directional trading recommendation from an impact
// label distribution.
package advice

import (
	"fmt"

	"impact-eval/internal/impact"
)

// Action is the recommended trading action.
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
	ActionNone Action = "no action"
)

// Reasons attached to ActionNone.
const (
	ReasonNoData       = "no data"
	ReasonMultipleTops = "multiple top impacts"
	ReasonSideways     = "sideways/irrelevant"
)

// Recommendation is the outcome of Recommend. Probability is the dominant
// label's share of the distribution in percent and is only meaningful when
// HasProbability is set.
type Recommendation struct {
	Action         Action  `json:"action"`
	Reason         string  `json:"reason,omitempty"`
	Dominant       string  `json:"dominant,omitempty"`
	Probability    float64 `json:"probability"`
	HasProbability bool    `json:"has_probability"`
}

// Recommend picks buy when the rise label is the unique mode of dist, sell
// when the fall label is, and no action otherwise. Ties for the mode are
// never broken. dist is not modified.
func Recommend(dist *impact.Distribution, labels impact.Labels) Recommendation {
	total := dist.Total()
	if total == 0 {
		return Recommendation{Action: ActionNone, Reason: ReasonNoData}
	}

	maxCount := 0
	var modes []string
	for _, e := range dist.Entries() {
		switch {
		case e.Count > maxCount:
			maxCount = e.Count
			modes = append(modes[:0], e.Label)
		case e.Count == maxCount:
			modes = append(modes, e.Label)
		}
	}

	if len(modes) > 1 {
		return Recommendation{Action: ActionNone, Reason: ReasonMultipleTops}
	}

	dominant := modes[0]
	rec := Recommendation{
		Dominant:       dominant,
		Probability:    float64(maxCount) / float64(total) * 100,
		HasProbability: true,
	}

	switch {
	case labels.IsRise(dominant):
		rec.Action = ActionBuy
	case labels.IsFall(dominant):
		rec.Action = ActionSell
	default:
		rec.Action = ActionNone
		rec.Reason = ReasonSideways
	}
	return rec
}

// String renders the recommendation as a single report line.
func (r Recommendation) String() string {
	switch r.Action {
	case ActionBuy:
		return fmt.Sprintf("Recommendation: Buy (Probability of rise: %.2f%%)", r.Probability)
	case ActionSell:
		return fmt.Sprintf("Recommendation: Sell (Probability of fall: %.2f%%)", r.Probability)
	}

	switch r.Reason {
	case ReasonNoData:
		return "Recommendation: No action (No data)"
	case ReasonMultipleTops:
		return "Recommendation: No action (There are multiple top impacts)"
	default:
		return fmt.Sprintf("Recommendation: No action (Sideways/Irrelevant, Probability: %.2f%%)", r.Probability)
	}
}
