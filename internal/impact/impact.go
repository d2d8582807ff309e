// Package impact holds the label vocabulary shared by the evaluator and the
// recommendation engine.
//
// Labels are open-ended strings. Only the two directional labels are
// recognized by value; any other string is treated as sideways/irrelevant.
package impact

import "impact-eval/internal/common"

// Labels names the strings that mark the two directional classes.
type Labels struct {
	Rise string
	Fall string
}

// DefaultLabels returns the built-in rise/fall labels.
func DefaultLabels() Labels {
	return Labels{Rise: common.LabelRise, Fall: common.LabelFall}
}

// IsRise reports whether label is the rise label.
func (l Labels) IsRise(label string) bool { return label == l.Rise }

// IsFall reports whether label is the fall label.
func (l Labels) IsFall(label string) bool { return label == l.Fall }

// LabelCount is one entry of a Distribution.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Distribution counts label occurrences and remembers the order in which
// labels were first seen, so that printed output is stable.
type Distribution struct {
	counts map[string]int
	order  []string
	total  int
}

// NewDistribution creates an empty distribution.
func NewDistribution() *Distribution {
	return &Distribution{counts: make(map[string]int)}
}

// DistributionOf builds a distribution from label/count pairs in the given
// order. Non-positive counts are ignored.
func DistributionOf(entries ...LabelCount) *Distribution {
	d := NewDistribution()
	for _, e := range entries {
		if e.Count <= 0 {
			continue
		}
		if _, seen := d.counts[e.Label]; !seen {
			d.order = append(d.order, e.Label)
		}
		d.counts[e.Label] += e.Count
		d.total += e.Count
	}
	return d
}

// Add records one occurrence of label.
func (d *Distribution) Add(label string) {
	if _, seen := d.counts[label]; !seen {
		d.order = append(d.order, label)
	}
	d.counts[label]++
	d.total++
}

// Count returns the occurrences of label.
func (d *Distribution) Count(label string) int {
	if d == nil {
		return 0
	}
	return d.counts[label]
}

// Total returns the sum of all counts.
func (d *Distribution) Total() int {
	if d == nil {
		return 0
	}
	return d.total
}

// Len returns the number of distinct labels.
func (d *Distribution) Len() int {
	if d == nil {
		return 0
	}
	return len(d.order)
}

// Entries returns label counts in first-seen order.
func (d *Distribution) Entries() []LabelCount {
	if d == nil {
		return nil
	}
	entries := make([]LabelCount, 0, len(d.order))
	for _, label := range d.order {
		entries = append(entries, LabelCount{Label: label, Count: d.counts[label]})
	}
	return entries
}
