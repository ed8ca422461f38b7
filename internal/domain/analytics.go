package domain

import "time"

// BehaviourEntryRow is one row of the behaviour entries analytics table: the
// positive and negative case notes recorded for prisoners on one wing and level.
type BehaviourEntryRow struct {
	Prison    string `json:"prison"`
	Wing      string `json:"wing"`
	Incentive string `json:"incentive"`
	Positives int    `json:"positives"`
	Negatives int    `json:"negatives"`
}

// BehaviourSummary totals behaviour entries for one label (a wing).
type BehaviourSummary struct {
	Label     string
	Positives int
	Negatives int
}

// Total returns all entries for the label.
func (s BehaviourSummary) Total() int {
	return s.Positives + s.Negatives
}

// BehaviourReport is the behaviour entries analytics for one prison.
type BehaviourReport struct {
	Prison string
	Date   time.Time // Date the source table was generated
	Rows   []BehaviourSummary
	Totals BehaviourSummary
}
