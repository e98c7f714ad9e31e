package model

import "time"

// RunStatus is the terminal state of one analysis run.
type RunStatus string

const (
	StatusOK                  RunStatus = "ok"
	StatusInsufficientHistory RunStatus = "insufficient_history"
	StatusNoSignals           RunStatus = "no_signals"
	StatusNoRecurrence        RunStatus = "no_recurrence"
)

// IndicatorRow is one post-warm-up bar with its three EMA values.
type IndicatorRow struct {
	Date    time.Time
	Open    float64
	High    float64
	Low     float64
	Close   float64
	Volume  float64
	EMAFast float64
	EMAMid  float64
	EMASlow float64
}

// Report is the complete output of one run. Crossovers are ordered most recent
// first; every other table is in canonical category-then-date order.
type Report struct {
	RunID       string
	Symbol      string
	GeneratedAt time.Time
	Status      RunStatus

	Indicators   []IndicatorRow
	Crossovers   []CrossoverEvent
	Intervals    []IntervalRecord
	Summary      []IntervalSummary
	Distribution DistributionTable
}

// CountByCategory returns the number of crossovers per category.
func (r *Report) CountByCategory() map[Category]int {
	counts := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		counts[c] = 0
	}
	for _, e := range r.Crossovers {
		counts[e.Category]++
	}
	return counts
}
