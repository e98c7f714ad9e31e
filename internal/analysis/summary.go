package analysis

import (
	"math"
	"sort"

	"EmaSentinel/internal/model"
)

// Stats are full-precision summary statistics of a sample of interval lengths.
type Stats struct {
	Count  int
	Mean   float64
	Median float64
	Min    int
	Max    int
	// StdDev is the sample standard deviation (n-1); NaN when Count < 2.
	StdDev float64
}

// Describe computes Stats over days. An empty sample returns the zero Stats with a NaN StdDev.
func Describe(days []int) Stats {
	s := Stats{Count: len(days), StdDev: math.NaN()}
	if len(days) == 0 {
		return s
	}

	sorted := append([]int(nil), days...)
	sort.Ints(sorted)
	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]

	sum := 0.0
	for _, d := range sorted {
		sum += float64(d)
	}
	s.Mean = sum / float64(len(sorted))

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		s.Median = float64(sorted[mid])
	} else {
		s.Median = float64(sorted[mid-1]+sorted[mid]) / 2
	}

	if len(sorted) >= 2 {
		var ss float64
		for _, d := range sorted {
			dev := float64(d) - s.Mean
			ss += dev * dev
		}
		s.StdDev = math.Sqrt(ss / float64(len(sorted)-1))
	}
	return s
}

// Summarize returns one row per category that has at least one interval, in
// category code order. Mean and StdDev are rounded to one decimal.
func Summarize(records []model.IntervalRecord) []model.IntervalSummary {
	days := daysByCategory(records)
	var out []model.IntervalSummary
	for _, cat := range model.Categories {
		d, ok := days[cat]
		if !ok {
			continue
		}
		st := Describe(d)
		row := model.IntervalSummary{
			Category: cat,
			Mean:     Round1(st.Mean),
			Median:   st.Median,
			Min:      st.Min,
			Max:      st.Max,
			Count:    st.Count,
		}
		if !math.IsNaN(st.StdDev) {
			sd := Round1(st.StdDev)
			row.StdDev = &sd
		}
		out = append(out, row)
	}
	return out
}

// Round1 rounds v to one decimal place, halves away from zero.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
