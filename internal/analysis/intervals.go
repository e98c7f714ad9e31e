package analysis

import "EmaSentinel/internal/model"

// Intervals emits one record per consecutive pair of same-category events.
// Categories with fewer than two events produce nothing. Records are ordered by
// category code, then by the later date of the pair.
func Intervals(events []model.CrossoverEvent) []model.IntervalRecord {
	groups := ByCategory(events)
	var out []model.IntervalRecord
	for _, cat := range model.Categories {
		g := groups[cat]
		for i := 1; i < len(g); i++ {
			out = append(out, model.IntervalRecord{
				Category:     cat,
				PreviousDate: g[i-1].Date,
				CurrentDate:  g[i].Date,
				DaysBetween:  model.DaysBetween(g[i-1].Date, g[i].Date),
			})
		}
	}
	return out
}

// daysByCategory collects DaysBetween per category, preserving record order.
func daysByCategory(records []model.IntervalRecord) map[model.Category][]int {
	days := make(map[model.Category][]int)
	for _, r := range records {
		days[r.Category] = append(days[r.Category], r.DaysBetween)
	}
	return days
}
