// Package analysis turns crossover flags into tagged events and derives their
// recurrence statistics.
package analysis

import (
	"sort"

	"EmaSentinel/internal/calculator"
	"EmaSentinel/internal/model"
)

// Aggregate tags the crossovers of the fast/mid pair as bullish/bearish and those
// of the mid/slow pair as golden/death, and returns them in canonical order
// (date ascending, then category code). A date may carry events of both pairs.
func Aggregate(fastMid, midSlow []calculator.Crossover) []model.CrossoverEvent {
	events := make([]model.CrossoverEvent, 0, len(fastMid)+len(midSlow))
	events = appendTagged(events, fastMid, model.CategoryBullish, model.CategoryBearish)
	events = appendTagged(events, midSlow, model.CategoryGolden, model.CategoryDeath)
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Date.Equal(events[j].Date) {
			return events[i].Date.Before(events[j].Date)
		}
		return events[i].Category < events[j].Category
	})
	return events
}

func appendTagged(dst []model.CrossoverEvent, crosses []calculator.Crossover, up, down model.Category) []model.CrossoverEvent {
	for _, c := range crosses {
		cat := down
		if c.Direction == calculator.CrossUp {
			cat = up
		}
		dst = append(dst, model.CrossoverEvent{Date: c.Date, Category: cat, Price: c.Price})
	}
	return dst
}

// MostRecentFirst returns a copy of events ordered by date descending, ties by category code.
func MostRecentFirst(events []model.CrossoverEvent) []model.CrossoverEvent {
	out := append([]model.CrossoverEvent(nil), events...)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// ByCategory groups events per category, each group sorted by date ascending.
func ByCategory(events []model.CrossoverEvent) map[model.Category][]model.CrossoverEvent {
	groups := make(map[model.Category][]model.CrossoverEvent)
	for _, e := range events {
		groups[e.Category] = append(groups[e.Category], e)
	}
	for _, g := range groups {
		sort.SliceStable(g, func(i, j int) bool { return g[i].Date.Before(g[j].Date) })
	}
	return groups
}
