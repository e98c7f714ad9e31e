package model

import (
	"strings"
	"time"
)

// Category identifies one of the four monitored crossover kinds.
// The numeric value is the category code stored in every output table.
type Category int

const (
	CategoryBullish Category = iota + 1 // fast EMA crosses above mid EMA
	CategoryBearish                     // fast EMA crosses below mid EMA
	CategoryGolden                      // mid EMA crosses above slow EMA
	CategoryDeath                       // mid EMA crosses below slow EMA
)

// Categories lists every category in code order.
var Categories = []Category{CategoryBullish, CategoryBearish, CategoryGolden, CategoryDeath}

// Num returns the stable category code (1-4).
func (c Category) Num() int { return int(c) }

// String returns the enum name, e.g. "BULLISH_20_50".
func (c Category) String() string {
	switch c {
	case CategoryBullish:
		return "BULLISH_20_50"
	case CategoryBearish:
		return "BEARISH_20_50"
	case CategoryGolden:
		return "GOLDEN_50_200"
	case CategoryDeath:
		return "DEATH_50_200"
	default:
		return "UNKNOWN"
	}
}

// Label returns the display label written to the category column.
func (c Category) Label() string {
	switch c {
	case CategoryBullish:
		return "BULLISH CROSS (20/50)"
	case CategoryBearish:
		return "BEARISH CROSS (20/50)"
	case CategoryGolden:
		return "GOLDEN CROSS (50/200)"
	case CategoryDeath:
		return "DEATH CROSS (50/200)"
	default:
		return "UNKNOWN"
	}
}

// Column returns the sanitized column name of the category in the distribution table.
func (c Category) Column() string { return SanitizeColumn(c.Label()) }

// Valid reports whether c is one of the four known categories.
func (c Category) Valid() bool { return c >= CategoryBullish && c <= CategoryDeath }

// SanitizeColumn turns a label into a warehouse-safe column name: uppercase, with
// spaces, parentheses, slashes and hyphens collapsed into single underscores and
// no leading or trailing underscore.
func SanitizeColumn(label string) string {
	parts := strings.FieldsFunc(label, func(r rune) bool {
		switch r {
		case ' ', '(', ')', '/', '-', '_':
			return true
		}
		return false
	})
	return strings.ToUpper(strings.Join(parts, "_"))
}

// CrossoverEvent is one detected crossover.
type CrossoverEvent struct {
	Date     time.Time
	Category Category
	Price    float64
}

// IntervalRecord is the elapsed time between two consecutive events of one category.
type IntervalRecord struct {
	Category     Category
	PreviousDate time.Time
	CurrentDate  time.Time
	DaysBetween  int
}

// IntervalSummary is one row of the interval summary table. Mean and StdDev are
// rounded to one decimal; StdDev is nil when fewer than two intervals exist.
type IntervalSummary struct {
	Category Category
	Mean     float64
	Median   float64
	Min      int
	Max      int
	StdDev   *float64
	Count    int
}

// DistributionRow holds one histogram bucket; Counts is aligned with DistributionTable.Columns.
type DistributionRow struct {
	Range  string
	Counts []int
}

// DistributionTable is the bucket-by-category histogram of interval lengths.
type DistributionTable struct {
	Columns []string
	Rows    []DistributionRow
}

// Empty reports whether the table has no rows.
func (d DistributionTable) Empty() bool { return len(d.Rows) == 0 }
