package analysis

import (
	"errors"
	"fmt"
	"math"

	"EmaSentinel/internal/model"
)

// DefaultBoundaries are 0, 50, ..., 1000 days.
func DefaultBoundaries() []int {
	b := make([]int, 0, 21)
	for d := 0; d <= 1000; d += 50 {
		b = append(b, d)
	}
	return b
}

// Bucket is the half-open day range [Low, High). The last bucket has High = MaxInt.
type Bucket struct {
	Low   int
	High  int
	Label string
}

// Contains reports whether days falls inside the bucket.
func (b Bucket) Contains(days int) bool { return days >= b.Low && days < b.High }

// Buckets builds the shared bucket set from ascending boundaries: one bucket
// between each pair plus an open-ended bucket from the last boundary.
func Buckets(boundaries []int) ([]Bucket, error) {
	if len(boundaries) == 0 {
		return nil, errors.New("no bucket boundaries")
	}
	if boundaries[0] != 0 {
		return nil, fmt.Errorf("first bucket boundary must be 0, got %d", boundaries[0])
	}
	for i := 1; i < len(boundaries); i++ {
		if boundaries[i] <= boundaries[i-1] {
			return nil, fmt.Errorf("bucket boundaries must be strictly ascending at index %d", i)
		}
	}

	buckets := make([]Bucket, 0, len(boundaries))
	for i := 0; i < len(boundaries)-1; i++ {
		lo, hi := boundaries[i], boundaries[i+1]
		buckets = append(buckets, Bucket{Low: lo, High: hi, Label: fmt.Sprintf("%d-%d", lo, hi-1)})
	}
	last := boundaries[len(boundaries)-1]
	buckets = append(buckets, Bucket{Low: last, High: math.MaxInt, Label: fmt.Sprintf("%d+", last)})
	return buckets, nil
}

// Histogram counts days into buckets. Every value >= 0 lands in exactly one bucket.
func Histogram(days []int, buckets []Bucket) []int {
	counts := make([]int, len(buckets))
	for _, d := range days {
		for i, b := range buckets {
			if b.Contains(d) {
				counts[i]++
				break
			}
		}
	}
	return counts
}

// Distribute builds the bucket-by-category table. Every category gets a column,
// zero-filled when it has no intervals. No records yields an empty table.
func Distribute(records []model.IntervalRecord, buckets []Bucket) model.DistributionTable {
	if len(records) == 0 {
		return model.DistributionTable{}
	}
	days := daysByCategory(records)

	table := model.DistributionTable{Columns: make([]string, len(model.Categories))}
	perCategory := make([][]int, len(model.Categories))
	for i, cat := range model.Categories {
		table.Columns[i] = cat.Column()
		perCategory[i] = Histogram(days[cat], buckets)
	}

	table.Rows = make([]model.DistributionRow, len(buckets))
	for bi, b := range buckets {
		row := model.DistributionRow{Range: b.Label, Counts: make([]int, len(model.Categories))}
		for ci := range model.Categories {
			row.Counts[ci] = perCategory[ci][bi]
		}
		table.Rows[bi] = row
	}
	return table
}
