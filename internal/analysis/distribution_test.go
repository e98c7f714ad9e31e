package analysis

import (
	"math"
	"testing"

	"EmaSentinel/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuckets_Default(t *testing.T) {
	buckets, err := Buckets(DefaultBoundaries())
	require.NoError(t, err)
	require.Len(t, buckets, 21)
	assert.Equal(t, "0-49", buckets[0].Label)
	assert.Equal(t, "950-999", buckets[19].Label)
	assert.Equal(t, "1000+", buckets[20].Label)
	assert.Equal(t, math.MaxInt, buckets[20].High)
}

func TestBuckets_Invalid(t *testing.T) {
	for _, b := range [][]int{nil, {10, 20}, {0, 50, 50}, {0, 100, 50}} {
		_, err := Buckets(b)
		assert.Error(t, err, "%v", b)
	}
}

func TestHistogram_HalfOpenBoundaries(t *testing.T) {
	buckets, err := Buckets(DefaultBoundaries())
	require.NoError(t, err)

	counts := Histogram([]int{0, 49, 50, 99, 100, 400, 999, 1000, 5000}, buckets)
	assert.Equal(t, 2, counts[0])  // 0, 49
	assert.Equal(t, 2, counts[1])  // 50, 99
	assert.Equal(t, 1, counts[2])  // 100
	assert.Equal(t, 1, counts[8])  // 400 -> [400,450)
	assert.Equal(t, 1, counts[19]) // 999
	assert.Equal(t, 2, counts[20]) // 1000, 5000
}

func TestDistribute_SharedColumnsAndZeroFill(t *testing.T) {
	buckets, err := Buckets(DefaultBoundaries())
	require.NoError(t, err)
	records := []model.IntervalRecord{
		{Category: model.CategoryGolden, DaysBetween: 400},
		{Category: model.CategoryBullish, DaysBetween: 50},
		{Category: model.CategoryBullish, DaysBetween: 12},
	}

	table := Distribute(records, buckets)
	assert.Equal(t, []string{"BULLISH_CROSS_20_50", "BEARISH_CROSS_20_50", "GOLDEN_CROSS_50_200", "DEATH_CROSS_50_200"}, table.Columns)
	require.Len(t, table.Rows, len(buckets))
	assert.Equal(t, "0-49", table.Rows[0].Range)
	assert.Equal(t, []int{1, 0, 0, 0}, table.Rows[0].Counts)
	assert.Equal(t, []int{1, 0, 0, 0}, table.Rows[1].Counts)
	assert.Equal(t, "400-449", table.Rows[8].Range)
	assert.Equal(t, []int{0, 0, 1, 0}, table.Rows[8].Counts)

	summary := Summarize(records)
	for _, s := range summary {
		col := s.Category.Num() - 1
		sum := 0
		for _, row := range table.Rows {
			sum += row.Counts[col]
		}
		assert.Equal(t, s.Count, sum, s.Category.String())
	}
}

func TestDistribute_NoRecords(t *testing.T) {
	buckets, err := Buckets(DefaultBoundaries())
	require.NoError(t, err)
	assert.True(t, Distribute(nil, buckets).Empty())
}
