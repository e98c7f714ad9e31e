package analysis

import (
	"testing"
	"time"

	"EmaSentinel/internal/calculator"
	"EmaSentinel/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestAggregate_TagsAndOrders(t *testing.T) {
	fastMid := []calculator.Crossover{
		{Date: day("2022-05-01"), Direction: calculator.CrossDown, Price: 30},
		{Date: day("2022-01-10"), Direction: calculator.CrossUp, Price: 40},
	}
	midSlow := []calculator.Crossover{
		{Date: day("2022-05-01"), Direction: calculator.CrossDown, Price: 30},
		{Date: day("2021-12-01"), Direction: calculator.CrossUp, Price: 50},
	}

	events := Aggregate(fastMid, midSlow)
	require.Len(t, events, 4)
	assert.Equal(t, model.CategoryGolden, events[0].Category)
	assert.Equal(t, model.CategoryBullish, events[1].Category)
	// same date keeps both pairs, fast/mid first
	assert.Equal(t, model.CategoryBearish, events[2].Category)
	assert.Equal(t, model.CategoryDeath, events[3].Category)
	assert.True(t, events[2].Date.Equal(events[3].Date))
	assert.Equal(t, 30.0, events[3].Price)
}

func TestAggregate_Empty(t *testing.T) {
	assert.Empty(t, Aggregate(nil, nil))
}

func TestMostRecentFirst(t *testing.T) {
	events := []model.CrossoverEvent{
		{Date: day("2020-01-01"), Category: model.CategoryBullish},
		{Date: day("2023-01-01"), Category: model.CategoryDeath},
		{Date: day("2023-01-01"), Category: model.CategoryBearish},
	}
	got := MostRecentFirst(events)
	assert.Equal(t, model.CategoryBearish, got[0].Category)
	assert.Equal(t, model.CategoryDeath, got[1].Category)
	assert.Equal(t, model.CategoryBullish, got[2].Category)
	// input untouched
	assert.Equal(t, model.CategoryBullish, events[0].Category)
}

func TestCategoryCodesAndColumns(t *testing.T) {
	tests := []struct {
		cat    model.Category
		num    int
		label  string
		column string
	}{
		{model.CategoryBullish, 1, "BULLISH CROSS (20/50)", "BULLISH_CROSS_20_50"},
		{model.CategoryBearish, 2, "BEARISH CROSS (20/50)", "BEARISH_CROSS_20_50"},
		{model.CategoryGolden, 3, "GOLDEN CROSS (50/200)", "GOLDEN_CROSS_50_200"},
		{model.CategoryDeath, 4, "DEATH CROSS (50/200)", "DEATH_CROSS_50_200"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.num, tt.cat.Num())
		assert.Equal(t, tt.label, tt.cat.Label())
		assert.Equal(t, tt.column, tt.cat.Column())
	}
}

func TestSanitizeColumn(t *testing.T) {
	assert.Equal(t, "A_B_C", model.SanitizeColumn("  a -- b//(c) "))
	assert.Equal(t, "DAYS_BETWEEN_RANGE", model.SanitizeColumn("Days Between Range"))
	assert.Equal(t, "", model.SanitizeColumn("()"))
}
