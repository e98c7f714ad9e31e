package notifier

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"EmaSentinel/internal/model"
)

func TestFormatPrice(t *testing.T) {
	cases := map[float64]string{
		0:           "$0.00",
		9.5:         "$9.50",
		999.994:     "$999.99",
		1000:        "$1,000.00",
		67432.1:     "$67,432.10",
		1234567.891: "$1,234,567.89",
		-1500:       "-$1,500.00",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatPrice(in), "price %v", in)
	}
}

func TestFormatCrossoverLine(t *testing.T) {
	e := model.CrossoverEvent{
		Date:     time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
		Category: model.CategoryGolden,
		Price:    69020.55,
	}
	assert.Equal(t, "2024-03-11 | GOLDEN CROSS (50/200) | Price: $69,020.55", FormatCrossoverLine(e))
}

func TestFormatCrossoversLimit(t *testing.T) {
	events := make([]model.CrossoverEvent, 5)
	for i := range events {
		events[i] = model.CrossoverEvent{Date: time.Date(2024, 1, 5-i, 0, 0, 0, 0, time.UTC), Category: model.CategoryBullish, Price: 1}
	}
	out := FormatCrossovers(events, 3)
	assert.Equal(t, 3, strings.Count(out, "\n")+1)
	assert.True(t, strings.HasPrefix(out, "2024-01-05"))

	assert.Equal(t, "No crossovers found in the historical data.", FormatCrossovers(nil, 10))
}

func TestFormatSummaryUndefinedStdDev(t *testing.T) {
	sd := 12.3
	out := FormatSummary([]model.IntervalSummary{
		{Category: model.CategoryBullish, Mean: 40, Median: 40, Min: 40, Max: 40, Count: 1},
		{Category: model.CategoryGolden, Mean: 300.5, Median: 300.5, Min: 290, Max: 311, StdDev: &sd, Count: 2},
	})
	assert.Contains(t, out, "<b>BULLISH CROSS (20/50)</b>")
	assert.Contains(t, out, "std dev undefined | intervals 1")
	assert.Contains(t, out, "std dev 12.3 | intervals 2")
}

func TestFormatReportInsufficientHistory(t *testing.T) {
	out := FormatReport(&model.Report{Symbol: "BTC-USD", Status: model.StatusInsufficientHistory}, 10)
	assert.Contains(t, out, "insufficient_history")
	assert.Contains(t, out, "Not enough history")
}

func TestNormalizeCommand(t *testing.T) {
	assert.Equal(t, "/latest", normalizeCommand("  /latest@EmaSentinelBot "))
	assert.Equal(t, "/latest 5", normalizeCommand("/latest@bot   5"))
	assert.Equal(t, "/run", normalizeCommand("/run"))
}
