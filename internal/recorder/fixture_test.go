package recorder

import (
	"time"

	"EmaSentinel/internal/model"
)

func day(s string) time.Time {
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func sampleReport() *model.Report {
	sd := 70.7
	return &model.Report{
		RunID:       "01HZXRUN",
		Symbol:      "BTC-USD",
		GeneratedAt: time.Date(2024, 6, 1, 0, 30, 0, 0, time.UTC),
		Status:      model.StatusOK,
		Indicators: []model.IndicatorRow{
			{Date: day("2024-05-30"), Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 100, EMAFast: 1.4, EMAMid: 1.3, EMASlow: 1.2},
			{Date: day("2024-05-31"), Open: 1.5, High: 2.5, Low: 1, Close: 2, Volume: 120, EMAFast: 1.5, EMAMid: 1.35, EMASlow: 1.21},
		},
		Crossovers: []model.CrossoverEvent{
			{Date: day("2024-05-31"), Category: model.CategoryBullish, Price: 67432.1},
			{Date: day("2024-03-01"), Category: model.CategoryBullish, Price: 61000},
			{Date: day("2024-01-01"), Category: model.CategoryBullish, Price: 42000},
		},
		Intervals: []model.IntervalRecord{
			{Category: model.CategoryBullish, PreviousDate: day("2024-01-01"), CurrentDate: day("2024-03-01"), DaysBetween: 60},
			{Category: model.CategoryBullish, PreviousDate: day("2024-03-01"), CurrentDate: day("2024-05-31"), DaysBetween: 91},
		},
		Summary: []model.IntervalSummary{
			{Category: model.CategoryBullish, Mean: 75.5, Median: 75.5, Min: 60, Max: 91, StdDev: &sd, Count: 2},
		},
		Distribution: model.DistributionTable{
			Columns: []string{"BULLISH_CROSS_20_50", "BEARISH_CROSS_20_50", "GOLDEN_CROSS_50_200", "DEATH_CROSS_50_200"},
			Rows: []model.DistributionRow{
				{Range: "0-49", Counts: []int{0, 0, 0, 0}},
				{Range: "50-99", Counts: []int{2, 0, 0, 0}},
				{Range: "100+", Counts: []int{0, 0, 0, 0}},
			},
		},
	}
}
