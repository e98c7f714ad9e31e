package api

import (
	"time"

	"EmaSentinel/internal/model"
)

type crossoverDTO struct {
	Date        string  `json:"date"`
	Category    string  `json:"category"`
	CategoryNum int     `json:"category_num"`
	Price       float64 `json:"price"`
}

type intervalDTO struct {
	Category     string `json:"category"`
	CategoryNum  int    `json:"category_num"`
	PreviousDate string `json:"previous_date"`
	CurrentDate  string `json:"current_date"`
	DaysBetween  int    `json:"days_between"`
}

type summaryDTO struct {
	Category          string   `json:"category"`
	AvgDaysBetween    float64  `json:"avg_days_between"`
	MedianDaysBetween float64  `json:"median_days_between"`
	MinDaysBetween    int      `json:"min_days_between"`
	MaxDaysBetween    int      `json:"max_days_between"`
	StdDevDays        *float64 `json:"std_dev_days"`
	IntervalCount     int      `json:"interval_count"`
}

type distributionRowDTO struct {
	Range  string         `json:"days_between_range"`
	Counts map[string]int `json:"counts"`
}

type distributionDTO struct {
	Columns []string             `json:"columns"`
	Rows    []distributionRowDTO `json:"rows"`
}

type indicatorDTO struct {
	Date    string  `json:"date"`
	Close   float64 `json:"close"`
	EMAFast float64 `json:"ema_fast"`
	EMAMid  float64 `json:"ema_mid"`
	EMASlow float64 `json:"ema_slow"`
}

type reportDTO struct {
	RunID        string          `json:"run_id"`
	Symbol       string          `json:"symbol"`
	GeneratedAt  time.Time       `json:"generated_at"`
	Status       string          `json:"status"`
	Bars         int             `json:"bars"`
	LastBar      *indicatorDTO   `json:"last_bar,omitempty"`
	Crossovers   []crossoverDTO  `json:"crossovers"`
	Intervals    []intervalDTO   `json:"intervals"`
	Summary      []summaryDTO    `json:"summary"`
	Distribution distributionDTO `json:"distribution"`
}

func day(t time.Time) string { return t.Format(model.DateLayout) }

func toCrossovers(events []model.CrossoverEvent) []crossoverDTO {
	out := make([]crossoverDTO, len(events))
	for i, e := range events {
		out[i] = crossoverDTO{Date: day(e.Date), Category: e.Category.Label(), CategoryNum: e.Category.Num(), Price: e.Price}
	}
	return out
}

func toIntervals(records []model.IntervalRecord) []intervalDTO {
	out := make([]intervalDTO, len(records))
	for i, r := range records {
		out[i] = intervalDTO{
			Category:     r.Category.Label(),
			CategoryNum:  r.Category.Num(),
			PreviousDate: day(r.PreviousDate),
			CurrentDate:  day(r.CurrentDate),
			DaysBetween:  r.DaysBetween,
		}
	}
	return out
}

func toSummary(rows []model.IntervalSummary) []summaryDTO {
	out := make([]summaryDTO, len(rows))
	for i, s := range rows {
		out[i] = summaryDTO{
			Category:          s.Category.Label(),
			AvgDaysBetween:    s.Mean,
			MedianDaysBetween: s.Median,
			MinDaysBetween:    s.Min,
			MaxDaysBetween:    s.Max,
			StdDevDays:        s.StdDev,
			IntervalCount:     s.Count,
		}
	}
	return out
}

func toDistribution(t model.DistributionTable) distributionDTO {
	out := distributionDTO{Columns: append([]string{}, t.Columns...), Rows: make([]distributionRowDTO, len(t.Rows))}
	for i, row := range t.Rows {
		counts := make(map[string]int, len(t.Columns))
		for ci, col := range t.Columns {
			counts[col] = row.Counts[ci]
		}
		out.Rows[i] = distributionRowDTO{Range: row.Range, Counts: counts}
	}
	return out
}

func toReport(r *model.Report) reportDTO {
	dto := reportDTO{
		RunID:        r.RunID,
		Symbol:       r.Symbol,
		GeneratedAt:  r.GeneratedAt,
		Status:       string(r.Status),
		Bars:         len(r.Indicators),
		Crossovers:   toCrossovers(r.Crossovers),
		Intervals:    toIntervals(r.Intervals),
		Summary:      toSummary(r.Summary),
		Distribution: toDistribution(r.Distribution),
	}
	if n := len(r.Indicators); n > 0 {
		last := r.Indicators[n-1]
		dto.LastBar = &indicatorDTO{Date: day(last.Date), Close: last.Close, EMAFast: last.EMAFast, EMAMid: last.EMAMid, EMASlow: last.EMASlow}
	}
	return dto
}
