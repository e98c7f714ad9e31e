package engine

import (
	"errors"
	"fmt"

	"EmaSentinel/internal/analysis"
	"EmaSentinel/internal/calculator"
	"EmaSentinel/internal/model"
)

// Options configure one engine instance.
type Options struct {
	Windows    calculator.Windows
	Boundaries []int
	Smoothing  calculator.SmoothingForm
}

// DefaultOptions returns 20/50/200 windows, 50-day buckets up to 1000 and the
// non-adjusted recursive EMA.
func DefaultOptions() Options {
	return Options{
		Windows:    calculator.DefaultWindows(),
		Boundaries: analysis.DefaultBoundaries(),
		Smoothing:  calculator.SmoothingRecursive,
	}
}

// Engine runs the detection and interval-statistics pipeline. It holds no state
// between runs and is safe for concurrent use.
type Engine struct {
	opts    Options
	buckets []analysis.Bucket
}

// New validates opts and returns an Engine.
func New(opts Options) (*Engine, error) {
	if err := opts.Windows.Validate(); err != nil {
		return nil, fmt.Errorf("windows: %w", err)
	}
	if opts.Smoothing == "" {
		opts.Smoothing = calculator.SmoothingRecursive
	}
	if !opts.Smoothing.Valid() {
		return nil, fmt.Errorf("unknown smoothing form %q", opts.Smoothing)
	}
	buckets, err := analysis.Buckets(opts.Boundaries)
	if err != nil {
		return nil, fmt.Errorf("buckets: %w", err)
	}
	opts.Boundaries = append([]int(nil), opts.Boundaries...)
	return &Engine{opts: opts, buckets: buckets}, nil
}

// Options returns a copy of the engine configuration.
func (e *Engine) Options() Options {
	o := e.opts
	o.Boundaries = append([]int(nil), e.opts.Boundaries...)
	return o
}

// Run computes every output table from the series. Short history, no signals and
// no recurrence are reported through Report.Status with empty tables; only a
// contract violation such as misaligned series returns an error.
func (e *Engine) Run(series *model.PriceSeries) (*model.Report, error) {
	report := &model.Report{Symbol: series.Symbol}

	table, err := calculator.BuildEMATable(series.DailyBars, e.opts.Windows, e.opts.Smoothing)
	if errors.Is(err, calculator.ErrInsufficientHistory) {
		report.Status = model.StatusInsufficientHistory
		return report, nil
	}
	if err != nil {
		return nil, fmt.Errorf("build ema table: %w", err)
	}
	report.Indicators = indicatorRows(table)

	closes := table.Closes()
	fastMid, err := calculator.DetectCrossovers(table.Fast, table.Mid, closes)
	if err != nil {
		return nil, fmt.Errorf("detect fast/mid crossovers: %w", err)
	}
	midSlow, err := calculator.DetectCrossovers(table.Mid, table.Slow, closes)
	if err != nil {
		return nil, fmt.Errorf("detect mid/slow crossovers: %w", err)
	}

	events := analysis.Aggregate(fastMid, midSlow)
	if len(events) == 0 {
		report.Status = model.StatusNoSignals
		return report, nil
	}
	report.Crossovers = analysis.MostRecentFirst(events)

	report.Intervals = analysis.Intervals(events)
	if len(report.Intervals) == 0 {
		report.Status = model.StatusNoRecurrence
		return report, nil
	}
	report.Summary = analysis.Summarize(report.Intervals)
	report.Distribution = analysis.Distribute(report.Intervals, e.buckets)
	report.Status = model.StatusOK
	return report, nil
}

func indicatorRows(t *calculator.EMATable) []model.IndicatorRow {
	rows := make([]model.IndicatorRow, t.Len())
	for i, b := range t.Bars {
		rows[i] = model.IndicatorRow{
			Date:    t.Fast.Dates[i],
			Open:    b.Open,
			High:    b.High,
			Low:     b.Low,
			Close:   b.Close,
			Volume:  b.Volume,
			EMAFast: t.Fast.Values[i],
			EMAMid:  t.Mid.Values[i],
			EMASlow: t.Slow.Values[i],
		}
	}
	return rows
}
