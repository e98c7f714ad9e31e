package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"EmaSentinel/internal/collector"
	"EmaSentinel/internal/engine"
	"EmaSentinel/internal/id"
	"EmaSentinel/internal/metrics"
	"EmaSentinel/internal/model"
	"EmaSentinel/internal/recorder"
)

// Pipeline runs one fetch, analyze and persist cycle.
type Pipeline struct {
	collector *collector.Collector
	engine    *engine.Engine
	recorder  recorder.Recorder
	metrics   *metrics.Metrics
	now       func() time.Time
}

// New builds a pipeline. rec and m may be nil.
func New(col *collector.Collector, eng *engine.Engine, rec recorder.Recorder, m *metrics.Metrics) *Pipeline {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Pipeline{collector: col, engine: eng, recorder: rec, metrics: m, now: time.Now}
}

// Run executes one cycle. A persist failure still returns the computed report
// together with the error.
func (p *Pipeline) Run(ctx context.Context) (*model.Report, error) {
	start := p.now()

	series, err := p.collector.Collect(ctx)
	if err != nil {
		p.metrics.ObserveFailure(metrics.StageFetch)
		return nil, fmt.Errorf("collect: %w", err)
	}

	report, err := p.engine.Run(series)
	if err != nil {
		p.metrics.ObserveFailure(metrics.StageAnalyze)
		return nil, fmt.Errorf("analyze: %w", err)
	}
	report.GeneratedAt = p.now().UTC()
	report.RunID = id.At(report.GeneratedAt)

	logReport(report, len(series.DailyBars))

	if err := p.recorder.RecordReport(ctx, report); err != nil {
		p.metrics.ObserveFailure(metrics.StagePersist)
		return report, fmt.Errorf("persist: %w", err)
	}

	p.metrics.ObserveRun(report, len(series.DailyBars), p.now().Sub(start))
	return report, nil
}

func logReport(r *model.Report, bars int) {
	switch r.Status {
	case model.StatusInsufficientHistory:
		log.Printf("[WARN] run %s: %s has only %d bars, not enough history for the slow EMA", r.RunID, r.Symbol, bars)
	case model.StatusNoSignals:
		log.Printf("[INFO] run %s: no crossovers found in %d bars", r.RunID, len(r.Indicators))
	case model.StatusNoRecurrence:
		log.Printf("[INFO] run %s: %d crossovers, none recurring", r.RunID, len(r.Crossovers))
	default:
		counts := r.CountByCategory()
		log.Printf("[INFO] run %s: %d crossovers (bullish=%d bearish=%d golden=%d death=%d), %d intervals",
			r.RunID, len(r.Crossovers),
			counts[model.CategoryBullish], counts[model.CategoryBearish],
			counts[model.CategoryGolden], counts[model.CategoryDeath],
			len(r.Intervals))
	}
}
