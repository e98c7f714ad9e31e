package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EmaSentinel/internal/collector"
	"EmaSentinel/internal/engine"
	"EmaSentinel/internal/id"
	"EmaSentinel/internal/metrics"
	"EmaSentinel/internal/model"
)

type captureRecorder struct {
	reports []*model.Report
	err     error
}

func (c *captureRecorder) RecordReport(_ context.Context, r *model.Report) error {
	c.reports = append(c.reports, r)
	return c.err
}

func (c *captureRecorder) Close() error { return nil }

func newPipeline(t *testing.T, f collector.Fetcher, rec *captureRecorder, m *metrics.Metrics) *Pipeline {
	t.Helper()
	eng, err := engine.New(engine.DefaultOptions())
	require.NoError(t, err)
	p := New(collector.NewCollector(f, "BTC-USD", 1000), eng, rec, m)
	p.now = func() time.Time { return time.Date(2024, 6, 1, 0, 30, 0, 0, time.UTC) }
	return p
}

func TestRunPersistsReport(t *testing.T) {
	end := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	f := &collector.MockFetcher{DailyData: collector.GenerateMockBars(30000, 1000, end)}
	rec := &captureRecorder{}
	m := metrics.New()

	report, err := newPipeline(t, f, rec, m).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, rec.reports, 1)
	assert.Same(t, report, rec.reports[0])
	assert.Equal(t, "BTC-USD", report.Symbol)
	assert.Len(t, report.Indicators, 801)
	assert.NotEmpty(t, report.Crossovers)

	stamp, err := id.Time(report.RunID)
	require.NoError(t, err)
	assert.True(t, stamp.Equal(report.GeneratedAt.Truncate(time.Millisecond)))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues(string(report.Status))))
	assert.Equal(t, 1000.0, testutil.ToFloat64(m.BarsFetched))
}

func TestRunInsufficientHistoryStillPersists(t *testing.T) {
	end := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	f := &collector.MockFetcher{DailyData: collector.GenerateMockBars(100, 150, end)}
	rec := &captureRecorder{}

	report, err := newPipeline(t, f, rec, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.StatusInsufficientHistory, report.Status)
	assert.Empty(t, report.Indicators)
	require.Len(t, rec.reports, 1)
}

func TestRunFetchError(t *testing.T) {
	f := &collector.MockFetcher{Err: errors.New("upstream 502")}
	rec := &captureRecorder{}
	m := metrics.New()

	_, err := newPipeline(t, f, rec, m).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream 502")
	assert.Empty(t, rec.reports)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchErrors))
}

func TestRunPersistErrorReturnsReport(t *testing.T) {
	end := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	f := &collector.MockFetcher{DailyData: collector.GenerateMockBars(30000, 400, end)}
	rec := &captureRecorder{err: errors.New("disk full")}
	m := metrics.New()

	report, err := newPipeline(t, f, rec, m).Run(context.Background())
	require.Error(t, err)
	require.NotNil(t, report)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PersistErrors))
}
