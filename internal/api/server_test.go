package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EmaSentinel/internal/metrics"
	"EmaSentinel/internal/model"
)

type staticSource struct{ report *model.Report }

func (s staticSource) Latest() (*model.Report, bool) { return s.report, s.report != nil }

func d(s string) time.Time {
	t, _ := time.Parse(model.DateLayout, s)
	return t
}

func sampleReport() *model.Report {
	return &model.Report{
		RunID:       "01HZXRUN",
		Symbol:      "BTC-USD",
		GeneratedAt: time.Date(2024, 6, 1, 0, 30, 0, 0, time.UTC),
		Status:      model.StatusOK,
		Indicators:  []model.IndicatorRow{{Date: d("2024-06-01"), Close: 67432.1, EMAFast: 66000, EMAMid: 65000, EMASlow: 60000}},
		Crossovers: []model.CrossoverEvent{
			{Date: d("2024-06-01"), Category: model.CategoryGolden, Price: 67432.1},
			{Date: d("2024-05-01"), Category: model.CategoryBullish, Price: 60000},
			{Date: d("2024-01-01"), Category: model.CategoryBullish, Price: 42000},
		},
		Intervals: []model.IntervalRecord{
			{Category: model.CategoryBullish, PreviousDate: d("2024-01-01"), CurrentDate: d("2024-05-01"), DaysBetween: 121},
		},
		Summary: []model.IntervalSummary{
			{Category: model.CategoryBullish, Mean: 121, Median: 121, Min: 121, Max: 121, Count: 1},
		},
		Distribution: model.DistributionTable{
			Columns: []string{"BULLISH_CROSS_20_50", "BEARISH_CROSS_20_50", "GOLDEN_CROSS_50_200", "DEATH_CROSS_50_200"},
			Rows: []model.DistributionRow{
				{Range: "0-99", Counts: []int{0, 0, 0, 0}},
				{Range: "100+", Counts: []int{1, 0, 0, 0}},
			},
		},
	}
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestUnavailableBeforeFirstRun(t *testing.T) {
	h := NewServer(":0", staticSource{}, nil).Router()

	for _, path := range []string{"/api/v1/report", "/api/v1/crossovers", "/api/v1/intervals", "/api/v1/summary", "/api/v1/distribution"} {
		assert.Equal(t, http.StatusServiceUnavailable, get(t, h, path).Code, path)
	}

	rec := get(t, h, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	var health map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, false, health["ready"])
}

func TestReport(t *testing.T) {
	h := NewServer(":0", staticSource{sampleReport()}, nil).Router()

	rec := get(t, h, "/api/v1/report")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got reportDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "01HZXRUN", got.RunID)
	assert.Equal(t, "ok", got.Status)
	assert.Equal(t, 1, got.Bars)
	require.NotNil(t, got.LastBar)
	assert.Equal(t, "2024-06-01", got.LastBar.Date)
	assert.Len(t, got.Crossovers, 3)
	assert.Equal(t, 1, got.Distribution.Rows[1].Counts["BULLISH_CROSS_20_50"])
}

func TestCrossoversLimitAndCategory(t *testing.T) {
	h := NewServer(":0", staticSource{sampleReport()}, nil).Router()

	var got []crossoverDTO
	rec := get(t, h, "/api/v1/crossovers?limit=2")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "2024-06-01", got[0].Date)
	assert.Equal(t, "GOLDEN CROSS (50/200)", got[0].Category)
	assert.Equal(t, 3, got[0].CategoryNum)

	rec = get(t, h, "/api/v1/crossovers?category=1")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 2)

	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/v1/crossovers?limit=-1").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/v1/crossovers?limit=abc").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/v1/crossovers?category=9").Code)
}

func TestSummaryNullStdDev(t *testing.T) {
	h := NewServer(":0", staticSource{sampleReport()}, nil).Router()

	rec := get(t, h, "/api/v1/summary")
	require.Equal(t, http.StatusOK, rec.Code)
	var got []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	v, present := got[0]["std_dev_days"]
	assert.True(t, present)
	assert.Nil(t, v)
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.New()
	m.ObserveRun(sampleReport(), 10, time.Second)
	h := NewServer(":0", staticSource{sampleReport()}, m).Router()

	rec := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `emasentinel_runs_total{status="ok"} 1`)
}

func TestMethodNotAllowed(t *testing.T) {
	h := NewServer(":0", staticSource{sampleReport()}, nil).Router()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/report", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
