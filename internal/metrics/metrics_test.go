package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EmaSentinel/internal/model"
)

func TestObserveRun(t *testing.T) {
	m := New()
	r := &model.Report{
		Status:      model.StatusOK,
		GeneratedAt: time.Unix(1717201800, 0),
		Crossovers: []model.CrossoverEvent{
			{Category: model.CategoryBullish},
			{Category: model.CategoryBullish},
			{Category: model.CategoryDeath},
		},
	}

	m.ObserveRun(r, 3650, 2*time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.EventsTotal.WithLabelValues("BULLISH_20_50")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.EventsTotal.WithLabelValues("GOLDEN_50_200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsTotal.WithLabelValues("DEATH_50_200")))
	assert.Equal(t, 3650.0, testutil.ToFloat64(m.BarsFetched))
	assert.Equal(t, 1717201800.0, testutil.ToFloat64(m.LastRunTime))
}

func TestObserveFailure(t *testing.T) {
	m := New()
	m.ObserveFailure(StageFetch)
	m.ObserveFailure(StagePersist)
	m.ObserveFailure(StageAnalyze)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchErrors))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PersistErrors))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveRun(&model.Report{}, 0, 0)
	m.ObserveFailure(StageFetch)
	m.NotifyFailed()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 404, rec.Code)
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.NotifyFailed()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "emasentinel_notify_errors_total 1"))
}
