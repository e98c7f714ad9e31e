package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"EmaSentinel/internal/model"
)

// Metrics holds the Prometheus collectors for analysis runs. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	RunsTotal     *prometheus.CounterVec // labels: status
	RunDuration   prometheus.Histogram
	EventsTotal   *prometheus.GaugeVec // labels: category
	BarsFetched   prometheus.Gauge
	FetchErrors   prometheus.Counter
	PersistErrors prometheus.Counter
	NotifyErrors  prometheus.Counter
	LastRunTime   prometheus.Gauge
}

// New creates the collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "emasentinel_runs_total",
			Help: "Analysis runs by terminal status",
		}, []string{"status"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "emasentinel_run_duration_seconds",
			Help:    "Wall time of one fetch-analyze-persist run",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		EventsTotal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "emasentinel_crossover_events",
			Help: "Crossover events found by the latest run",
		}, []string{"category"}),
		BarsFetched: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "emasentinel_bars_fetched",
			Help: "Daily bars returned by the data source in the latest run",
		}),
		FetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "emasentinel_fetch_errors_total",
			Help: "Data source failures",
		}),
		PersistErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "emasentinel_persist_errors_total",
			Help: "Output sink failures",
		}),
		NotifyErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "emasentinel_notify_errors_total",
			Help: "Telegram delivery failures",
		}),
		LastRunTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "emasentinel_last_run_timestamp_seconds",
			Help: "Unix time of the last completed run",
		}),
	}

	m.Registry.MustRegister(
		m.RunsTotal,
		m.RunDuration,
		m.EventsTotal,
		m.BarsFetched,
		m.FetchErrors,
		m.PersistErrors,
		m.NotifyErrors,
		m.LastRunTime,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRun records a finished run.
func (m *Metrics) ObserveRun(r *model.Report, bars int, took time.Duration) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(string(r.Status)).Inc()
	m.RunDuration.Observe(took.Seconds())
	m.BarsFetched.Set(float64(bars))
	for cat, n := range r.CountByCategory() {
		m.EventsTotal.WithLabelValues(cat.String()).Set(float64(n))
	}
	m.LastRunTime.Set(float64(r.GeneratedAt.Unix()))
}

// ObserveFailure records a run that aborted before producing a report.
func (m *Metrics) ObserveFailure(stage string) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues("error").Inc()
	switch stage {
	case StageFetch:
		m.FetchErrors.Inc()
	case StagePersist:
		m.PersistErrors.Inc()
	}
}

// NotifyFailed counts an undelivered notification.
func (m *Metrics) NotifyFailed() {
	if m == nil {
		return
	}
	m.NotifyErrors.Inc()
}

// Run stages reported to ObserveFailure.
const (
	StageFetch   = "fetch"
	StageAnalyze = "analyze"
	StagePersist = "persist"
)

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
