package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"EmaSentinel/internal/metrics"
	"EmaSentinel/internal/model"
)

// ReportSource supplies the report of the last completed run.
type ReportSource interface {
	Latest() (*model.Report, bool)
}

// Server exposes the latest report as read-only JSON plus /metrics and /healthz.
type Server struct {
	source  ReportSource
	metrics *metrics.Metrics
	addr    string
	started time.Time
	srv     *http.Server
}

// NewServer creates the HTTP server. m may be nil.
func NewServer(addr string, source ReportSource, m *metrics.Metrics) *Server {
	s := &Server{source: source, metrics: m, addr: addr, started: time.Now()}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	r.Handle("/metrics", s.metrics.Handler()).Methods("GET")

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/report", s.withReport(s.handleReport)).Methods("GET")
	v1.HandleFunc("/crossovers", s.withReport(s.handleCrossovers)).Methods("GET")
	v1.HandleFunc("/intervals", s.withReport(s.handleIntervals)).Methods("GET")
	v1.HandleFunc("/summary", s.withReport(s.handleSummary)).Methods("GET")
	v1.HandleFunc("/distribution", s.withReport(s.handleDistribution)).Methods("GET")
	return r
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("[INFO] http server listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("[ERROR] http server: %v", err)
		}
	}()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

type reportHandler func(w http.ResponseWriter, r *http.Request, rep *model.Report)

// withReport answers 503 until the first run has completed.
func (s *Server) withReport(h reportHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, ok := s.source.Latest()
		if !ok {
			writeError(w, http.StatusServiceUnavailable, "no analysis run has completed yet")
			return
		}
		h(w, r, rep)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := struct {
		Status     string     `json:"status"`
		Uptime     string     `json:"uptime"`
		Ready      bool       `json:"ready"`
		LastRunID  string     `json:"last_run_id,omitempty"`
		LastRunAt  *time.Time `json:"last_run_at,omitempty"`
		LastStatus string     `json:"last_status,omitempty"`
	}{
		Status: "ok",
		Uptime: time.Since(s.started).Round(time.Second).String(),
	}
	if rep, ok := s.source.Latest(); ok {
		status.Ready = true
		status.LastRunID = rep.RunID
		at := rep.GeneratedAt
		status.LastRunAt = &at
		status.LastStatus = string(rep.Status)
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleReport(w http.ResponseWriter, _ *http.Request, rep *model.Report) {
	writeJSON(w, http.StatusOK, toReport(rep))
}

func (s *Server) handleCrossovers(w http.ResponseWriter, r *http.Request, rep *model.Report) {
	events := rep.Crossovers

	if v := r.URL.Query().Get("category"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || !model.Category(n).Valid() {
			writeError(w, http.StatusBadRequest, "category must be a code between 1 and 4")
			return
		}
		filtered := make([]model.CrossoverEvent, 0, len(events))
		for _, e := range events {
			if e.Category == model.Category(n) {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}

	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if n < len(events) {
			events = events[:n]
		}
	}
	writeJSON(w, http.StatusOK, toCrossovers(events))
}

func (s *Server) handleIntervals(w http.ResponseWriter, _ *http.Request, rep *model.Report) {
	writeJSON(w, http.StatusOK, toIntervals(rep.Intervals))
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request, rep *model.Report) {
	writeJSON(w, http.StatusOK, toSummary(rep.Summary))
}

func (s *Server) handleDistribution(w http.ResponseWriter, _ *http.Request, rep *model.Report) {
	writeJSON(w, http.StatusOK, toDistribution(rep.Distribution))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[WARN] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
