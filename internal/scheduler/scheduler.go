package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"EmaSentinel/internal/metrics"
	"EmaSentinel/internal/model"
	"EmaSentinel/internal/notifier"
	"EmaSentinel/internal/state"

	"github.com/robfig/cron/v3"
)

// ErrRunInProgress is returned by RunNow while another run is executing.
var ErrRunInProgress = errors.New("analysis run already in progress")

// Runner executes one analysis cycle.
type Runner interface {
	Run(ctx context.Context) (*model.Report, error)
}

// Scheduler runs the analysis on a cron schedule, keeps the latest report and
// announces fresh crossovers.
type Scheduler struct {
	Cron        *cron.Cron
	Runner      Runner
	Tracker     *state.Tracker
	Notifier    notifier.Notifier
	Metrics     *metrics.Metrics
	RecentLimit int
	Ctx         context.Context

	running sync.Mutex
	mu      sync.RWMutex
	latest  *model.Report
}

// NewScheduler creates a new Scheduler. tracker and tn may be nil to disable notifications.
func NewScheduler(ctx context.Context, runner Runner, tracker *state.Tracker, tn notifier.Notifier, m *metrics.Metrics, recentLimit int) *Scheduler {
	if recentLimit <= 0 {
		recentLimit = 10
	}
	return &Scheduler{
		Cron:        cron.New(cron.WithSeconds()),
		Runner:      runner,
		Tracker:     tracker,
		Notifier:    tn,
		Metrics:     m,
		RecentLimit: recentLimit,
		Ctx:         ctx,
	}
}

// Register adds the analysis job.
func (s *Scheduler) Register(analysisCron string) error {
	if _, err := s.Cron.AddFunc(analysisCron, s.analysisTask); err != nil {
		return fmt.Errorf("register analysis task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running job.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// Latest returns the report of the last completed run.
func (s *Scheduler) Latest() (*model.Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.latest != nil
}

// RunNow executes the analysis immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow(ctx context.Context) (*model.Report, error) {
	if !s.running.TryLock() {
		return nil, ErrRunInProgress
	}
	defer s.running.Unlock()

	report, err := s.Runner.Run(ctx)
	if report != nil {
		s.mu.Lock()
		s.latest = report
		s.mu.Unlock()
		s.announce(ctx, report)
	}
	return report, err
}

func (s *Scheduler) analysisTask() {
	log.Println("[INFO] running analysis task")
	if _, err := s.RunNow(s.Ctx); err != nil {
		if errors.Is(err, ErrRunInProgress) {
			log.Println("[WARN] analysis task skipped: previous run still in progress")
			return
		}
		log.Printf("[ERROR] analysis task: %v", err)
		s.trySend(s.Ctx, fmt.Sprintf("❌ EMA analysis run failed: %v", err))
	}
}

// announce sends crossovers newer than the watermark, then advances it. A failed
// delivery keeps the watermark so the events are retried on the next run.
func (s *Scheduler) announce(ctx context.Context, r *model.Report) {
	if s.Tracker == nil {
		return
	}
	fresh := s.Tracker.Fresh(r)
	if len(fresh) > 0 {
		log.Printf("[INFO] %d new crossovers for %s", len(fresh), r.Symbol)
		if !s.trySend(ctx, notifier.FormatNewSignals(r.Symbol, fresh)) {
			return
		}
	}
	if err := s.Tracker.Advance(r); err != nil {
		log.Printf("[ERROR] advance notify watermark: %v", err)
	}
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	cmd, arg, _ := strings.Cut(command, " ")
	switch cmd {
	case "/latest":
		r, ok := s.Latest()
		if !ok {
			return "No analysis has completed yet. Send /run to start one."
		}
		limit := s.RecentLimit
		if n, err := strconv.Atoi(strings.TrimSpace(arg)); err == nil && n > 0 {
			limit = n
		}
		return notifier.FormatReport(r, limit)
	case "/summary":
		r, ok := s.Latest()
		if !ok {
			return "No analysis has completed yet. Send /run to start one."
		}
		return fmt.Sprintf("📈 <b>%s crossover intervals</b>\n\n%s", r.Symbol, notifier.FormatSummary(r.Summary))
	case "/run":
		r, err := s.RunNow(ctx)
		if errors.Is(err, ErrRunInProgress) {
			return "An analysis run is already in progress."
		}
		if err != nil && r == nil {
			return fmt.Sprintf("❌ Run failed: %v", err)
		}
		reply := notifier.FormatReport(r, s.RecentLimit)
		if err != nil {
			reply += fmt.Sprintf("\n\n⚠️ %v", err)
		}
		return reply
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) trySend(ctx context.Context, text string) bool {
	if s.Notifier == nil {
		return true
	}
	if err := s.Notifier.SendWithRetry(ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
		s.Metrics.NotifyFailed()
		return false
	}
	return true
}
