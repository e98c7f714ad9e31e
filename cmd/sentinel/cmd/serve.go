package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"EmaSentinel/internal/api"
	"EmaSentinel/internal/notifier"
	"EmaSentinel/internal/scheduler"
	"EmaSentinel/internal/state"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the daily analysis job, Telegram alerts and the HTTP API",
	Long: `Serve runs the analysis on schedule.analysis_cron, announces crossovers newer
than the stored watermark to Telegram, answers /latest, /summary and /run, and
exposes the latest report on http.addr.

Example:
  sentinel serve --run-now`,
	RunE: serve,
}

var serveRunNow bool

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&serveRunNow, "run-now", false, "run the analysis immediately (also RUN_ON_START=true)")
}

func serve(_ *cobra.Command, _ []string) error {
	log.Println("[INFO] EmaSentinel starting...")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	tracker, err := state.NewTracker(cfg.StateFile)
	if err != nil {
		return fmt.Errorf("init notify state: %w", err)
	}

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	sched := scheduler.NewScheduler(ctx, a.pipeline, tracker, tn, a.metrics, cfg.Telegram.RecentLimit)
	if err := sched.Register(cfg.Schedule.AnalysisCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	srv := api.NewServer(cfg.HTTP.Addr, sched, a.metrics)
	srv.Start()
	defer func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := srv.Stop(shutdownCtx); err != nil {
			log.Printf("[WARN] http shutdown: %v", err)
		}
	}()

	if tn.Enabled() {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	} else {
		log.Println("[WARN] telegram not configured, alerts and commands disabled")
	}

	if serveRunNow || cfg.Schedule.RunOnStart {
		log.Println("[INFO] run-now enabled, executing analysis now")
		go func() {
			if _, err := sched.RunNow(ctx); err != nil {
				log.Printf("[ERROR] initial run: %v", err)
			}
		}()
	}

	log.Printf("[INFO] EmaSentinel is running (%s, cron %q). Press Ctrl+C to stop.", cfg.DataSource.Symbol, cfg.Schedule.AnalysisCron)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	return nil
}
