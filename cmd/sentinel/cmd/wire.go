package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/go-redis/redis/v8"

	"EmaSentinel/internal/calculator"
	"EmaSentinel/internal/collector"
	"EmaSentinel/internal/config"
	"EmaSentinel/internal/engine"
	"EmaSentinel/internal/metrics"
	"EmaSentinel/internal/pipeline"
	"EmaSentinel/internal/recorder"
)

// app holds the components shared by run and serve.
type app struct {
	cfg      *config.Config
	pipeline *pipeline.Pipeline
	recorder recorder.Recorder
	metrics  *metrics.Metrics
	redis    *redis.Client
}

func (a *app) Close() {
	if err := a.recorder.Close(); err != nil {
		log.Printf("[WARN] close recorder: %v", err)
	}
	if a.redis != nil {
		a.redis.Close()
	}
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg, metrics: metrics.New()}

	var fetcher collector.Fetcher
	switch cfg.DataSource.Provider {
	case config.ProviderBinance:
		fetcher = collector.NewBinanceFetcher(cfg.DataSource.BaseURL, cfg.Proxy)
	case config.ProviderREST:
		fetcher = collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	default:
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	log.Printf("[INFO] data source: %s", fetcher.Name())

	if cfg.Redis.Addr != "" {
		rc, err := collector.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Printf("[WARN] redis unavailable, fetching without cache: %v", err)
		} else {
			a.redis = rc
			fetcher = collector.NewCachedFetcher(fetcher, rc, cfg.Redis.TTL)
			log.Printf("[INFO] bar cache: redis %s (ttl %s)", cfg.Redis.Addr, cfg.Redis.TTL)
		}
	}

	eng, err := engine.New(engine.Options{
		Windows: calculator.Windows{
			Fast: cfg.Analysis.FastWindow,
			Mid:  cfg.Analysis.MidWindow,
			Slow: cfg.Analysis.SlowWindow,
		},
		Boundaries: cfg.Analysis.BucketBoundaries,
		Smoothing:  calculator.SmoothingForm(cfg.Analysis.SmoothingForm),
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init engine: %w", err)
	}

	a.recorder = newRecorder(ctx, cfg)
	col := collector.NewCollector(fetcher, cfg.DataSource.Symbol, cfg.DataSource.HistoryDays)
	a.pipeline = pipeline.New(col, eng, a.recorder, a.metrics)
	return a, nil
}

// newRecorder opens every configured sink. A sink that fails to open is skipped.
func newRecorder(ctx context.Context, cfg *config.Config) recorder.Recorder {
	var sinks recorder.Multi

	if cfg.Database.SQLitePath != "" {
		if dir := filepath.Dir(cfg.Database.SQLitePath); dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, skipping: %v", err)
		} else {
			sinks = append(sinks, sr)
		}
	}
	if cfg.Database.PostgresDSN != "" {
		pr, err := recorder.NewPostgresRecorder(ctx, cfg.Database.PostgresDSN)
		if err != nil {
			log.Printf("[WARN] init postgres recorder failed, skipping: %v", err)
		} else {
			sinks = append(sinks, pr)
		}
	}
	if cfg.Database.CSVDir != "" {
		cr, err := recorder.NewCSVRecorder(cfg.Database.CSVDir)
		if err != nil {
			log.Printf("[WARN] init csv recorder failed, skipping: %v", err)
		} else {
			sinks = append(sinks, cr)
		}
	}

	if len(sinks) == 0 {
		log.Println("[WARN] no output sink configured, results are not persisted")
		return recorder.NewNoopRecorder()
	}
	return sinks
}
