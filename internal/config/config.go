package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"EmaSentinel/internal/analysis"
	"EmaSentinel/internal/calculator"
)

// Data providers.
const (
	ProviderYahoo   = "yahoo"
	ProviderBinance = "binance"
	ProviderREST    = "rest"
)

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Provider    string `yaml:"provider"`
		BaseURL     string `yaml:"base_url"`
		APIKey      string `yaml:"api_key"`
		Symbol      string `yaml:"symbol"`
		HistoryDays int    `yaml:"history_days"`
	} `yaml:"data_source"`
	Analysis struct {
		FastWindow       int    `yaml:"fast_window"`
		MidWindow        int    `yaml:"mid_window"`
		SlowWindow       int    `yaml:"slow_window"`
		BucketBoundaries []int  `yaml:"histogram_bucket_boundaries"`
		SmoothingForm    string `yaml:"smoothing_form"`
	} `yaml:"analysis"`
	Schedule struct {
		AnalysisCron string `yaml:"analysis_cron"`
		RunOnStart   bool   `yaml:"run_on_start"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken    string `yaml:"bot_token"`
		ChatID      string `yaml:"chat_id"`
		RecentLimit int    `yaml:"recent_limit"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath  string `yaml:"sqlite_path"`
		PostgresDSN string `yaml:"postgres_dsn"`
		CSVDir      string `yaml:"csv_dir"`
	} `yaml:"database"`
	Redis struct {
		Addr     string        `yaml:"addr"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		TTL      time.Duration `yaml:"ttl"`
	} `yaml:"redis"`
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	StateFile string `yaml:"state_file"`
	Proxy     string `yaml:"proxy"`
}

// LoadDotEnv loads KEY=VALUE pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads config from a YAML file, then applies environment variable overrides
// and defaults. A missing file yields a config built from env and defaults only.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	str := map[string]*string{
		"SYMBOL":             &c.DataSource.Symbol,
		"DATA_PROVIDER":      &c.DataSource.Provider,
		"DATA_BASE_URL":      &c.DataSource.BaseURL,
		"DATA_API_KEY":       &c.DataSource.APIKey,
		"TELEGRAM_BOT_TOKEN": &c.Telegram.BotToken,
		"TELEGRAM_CHAT_ID":   &c.Telegram.ChatID,
		"SQLITE_PATH":        &c.Database.SQLitePath,
		"POSTGRES_DSN":       &c.Database.PostgresDSN,
		"CSV_DIR":            &c.Database.CSVDir,
		"REDIS_ADDR":         &c.Redis.Addr,
		"REDIS_PASSWORD":     &c.Redis.Password,
		"HTTP_ADDR":          &c.HTTP.Addr,
		"HTTPS_PROXY":        &c.Proxy,
		"CRON_ANALYSIS":      &c.Schedule.AnalysisCron,
		"STATE_FILE":         &c.StateFile,
	}
	for key, dst := range str {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("HISTORY_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HISTORY_DAYS: %w", err)
		}
		c.DataSource.HistoryDays = n
	}
	if v := os.Getenv("RUN_ON_START"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("RUN_ON_START: %w", err)
		}
		c.Schedule.RunOnStart = b
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = ProviderYahoo
	}
	if c.DataSource.Symbol == "" {
		c.DataSource.Symbol = "BTC-USD"
	}
	if c.DataSource.HistoryDays == 0 {
		c.DataSource.HistoryDays = 3650
	}
	if c.Analysis.FastWindow == 0 {
		c.Analysis.FastWindow = 20
	}
	if c.Analysis.MidWindow == 0 {
		c.Analysis.MidWindow = 50
	}
	if c.Analysis.SlowWindow == 0 {
		c.Analysis.SlowWindow = 200
	}
	if len(c.Analysis.BucketBoundaries) == 0 {
		c.Analysis.BucketBoundaries = analysis.DefaultBoundaries()
	}
	if c.Analysis.SmoothingForm == "" {
		c.Analysis.SmoothingForm = string(calculator.SmoothingRecursive)
	}
	if c.Schedule.AnalysisCron == "" {
		c.Schedule.AnalysisCron = "0 30 0 * * *"
	}
	if c.Telegram.RecentLimit == 0 {
		c.Telegram.RecentLimit = 10
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/ema_sentinel.db"
	}
	if c.Redis.TTL == 0 {
		c.Redis.TTL = 6 * time.Hour
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.StateFile == "" {
		c.StateFile = "data/notify_state.json"
	}
}

// Validate checks the values that cannot be defaulted. Errors name the YAML key.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case ProviderYahoo, ProviderBinance:
	case ProviderREST:
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for provider %q", ProviderREST)
		}
	default:
		return fmt.Errorf("data_source.provider: unknown provider %q", c.DataSource.Provider)
	}
	if c.DataSource.HistoryDays <= 0 {
		return fmt.Errorf("data_source.history_days must be positive")
	}

	a := c.Analysis
	if a.FastWindow <= 0 || a.MidWindow <= 0 || a.SlowWindow <= 0 {
		return fmt.Errorf("analysis: windows must be positive")
	}
	if !(a.FastWindow < a.MidWindow && a.MidWindow < a.SlowWindow) {
		return fmt.Errorf("analysis: fast_window < mid_window < slow_window required, got %d/%d/%d", a.FastWindow, a.MidWindow, a.SlowWindow)
	}
	if a.BucketBoundaries[0] != 0 {
		return fmt.Errorf("analysis.histogram_bucket_boundaries must start at 0")
	}
	for i := 1; i < len(a.BucketBoundaries); i++ {
		if a.BucketBoundaries[i] <= a.BucketBoundaries[i-1] {
			return fmt.Errorf("analysis.histogram_bucket_boundaries must be strictly ascending")
		}
	}
	if !calculator.SmoothingForm(a.SmoothingForm).Valid() {
		return fmt.Errorf("analysis.smoothing_form: unknown form %q", a.SmoothingForm)
	}

	if c.Schedule.AnalysisCron == "" {
		return fmt.Errorf("schedule.analysis_cron is required")
	}
	if c.Telegram.RecentLimit < 0 {
		return fmt.Errorf("telegram.recent_limit must not be negative")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}
