package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"EmaSentinel/internal/config"
)

var (
	cfgPath string
	envFile string
)

var rootCmd = &cobra.Command{
	Use:   "sentinel",
	Short: "EMA crossover detection and interval statistics",
	Long: `Sentinel fetches the daily price history of one symbol, computes the 20/50/200
EMAs, detects bullish, bearish, golden and death crosses and reports how many days
elapse between consecutive crosses of each kind.

Commands:
  run      - one analysis, printed and written to the configured sinks
  serve    - daily cron job with Telegram alerts and a read-only HTTP API
  config   - check a configuration file`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	defaultCfg := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultCfg = v
	}
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", defaultCfg, "path to YAML config (env CONFIG_PATH)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config")
}

// loadConfig reads .env, the YAML file and env overrides, then validates.
func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}
