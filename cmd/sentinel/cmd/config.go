package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration and print the effective values",
	Long: `Load .env, the YAML file and environment overrides, apply defaults and check
the result.

Example:
  sentinel config validate -c configs/config.yaml`,
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configValidateCmd)
}

func runConfigValidate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Configuration valid: %s\n", cfgPath)
	fmt.Fprintf(out, "  Source: %s %s (%d days)\n", cfg.DataSource.Provider, cfg.DataSource.Symbol, cfg.DataSource.HistoryDays)
	fmt.Fprintf(out, "  EMAs: %d/%d/%d (%s)\n", cfg.Analysis.FastWindow, cfg.Analysis.MidWindow, cfg.Analysis.SlowWindow, cfg.Analysis.SmoothingForm)
	fmt.Fprintf(out, "  Buckets: %v\n", cfg.Analysis.BucketBoundaries)
	fmt.Fprintf(out, "  Cron: %s\n", cfg.Schedule.AnalysisCron)
	fmt.Fprintf(out, "  Sinks: sqlite=%q postgres=%t csv=%q\n", cfg.Database.SQLitePath, cfg.Database.PostgresDSN != "", cfg.Database.CSVDir)
	fmt.Fprintf(out, "  Telegram: %t  HTTP: %s\n", cfg.Telegram.BotToken != "", cfg.HTTP.Addr)
	return nil
}
