package cmd

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"EmaSentinel/internal/config"
	"EmaSentinel/internal/model"
	"EmaSentinel/internal/notifier"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one analysis and print the results",
	Long: `Fetch the history, detect crossovers, compute interval statistics, write every
table to the configured sinks and print the crossovers and the summary.

Example:
  sentinel run --symbol ETH-USD --limit 20`,
	RunE: runOnce,
}

var (
	runSymbol   string
	runProvider string
	runLimit    int
)

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runSymbol, "symbol", "s", "", "override data_source.symbol")
	runCmd.Flags().StringVarP(&runProvider, "provider", "p", "", "override data_source.provider (yahoo, binance, rest)")
	runCmd.Flags().IntVarP(&runLimit, "limit", "n", 0, "print at most n crossovers (0 = all)")
}

func applyOverrides(cfg *config.Config) error {
	if runSymbol != "" {
		cfg.DataSource.Symbol = runSymbol
	}
	if runProvider != "" {
		cfg.DataSource.Provider = runProvider
	}
	return cfg.Validate()
}

func runOnce(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyOverrides(cfg); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	report, runErr := a.pipeline.Run(ctx)
	if report != nil {
		printReport(cmd.OutOrStdout(), report, runLimit)
	}
	return runErr
}

func printReport(w io.Writer, r *model.Report, limit int) {
	fmt.Fprintf(w, "%s | run %s | status %s | %d bars after warm-up\n", r.Symbol, r.RunID, r.Status, len(r.Indicators))

	if r.Status == model.StatusInsufficientHistory {
		fmt.Fprintln(w, "Not enough history to compute the slow EMA.")
		return
	}

	fmt.Fprintln(w, "\n--- All Recent Crossovers (Most Recent First) ---")
	events := r.Crossovers
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	if len(events) == 0 {
		fmt.Fprintln(w, "No crossovers found in the historical data.")
	}
	for _, e := range events {
		fmt.Fprintln(w, notifier.FormatCrossoverLine(e))
	}

	if len(r.Summary) == 0 {
		return
	}
	fmt.Fprintln(w, "\n--- Time Between Consecutive Crossovers ---")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Category\tAvg\tMedian\tMin\tMax\tStd Dev\tIntervals")
	for _, s := range r.Summary {
		sd := "undefined"
		if s.StdDev != nil {
			sd = fmt.Sprintf("%.1f", *s.StdDev)
		}
		fmt.Fprintf(tw, "%s\t%.1f\t%.1f\t%d\t%d\t%s\t%d\n", s.Category.Label(), s.Mean, s.Median, s.Min, s.Max, sd, s.Count)
	}
	tw.Flush()

	if r.Distribution.Empty() {
		return
	}
	fmt.Fprintln(w, "\n--- Interval Distribution (days) ---")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprint(tw, "Range")
	for _, c := range r.Distribution.Columns {
		fmt.Fprintf(tw, "\t%s", c)
	}
	fmt.Fprintln(tw)
	for _, row := range r.Distribution.Rows {
		fmt.Fprint(tw, row.Range)
		for _, n := range row.Counts {
			fmt.Fprintf(tw, "\t%d", n)
		}
		fmt.Fprintln(tw)
	}
	tw.Flush()
}
