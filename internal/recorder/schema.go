package recorder

import (
	"fmt"
	"strings"
	"time"

	"EmaSentinel/internal/model"
)

// Output table names.
const (
	TableIndicators   = "raw_ohlcv_emas"
	TableCrossovers   = "crossover_summary"
	TableIntervals    = "crossover_intervals"
	TableSummary      = "crossover_interval_summary"
	TableDistribution = "crossover_interval_distribution"
	TableRuns         = "analysis_runs"
)

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

type column struct {
	name     string
	sqlite   string
	postgres string
}

type tableSchema struct {
	name    string
	columns []column
}

func quote(ident string) string { return `"` + ident + `"` }

func (s tableSchema) columnNames() []string {
	names := make([]string, len(s.columns))
	for i, c := range s.columns {
		names[i] = c.name
	}
	return names
}

func (s tableSchema) createSQL(d dialect) string {
	defs := make([]string, len(s.columns))
	for i, c := range s.columns {
		typ := c.sqlite
		if d == dialectPostgres {
			typ = c.postgres
		}
		defs[i] = fmt.Sprintf("%s %s", quote(c.name), typ)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", s.name, strings.Join(defs, ",\n\t"))
}

// insertSQL uses ? placeholders; postgres callers rebind.
func (s tableSchema) insertSQL() string {
	cols := make([]string, len(s.columns))
	marks := make([]string, len(s.columns))
	for i, c := range s.columns {
		cols[i] = quote(c.name)
		marks[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", s.name, strings.Join(cols, ", "), strings.Join(marks, ", "))
}

var (
	colDate  = func(name string) column { return column{name, "TEXT", "DATE"} }
	colReal  = func(name string) column { return column{name, "REAL", "DOUBLE PRECISION"} }
	colInt   = func(name string) column { return column{name, "INTEGER", "INTEGER"} }
	colText  = func(name string) column { return column{name, "TEXT", "TEXT"} }
	colStamp = func(name string) column { return column{name, "TEXT", "TIMESTAMPTZ"} }
)

var indicatorSchema = tableSchema{TableIndicators, []column{
	colDate("date"), colReal("open"), colReal("high"), colReal("low"), colReal("close"), colReal("volume"),
	colReal("ema_fast"), colReal("ema_mid"), colReal("ema_slow"),
}}

var crossoverSchema = tableSchema{TableCrossovers, []column{
	colDate("date"), colText("category"), colInt("category_num"), colReal("price"),
}}

var intervalSchema = tableSchema{TableIntervals, []column{
	colText("category"), colInt("category_num"), colDate("previous_date"), colDate("current_date"), colInt("days_between"),
}}

var summarySchema = tableSchema{TableSummary, []column{
	colText("category"), colReal("avg_days_between"), colReal("median_days_between"),
	colInt("min_days_between"), colInt("max_days_between"), colReal("std_dev_days"), colInt("interval_count"),
}}

var runSchema = tableSchema{TableRuns, []column{
	colText("run_id"), colText("symbol"), colText("status"), colInt("bars"), colInt("events"),
	colInt("intervals"), colStamp("generated_at"),
}}

// distributionSchema has one count column per category.
func distributionSchema() tableSchema {
	cols := []column{colInt("bucket_order"), colText("days_between_range")}
	for _, c := range model.Categories {
		cols = append(cols, colInt(c.Column()))
	}
	return tableSchema{TableDistribution, cols}
}

// outputSchemas lists the tables replaced on every run, in write order.
func outputSchemas() []tableSchema {
	return []tableSchema{indicatorSchema, crossoverSchema, intervalSchema, summarySchema, distributionSchema()}
}

// tableData is one output table flattened into driver values.
type tableData struct {
	schema tableSchema
	rows   [][]any
}

func formatDate(t time.Time) string { return t.Format(model.DateLayout) }

// flatten converts a report into rows for each output table.
func flatten(r *model.Report) []tableData {
	ind := make([][]any, len(r.Indicators))
	for i, row := range r.Indicators {
		ind[i] = []any{formatDate(row.Date), row.Open, row.High, row.Low, row.Close, row.Volume, row.EMAFast, row.EMAMid, row.EMASlow}
	}

	cross := make([][]any, len(r.Crossovers))
	for i, e := range r.Crossovers {
		cross[i] = []any{formatDate(e.Date), e.Category.Label(), e.Category.Num(), e.Price}
	}

	intervals := make([][]any, len(r.Intervals))
	for i, rec := range r.Intervals {
		intervals[i] = []any{rec.Category.Label(), rec.Category.Num(), formatDate(rec.PreviousDate), formatDate(rec.CurrentDate), rec.DaysBetween}
	}

	summary := make([][]any, len(r.Summary))
	for i, s := range r.Summary {
		var sd any
		if s.StdDev != nil {
			sd = *s.StdDev
		}
		summary[i] = []any{s.Category.Label(), s.Mean, s.Median, s.Min, s.Max, sd, s.Count}
	}

	dist := make([][]any, len(r.Distribution.Rows))
	for i, row := range r.Distribution.Rows {
		values := []any{i, row.Range}
		for _, n := range row.Counts {
			values = append(values, n)
		}
		dist[i] = values
	}

	schemas := outputSchemas()
	return []tableData{
		{schemas[0], ind},
		{schemas[1], cross},
		{schemas[2], intervals},
		{schemas[3], summary},
		{schemas[4], dist},
	}
}

// runRow is the analysis_runs row of a report.
func runRow(r *model.Report) []any {
	return []any{r.RunID, r.Symbol, string(r.Status), len(r.Indicators), len(r.Crossovers), len(r.Intervals), r.GeneratedAt.UTC()}
}
