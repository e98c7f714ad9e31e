package recorder

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EmaSentinel/internal/model"
)

func openSQLite(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func count(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestSQLiteRecordReport(t *testing.T) {
	r := openSQLite(t)
	ctx := context.Background()
	rep := sampleReport()

	require.NoError(t, r.RecordReport(ctx, rep))

	db := r.DB()
	assert.Equal(t, 2, count(t, db, TableIndicators))
	assert.Equal(t, 3, count(t, db, TableCrossovers))
	assert.Equal(t, 2, count(t, db, TableIntervals))
	assert.Equal(t, 1, count(t, db, TableSummary))
	assert.Equal(t, 3, count(t, db, TableDistribution))
	assert.Equal(t, 1, count(t, db, TableRuns))

	var (
		date  string
		label string
		num   int
		price float64
	)
	require.NoError(t, db.QueryRow(
		`SELECT date, category, category_num, price FROM crossover_summary ORDER BY date DESC LIMIT 1`,
	).Scan(&date, &label, &num, &price))
	assert.Equal(t, "2024-05-31", date)
	assert.Equal(t, "BULLISH CROSS (20/50)", label)
	assert.Equal(t, 1, num)
	assert.InDelta(t, 67432.1, price, 1e-9)

	var bullish int
	require.NoError(t, db.QueryRow(
		`SELECT BULLISH_CROSS_20_50 FROM crossover_interval_distribution WHERE days_between_range = '50-99'`,
	).Scan(&bullish))
	assert.Equal(t, 2, bullish)
}

func TestSQLiteRecordReportReplaces(t *testing.T) {
	r := openSQLite(t)
	ctx := context.Background()

	require.NoError(t, r.RecordReport(ctx, sampleReport()))

	empty := &model.Report{RunID: "01HZXEMPTY", Symbol: "BTC-USD", Status: model.StatusInsufficientHistory}
	require.NoError(t, r.RecordReport(ctx, empty))

	db := r.DB()
	for _, table := range []string{TableIndicators, TableCrossovers, TableIntervals, TableSummary, TableDistribution} {
		assert.Equal(t, 0, count(t, db, table), table)
	}
	assert.Equal(t, 2, count(t, db, TableRuns))

	var status string
	require.NoError(t, db.QueryRow(`SELECT status FROM analysis_runs WHERE run_id = ?`, "01HZXEMPTY").Scan(&status))
	assert.Equal(t, "insufficient_history", status)
}

func TestSQLiteNullStdDev(t *testing.T) {
	r := openSQLite(t)
	rep := sampleReport()
	rep.Summary[0].StdDev = nil
	rep.Summary[0].Count = 1

	require.NoError(t, r.RecordReport(context.Background(), rep))

	var sd sql.NullFloat64
	require.NoError(t, r.DB().QueryRow(`SELECT std_dev_days FROM crossover_interval_summary`).Scan(&sd))
	assert.False(t, sd.Valid)
}

func TestSQLiteCanceledContext(t *testing.T) {
	r := openSQLite(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, r.RecordReport(ctx, sampleReport()))
	assert.Equal(t, 0, count(t, r.DB(), TableRuns))
}
