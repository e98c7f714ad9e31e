package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"

	_ "modernc.org/sqlite"

	"EmaSentinel/internal/model"
)

// SQLiteRecorder persists run output to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while a run writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	var stmts []string
	for _, s := range outputSchemas() {
		stmts = append(stmts, s.createSQL(dialectSQLite))
	}
	stmts = append(stmts,
		runSchema.createSQL(dialectSQLite),
		`CREATE INDEX IF NOT EXISTS idx_runs_generated ON analysis_runs(generated_at)`,
	)

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordReport replaces every output table and appends the run row in one transaction.
func (r *SQLiteRecorder) RecordReport(ctx context.Context, rep *model.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, t := range flatten(rep) {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+t.schema.name); err != nil {
			return fmt.Errorf("clear %s: %w", t.schema.name, err)
		}
		if err := insertRows(ctx, tx, t.schema.insertSQL(), t.rows); err != nil {
			return fmt.Errorf("write %s: %w", t.schema.name, err)
		}
	}
	if _, err := tx.ExecContext(ctx, runSchema.insertSQL(), runRow(rep)...); err != nil {
		return fmt.Errorf("write %s: %w", TableRuns, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	log.Printf("[INFO] sqlite: recorded run %s (%d bars, %d crossovers)", rep.RunID, len(rep.Indicators), len(rep.Crossovers))
	return nil
}

func insertRows(ctx context.Context, tx *sql.Tx, query string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return err
		}
	}
	return nil
}

// DB exposes the handle for read-side queries.
func (r *SQLiteRecorder) DB() *sql.DB { return r.db }

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
