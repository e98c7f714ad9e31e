package recorder

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"EmaSentinel/internal/model"
)

// PostgresRecorder persists run output to PostgreSQL.
type PostgresRecorder struct {
	db *sqlx.DB
	mu sync.Mutex
}

// NewPostgresRecorder connects with the given DSN and creates the output tables.
func NewPostgresRecorder(ctx context.Context, dsn string) (*PostgresRecorder, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	r := &PostgresRecorder{db: db}
	if err := r.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Println("[INFO] postgres recorder connected")
	return r, nil
}

func (r *PostgresRecorder) migrate(ctx context.Context) error {
	schemas := append(outputSchemas(), runSchema)
	for _, s := range schemas {
		if _, err := r.db.ExecContext(ctx, s.createSQL(dialectPostgres)); err != nil {
			return fmt.Errorf("create %s: %w", s.name, err)
		}
	}
	return nil
}

// RecordReport truncates and rewrites every output table in one transaction.
func (r *PostgresRecorder) RecordReport(ctx context.Context, rep *model.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tables := flatten(rep)
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.schema.name
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "TRUNCATE "+strings.Join(names, ", ")); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}
	for _, t := range tables {
		query := tx.Rebind(t.schema.insertSQL())
		for _, row := range t.rows {
			if _, err := tx.ExecContext(ctx, query, row...); err != nil {
				return fmt.Errorf("write %s: %w", t.schema.name, err)
			}
		}
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(runSchema.insertSQL()), runRow(rep)...); err != nil {
		return fmt.Errorf("write %s: %w", TableRuns, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	log.Printf("[INFO] postgres: recorded run %s", rep.RunID)
	return nil
}

func (r *PostgresRecorder) Close() error {
	log.Println("[INFO] closing postgres recorder")
	return r.db.Close()
}
