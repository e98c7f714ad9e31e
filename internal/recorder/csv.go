package recorder

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"EmaSentinel/internal/model"
)

// CSVRecorder writes each output table to <dir>/<table>.csv, replacing the file.
type CSVRecorder struct {
	dir string
	mu  sync.Mutex
}

func NewCSVRecorder(dir string) (*CSVRecorder, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create csv dir: %w", err)
	}
	return &CSVRecorder{dir: dir}, nil
}

func (r *CSVRecorder) RecordReport(ctx context.Context, rep *model.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range flatten(rep) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.writeTable(t); err != nil {
			return fmt.Errorf("write %s: %w", t.schema.name, err)
		}
	}
	log.Printf("[INFO] csv: recorded run %s to %s", rep.RunID, r.dir)
	return nil
}

// writeTable writes to a temp file and renames it into place.
func (r *CSVRecorder) writeTable(t tableData) error {
	path := filepath.Join(r.dir, t.schema.name+".csv")
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.Write(t.schema.columnNames()); err != nil {
		f.Close()
		return err
	}
	for _, row := range t.rows {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = formatValue(v)
		}
		if err := w.Write(rec); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

func (r *CSVRecorder) Close() error { return nil }
