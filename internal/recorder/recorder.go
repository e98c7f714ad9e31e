package recorder

import (
	"context"
	"errors"

	"EmaSentinel/internal/model"
)

// Recorder persists the output tables of a run. Every call replaces the previous
// contents of each output table and appends one row to the run history.
type Recorder interface {
	RecordReport(ctx context.Context, r *model.Report) error
	Close() error
}

// Multi fans a report out to several recorders.
type Multi []Recorder

func (m Multi) RecordReport(ctx context.Context, r *model.Report) error {
	var errs []error
	for _, rec := range m {
		if err := rec.RecordReport(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, rec := range m {
		if err := rec.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
