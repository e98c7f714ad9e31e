package state

import (
	"fmt"
	"log"
	"sync"

	"EmaSentinel/internal/model"
)

// Tracker decides which crossovers have not been announced yet. The watermark is
// the last bar date analysed by the previous run; only events after it are fresh.
// The first run for a symbol only seeds the watermark.
type Tracker struct {
	mu       sync.Mutex
	state    *NotifyState
	filePath string
}

// NewTracker loads the watermark from filePath.
func NewTracker(filePath string) (*Tracker, error) {
	st, err := LoadState(filePath)
	if err != nil {
		return nil, fmt.Errorf("load notify state: %w", err)
	}
	return &Tracker{state: st, filePath: filePath}, nil
}

// State returns a copy of the current watermark.
func (t *Tracker) State() NotifyState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return *t.state
}

func (t *Tracker) seededFor(symbol string) bool {
	return t.state.Seeded && t.state.Symbol == symbol
}

// Fresh returns the report's crossovers dated after the watermark, most recent first.
func (t *Tracker) Fresh(r *model.Report) []model.CrossoverEvent {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.seededFor(r.Symbol) {
		return nil
	}
	var fresh []model.CrossoverEvent
	for _, e := range r.Crossovers {
		if e.Date.After(t.state.LastBarDate) {
			fresh = append(fresh, e)
		}
	}
	return fresh
}

// Advance moves the watermark to the report's last analysed bar. Reports without
// indicator rows leave it untouched.
func (t *Tracker) Advance(r *model.Report) error {
	if len(r.Indicators) == 0 {
		return nil
	}
	last := r.Indicators[len(r.Indicators)-1].Date

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.seededFor(r.Symbol) {
		log.Printf("[INFO] notify watermark seeded for %s at %s", r.Symbol, last.Format(model.DateLayout))
	} else if !last.After(t.state.LastBarDate) {
		return nil
	}

	t.state.Symbol = r.Symbol
	t.state.LastBarDate = last
	t.state.Seeded = true
	t.state.LastRunID = r.RunID
	if err := SaveState(t.filePath, t.state); err != nil {
		return fmt.Errorf("save notify state: %w", err)
	}
	return nil
}
