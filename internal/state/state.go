package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// NotifyState is the persisted notification watermark.
type NotifyState struct {
	Symbol      string    `json:"symbol"`
	LastBarDate time.Time `json:"last_bar_date"`
	Seeded      bool      `json:"seeded"`
	LastRunID   string    `json:"last_run_id"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// LoadState reads the state from a JSON file. Returns a zero state if the file doesn't exist.
func LoadState(filePath string) (*NotifyState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &NotifyState{}, nil
		}
		return nil, err
	}
	var st NotifyState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// SaveState writes the state to a JSON file, replacing it atomically.
func SaveState(filePath string, st *NotifyState) error {
	st.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, filePath)
}
