package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

const (
	tuiStateFileName = "tui_state.json"
	tuiStateVersion  = 1
)

// TUIState is what the TUI restores on relaunch.
type TUIState struct {
	Version int `json:"version"`

	// View is "tasks" or "archive".
	View string `json:"view,omitempty"`

	// FocusTaskID is the active task whose row had focus.
	FocusTaskID string `json:"focusTaskId,omitempty"`
}

// TUIStateFile keeps a TUIState in <Dir>/tui_state.json, next to home.sqlite.
// It stays out of the kv table so it never ends up in settings exports.
type TUIStateFile struct {
	Dir string
}

func (f TUIStateFile) path() string {
	return filepath.Join(f.Dir, tuiStateFileName)
}

// Load returns the saved state. Missing, unreadable, corrupt or newer files
// all yield the empty state.
func (f TUIStateFile) Load() TUIState {
	empty := TUIState{Version: tuiStateVersion}
	if strings.TrimSpace(f.Dir) == "" {
		return empty
	}
	b, err := os.ReadFile(f.path())
	if err != nil {
		return empty
	}
	var st TUIState
	if err := json.Unmarshal(b, &st); err != nil || st.Version > tuiStateVersion {
		return empty
	}
	st.Version = tuiStateVersion
	return st
}

// Save writes st, skipping the write when the file already holds it.
func (f TUIStateFile) Save(st TUIState) error {
	if strings.TrimSpace(f.Dir) == "" {
		return nil
	}
	st.Version = tuiStateVersion
	if f.Load() == st {
		return nil
	}
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return WriteFileAtomic(f.path(), append(b, '\n'))
}
