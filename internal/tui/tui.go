// Package tui is the interactive checklist: one text field per task, an
// archive screen, and the archival sweep driven by bubbletea ticks.
package tui

import (
	"time"

	"home-cli/internal/store"
	"home-cli/internal/tasks"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
)

type Options struct {
	Store *tasks.Store
	// State remembers the last view and focused task across launches.
	State store.TUIStateFile
	// Interval is the archival sweep cadence.
	Interval time.Duration
	// Now defaults to time.Now.
	Now     func() time.Time
	Log     *log.Logger
	Version string
}

func Run(opt Options) error {
	applyThemePreference()
	applyColorProfilePreference()
	applyGlyphPreference()

	final, err := tea.NewProgram(newModel(opt), tea.WithAltScreen()).Run()
	if m, ok := final.(appModel); ok {
		m.persistUIState()
	}
	return err
}
