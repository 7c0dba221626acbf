package editor

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Action is what a key means to the list editor.
type Action int

const (
	ActionNone Action = iota
	ActionNewRow
	ActionBackspace
	ActionUp
	ActionDown
	ActionToggle
)

func (a Action) String() string {
	switch a {
	case ActionNewRow:
		return "new-row"
	case ActionBackspace:
		return "backspace"
	case ActionUp:
		return "up"
	case ActionDown:
		return "down"
	case ActionToggle:
		return "toggle"
	default:
		return "none"
	}
}

type KeyMap struct {
	NewRow    key.Binding
	Backspace key.Binding
	Up        key.Binding
	Down      key.Binding
	Toggle    key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		NewRow:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "new task")),
		Backspace: key.NewBinding(key.WithKeys("backspace"), key.WithHelp("⌫ on empty", "delete")),
		Up:        key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "prev")),
		Down:      key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "next")),
		Toggle:    key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "check")),
	}
}

// ActionFor maps a key press to an editor action. Keys the editor doesn't
// own (printable characters, cursor movement inside the field) map to ActionNone.
func (km KeyMap) ActionFor(msg tea.KeyMsg) Action {
	switch {
	case key.Matches(msg, km.NewRow):
		return ActionNewRow
	case key.Matches(msg, km.Backspace):
		return ActionBackspace
	case key.Matches(msg, km.Up):
		return ActionUp
	case key.Matches(msg, km.Down):
		return ActionDown
	case key.Matches(msg, km.Toggle):
		return ActionToggle
	default:
		return ActionNone
	}
}

func (km KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{km.NewRow, km.Backspace, km.Up, km.Down, km.Toggle}
}

func (km KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{km.ShortHelp()}
}
