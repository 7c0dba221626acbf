package tui

import (
	"home-cli/internal/editor"

	"github.com/charmbracelet/bubbles/key"
)

type appKeyMap struct {
	Quit       key.Binding
	SwitchView key.Binding
	Back       key.Binding
	Up         key.Binding
	Down       key.Binding
	Restore    key.Binding
	Delete     key.Binding
	Clear      key.Binding
	Confirm    key.Binding
	Help       key.Binding
}

func defaultAppKeyMap() appKeyMap {
	return appKeyMap{
		Quit:       key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		SwitchView: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "archive")),
		Back:       key.NewBinding(key.WithKeys("esc", "tab"), key.WithHelp("esc", "back")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Restore:    key.NewBinding(key.WithKeys("enter", "r"), key.WithHelp("r", "restore")),
		Delete:     key.NewBinding(key.WithKeys("d", "x", "delete"), key.WithHelp("d", "delete")),
		Clear:      key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "clear all")),
		Confirm:    key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "confirm")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
	}
}

// tasksHelp is the footer on the checklist screen.
type tasksHelp struct {
	ed  editor.KeyMap
	app appKeyMap
}

func (h tasksHelp) ShortHelp() []key.Binding {
	return append(h.ed.ShortHelp(), h.app.SwitchView, h.app.Quit)
}

func (h tasksHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{h.ed.ShortHelp(), {h.app.SwitchView, h.app.Quit}}
}

// archiveHelp is the footer on the archive screen.
type archiveHelp struct {
	app appKeyMap
}

func (h archiveHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.app.Restore, h.app.Delete, h.app.Back, h.app.Help}
}

func (h archiveHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{h.app.Up, h.app.Down},
		{h.app.Restore, h.app.Delete, h.app.Clear},
		{h.app.Back, h.app.Quit},
	}
}
