package tui

import (
	"fmt"
	"time"
	"unicode/utf8"

	"home-cli/internal/archive"
	"home-cli/internal/editor"
	"home-cli/internal/store"
	"home-cli/internal/tasks"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
)

type view int

const (
	viewTasks view = iota
	viewArchive
)

func (v view) String() string {
	if v == viewArchive {
		return "archive"
	}
	return "tasks"
}

// sweepTickMsg drives the archival sweep on the UI loop.
type sweepTickMsg time.Time

// flashClearAfter is how long a status message stays on screen.
const flashClearAfter = 3 * time.Second

type appModel struct {
	st        *tasks.Store
	ed        *editor.Editor
	stateFile store.TUIStateFile
	interval  time.Duration
	now       func() time.Time
	log       *log.Logger
	version   string

	width  int
	height int
	view   view

	input    textinput.Model
	focusID  string
	focusIdx int

	archiveSel   int
	confirmClear bool

	keys editor.KeyMap
	app  appKeyMap
	help help.Model

	flash   string
	flashAt time.Time
}

func newModel(opt Options) appModel {
	m := appModel{
		st:        opt.Store,
		ed:        editor.New(opt.Store),
		stateFile: opt.State,
		interval:  opt.Interval,
		now:       opt.Now,
		log:       opt.Log,
		version:   opt.Version,
		keys:      editor.DefaultKeyMap(),
		app:       defaultAppKeyMap(),
		help:      help.New(),
	}
	if m.interval <= 0 {
		m.interval = archive.DefaultInterval
	}
	if m.now == nil {
		m.now = time.Now
	}

	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = glyphEllipsis()
	ti.Focus()
	m.input = ti

	saved := m.stateFile.Load()
	if saved.View == viewArchive.String() {
		m.view = viewArchive
	}
	focus := saved.FocusTaskID
	if m.st.State().IndexOf(focus) < 0 {
		focus = m.st.State().Active[0].ID
	}
	m.focus(focus, -1)
	return m
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.tick())
}

func (m appModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return sweepTickMsg(t) })
}

// focus moves the text field to task id with the caret at caret runes; a
// negative caret means end of text.
func (m *appModel) focus(id string, caret int) {
	l := m.st.State()
	i := l.IndexOf(id)
	if i < 0 {
		return
	}
	m.focusID = id
	m.focusIdx = i
	text := l.Active[i].Text
	m.input.SetValue(text)
	if caret < 0 || caret > utf8.RuneCountInString(text) {
		caret = utf8.RuneCountInString(text)
	}
	m.input.SetCursor(caret)
}

// syncFocus keeps focus valid after the list changed underneath it (a sweep,
// a reload). A vanished row hands focus to the row now at its position.
func (m *appModel) syncFocus() {
	l := m.st.State()
	i := l.IndexOf(m.focusID)
	if i < 0 {
		i = min(m.focusIdx, len(l.Active)-1)
		m.focus(l.Active[i].ID, -1)
		return
	}
	m.focusIdx = i
	if t := l.Active[i].Text; t != m.input.Value() {
		m.input.SetValue(t)
		m.input.CursorEnd()
	}
	if n := len(l.Archived); m.archiveSel >= n {
		m.archiveSel = max(0, n-1)
	}
}

func (m *appModel) setFlash(format string, args ...any) {
	m.flash = fmt.Sprintf(format, args...)
	m.flashAt = m.now()
}

// sweep picks up edits made by other processes, then archives due tasks.
func (m *appModel) sweep() {
	if m.st.LastSaveErr() == nil {
		m.st.Reload()
	}
	if n := m.st.ArchiveDue(m.now()); n > 0 {
		if m.log != nil {
			m.log.Debug("archived", "count", n)
		}
	}
	m.syncFocus()
	if m.flash != "" && m.now().Sub(m.flashAt) > flashClearAfter {
		m.flash = ""
	}
}

func (m appModel) persistUIState() {
	err := m.stateFile.Save(store.TUIState{View: m.view.String(), FocusTaskID: m.focusID})
	if err != nil && m.log != nil {
		m.log.Warn("tui state not saved", "err", err)
	}
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(10, m.width-6)
		m.help.Width = m.width
		return m, nil

	case sweepTickMsg:
		m.sweep()
		return m, m.tick()

	case tea.KeyMsg:
		if key.Matches(msg, m.app.Quit) {
			m.persistUIState()
			return m, tea.Quit
		}
		if m.view == viewArchive {
			return m.updateArchive(msg)
		}
		return m.updateTasks(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m appModel) updateTasks(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.app.SwitchView) {
		m.view = viewArchive
		m.archiveSel = 0
		return m, nil
	}

	if a := m.keys.ActionFor(msg); a != editor.ActionNone {
		d := m.ed.HandleKey(a, m.focusID, m.input.Value())
		if d.Handled {
			if d.FocusID != "" {
				m.focus(d.FocusID, d.Caret)
			} else {
				m.syncFocus()
			}
			return m, nil
		}
		// Backspace inside a non-empty field is ordinary editing.
		if a != editor.ActionBackspace {
			return m, nil
		}
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != before {
		m.ed.Input(m.focusID, v)
	}
	return m, cmd
}

func (m appModel) updateArchive(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	arch := m.st.Archived()

	if m.confirmClear {
		m.confirmClear = false
		if key.Matches(msg, m.app.Confirm) {
			n := m.st.ClearArchived()
			m.archiveSel = 0
			m.setFlash("Cleared %d archived tasks", n)
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.app.Back):
		m.view = viewTasks
		m.syncFocus()
	case key.Matches(msg, m.app.Up):
		if m.archiveSel > 0 {
			m.archiveSel--
		}
	case key.Matches(msg, m.app.Down):
		if m.archiveSel < len(arch)-1 {
			m.archiveSel++
		}
	case key.Matches(msg, m.app.Restore):
		if len(arch) == 0 {
			break
		}
		id := arch[m.archiveSel].ID
		if m.st.RestoreTask(id) {
			m.view = viewTasks
			m.focus(id, -1)
			m.setFlash("Restored")
		}
	case key.Matches(msg, m.app.Delete):
		if len(arch) == 0 {
			break
		}
		m.st.DeleteArchived(arch[m.archiveSel].ID)
		if m.archiveSel >= len(arch)-1 {
			m.archiveSel = max(0, len(arch)-2)
		}
	case key.Matches(msg, m.app.Clear):
		if len(arch) > 0 {
			m.confirmClear = true
		}
	case key.Matches(msg, m.app.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}
