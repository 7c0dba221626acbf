// Package editor turns key presses on a focused checklist row into task store
// calls plus a focus directive for the view.
package editor

import (
	"unicode/utf8"

	"home-cli/internal/model"
)

// TaskStore is the slice of *tasks.Store the editor drives.
type TaskStore interface {
	State() model.TaskList
	CreateTask(afterID string) string
	DeleteTask(id string) (focusID string, ok bool)
	SetText(id, text string) bool
	SetChecked(id string, checked bool) bool
}

// Directive tells the view what to do after a key.
type Directive struct {
	// Handled means the key was consumed; the view must not also apply its
	// default behavior (e.g. a line break or a character delete).
	Handled bool
	// FocusID is the row that should receive focus; empty keeps focus where it is.
	FocusID string
	// Caret is the cursor position (in runes) in the newly focused field.
	Caret int
}

type Editor struct {
	Store TaskStore
}

func New(s TaskStore) *Editor {
	return &Editor{Store: s}
}

// HandleKey applies action to the row id whose field currently holds value.
func (e *Editor) HandleKey(action Action, id, value string) Directive {
	switch action {
	case ActionNewRow:
		newID := e.Store.CreateTask(id)
		return e.focus(newID)

	case ActionBackspace:
		if value != "" {
			return Directive{}
		}
		focusID, ok := e.Store.DeleteTask(id)
		if !ok {
			// Sole remaining row (or stale id): nothing to delete.
			return Directive{}
		}
		return e.focus(focusID)

	case ActionUp, ActionDown:
		l := e.Store.State()
		i := l.IndexOf(id)
		if i < 0 {
			return Directive{}
		}
		j := i - 1
		if action == ActionDown {
			j = i + 1
		}
		if j < 0 || j >= len(l.Active) {
			return Directive{}
		}
		return e.focusTask(l.Active[j])

	case ActionToggle:
		l := e.Store.State()
		i := l.IndexOf(id)
		if i < 0 {
			return Directive{}
		}
		e.Store.SetChecked(id, !l.Active[i].Checked)
		return Directive{Handled: true}
	}
	return Directive{}
}

// Input records the field's new value. Called on every change so storage never
// lags the visible text by more than one keystroke.
func (e *Editor) Input(id, value string) {
	e.Store.SetText(id, value)
}

// Toggle sets a row's checkbox explicitly (mouse click, CLI).
func (e *Editor) Toggle(id string, checked bool) {
	e.Store.SetChecked(id, checked)
}

func (e *Editor) focus(id string) Directive {
	l := e.Store.State()
	i := l.IndexOf(id)
	if i < 0 {
		return Directive{Handled: true}
	}
	return e.focusTask(l.Active[i])
}

func (e *Editor) focusTask(t model.Task) Directive {
	return Directive{Handled: true, FocusID: t.ID, Caret: utf8.RuneCountInString(t.Text)}
}
