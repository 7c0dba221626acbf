package tui

import (
	"fmt"
	"math"
	"strings"

	"home-cli/internal/model"
	"home-cli/internal/version"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

func (m appModel) View() string {
	var body string
	if m.view == viewArchive {
		body = m.viewArchive()
	} else {
		body = m.viewTasks()
	}

	var footer string
	if m.view == viewArchive {
		footer = m.help.View(archiveHelp{app: m.app})
	} else {
		footer = m.help.View(tasksHelp{ed: m.keys, app: m.app})
	}

	lines := []string{m.header(), "", body, ""}
	if m.flash != "" {
		lines = append(lines, styleMuted().Render(m.flash))
	}
	lines = append(lines, footer)
	return strings.Join(lines, "\n")
}

func (m appModel) header() string {
	title := "Tasks"
	if m.view == viewArchive {
		title = fmt.Sprintf("Archive (%d)", len(m.st.State().Archived))
	}
	v := m.version
	if v == "" {
		v = version.Version
	}
	h := styleTitle.Render(title) + "  " + styleMuted().Render("home "+version.Short(v))
	if err := m.st.LastSaveErr(); err != nil {
		h += "  " + styleWarn.Render("not saved: "+err.Error())
	}
	return h
}

func (m appModel) rowWidth() int {
	if m.width <= 0 {
		return 80
	}
	return m.width
}

func checkbox(checked bool) string {
	if checked {
		return styleBoxDone.Render("[x]")
	}
	return "[ ]"
}

// countdown is the whole seconds left before t is archived, rounded up.
func (m appModel) countdown(t model.Task) string {
	if t.PendingArchiveAt == nil {
		return ""
	}
	left := t.PendingArchiveAt.Sub(m.now()).Seconds()
	if left <= 0 {
		return "archiving" + glyphEllipsis()
	}
	return fmt.Sprintf("archiving in %ds", int(math.Ceil(left)))
}

func (m appModel) viewTasks() string {
	l := m.st.State()
	w := m.rowWidth()
	rows := make([]string, 0, len(l.Active))
	for _, t := range l.Active {
		cursor := "  "
		if t.ID == m.focusID {
			cursor = styleCursor.Render(glyphCursor())
		}
		prefix := cursor + checkbox(t.Checked) + " "

		var text string
		if t.ID == m.focusID {
			text = m.input.View()
		} else {
			avail := max(1, w-xansi.StringWidth(prefix))
			text = xansi.Truncate(t.Text, avail, glyphEllipsis())
			if t.Checked {
				text = styleChecked.Render(text)
			}
		}
		row := prefix + text
		if c := m.countdown(t); c != "" {
			row += "  " + styleMuted().Render(c)
		}
		rows = append(rows, xansi.Truncate(row, w, ""))
	}
	return strings.Join(rows, "\n")
}

func (m appModel) viewArchive() string {
	arch := m.st.Archived()
	if len(arch) == 0 {
		return styleMuted().Render("Nothing archived yet.")
	}
	w := m.rowWidth()
	rows := make([]string, 0, len(arch)+2)
	for i, a := range arch {
		when := a.ArchivedAt.Local().Format("Jan 2 15:04")
		avail := max(1, w-len(when)-4)
		text := a.Text
		if strings.TrimSpace(text) == "" {
			text = "(untitled)"
		}
		text = xansi.Truncate(text, avail, glyphEllipsis())
		pad := max(1, avail-xansi.StringWidth(text))
		line := "  " + text + strings.Repeat(" ", pad) + styleMuted().Render(when)
		if i == m.archiveSel {
			line = styleSelected.Render(lipgloss.NewStyle().Width(w).Render(glyphCursor() + text + strings.Repeat(" ", pad) + when))
		}
		rows = append(rows, line)
	}
	if m.confirmClear {
		rows = append(rows, "", styleWarn.Render(fmt.Sprintf("Delete all %d archived tasks? y/N", len(arch))))
	}
	return strings.Join(rows, "\n")
}
