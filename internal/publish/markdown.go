// Package publish renders the checklist as Markdown, for sharing or for a
// styled terminal preview.
package publish

import (
	"sort"
	"strings"
	"time"

	"home-cli/internal/model"
)

type RenderOptions struct {
	// Title heads the document; empty means "Tasks".
	Title string
	// IncludeArchived appends the archive, newest first.
	IncludeArchived bool
	// Location formats archive dates; nil means UTC.
	Location *time.Location
}

// Markdown renders l as a GitHub task list. Blank rows are skipped.
func Markdown(l model.TaskList, opt RenderOptions) string {
	title := strings.TrimSpace(opt.Title)
	if title == "" {
		title = "Tasks"
	}
	loc := opt.Location
	if loc == nil {
		loc = time.UTC
	}

	var b strings.Builder
	writeLn := func(s string) {
		b.WriteString(s)
		b.WriteString("\n")
	}

	writeLn("# " + title)
	writeLn("")
	n := 0
	for _, t := range l.Active {
		text := inline(t.Text)
		if text == "" {
			continue
		}
		box := "[ ]"
		if t.Checked {
			box = "[x]"
		}
		writeLn("- " + box + " " + text)
		n++
	}
	if n == 0 {
		writeLn("_Nothing to do._")
	}

	if opt.IncludeArchived && len(l.Archived) > 0 {
		arch := append([]model.ArchivedTask(nil), l.Archived...)
		sort.SliceStable(arch, func(i, j int) bool { return arch[i].ArchivedAt.After(arch[j].ArchivedAt) })

		writeLn("")
		writeLn("## Archived")
		writeLn("")
		for _, a := range arch {
			text := inline(a.Text)
			if text == "" {
				text = "_(untitled)_"
			}
			writeLn("- ~~" + text + "~~ (" + a.ArchivedAt.In(loc).Format("2006-01-02 15:04") + ")")
		}
	}
	return b.String()
}

var mdEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"~", `\~`,
)

// inline flattens text to one line and escapes Markdown emphasis characters.
func inline(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return mdEscaper.Replace(s)
}
