package publish

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"home-cli/internal/model"
	"home-cli/internal/testutil"
)

func sampleList() model.TaskList {
	now := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	p := now.Add(model.GracePeriod)
	return model.TaskList{
		Active: []model.Task{
			{ID: "a", Text: "Do laundry", CreatedAt: now},
			{ID: "b", Text: "  ", CreatedAt: now},
			{ID: "c", Text: "Buy *valentines*\ngift", CreatedAt: now, Checked: true, PendingArchiveAt: &p},
		},
		Archived: []model.ArchivedTask{
			{ID: "x", Text: "Walk dog", CreatedAt: now, ArchivedAt: now.Add(-time.Hour)},
			{ID: "y", Text: "Go grocery shopping", CreatedAt: now, ArchivedAt: now.Add(-time.Minute)},
		},
	}
}

func TestMarkdown_Golden(t *testing.T) {
	t.Parallel()

	md := Markdown(sampleList(), RenderOptions{IncludeArchived: true})
	testutil.GoldenString(t, "checklist", md)
}

func TestMarkdown_ActiveOnly(t *testing.T) {
	t.Parallel()

	md := Markdown(sampleList(), RenderOptions{Title: "Today"})
	if !strings.HasPrefix(md, "# Today\n\n- [ ] Do laundry\n- [x] Buy \\*valentines\\* gift\n") {
		t.Fatalf("unexpected markdown:\n%s", md)
	}
	if strings.Contains(md, "Archived") {
		t.Fatalf("archive should be omitted:\n%s", md)
	}
}

func TestMarkdown_AllBlank(t *testing.T) {
	t.Parallel()

	md := Markdown(model.TaskList{Active: []model.Task{{ID: "a"}}}, RenderOptions{})
	if md != "# Tasks\n\n_Nothing to do._\n" {
		t.Fatalf("got %q", md)
	}
}

func TestRender_NoTTYKeepsText(t *testing.T) {
	t.Parallel()

	out := Render(Markdown(sampleList(), RenderOptions{}), 80, "notty")
	if !strings.Contains(out, "Do laundry") || !strings.Contains(out, "Tasks") {
		t.Fatalf("rendered output lost content:\n%s", out)
	}
	if Render("   ", 80, "notty") != "" {
		t.Fatalf("expected blank markdown to render empty")
	}
}

func TestWriteFile_RefusesOverwrite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tasks.md")
	if err := WriteFile(path, "one", false); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := WriteFile(path, "two", false); err == nil {
		t.Fatalf("expected refusal without overwrite")
	}
	if err := WriteFile(path, "two", true); err != nil {
		t.Fatalf("WriteFile overwrite: %v", err)
	}
	b, _ := os.ReadFile(path)
	if string(b) != "two" {
		t.Fatalf("file = %q", b)
	}
}
