package archive

import (
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"home-cli/internal/model"
)

func pending(t time.Time) *time.Time { return &t }

func TestSweep_MovesOnlyDueTasksPreservingOrder(t *testing.T) {
	now := time.UnixMilli(10_000)
	l := model.TaskList{
		Active: []model.Task{
			{ID: "a", Text: "a"},
			{ID: "b", Text: "b", Checked: true, PendingArchiveAt: pending(now)},
			{ID: "c", Text: "c", Checked: true, PendingArchiveAt: pending(now.Add(time.Millisecond))},
			{ID: "d", Text: "d", Checked: true, PendingArchiveAt: pending(now.Add(-time.Second))},
			{ID: "e", Text: "e"},
		},
		Archived: []model.ArchivedTask{{ID: "z"}},
	}

	next, moved := Sweep(l, now, func() model.Task { t.Fatalf("blank should not be needed"); return model.Task{} })
	if moved != 2 {
		t.Fatalf("moved = %d, want 2", moved)
	}
	var active []string
	for _, x := range next.Active {
		active = append(active, x.ID)
	}
	if !reflect.DeepEqual(active, []string{"a", "c", "e"}) {
		t.Fatalf("active = %v", active)
	}
	var archived []string
	for _, x := range next.Archived {
		archived = append(archived, x.ID)
		if x.ID != "z" && !x.ArchivedAt.Equal(now) {
			t.Fatalf("archivedAt for %s = %v, want %v", x.ID, x.ArchivedAt, now)
		}
	}
	// Ties within one tick keep original active-list order.
	if !reflect.DeepEqual(archived, []string{"z", "b", "d"}) {
		t.Fatalf("archived = %v", archived)
	}
	if len(l.Archived) != 1 {
		t.Fatalf("input list was modified")
	}
}

func TestSweep_NothingDueReturnsInputUnchanged(t *testing.T) {
	now := time.UnixMilli(10_000)
	l := model.TaskList{Active: []model.Task{
		{ID: "a"},
		{ID: "b", Checked: true, PendingArchiveAt: pending(now.Add(time.Second))},
	}}
	next, moved := Sweep(l, now, nil)
	if moved != 0 || !reflect.DeepEqual(next, l) {
		t.Fatalf("expected no change; moved=%d next=%#v", moved, next)
	}
}

func TestSweep_UncheckedWithStrayDeadlineStays(t *testing.T) {
	now := time.UnixMilli(10_000)
	l := model.TaskList{Active: []model.Task{{ID: "a", PendingArchiveAt: pending(now.Add(-time.Hour))}}}
	if _, moved := Sweep(l, now, nil); moved != 0 {
		t.Fatalf("unchecked task must never archive")
	}
}

func TestSweep_EmptiedListGetsBlank(t *testing.T) {
	now := time.UnixMilli(10_000)
	l := model.TaskList{Active: []model.Task{{ID: "a", Checked: true, PendingArchiveAt: pending(now)}}}
	next, moved := Sweep(l, now, func() model.Task { return model.NewBlankTask("fresh", now) })
	if moved != 1 {
		t.Fatalf("moved = %d", moved)
	}
	if len(next.Active) != 1 || next.Active[0].ID != "fresh" {
		t.Fatalf("expected fresh blank task, got %#v", next.Active)
	}
}

func TestNextDue(t *testing.T) {
	now := time.UnixMilli(10_000)
	l := model.TaskList{Active: []model.Task{
		{ID: "a"},
		{ID: "b", Checked: true, PendingArchiveAt: pending(now.Add(3 * time.Second))},
		{ID: "c", Checked: true, PendingArchiveAt: pending(now.Add(time.Second))},
	}}
	got, ok := NextDue(l)
	if !ok || !got.Equal(now.Add(time.Second)) {
		t.Fatalf("NextDue = %v, %v", got, ok)
	}
	if _, ok := NextDue(model.TaskList{Active: []model.Task{{ID: "a"}}}); ok {
		t.Fatalf("expected no deadline")
	}
}

type countingSweeper struct {
	calls atomic.Int64
	last  atomic.Int64
}

func (c *countingSweeper) ArchiveDue(now time.Time) int {
	c.calls.Add(1)
	c.last.Store(now.UnixMilli())
	return 0
}
