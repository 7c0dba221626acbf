package tasks

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"home-cli/internal/keys"
	"home-cli/internal/model"
	"home-cli/internal/store"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func seqIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

func newTestStore(t *testing.T, seed map[string]string) (*Store, *store.Memory, *fakeClock) {
	t.Helper()
	mem := store.NewMemory(seed)
	clk := &fakeClock{t: time.UnixMilli(1_700_000_000_000)}
	s, _ := Open(mem, Options{Now: clk.Now, NewID: seqIDs("t")})
	return s, mem, clk
}

func activeIDs(l model.TaskList) []string {
	out := make([]string, 0, len(l.Active))
	for _, t := range l.Active {
		out = append(out, t.ID)
	}
	return out
}

// assertInvariants checks the properties every reachable state must hold.
func assertInvariants(t *testing.T, l model.TaskList) {
	t.Helper()
	if len(l.Active) == 0 {
		t.Fatalf("active list is empty")
	}
	for _, task := range l.Active {
		if task.Checked != (task.PendingArchiveAt != nil) {
			t.Fatalf("task %s: checked=%v but pendingArchiveAt=%v", task.ID, task.Checked, task.PendingArchiveAt)
		}
	}
}

func TestOpen_SeedsDefaultsAndPersists(t *testing.T) {
	mem := store.NewMemory(nil)
	s, res := Open(mem, Options{NewID: seqIDs("t")})
	if res.Status != SeededDefaults {
		t.Fatalf("expected seeded status, got %v", res.Status)
	}
	l := s.State()
	if len(l.Active) != 4 || len(l.Archived) != 0 {
		t.Fatalf("expected 4 starter tasks and empty archive; got %d/%d", len(l.Active), len(l.Archived))
	}
	if l.Active[0].Text != "Do laundry" || l.Active[3].Text != "Walk dog" {
		t.Fatalf("unexpected starter texts: %#v", l.Active)
	}
	if _, ok := mem.Get(keys.State.String()); !ok {
		t.Fatalf("expected seeded state to be written back")
	}
}

func TestCreateTask_InsertsAfterReference(t *testing.T) {
	s, _, _ := newTestStore(t, nil) // t1..t4 seeded

	id := s.CreateTask("t2")
	if id != "t5" {
		t.Fatalf("expected new id t5, got %q", id)
	}
	if got, want := activeIDs(s.State()), []string{"t1", "t2", "t5", "t3", "t4"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}

	// Unknown / empty reference appends.
	s.CreateTask("nope")
	s.CreateTask("")
	if got, want := activeIDs(s.State()), []string{"t1", "t2", "t5", "t3", "t4", "t6", "t7"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	created := s.State().Active[2]
	if created.Text != "" || created.Checked || created.PendingArchiveAt != nil {
		t.Fatalf("expected blank unchecked task, got %#v", created)
	}
}

func TestDeleteTask_FocusAndGuard(t *testing.T) {
	s, _, _ := newTestStore(t, nil)

	focus, ok := s.DeleteTask("t3")
	if !ok || focus != "t2" {
		t.Fatalf("delete middle: focus=%q ok=%v, want t2 true", focus, ok)
	}
	focus, ok = s.DeleteTask("t1")
	if !ok || focus != "t2" {
		t.Fatalf("delete head: focus=%q ok=%v, want new first task t2", focus, ok)
	}
	if _, ok := s.DeleteTask("missing"); ok {
		t.Fatalf("expected unknown id to be refused")
	}
	if _, ok := s.DeleteTask("t4"); !ok {
		t.Fatalf("expected delete to succeed")
	}

	before := s.State()
	if len(before.Active) != 1 {
		t.Fatalf("expected one remaining task, got %v", activeIDs(before))
	}
	if _, ok := s.DeleteTask("t2"); ok {
		t.Fatalf("expected deleting the sole task to be refused")
	}
	if !reflect.DeepEqual(before, s.State()) {
		t.Fatalf("state changed after refused delete")
	}
}

func TestSetChecked_GracePeriodInvariant(t *testing.T) {
	s, _, clk := newTestStore(t, nil)

	if !s.SetChecked("t1", true) {
		t.Fatalf("expected check to apply")
	}
	got := s.State().Active[0]
	want := clk.Now().Add(model.GracePeriod)
	if got.PendingArchiveAt == nil || !got.PendingArchiveAt.Equal(want) {
		t.Fatalf("pendingArchiveAt = %v, want %v", got.PendingArchiveAt, want)
	}
	assertInvariants(t, s.State())

	s.SetChecked("t1", false)
	if got := s.State().Active[0]; got.Checked || got.PendingArchiveAt != nil {
		t.Fatalf("expected uncheck to clear pending; got %#v", got)
	}
	if s.SetChecked("missing", true) {
		t.Fatalf("expected unknown id to be a no-op")
	}
}

func TestSetText_UnknownIsNoop(t *testing.T) {
	s, mem, _ := newTestStore(t, nil)
	before := mem.Snapshot()
	if s.SetText("missing", "x") {
		t.Fatalf("expected no-op")
	}
	if !reflect.DeepEqual(before, mem.Snapshot()) {
		t.Fatalf("storage changed on no-op")
	}
}

func TestScenario_CheckThenSweepArchives(t *testing.T) {
	a := `{"active":[{"id":"A","text":"buy milk","created":1700000000000,"checked":false,"pendingArchiveAt":null}],"archived":[]}`
	s, mem, clk := newTestStore(t, map[string]string{keys.State.String(): a})

	b := s.CreateTask("A")
	if got := activeIDs(s.State()); !reflect.DeepEqual(got, []string{"A", b}) {
		t.Fatalf("after create: %v", got)
	}
	s.SetText(b, "walk dog")
	s.SetChecked(b, true)
	checkedAt := clk.Now()

	// Not yet due.
	clk.Advance(model.GracePeriod - time.Millisecond)
	if n := s.ArchiveDue(clk.Now()); n != 0 {
		t.Fatalf("expected nothing archived before grace elapses, got %d", n)
	}

	clk.Advance(time.Millisecond)
	if n := s.ArchiveDue(clk.Now()); n != 1 {
		t.Fatalf("expected one task archived, got %d", n)
	}
	l := s.State()
	if got := activeIDs(l); !reflect.DeepEqual(got, []string{"A"}) {
		t.Fatalf("active after sweep = %v", got)
	}
	if len(l.Archived) != 1 {
		t.Fatalf("expected one archived task, got %#v", l.Archived)
	}
	arch := l.Archived[0]
	if arch.ID != b || arch.Text != "walk dog" || !arch.ArchivedAt.Equal(checkedAt.Add(model.GracePeriod)) {
		t.Fatalf("unexpected archived record: %#v", arch)
	}

	// Persisted copy matches memory.
	raw, _ := mem.Get(keys.State.String())
	reloaded := Parse(raw, true, clk.Now(), seqIDs("x"))
	if reloaded.Status != LoadedFromStorage {
		t.Fatalf("expected clean reload, got %v %v", reloaded.Status, reloaded.Repairs)
	}
	if !reflect.DeepEqual(activeIDs(reloaded.List), []string{"A"}) || reloaded.List.Archived[0].ID != b {
		t.Fatalf("persisted state mismatch: %#v", reloaded.List)
	}
}

func TestArchiveDue_EmptiedListGetsBlankTask(t *testing.T) {
	seed := `{"active":[{"id":"A","text":"only","created":1,"checked":false}],"archived":[]}`
	s, _, clk := newTestStore(t, map[string]string{keys.State.String(): seed})

	s.SetChecked("A", true)
	clk.Advance(model.GracePeriod)
	if n := s.ArchiveDue(clk.Now()); n != 1 {
		t.Fatalf("expected 1 moved, got %d", n)
	}
	l := s.State()
	assertInvariants(t, l)
	if len(l.Active) != 1 || l.Active[0].ID == "A" || l.Active[0].Text != "" {
		t.Fatalf("expected one fresh blank task, got %#v", l.Active)
	}
}

func TestArchiveDue_IdleTickDoesNotWriteOrNotify(t *testing.T) {
	s, mem, clk := newTestStore(t, nil)

	notified := 0
	s.Subscribe(func(model.TaskList) { notified++ })

	mem.FailWrites = true // any write attempt would set LastSaveErr
	if n := s.ArchiveDue(clk.Now()); n != 0 {
		t.Fatalf("expected no moves, got %d", n)
	}
	if notified != 0 {
		t.Fatalf("expected no notification on idle tick")
	}
	if err := s.LastSaveErr(); err != nil {
		t.Fatalf("expected no write on idle tick, got %v", err)
	}
}

func TestRestoreTask_RoundTripKeepsIdentity(t *testing.T) {
	s, _, clk := newTestStore(t, nil)
	orig := s.State().Active[2] // t3

	s.SetChecked(orig.ID, true)
	clk.Advance(model.GracePeriod)
	s.ArchiveDue(clk.Now())
	if s.State().IndexOf(orig.ID) >= 0 {
		t.Fatalf("expected task archived")
	}

	if !s.RestoreTask(orig.ID) {
		t.Fatalf("expected restore to succeed")
	}
	l := s.State()
	got := l.Active[0]
	if got.ID != orig.ID || got.Text != orig.Text || !got.CreatedAt.Equal(orig.CreatedAt) {
		t.Fatalf("restored task mismatch: got %#v want %#v", got, orig)
	}
	if got.Checked || got.PendingArchiveAt != nil {
		t.Fatalf("restored task should be unchecked, got %#v", got)
	}
	if len(l.Archived) != 0 {
		t.Fatalf("expected archive empty after restore")
	}
	if s.RestoreTask(orig.ID) {
		t.Fatalf("expected second restore to be a no-op")
	}
}

func TestArchived_NewestFirstAndDeleteClear(t *testing.T) {
	seed := `{"active":[{"id":"A","text":"a","created":1}],"archived":[
		{"id":"old","text":"o","created":1,"archivedAt":100},
		{"id":"new","text":"n","created":1,"archivedAt":300},
		{"id":"mid","text":"m","created":1,"archivedAt":200}
	]}`
	s, _, _ := newTestStore(t, map[string]string{keys.State.String(): seed})

	var ids []string
	for _, a := range s.Archived() {
		ids = append(ids, a.ID)
	}
	if !reflect.DeepEqual(ids, []string{"new", "mid", "old"}) {
		t.Fatalf("archived order = %v", ids)
	}

	if !s.DeleteArchived("mid") || s.DeleteArchived("mid") {
		t.Fatalf("expected delete once then no-op")
	}
	if n := s.ClearArchived(); n != 2 {
		t.Fatalf("ClearArchived = %d, want 2", n)
	}
	if n := s.ClearArchived(); n != 0 {
		t.Fatalf("second ClearArchived = %d, want 0", n)
	}
}

func TestSave_FailureIsSwallowedAndMemoryStaysAuthoritative(t *testing.T) {
	s, mem, _ := newTestStore(t, nil)
	mem.FailWrites = true

	s.SetText("t1", "edited while storage is full")
	if got := s.State().Active[0].Text; got != "edited while storage is full" {
		t.Fatalf("memory not updated: %q", got)
	}
	if s.LastSaveErr() == nil {
		t.Fatalf("expected LastSaveErr to report the failure")
	}

	mem.FailWrites = false
	s.SetText("t2", "next write reconciles")
	if s.LastSaveErr() != nil {
		t.Fatalf("expected error cleared after successful write")
	}
	raw, _ := mem.Get(keys.State.String())
	res := Parse(raw, true, time.Now(), seqIDs("x"))
	if res.List.Active[0].Text != "edited while storage is full" {
		t.Fatalf("expected earlier edit reconciled to storage, got %#v", res.List.Active[0])
	}
}

func TestReload_FailedReadKeepsListAndWritesNothing(t *testing.T) {
	s, mem, _ := newTestStore(t, nil)
	s.SetText("t1", "my precious task")
	before, _ := mem.Get(keys.State.String())

	mem.FailReads = true
	res := s.Reload()
	mem.FailReads = false

	if res.Status != LoadedFromStorage || res.List.Active[0].Text != "my precious task" {
		t.Fatalf("reload = %v %#v", res.Status, res.List.Active[0])
	}
	if got := s.State().Active[0].Text; got != "my precious task" {
		t.Fatalf("memory replaced after failed read: %q", got)
	}
	if after, _ := mem.Get(keys.State.String()); after != before {
		t.Fatalf("failed read rewrote storage:\nbefore: %s\nafter:  %s", before, after)
	}
}

func TestOpen_UnreadableStorageIsNotOverwritten(t *testing.T) {
	stored := `{"active":[{"id":"a","text":"keep me","created":1}],"archived":[]}`
	mem := store.NewMemory(map[string]string{keys.State.String(): stored})
	mem.FailReads = true

	s, res := Open(mem, Options{NewID: seqIDs("t")})
	if res.Status != SeededDefaults || !reflect.DeepEqual(res.Repairs, []string{"unreadable"}) {
		t.Fatalf("open = %v %v", res.Status, res.Repairs)
	}
	if got := mem.Snapshot()[keys.State.String()]; got != stored {
		t.Fatalf("defaults written over unreadable storage: %s", got)
	}

	// Storage comes back: the real list wins over the in-memory defaults.
	mem.FailReads = false
	res = s.Reload()
	if res.Status != LoadedFromStorage || s.State().Active[0].Text != "keep me" {
		t.Fatalf("reload after recovery = %v %#v", res.Status, s.State().Active)
	}
}

func TestReload_BrokenStoredValueKeepsLoadedList(t *testing.T) {
	s, mem, _ := newTestStore(t, nil)
	s.SetText("t1", "mine")

	if err := mem.Set(keys.State.String(), "{oops"); err != nil {
		t.Fatal(err)
	}
	res := s.Reload()
	if res.Status != RepairedFields || s.State().Active[0].Text != "mine" {
		t.Fatalf("reload = %v %#v", res.Status, s.State().Active[0])
	}
	raw, _ := mem.Get(keys.State.String())
	if got := Parse(raw, true, time.Now(), seqIDs("x")); got.List.Active[0].Text != "mine" {
		t.Fatalf("expected the loaded list written back, got %s", raw)
	}
}

func TestSubscribe_NotifiesAfterMutationAndUnsubscribes(t *testing.T) {
	s, _, _ := newTestStore(t, nil)

	var seen []string
	unsub := s.Subscribe(func(l model.TaskList) { seen = append(seen, l.Active[0].Text) })
	s.SetText("t1", "first")
	unsub()
	s.SetText("t1", "second")

	if !reflect.DeepEqual(seen, []string{"first"}) {
		t.Fatalf("observer calls = %v", seen)
	}
}

func TestInvariants_RandomizedOperations(t *testing.T) {
	s, _, clk := newTestStore(t, nil)

	ops := []func(i int){
		func(i int) { l := s.State(); s.CreateTask(l.Active[i%len(l.Active)].ID) },
		func(i int) { l := s.State(); s.DeleteTask(l.Active[i%len(l.Active)].ID) },
		func(i int) { l := s.State(); s.SetChecked(l.Active[i%len(l.Active)].ID, i%3 != 0) },
		func(i int) { clk.Advance(time.Duration(i%4) * 2 * time.Second); s.ArchiveDue(clk.Now()) },
		func(i int) {
			if a := s.Archived(); len(a) > 0 {
				s.RestoreTask(a[i%len(a)].ID)
			}
		},
	}
	for i := 0; i < 500; i++ {
		ops[(i*7+i/5)%len(ops)](i)
		assertInvariants(t, s.State())
	}
}
