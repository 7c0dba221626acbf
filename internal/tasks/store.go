// Package tasks owns the checklist state. Every mutation goes through Store so
// the persisted copy never drifts from memory by more than one failed write.
package tasks

import (
	"sort"
	"sync"
	"time"

	"home-cli/internal/archive"
	"home-cli/internal/keys"
	"home-cli/internal/model"
	"home-cli/internal/store"

	"github.com/charmbracelet/log"
)

type Options struct {
	// Key defaults to keys.State.
	Key keys.Key
	// Now defaults to time.Now.
	Now func() time.Time
	// NewID defaults to store.NewID.
	NewID func() string
	// Logger receives swallowed persistence failures. Defaults to discarding them.
	Logger *log.Logger
}

// Store is the single authority over a TaskList. Every mutating call persists
// immediately; persistence failures are logged and swallowed, leaving memory
// authoritative until the next successful write.
//
// A Store is safe to share between the archival scheduler goroutine and a UI;
// each call runs to completion under one lock.
type Store struct {
	port  store.Port
	key   string
	now   func() time.Time
	newID func() string
	log   *log.Logger

	mu        sync.Mutex
	list      model.TaskList
	loaded    bool
	lastErr   error
	observers map[int]func(model.TaskList)
	nextObs   int
}

// Open loads the list from port. It never fails; see Parse.
func Open(port store.Port, opt Options) (*Store, LoadResult) {
	s := &Store{
		port:      port,
		key:       opt.Key.String(),
		now:       opt.Now,
		newID:     opt.NewID,
		log:       opt.Logger,
		observers: map[int]func(model.TaskList){},
	}
	if opt.Key == (keys.Key{}) {
		s.key = keys.State.String()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = store.NewID
	}
	res := s.Reload()
	return s, res
}

// clock returns now at millisecond precision, matching what survives persistence.
func (s *Store) clock() time.Time {
	return time.UnixMilli(s.now().UnixMilli())
}

// Reload replaces the in-memory list with whatever is persisted. Seeded or
// repaired lists are written back so storage matches memory.
//
// Once a list has been loaded, memory stays authoritative: a failed read
// keeps the current list and writes nothing, and a stored value too broken to
// parse is overwritten with the current list, never with starter tasks.
func (s *Store) Reload() LoadResult {
	raw, ok, err := s.port.Read(s.key)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		if s.log != nil {
			s.log.Warn("task list not read", "key", s.key, "err", err)
		}
		if s.loaded {
			return LoadResult{List: s.list.Clone(), Status: LoadedFromStorage}
		}
		// Nothing loaded yet: run on defaults in memory and try again next time.
		res := Parse("", false, s.clock(), s.newID)
		res.Repairs = []string{"unreadable"}
		s.list = res.List
		res.List = res.List.Clone()
		return res
	}

	res := Parse(raw, ok, s.clock(), s.newID)
	if s.loaded && ok && res.Status == SeededDefaults {
		if s.log != nil {
			s.log.Warn("stored task list unusable, keeping the loaded one", "key", s.key, "repairs", res.Repairs)
		}
		s.saveLocked()
		return LoadResult{List: s.list.Clone(), Status: RepairedFields, Repairs: res.Repairs}
	}

	s.list = res.List
	s.loaded = true
	if res.Status != LoadedFromStorage {
		if s.log != nil {
			s.log.Info("task list loaded with defaults", "status", res.Status, "repairs", res.Repairs)
		}
		s.saveLocked()
	}
	res.List = res.List.Clone()
	return res
}

// State returns a copy of the current list.
func (s *Store) State() model.TaskList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list.Clone()
}

// Archived returns the archive most-recent-first (ties broken by id).
func (s *Store) Archived() []model.ArchivedTask {
	s.mu.Lock()
	out := append([]model.ArchivedTask(nil), s.list.Archived...)
	s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ArchivedAt.Equal(out[j].ArchivedAt) {
			return out[i].ArchivedAt.After(out[j].ArchivedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// LastSaveErr reports the most recent persistence failure, or nil once a
// later write succeeded.
func (s *Store) LastSaveErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Save writes the current list. Failures are swallowed; see LastSaveErr.
func (s *Store) Save() {
	s.mu.Lock()
	s.saveLocked()
	s.mu.Unlock()
}

func (s *Store) saveLocked() {
	raw, err := Encode(s.list)
	if err == nil {
		err = s.port.Set(s.key, raw)
	}
	s.lastErr = err
	if err != nil && s.log != nil {
		s.log.Warn("task list not persisted", "key", s.key, "err", err)
	}
}

// Subscribe registers fn to run after every persisted mutation. The returned
// func removes it.
func (s *Store) Subscribe(fn func(model.TaskList)) func() {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// commitLocked persists and returns the observers to notify once the lock is released.
func (s *Store) commitLocked() (model.TaskList, []func(model.TaskList)) {
	s.saveLocked()
	fns := make([]func(model.TaskList), 0, len(s.observers))
	ids := make([]int, 0, len(s.observers))
	for id := range s.observers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		fns = append(fns, s.observers[id])
	}
	return s.list.Clone(), fns
}

func notify(l model.TaskList, fns []func(model.TaskList)) {
	for _, fn := range fns {
		fn(l)
	}
}

// mutate runs fn under the lock and, if it reports a change, persists and
// notifies observers.
func (s *Store) mutate(fn func() bool) bool {
	s.mu.Lock()
	if !fn() {
		s.mu.Unlock()
		return false
	}
	l, fns := s.commitLocked()
	s.mu.Unlock()
	notify(l, fns)
	return true
}

// CreateTask inserts a blank task right after afterID, or at the end when
// afterID is empty or unknown, and returns the new id.
func (s *Store) CreateTask(afterID string) string {
	var id string
	s.mutate(func() bool {
		t := model.NewBlankTask(s.newID(), s.clock())
		id = t.ID
		at := len(s.list.Active)
		if i := s.list.IndexOf(afterID); afterID != "" && i >= 0 {
			at = i + 1
		}
		s.list.Active = append(s.list.Active, model.Task{})
		copy(s.list.Active[at+1:], s.list.Active[at:])
		s.list.Active[at] = t
		return true
	})
	return id
}

// DeleteTask removes id from the active list and returns the id that should
// take focus: the previous sibling, else the new first task. Deleting the
// only active task (or an unknown id) is refused and ok is false.
func (s *Store) DeleteTask(id string) (focusID string, ok bool) {
	ok = s.mutate(func() bool {
		i := s.list.IndexOf(id)
		if i < 0 || len(s.list.Active) <= 1 {
			return false
		}
		s.list.Active = append(s.list.Active[:i], s.list.Active[i+1:]...)
		focusID = s.list.Active[max(0, i-1)].ID
		return true
	})
	return focusID, ok
}

// SetText updates a task's text in place. Unknown ids are a no-op.
func (s *Store) SetText(id, text string) bool {
	return s.mutate(func() bool {
		i := s.list.IndexOf(id)
		if i < 0 {
			return false
		}
		s.list.Active[i].Text = text
		return true
	})
}

// SetChecked sets the checkbox. Checking starts the grace period; unchecking
// cancels it.
func (s *Store) SetChecked(id string, checked bool) bool {
	return s.mutate(func() bool {
		i := s.list.IndexOf(id)
		if i < 0 {
			return false
		}
		t := &s.list.Active[i]
		t.Checked = checked
		if checked {
			p := s.clock().Add(model.GracePeriod)
			t.PendingArchiveAt = &p
		} else {
			t.PendingArchiveAt = nil
		}
		return true
	})
}

// RestoreTask moves an archived task back to the head of the active list,
// unchecked and with its original id.
func (s *Store) RestoreTask(id string) bool {
	return s.mutate(func() bool {
		i := s.list.ArchivedIndexOf(id)
		if i < 0 {
			return false
		}
		t := s.list.Archived[i].Restore()
		s.list.Archived = append(s.list.Archived[:i], s.list.Archived[i+1:]...)
		s.list.Active = append([]model.Task{t}, s.list.Active...)
		return true
	})
}

func (s *Store) DeleteArchived(id string) bool {
	return s.mutate(func() bool {
		i := s.list.ArchivedIndexOf(id)
		if i < 0 {
			return false
		}
		s.list.Archived = append(s.list.Archived[:i], s.list.Archived[i+1:]...)
		return true
	})
}

// ClearArchived empties the archive and returns how many records were removed.
// Confirmation is the caller's job.
func (s *Store) ClearArchived() int {
	var n int
	s.mutate(func() bool {
		n = len(s.list.Archived)
		if n == 0 {
			return false
		}
		s.list.Archived = []model.ArchivedTask{}
		return true
	})
	return n
}

// ArchiveDue runs one archival sweep at now. It persists and notifies only
// when at least one task moved.
func (s *Store) ArchiveDue(now time.Time) int {
	var moved int
	s.mutate(func() bool {
		now = time.UnixMilli(now.UnixMilli())
		s.list, moved = archive.Sweep(s.list, now, func() model.Task {
			return model.NewBlankTask(s.newID(), now)
		})
		return moved > 0
	})
	return moved
}
