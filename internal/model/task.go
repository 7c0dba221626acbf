package model

import "time"

// GracePeriod is how long a checked task stays in the active list before it
// becomes eligible for archival.
const GracePeriod = 5 * time.Second

type Task struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	Checked   bool      `json:"checked"`

	// PendingArchiveAt is non-nil iff Checked.
	PendingArchiveAt *time.Time `json:"pendingArchiveAt,omitempty"`
}

type ArchivedTask struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"createdAt"`
	ArchivedAt time.Time `json:"archivedAt"`
}

// TaskList is the full checklist state. Active order is meaningful; Archived
// order is not (callers sort it for display).
type TaskList struct {
	Active   []Task         `json:"active"`
	Archived []ArchivedTask `json:"archived"`
}

func NewBlankTask(id string, now time.Time) Task {
	return Task{ID: id, CreatedAt: now}
}

// Due reports whether t is checked and its grace period has elapsed at now.
func (t Task) Due(now time.Time) bool {
	return t.Checked && t.PendingArchiveAt != nil && !now.Before(*t.PendingArchiveAt)
}

func (t Task) Archive(now time.Time) ArchivedTask {
	return ArchivedTask{
		ID:         t.ID,
		Text:       t.Text,
		CreatedAt:  t.CreatedAt,
		ArchivedAt: now,
	}
}

// Restore turns an archived record back into an unchecked active task with
// the same id.
func (a ArchivedTask) Restore() Task {
	return Task{
		ID:        a.ID,
		Text:      a.Text,
		CreatedAt: a.CreatedAt,
	}
}

func (l TaskList) IndexOf(id string) int {
	for i := range l.Active {
		if l.Active[i].ID == id {
			return i
		}
	}
	return -1
}

func (l TaskList) ArchivedIndexOf(id string) int {
	for i := range l.Archived {
		if l.Archived[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so callers can't alias the store's slices.
func (l TaskList) Clone() TaskList {
	out := TaskList{
		Active:   make([]Task, len(l.Active)),
		Archived: make([]ArchivedTask, len(l.Archived)),
	}
	copy(out.Archived, l.Archived)
	for i, t := range l.Active {
		if t.PendingArchiveAt != nil {
			p := *t.PendingArchiveAt
			t.PendingArchiveAt = &p
		}
		out.Active[i] = t
	}
	return out
}
