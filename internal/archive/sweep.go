// Package archive moves checked tasks out of the active list once their grace
// period has elapsed.
package archive

import (
	"time"

	"home-cli/internal/model"
)

// Sweep partitions l.Active into tasks that stay and tasks that are due at now.
// Due tasks are appended to the archive in their active-list order with
// ArchivedAt = now. If nothing stays, blank supplies the replacement task so
// the active list is never empty.
//
// When nothing is due, Sweep returns l unchanged and moved == 0.
func Sweep(l model.TaskList, now time.Time, blank func() model.Task) (next model.TaskList, moved int) {
	stays := make([]model.Task, 0, len(l.Active))
	var archived []model.ArchivedTask
	for _, t := range l.Active {
		if t.Due(now) {
			archived = append(archived, t.Archive(now))
			continue
		}
		stays = append(stays, t)
	}
	if len(archived) == 0 {
		return l, 0
	}
	if len(stays) == 0 {
		stays = append(stays, blank())
	}

	all := make([]model.ArchivedTask, 0, len(l.Archived)+len(archived))
	all = append(all, l.Archived...)
	all = append(all, archived...)
	return model.TaskList{Active: stays, Archived: all}, len(archived)
}

// NextDue returns the earliest pending archive time among checked tasks.
func NextDue(l model.TaskList) (time.Time, bool) {
	var best time.Time
	found := false
	for _, t := range l.Active {
		if !t.Checked || t.PendingArchiveAt == nil {
			continue
		}
		if !found || t.PendingArchiveAt.Before(best) {
			best = *t.PendingArchiveAt
			found = true
		}
	}
	return best, found
}
