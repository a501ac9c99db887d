// Package store persists tasks and slices behind a single capability
// interface. Three backends are provided:
//
//   - [MemoryStore]: process-local maps, used by tests and `serve --backend memory`
//   - [FileStore]: one JSON state file guarded by flock(2), shared by CLI processes
//   - [SQLiteStore]: a SQLite database with cascading deletes
//
// Every backend returns slices joined with their task and drops slices
// whose task no longer exists. Unknown ids yield a NotFoundError from
// internal/errors; backend failures are wrapped in a StoreError.
package store

import (
	"context"
	"time"

	"github.com/Iron-Ham/taskstack/internal/model"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Backends lists the valid backend names.
func Backends() []string {
	return []string{BackendMemory, BackendFile, BackendSQLite}
}

// Store is the storage capability the service layer is built on.
type Store interface {
	// AppendTask inserts a new task.
	AppendTask(ctx context.Context, task model.Task) error

	// AppendSlices inserts slices. Every slice must reference an existing task.
	AppendSlices(ctx context.Context, slices []model.Slice) error

	// ListSlices returns slices joined with their task, ordered by task
	// creation time then sequence index.
	ListSlices(ctx context.Context, q Query) ([]model.Candidate, error)

	// ListTasks returns a user's tasks, newest first. An empty user id
	// lists every task.
	ListTasks(ctx context.Context, userID string) ([]model.Task, error)

	// PatchSlice overwrites the non-nil fields of the slice.
	PatchSlice(ctx context.Context, id string, p SlicePatch) error

	// IncrementSkipCount adds delta to the stored skip count.
	IncrementSkipCount(ctx context.Context, id string, delta int) error

	// PatchTask overwrites the set fields of the task and returns it.
	PatchTask(ctx context.Context, id string, p TaskPatch) (model.Task, error)

	// DeleteTask removes a task and all of its slices.
	DeleteTask(ctx context.Context, id string) error

	// DeleteSlice removes a single slice.
	DeleteSlice(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

// Query filters ListSlices.
type Query struct {
	// UserID restricts results to one user. Empty means all users.
	UserID string

	// TodoOnly drops slices that are not in the todo status.
	TodoOnly bool
}

// SlicePatch is an absolute overwrite of the non-nil fields.
type SlicePatch struct {
	Status        *model.SliceStatus
	SnoozedUntil  *time.Time
	DoneAt        *time.Time
	SequenceIndex *float64
}

// TaskPatch is an absolute overwrite of the non-nil fields. DueAt is
// replaced when SetDueAt is true, so a nil DueAt clears it.
type TaskPatch struct {
	Title           *string
	Category        *model.Category
	Importance      *int
	EstimateMinutes *int
	SetDueAt        bool
	DueAt           *time.Time
	Notes           *string
	Link            *string
}

func (p SlicePatch) apply(s *model.Slice) {
	if p.Status != nil {
		s.Status = *p.Status
	}
	if p.SnoozedUntil != nil {
		t := *p.SnoozedUntil
		s.SnoozedUntil = &t
	}
	if p.DoneAt != nil {
		t := *p.DoneAt
		s.DoneAt = &t
	}
	if p.SequenceIndex != nil {
		s.SequenceIndex = *p.SequenceIndex
	}
}

func (p TaskPatch) apply(t *model.Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Importance != nil {
		t.Importance = *p.Importance
	}
	if p.EstimateMinutes != nil {
		t.EstimateMinutes = *p.EstimateMinutes
	}
	if p.SetDueAt {
		if p.DueAt == nil {
			t.DueAt = nil
		} else {
			d := *p.DueAt
			t.DueAt = &d
		}
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	if p.Link != nil {
		t.Link = *p.Link
	}
}
