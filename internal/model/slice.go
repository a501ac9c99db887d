package model

import (
	"sort"
	"time"
)

// SliceStatus represents the lifecycle state of a slice.
type SliceStatus string

const (
	// StatusTodo indicates the slice is waiting to be worked on.
	StatusTodo SliceStatus = "todo"

	// StatusDoing indicates the slice is in progress.
	StatusDoing SliceStatus = "doing"

	// StatusDone indicates the slice is finished. Terminal.
	StatusDone SliceStatus = "done"
)

// String returns the string representation of the status.
func (s SliceStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further action may change the slice.
func (s SliceStatus) IsTerminal() bool {
	return s == StatusDone
}

// Valid reports whether s is one of the known statuses.
func (s SliceStatus) Valid() bool {
	return s == StatusTodo || s == StatusDoing || s == StatusDone
}

// Slice is a single 15-minute actionable unit belonging to one task.
//
// SequenceIndex orders slices within a task. Continuation slices take a
// fractional index between two siblings so nothing has to be renumbered.
type Slice struct {
	ID             string      `json:"id"`
	TaskID         string      `json:"task_id"`
	Title          string      `json:"title"`
	SequenceIndex  float64     `json:"sequence_index"`
	PlannedMinutes int         `json:"planned_minutes"`
	Status         SliceStatus `json:"status"`
	SkipCount      int         `json:"skip_count"`
	SnoozedUntil   *time.Time  `json:"snoozed_until,omitempty"`
	DoneAt         *time.Time  `json:"done_at,omitempty"`
}

// Snoozed reports whether the slice is excluded from selection at now.
// A snooze that has already expired counts as not snoozed; it is never
// cleared explicitly.
func (s Slice) Snoozed(now time.Time) bool {
	return s.SnoozedUntil != nil && s.SnoozedUntil.After(now)
}

// Candidate is a slice joined with its owning task.
type Candidate struct {
	Slice
	Task Task `json:"task"`
}

// SortBySequence orders slices of the same task by SequenceIndex.
func SortBySequence(slices []Slice) {
	sort.SliceStable(slices, func(i, j int) bool {
		return slices[i].SequenceIndex < slices[j].SequenceIndex
	})
}

// Join attaches each slice to its task and drops slices whose task is not
// in tasks. The order of slices is preserved.
func Join(slices []Slice, tasks map[string]Task) []Candidate {
	out := make([]Candidate, 0, len(slices))
	for _, s := range slices {
		t, ok := tasks[s.TaskID]
		if !ok {
			continue
		}
		out = append(out, Candidate{Slice: s, Task: t})
	}
	return out
}
