// Package model defines the records exchanged between the decomposition
// engine, the scheduler, the action handler and the storage backends.
package model

import "time"

const (
	// SliceMinutes is the fixed length of every slice.
	SliceMinutes = 15

	// MaxSlices caps how many slices a single task generates.
	MaxSlices = 32

	// DefaultImportance is used when a task carries no importance.
	DefaultImportance = 3

	// MinImportance and MaxImportance bound Task.Importance.
	MinImportance = 1
	MaxImportance = 5

	// DefaultUserID owns tasks captured without a user.
	DefaultUserID = "demo"
)

// Task is a user-level unit of work that is broken into slices.
type Task struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	Title           string     `json:"title"`
	Category        Category   `json:"category"`
	Importance      int        `json:"importance"`
	EstimateMinutes int        `json:"estimate_minutes"`
	DueAt           *time.Time `json:"due_at,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	Link            string     `json:"link,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// EffectiveImportance returns the importance used for scoring, falling back
// to DefaultImportance when unset.
func (t Task) EffectiveImportance() int {
	if t.Importance <= 0 {
		return DefaultImportance
	}
	return t.Importance
}
