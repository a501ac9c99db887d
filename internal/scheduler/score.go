// Package scheduler scores slices and picks the one to work on next.
//
// A slice's score is its task's importance plus due-date urgency minus a
// saturating skip penalty:
//
//	score = importance(default 3) + urgency(due) - min(skips, 3)
//
// The selector drops slices that are done or still snoozed, then orders
// the rest by score (highest first) and sequence index (lowest first).
// Nothing in this package mutates its inputs or reads the wall clock
// directly; callers pass a [Clock].
package scheduler

import (
	"time"

	"github.com/Iron-Ham/taskstack/internal/model"
)

const (
	// MaxSkipPenalty caps the deduction from repeated skipping.
	MaxSkipPenalty = 3

	urgencyOverdue  = 3
	urgencyToday    = 2
	urgencyThisWeek = 1

	dueSoonWindow  = 24 * time.Hour
	dueLaterWindow = 72 * time.Hour
)

// Urgency converts a due date into a score component: 3 when overdue,
// 2 when due within 24h, 1 within 72h, 0 otherwise or with no due date.
func Urgency(due *time.Time, now time.Time) int {
	if due == nil {
		return 0
	}
	until := due.Sub(now)
	switch {
	case until < 0:
		return urgencyOverdue
	case until < dueSoonWindow:
		return urgencyToday
	case until < dueLaterWindow:
		return urgencyThisWeek
	default:
		return 0
	}
}

// SkipPenalty returns min(skipCount, 3). Negative counts carry no penalty.
func SkipPenalty(skipCount int) int {
	if skipCount <= 0 {
		return 0
	}
	return min(skipCount, MaxSkipPenalty)
}

// Score computes the priority of slice within task at now.
func Score(slice model.Slice, task model.Task, now time.Time) int {
	return task.EffectiveImportance() + Urgency(task.DueAt, now) - SkipPenalty(slice.SkipCount)
}
