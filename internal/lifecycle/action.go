// Package lifecycle applies user actions (done, skip, snooze, +15) to a
// slice and describes the resulting writes. The handler works on a
// snapshot supplied by the caller and never touches storage itself; the
// caller persists the returned Outcome.
package lifecycle

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Iron-Ham/taskstack/internal/errors"
	"github.com/Iron-Ham/taskstack/internal/model"
	"github.com/Iron-Ham/taskstack/internal/scheduler"
)

// Action is a user response to the current slice.
type Action string

const (
	// ActionDone marks the slice done.
	ActionDone Action = "done"
	// ActionSkip records a skip; the slice stays todo.
	ActionSkip Action = "skip"
	// ActionSnooze hides the slice from selection for a while.
	ActionSnooze Action = "snooze"
	// ActionExtend marks the slice done and queues a 15-minute continuation.
	ActionExtend Action = "+15"
)

// DefaultSnoozeMinutes is used when a snooze request carries no duration.
const DefaultSnoozeMinutes = 15

// ContinuationPrefix starts the title of every continuation slice.
const ContinuationPrefix = "Continue: "

// Actions lists the canonical actions.
func Actions() []Action {
	return []Action{ActionDone, ActionSkip, ActionSnooze, ActionExtend}
}

// ParseAction parses a case-insensitive action name. "extend" is accepted
// as an alias for "+15".
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "done":
		return ActionDone, nil
	case "skip":
		return ActionSkip, nil
	case "snooze":
		return ActionSnooze, nil
	case "+15", "extend":
		return ActionExtend, nil
	}
	return "", errors.NewValidationError("unknown action").WithField("action").WithValue(s)
}

// Request asks the handler to apply Action to SliceID.
type Request struct {
	SliceID       string
	Action        Action
	SnoozeMinutes int
}

// Patch is an absolute overwrite of the non-nil slice fields.
type Patch struct {
	Status       *model.SliceStatus
	SnoozedUntil *time.Time
	DoneAt       *time.Time
}

// Reindex moves a slice to a new sequence index.
type Reindex struct {
	SliceID       string
	SequenceIndex float64
}

// Outcome is everything the caller has to write for one action.
type Outcome struct {
	Slice  model.Candidate
	Action Action

	// Patch applies to Slice. Nil for skip.
	Patch *Patch

	// SkipDelta is added to the slice's stored skip count.
	SkipDelta int

	// Renumber is set when a continuation could not fit between two
	// siblings; it lists the new index of every slice of the task whose
	// index changed. Apply it before appending Continuation.
	Renumber []Reindex

	// Continuation is the new slice created by +15.
	Continuation *model.Slice
}

// Handler applies actions against a snapshot of candidates. The zero value
// reads the system clock, generates UUIDs and snoozes for 15 minutes.
type Handler struct {
	Clock                scheduler.Clock
	NewID                func() string
	DefaultSnoozeMinutes int
}

// Apply validates req against cands and returns the writes it implies.
// cands should hold every slice of the affected task, done ones included,
// so a continuation can be placed relative to its siblings.
func (h *Handler) Apply(cands []model.Candidate, req Request) (Outcome, error) {
	action, err := ParseAction(string(req.Action))
	if err != nil {
		return Outcome{}, err
	}

	cur, ok := find(cands, req.SliceID)
	if !ok {
		return Outcome{}, errors.SliceNotFound(req.SliceID)
	}
	if cur.Status.IsTerminal() {
		return Outcome{}, errors.NewTransitionError(cur.ID, cur.Status.String(), action.String())
	}

	now := scheduler.OrSystem(h.Clock).Now()
	out := Outcome{Slice: cur, Action: action}

	switch action {
	case ActionDone:
		out.Patch = donePatch(now)

	case ActionSkip:
		out.SkipDelta = 1

	case ActionSnooze:
		minutes := req.SnoozeMinutes
		if minutes <= 0 {
			minutes = h.snoozeDefault()
		}
		until := now.Add(time.Duration(minutes) * time.Minute)
		out.Patch = &Patch{SnoozedUntil: &until}

	case ActionExtend:
		out.Patch = donePatch(now)
		idx, renumber := placeContinuation(cands, cur)
		out.Renumber = renumber
		out.Continuation = &model.Slice{
			ID:             h.newID(),
			TaskID:         cur.TaskID,
			Title:          ContinuationPrefix + cur.Task.Title,
			SequenceIndex:  idx,
			PlannedMinutes: model.SliceMinutes,
			Status:         model.StatusTodo,
		}
	}

	return out, nil
}

func (h *Handler) snoozeDefault() int {
	if h.DefaultSnoozeMinutes > 0 {
		return h.DefaultSnoozeMinutes
	}
	return DefaultSnoozeMinutes
}

func (h *Handler) newID() string {
	if h.NewID != nil {
		return h.NewID()
	}
	return uuid.New().String()
}

func donePatch(now time.Time) *Patch {
	status := model.StatusDone
	return &Patch{Status: &status, DoneAt: &now}
}

func find(cands []model.Candidate, id string) (model.Candidate, bool) {
	for _, c := range cands {
		if c.ID == id {
			return c, true
		}
	}
	return model.Candidate{}, false
}

// placeContinuation picks the sequence index for a slice that follows cur.
// The default is cur+0.5. When the next sibling already sits at or below
// that (a continuation of a continuation) the midpoint is used instead, and
// when float precision leaves no room in between, the task is renumbered
// 1..N first.
func placeContinuation(cands []model.Candidate, cur model.Candidate) (float64, []Reindex) {
	idx := cur.SequenceIndex + 0.5

	next, hasNext := nextSibling(cands, cur)
	if !hasNext || next > idx {
		return idx, nil
	}

	mid := cur.SequenceIndex + (next-cur.SequenceIndex)/2
	if mid > cur.SequenceIndex && mid < next {
		return mid, nil
	}

	siblings := make([]model.Slice, 0, len(cands))
	for _, c := range cands {
		if c.TaskID == cur.TaskID {
			siblings = append(siblings, c.Slice)
		}
	}
	model.SortBySequence(siblings)

	var renumber []Reindex
	newCur := cur.SequenceIndex
	for i, s := range siblings {
		want := float64(i + 1)
		if s.ID == cur.ID {
			newCur = want
		}
		if s.SequenceIndex != want {
			renumber = append(renumber, Reindex{SliceID: s.ID, SequenceIndex: want})
		}
	}
	return newCur + 0.5, renumber
}

// nextSibling returns the smallest sequence index of the task above cur.
func nextSibling(cands []model.Candidate, cur model.Candidate) (float64, bool) {
	var (
		next  float64
		found bool
	)
	for _, c := range cands {
		if c.TaskID != cur.TaskID || c.ID == cur.ID {
			continue
		}
		if c.SequenceIndex <= cur.SequenceIndex {
			continue
		}
		if !found || c.SequenceIndex < next {
			next = c.SequenceIndex
			found = true
		}
	}
	return next, found
}

// String renders the action for logs and CLI output.
func (a Action) String() string {
	return string(a)
}

// Describe returns a short past-tense summary of an outcome.
func (o Outcome) Describe() string {
	switch o.Action {
	case ActionDone:
		return fmt.Sprintf("done: %s", o.Slice.Title)
	case ActionSkip:
		return fmt.Sprintf("skipped: %s", o.Slice.Title)
	case ActionSnooze:
		if o.Patch != nil && o.Patch.SnoozedUntil != nil {
			return fmt.Sprintf("snoozed until %s: %s", o.Patch.SnoozedUntil.Format(time.Kitchen), o.Slice.Title)
		}
		return fmt.Sprintf("snoozed: %s", o.Slice.Title)
	case ActionExtend:
		return fmt.Sprintf("done: %s (queued %q)", o.Slice.Title, o.Continuation.Title)
	}
	return string(o.Action)
}
