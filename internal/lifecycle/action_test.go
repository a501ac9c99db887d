package lifecycle

import (
	"math"
	"testing"
	"time"

	"github.com/Iron-Ham/taskstack/internal/errors"
	"github.com/Iron-Ham/taskstack/internal/model"
	"github.com/Iron-Ham/taskstack/internal/scheduler"
)

var now = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

var task = model.Task{ID: "t1", Title: "Plan vacation", Importance: 3}

func slice(id string, seq float64) model.Candidate {
	return model.Candidate{
		Slice: model.Slice{
			ID:             id,
			TaskID:         task.ID,
			Title:          "slice " + id,
			SequenceIndex:  seq,
			PlannedMinutes: model.SliceMinutes,
			Status:         model.StatusTodo,
		},
		Task: task,
	}
}

func newHandler() *Handler {
	return &Handler{
		Clock: scheduler.FixedClock{T: now},
		NewID: func() string { return "cont" },
	}
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		in      string
		want    Action
		wantErr bool
	}{
		{"done", ActionDone, false},
		{"DONE", ActionDone, false},
		{" skip ", ActionSkip, false},
		{"snooze", ActionSnooze, false},
		{"+15", ActionExtend, false},
		{"extend", ActionExtend, false},
		{"", "", true},
		{"delete", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAction(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAction(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, errors.ErrInvalidInput) {
				t.Errorf("error should be invalid input: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseAction(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestApply_Done(t *testing.T) {
	out, err := newHandler().Apply([]model.Candidate{slice("a", 1)}, Request{SliceID: "a", Action: ActionDone})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if out.Patch == nil || out.Patch.Status == nil || *out.Patch.Status != model.StatusDone {
		t.Fatalf("expected done patch, got %+v", out.Patch)
	}
	if out.Patch.DoneAt == nil || !out.Patch.DoneAt.Equal(now) {
		t.Errorf("DoneAt = %v, want %v", out.Patch.DoneAt, now)
	}
	if out.SkipDelta != 0 || out.Continuation != nil || out.Renumber != nil {
		t.Errorf("done should only patch the slice: %+v", out)
	}
}

func TestApply_Skip(t *testing.T) {
	c := slice("a", 1)
	c.SkipCount = 4
	out, err := newHandler().Apply([]model.Candidate{c}, Request{SliceID: "a", Action: ActionSkip})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if out.SkipDelta != 1 {
		t.Errorf("SkipDelta = %d, want 1", out.SkipDelta)
	}
	if out.Patch != nil {
		t.Errorf("skip should not patch status or times: %+v", out.Patch)
	}
}

func TestApply_Snooze(t *testing.T) {
	tests := []struct {
		name    string
		minutes int
		def     int
		want    time.Duration
	}{
		{"explicit minutes", 45, 0, 45 * time.Minute},
		{"zero uses default", 0, 0, 15 * time.Minute},
		{"negative uses default", -10, 0, 15 * time.Minute},
		{"configured default", 0, 60, time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHandler()
			h.DefaultSnoozeMinutes = tt.def

			c := slice("a", 1)
			earlier := now.Add(5 * time.Hour)
			c.SnoozedUntil = &earlier

			out, err := h.Apply([]model.Candidate{c}, Request{SliceID: "a", Action: ActionSnooze, SnoozeMinutes: tt.minutes})
			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			if out.Patch == nil || out.Patch.SnoozedUntil == nil {
				t.Fatal("expected snooze patch")
			}
			if got := out.Patch.SnoozedUntil.Sub(now); got != tt.want {
				t.Errorf("snoozed for %v, want %v", got, tt.want)
			}
			if out.Patch.Status != nil {
				t.Error("snooze should not change status")
			}
		})
	}
}

func TestApply_Extend(t *testing.T) {
	cands := []model.Candidate{slice("a", 1), slice("b", 2), slice("c", 3)}
	out, err := newHandler().Apply(cands, Request{SliceID: "b", Action: ActionExtend})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if out.Patch == nil || *out.Patch.Status != model.StatusDone || out.Patch.DoneAt == nil {
		t.Fatalf("extend should mark the slice done: %+v", out.Patch)
	}

	cont := out.Continuation
	if cont == nil {
		t.Fatal("expected a continuation slice")
	}
	if cont.SequenceIndex != 2.5 {
		t.Errorf("SequenceIndex = %v, want 2.5", cont.SequenceIndex)
	}
	if cont.Title != "Continue: Plan vacation" {
		t.Errorf("Title = %q", cont.Title)
	}
	if cont.TaskID != task.ID || cont.ID != "cont" {
		t.Errorf("unexpected ids: %+v", cont)
	}
	if cont.Status != model.StatusTodo || cont.PlannedMinutes != 15 || cont.SkipCount != 0 {
		t.Errorf("unexpected continuation defaults: %+v", cont)
	}
	if out.Renumber != nil {
		t.Errorf("no renumbering expected, got %+v", out.Renumber)
	}
}

func TestApply_ExtendAlias(t *testing.T) {
	out, err := newHandler().Apply([]model.Candidate{slice("a", 1)}, Request{SliceID: "a", Action: "extend"})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if out.Action != ActionExtend || out.Continuation == nil {
		t.Errorf("extend alias not applied: %+v", out)
	}
}

func TestApply_ContinuationPlacement(t *testing.T) {
	t.Run("last slice", func(t *testing.T) {
		out, _ := newHandler().Apply([]model.Candidate{slice("a", 1), slice("b", 2)},
			Request{SliceID: "b", Action: ActionExtend})
		if out.Continuation.SequenceIndex != 2.5 {
			t.Errorf("SequenceIndex = %v, want 2.5", out.Continuation.SequenceIndex)
		}
	})

	t.Run("continuation of a continuation uses midpoint", func(t *testing.T) {
		cands := []model.Candidate{slice("a", 2), slice("cont1", 2.5), slice("c", 3)}
		cands[0].Status = model.StatusDone
		out, err := newHandler().Apply(cands, Request{SliceID: "cont1", Action: ActionExtend})
		if err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
		if out.Continuation.SequenceIndex != 2.75 {
			t.Errorf("SequenceIndex = %v, want 2.75", out.Continuation.SequenceIndex)
		}
	})

	t.Run("other tasks are ignored", func(t *testing.T) {
		other := slice("x", 1.2)
		other.TaskID = "t2"
		out, _ := newHandler().Apply([]model.Candidate{slice("a", 1), other, slice("b", 2)},
			Request{SliceID: "a", Action: ActionExtend})
		if out.Continuation.SequenceIndex != 1.5 {
			t.Errorf("SequenceIndex = %v, want 1.5", out.Continuation.SequenceIndex)
		}
	})

	t.Run("exhausted precision renumbers the task", func(t *testing.T) {
		tight := math.Nextafter(1, 2)
		done := slice("z", 0.5)
		done.Status = model.StatusDone
		cands := []model.Candidate{slice("a", 1), slice("b", tight), slice("c", 4), done}

		out, err := newHandler().Apply(cands, Request{SliceID: "a", Action: ActionExtend})
		if err != nil {
			t.Fatalf("Apply() error = %v", err)
		}

		got := map[string]float64{}
		for _, r := range out.Renumber {
			got[r.SliceID] = r.SequenceIndex
		}
		want := map[string]float64{"z": 1, "a": 2, "b": 3}
		for id, idx := range want {
			if got[id] != idx {
				t.Errorf("renumbered %s = %v, want %v", id, got[id], idx)
			}
		}
		if idx, ok := got["c"]; ok {
			t.Errorf("c already sits at 4 and should not be listed, got %v", idx)
		}
		if out.Continuation.SequenceIndex != 2.5 {
			t.Errorf("SequenceIndex = %v, want 2.5", out.Continuation.SequenceIndex)
		}
	})
}

func TestApply_Errors(t *testing.T) {
	done := slice("d", 1)
	done.Status = model.StatusDone
	cands := []model.Candidate{done, slice("a", 2)}

	t.Run("unknown slice", func(t *testing.T) {
		for _, a := range Actions() {
			_, err := newHandler().Apply(cands, Request{SliceID: "missing", Action: a})
			if !errors.Is(err, errors.ErrNotFound) || !errors.Is(err, errors.ErrSliceNotFound) {
				t.Errorf("%s: expected slice not found, got %v", a, err)
			}
		}
	})

	t.Run("terminal slice", func(t *testing.T) {
		for _, a := range Actions() {
			_, err := newHandler().Apply(cands, Request{SliceID: "d", Action: a})
			if !errors.Is(err, errors.ErrInvalidTransition) {
				t.Errorf("%s: expected invalid transition, got %v", a, err)
			}
		}
	})

	t.Run("unknown action", func(t *testing.T) {
		_, err := newHandler().Apply(cands, Request{SliceID: "a", Action: "archive"})
		if !errors.Is(err, errors.ErrInvalidInput) {
			t.Errorf("expected invalid input, got %v", err)
		}
	})
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	cands := []model.Candidate{slice("a", 1), slice("b", 2)}
	if _, err := newHandler().Apply(cands, Request{SliceID: "a", Action: ActionExtend}); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if cands[0].Status != model.StatusTodo || cands[0].DoneAt != nil {
		t.Error("Apply mutated its input")
	}
}

func TestOutcome_Describe(t *testing.T) {
	out, _ := newHandler().Apply([]model.Candidate{slice("a", 1)}, Request{SliceID: "a", Action: ActionExtend})
	want := `done: slice a (queued "Continue: Plan vacation")`
	if got := out.Describe(); got != want {
		t.Errorf("Describe() = %q, want %q", got, want)
	}
}
