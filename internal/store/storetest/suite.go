// Package storetest is a conformance suite run against every store
// backend.
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iron-Ham/taskstack/internal/errors"
	"github.com/Iron-Ham/taskstack/internal/model"
	"github.com/Iron-Ham/taskstack/internal/store"
)

// Factory returns a fresh, empty store. The suite closes it.
type Factory func(t *testing.T) store.Store

var base = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

// Run executes every conformance test against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"AppendAndList", testAppendAndList},
		{"TodoOnlyAndUserFilter", testFilters},
		{"ListTasksNewestFirst", testListTasks},
		{"AppendSlicesUnknownTask", testAppendSlicesUnknownTask},
		{"PatchSlice", testPatchSlice},
		{"PatchSliceNotFound", testPatchSliceNotFound},
		{"IncrementSkipCount", testIncrementSkipCount},
		{"PatchTask", testPatchTask},
		{"DeleteTaskCascades", testDeleteTaskCascades},
		{"DeleteTaskNotFound", testDeleteTaskNotFound},
		{"DeleteSlice", testDeleteSlice},
		{"EmptyListsAreNotNil", testEmptyLists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			t.Cleanup(func() { _ = s.Close() })
			tt.fn(t, s)
		})
	}
}

// seed stores a task created at base+offset with n todo slices.
func seed(t *testing.T, s store.Store, id, user string, offset time.Duration, n int) model.Task {
	t.Helper()
	task := model.Task{
		ID:              id,
		UserID:          user,
		Title:           "Task " + id,
		Category:        model.CategoryGeneric,
		Importance:      3,
		EstimateMinutes: n * model.SliceMinutes,
		CreatedAt:       base.Add(offset),
	}
	require.NoError(t, s.AppendTask(context.Background(), task))

	slices := make([]model.Slice, n)
	for i := range slices {
		slices[i] = model.Slice{
			ID:             fmt.Sprintf("%s-s%d", id, i+1),
			TaskID:         id,
			Title:          fmt.Sprintf("Step %d of %s", i+1, id),
			SequenceIndex:  float64(i + 1),
			PlannedMinutes: model.SliceMinutes,
			Status:         model.StatusTodo,
		}
	}
	require.NoError(t, s.AppendSlices(context.Background(), slices))
	return task
}

func find(cands []model.Candidate, id string) (model.Candidate, bool) {
	for _, c := range cands {
		if c.ID == id {
			return c, true
		}
	}
	return model.Candidate{}, false
}

func testAppendAndList(t *testing.T, s store.Store) {
	ctx := context.Background()
	due := base.Add(48 * time.Hour)

	task := model.Task{
		ID:              "t1",
		UserID:          "alice",
		Title:           "Renew passport",
		Category:        model.CategoryAdmin,
		Importance:      4,
		EstimateMinutes: 30,
		DueAt:           &due,
		Notes:           "photos first",
		Link:            "https://example.com",
		CreatedAt:       base,
	}
	require.NoError(t, s.AppendTask(ctx, task))
	require.NoError(t, s.AppendSlices(ctx, []model.Slice{
		{ID: "s2", TaskID: "t1", Title: "second", SequenceIndex: 2, PlannedMinutes: 15, Status: model.StatusTodo},
		{ID: "s1", TaskID: "t1", Title: "first", SequenceIndex: 1, PlannedMinutes: 15, Status: model.StatusTodo},
	}))

	cands, err := s.ListSlices(ctx, store.Query{})
	require.NoError(t, err)
	require.Len(t, cands, 2)

	assert.Equal(t, "s1", cands[0].ID, "slices should be ordered by sequence index")
	assert.Equal(t, "s2", cands[1].ID)

	got := cands[0]
	assert.Equal(t, "first", got.Title)
	assert.Equal(t, 1.0, got.SequenceIndex)
	assert.Equal(t, 15, got.PlannedMinutes)
	assert.Equal(t, model.StatusTodo, got.Status)
	assert.Equal(t, 0, got.SkipCount)
	assert.Nil(t, got.SnoozedUntil)
	assert.Nil(t, got.DoneAt)

	assert.Equal(t, "t1", got.Task.ID)
	assert.Equal(t, "alice", got.Task.UserID)
	assert.Equal(t, "Renew passport", got.Task.Title)
	assert.Equal(t, model.CategoryAdmin, got.Task.Category)
	assert.Equal(t, 4, got.Task.Importance)
	assert.Equal(t, 30, got.Task.EstimateMinutes)
	assert.Equal(t, "photos first", got.Task.Notes)
	assert.Equal(t, "https://example.com", got.Task.Link)
	require.NotNil(t, got.Task.DueAt)
	assert.True(t, got.Task.DueAt.Equal(due), "due date round trip: %v", got.Task.DueAt)
	assert.True(t, got.Task.CreatedAt.Equal(base), "created_at round trip: %v", got.Task.CreatedAt)
}

func testFilters(t *testing.T, s store.Store) {
	ctx := context.Background()
	seed(t, s, "a", "alice", 0, 2)
	seed(t, s, "b", "bob", time.Minute, 1)

	done := model.StatusDone
	now := base.Add(time.Hour)
	require.NoError(t, s.PatchSlice(ctx, "a-s1", store.SlicePatch{Status: &done, DoneAt: &now}))

	all, err := s.ListSlices(ctx, store.Query{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	todo, err := s.ListSlices(ctx, store.Query{TodoOnly: true})
	require.NoError(t, err)
	assert.Len(t, todo, 2)
	_, found := find(todo, "a-s1")
	assert.False(t, found, "done slice should be filtered out")

	alice, err := s.ListSlices(ctx, store.Query{UserID: "alice"})
	require.NoError(t, err)
	assert.Len(t, alice, 2)
	for _, c := range alice {
		assert.Equal(t, "alice", c.Task.UserID)
	}

	aliceTodo, err := s.ListSlices(ctx, store.Query{UserID: "alice", TodoOnly: true})
	require.NoError(t, err)
	require.Len(t, aliceTodo, 1)
	assert.Equal(t, "a-s2", aliceTodo[0].ID)

	nobody, err := s.ListSlices(ctx, store.Query{UserID: "carol"})
	require.NoError(t, err)
	assert.Empty(t, nobody)
}

func testListTasks(t *testing.T, s store.Store) {
	ctx := context.Background()
	seed(t, s, "old", "alice", 0, 1)
	seed(t, s, "new", "alice", time.Hour, 1)
	seed(t, s, "other", "bob", 2*time.Hour, 1)

	tasks, err := s.ListTasks(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "new", tasks[0].ID)
	assert.Equal(t, "old", tasks[1].ID)

	all, err := s.ListTasks(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func testAppendSlicesUnknownTask(t *testing.T, s store.Store) {
	err := s.AppendSlices(context.Background(), []model.Slice{
		{ID: "orphan", TaskID: "ghost", Title: "x", SequenceIndex: 1, PlannedMinutes: 15, Status: model.StatusTodo},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTaskNotFound), "got %v", err)

	cands, err := s.ListSlices(context.Background(), store.Query{})
	require.NoError(t, err)
	assert.Empty(t, cands)
}

func testPatchSlice(t *testing.T, s store.Store) {
	ctx := context.Background()
	seed(t, s, "a", "alice", 0, 2)

	first := base.Add(10 * time.Minute)
	require.NoError(t, s.PatchSlice(ctx, "a-s1", store.SlicePatch{SnoozedUntil: &first}))

	second := base.Add(40 * time.Minute)
	require.NoError(t, s.PatchSlice(ctx, "a-s1", store.SlicePatch{SnoozedUntil: &second}))

	idx := 1.5
	require.NoError(t, s.PatchSlice(ctx, "a-s2", store.SlicePatch{SequenceIndex: &idx}))

	cands, err := s.ListSlices(ctx, store.Query{})
	require.NoError(t, err)

	got, ok := find(cands, "a-s1")
	require.True(t, ok)
	require.NotNil(t, got.SnoozedUntil)
	assert.True(t, got.SnoozedUntil.Equal(second), "snooze should be overwritten, got %v", got.SnoozedUntil)
	assert.Equal(t, model.StatusTodo, got.Status, "unset fields are left alone")
	assert.Nil(t, got.DoneAt)

	moved, ok := find(cands, "a-s2")
	require.True(t, ok)
	assert.Equal(t, 1.5, moved.SequenceIndex)

	done := model.StatusDone
	doneAt := base.Add(time.Hour)
	require.NoError(t, s.PatchSlice(ctx, "a-s1", store.SlicePatch{Status: &done, DoneAt: &doneAt}))
	cands, err = s.ListSlices(ctx, store.Query{})
	require.NoError(t, err)
	got, _ = find(cands, "a-s1")
	assert.Equal(t, model.StatusDone, got.Status)
	require.NotNil(t, got.DoneAt)
	assert.True(t, got.DoneAt.Equal(doneAt))
	require.NotNil(t, got.SnoozedUntil, "patching status keeps the snooze")
}

func testPatchSliceNotFound(t *testing.T, s store.Store) {
	done := model.StatusDone
	err := s.PatchSlice(context.Background(), "missing", store.SlicePatch{Status: &done})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	assert.True(t, errors.Is(err, errors.ErrSliceNotFound))
}

func testIncrementSkipCount(t *testing.T, s store.Store) {
	ctx := context.Background()
	seed(t, s, "a", "alice", 0, 1)

	require.NoError(t, s.IncrementSkipCount(ctx, "a-s1", 1))
	require.NoError(t, s.IncrementSkipCount(ctx, "a-s1", 1))
	require.NoError(t, s.IncrementSkipCount(ctx, "a-s1", 3))

	cands, err := s.ListSlices(ctx, store.Query{})
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, 5, cands[0].SkipCount, "increments are added, not assigned")

	err = s.IncrementSkipCount(ctx, "missing", 1)
	assert.True(t, errors.Is(err, errors.ErrSliceNotFound), "got %v", err)

	err = s.IncrementSkipCount(ctx, "a-s1", -1)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput), "got %v", err)
}

func testPatchTask(t *testing.T, s store.Store) {
	ctx := context.Background()
	task := seed(t, s, "a", "alice", 0, 1)

	due := base.Add(24 * time.Hour)
	title := "Renamed"
	importance := 5
	got, err := s.PatchTask(ctx, task.ID, store.TaskPatch{
		Title:      &title,
		Importance: &importance,
		SetDueAt:   true,
		DueAt:      &due,
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, 5, got.Importance)
	require.NotNil(t, got.DueAt)
	assert.True(t, got.DueAt.Equal(due))
	assert.Equal(t, task.EstimateMinutes, got.EstimateMinutes, "unset fields are left alone")

	// Slices see the new task fields
	cands, err := s.ListSlices(ctx, store.Query{})
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, "Renamed", cands[0].Task.Title)

	// SetDueAt with nil clears the date
	got, err = s.PatchTask(ctx, task.ID, store.TaskPatch{SetDueAt: true})
	require.NoError(t, err)
	assert.Nil(t, got.DueAt)

	tasks, err := s.ListTasks(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Nil(t, tasks[0].DueAt)
	assert.Equal(t, "Renamed", tasks[0].Title)

	_, err = s.PatchTask(ctx, "missing", store.TaskPatch{Title: &title})
	assert.True(t, errors.Is(err, errors.ErrTaskNotFound), "got %v", err)
}

func testDeleteTaskCascades(t *testing.T, s store.Store) {
	ctx := context.Background()
	seed(t, s, "keep", "alice", 0, 2)
	seed(t, s, "drop", "alice", time.Minute, 3)

	require.NoError(t, s.DeleteTask(ctx, "drop"))

	cands, err := s.ListSlices(ctx, store.Query{})
	require.NoError(t, err)
	assert.Len(t, cands, 2)
	for _, c := range cands {
		assert.Equal(t, "keep", c.TaskID)
	}

	tasks, err := s.ListTasks(ctx, "")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "keep", tasks[0].ID)

	err = s.IncrementSkipCount(ctx, "drop-s1", 1)
	assert.True(t, errors.Is(err, errors.ErrSliceNotFound), "deleted slices are gone, got %v", err)
}

func testDeleteTaskNotFound(t *testing.T, s store.Store) {
	err := s.DeleteTask(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTaskNotFound))
}

func testDeleteSlice(t *testing.T, s store.Store) {
	ctx := context.Background()
	seed(t, s, "t1", "alice", 0, 3)

	require.NoError(t, s.DeleteSlice(ctx, "t1-s2"))

	cands, err := s.ListSlices(ctx, store.Query{})
	require.NoError(t, err)
	require.Len(t, cands, 2)
	assert.Equal(t, "t1-s1", cands[0].ID)
	assert.Equal(t, "t1-s3", cands[1].ID)

	tasks, err := s.ListTasks(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, tasks, 1, "deleting a slice keeps its task")

	err = s.DeleteSlice(ctx, "t1-s2")
	assert.True(t, errors.Is(err, errors.ErrSliceNotFound), "got %v", err)
}

func testEmptyLists(t *testing.T, s store.Store) {
	ctx := context.Background()

	cands, err := s.ListSlices(ctx, store.Query{UserID: "nobody"})
	require.NoError(t, err)
	assert.NotNil(t, cands)
	assert.Empty(t, cands)

	tasks, err := s.ListTasks(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}
