package store

import (
	"fmt"
	"sort"

	"github.com/Iron-Ham/taskstack/internal/errors"
	"github.com/Iron-Ham/taskstack/internal/model"
)

// state is the map-based data set shared by MemoryStore and FileStore.
// It is also the FileStore's on-disk JSON shape.
type state struct {
	Tasks  map[string]model.Task  `json:"tasks"`
	Slices map[string]model.Slice `json:"slices"`
}

func newState() *state {
	return &state{
		Tasks:  make(map[string]model.Task),
		Slices: make(map[string]model.Slice),
	}
}

func (s *state) ensure() {
	if s.Tasks == nil {
		s.Tasks = make(map[string]model.Task)
	}
	if s.Slices == nil {
		s.Slices = make(map[string]model.Slice)
	}
}

func (s *state) appendTask(t model.Task) error {
	if t.ID == "" {
		return errors.NewValidationError("task id is required").WithField("id")
	}
	if _, ok := s.Tasks[t.ID]; ok {
		return errors.NewValidationError(fmt.Sprintf("task %s already exists", t.ID)).WithField("id")
	}
	s.Tasks[t.ID] = t
	return nil
}

// appendSlices validates every slice before inserting any of them.
func (s *state) appendSlices(slices []model.Slice) error {
	for _, sl := range slices {
		if sl.ID == "" {
			return errors.NewValidationError("slice id is required").WithField("id")
		}
		if _, ok := s.Tasks[sl.TaskID]; !ok {
			return errors.TaskNotFound(sl.TaskID)
		}
		if _, ok := s.Slices[sl.ID]; ok {
			return errors.NewValidationError(fmt.Sprintf("slice %s already exists", sl.ID)).WithField("id")
		}
	}
	for _, sl := range slices {
		s.Slices[sl.ID] = sl
	}
	return nil
}

func (s *state) listSlices(q Query) []model.Candidate {
	out := make([]model.Candidate, 0, len(s.Slices))
	for _, sl := range s.Slices {
		t, ok := s.Tasks[sl.TaskID]
		if !ok {
			continue
		}
		if q.UserID != "" && t.UserID != q.UserID {
			continue
		}
		if q.TodoOnly && sl.Status != model.StatusTodo {
			continue
		}
		out = append(out, model.Candidate{Slice: sl, Task: t})
	}
	sortCandidates(out)
	return out
}

func (s *state) listTasks(userID string) []model.Task {
	out := make([]model.Task, 0, len(s.Tasks))
	for _, t := range s.Tasks {
		if userID != "" && t.UserID != userID {
			continue
		}
		out = append(out, t)
	}
	sortTasksNewestFirst(out)
	return out
}

func (s *state) patchSlice(id string, p SlicePatch) error {
	sl, ok := s.Slices[id]
	if !ok {
		return errors.SliceNotFound(id)
	}
	p.apply(&sl)
	s.Slices[id] = sl
	return nil
}

func (s *state) incrementSkipCount(id string, delta int) error {
	if delta < 0 {
		return errors.NewValidationError("skip count cannot decrease").WithField("delta").WithValue(delta)
	}
	sl, ok := s.Slices[id]
	if !ok {
		return errors.SliceNotFound(id)
	}
	sl.SkipCount += delta
	s.Slices[id] = sl
	return nil
}

func (s *state) patchTask(id string, p TaskPatch) (model.Task, error) {
	t, ok := s.Tasks[id]
	if !ok {
		return model.Task{}, errors.TaskNotFound(id)
	}
	p.apply(&t)
	s.Tasks[id] = t
	return t, nil
}

func (s *state) deleteSlice(id string) error {
	if _, ok := s.Slices[id]; !ok {
		return errors.SliceNotFound(id)
	}
	delete(s.Slices, id)
	return nil
}

func (s *state) deleteTask(id string) error {
	if _, ok := s.Tasks[id]; !ok {
		return errors.TaskNotFound(id)
	}
	delete(s.Tasks, id)
	for sid, sl := range s.Slices {
		if sl.TaskID == id {
			delete(s.Slices, sid)
		}
	}
	return nil
}

// sortCandidates orders by task creation time, task id, then sequence
// index, matching the SQLite backend's ORDER BY.
func sortCandidates(c []model.Candidate) {
	sort.Slice(c, func(i, j int) bool {
		a, b := c[i], c[j]
		if !a.Task.CreatedAt.Equal(b.Task.CreatedAt) {
			return a.Task.CreatedAt.Before(b.Task.CreatedAt)
		}
		if a.TaskID != b.TaskID {
			return a.TaskID < b.TaskID
		}
		if a.SequenceIndex != b.SequenceIndex {
			return a.SequenceIndex < b.SequenceIndex
		}
		return a.ID < b.ID
	})
}

func sortTasksNewestFirst(t []model.Task) {
	sort.Slice(t, func(i, j int) bool {
		if !t[i].CreatedAt.Equal(t[j].CreatedAt) {
			return t[i].CreatedAt.After(t[j].CreatedAt)
		}
		return t[i].ID < t[j].ID
	})
}
