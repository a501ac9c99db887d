package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Iron-Ham/taskstack/internal/errors"
	"github.com/Iron-Ham/taskstack/internal/model"
)

// StateFileName is the FileStore's JSON file inside its data directory.
const StateFileName = "taskstack-state.json"

// FileStore keeps the full data set in one JSON file. Every operation
// takes the directory's flock, re-reads the file, and (for writes) saves
// it atomically via a temp file and rename, so several processes can
// share the directory.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.NewStoreError("create data dir", err).WithBackend(BackendFile)
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the state file location.
func (f *FileStore) Path() string {
	return filepath.Join(f.dir, StateFileName)
}

// view runs fn against a freshly loaded state without saving.
func (f *FileStore) view(op string, fn func(*state) error) error {
	return f.withState(op, false, fn)
}

// update runs fn against a freshly loaded state and saves the result when
// fn succeeds.
func (f *FileStore) update(op string, fn func(*state) error) error {
	return f.withState(op, true, fn)
}

func (f *FileStore) withState(op string, save bool, fn func(*state) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fl := NewFileLock(f.dir)
	if err := fl.Lock(); err != nil {
		return errors.NewStoreError(op, fmt.Errorf("acquire lock: %w", err)).
			WithBackend(BackendFile).WithRetryable(true)
	}
	defer func() { _ = fl.Unlock() }()

	st, err := f.load()
	if err != nil {
		return errors.NewStoreError(op, err).WithBackend(BackendFile)
	}

	if err := fn(st); err != nil {
		return err
	}

	if !save {
		return nil
	}
	if err := f.save(st); err != nil {
		return errors.NewStoreError(op, err).WithBackend(BackendFile)
	}
	return nil
}

func (f *FileStore) load() (*state, error) {
	data, err := os.ReadFile(f.Path())
	if os.IsNotExist(err) {
		return newState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}

	st := newState()
	if err := json.Unmarshal(data, st); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}
	st.ensure()
	return st, nil
}

func (f *FileStore) save(st *state) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	target := f.Path()
	tmp := target + ".tmp"

	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// AppendTask implements Store.
func (f *FileStore) AppendTask(_ context.Context, task model.Task) error {
	return f.update("append task", func(st *state) error {
		return st.appendTask(task)
	})
}

// AppendSlices implements Store.
func (f *FileStore) AppendSlices(_ context.Context, slices []model.Slice) error {
	return f.update("append slices", func(st *state) error {
		return st.appendSlices(slices)
	})
}

// ListSlices implements Store.
func (f *FileStore) ListSlices(_ context.Context, q Query) ([]model.Candidate, error) {
	var out []model.Candidate
	err := f.view("list slices", func(st *state) error {
		out = st.listSlices(q)
		return nil
	})
	return out, err
}

// ListTasks implements Store.
func (f *FileStore) ListTasks(_ context.Context, userID string) ([]model.Task, error) {
	var out []model.Task
	err := f.view("list tasks", func(st *state) error {
		out = st.listTasks(userID)
		return nil
	})
	return out, err
}

// PatchSlice implements Store.
func (f *FileStore) PatchSlice(_ context.Context, id string, p SlicePatch) error {
	return f.update("patch slice", func(st *state) error {
		return st.patchSlice(id, p)
	})
}

// IncrementSkipCount implements Store.
func (f *FileStore) IncrementSkipCount(_ context.Context, id string, delta int) error {
	return f.update("increment skip count", func(st *state) error {
		return st.incrementSkipCount(id, delta)
	})
}

// PatchTask implements Store.
func (f *FileStore) PatchTask(_ context.Context, id string, p TaskPatch) (model.Task, error) {
	var out model.Task
	err := f.update("patch task", func(st *state) error {
		t, err := st.patchTask(id, p)
		out = t
		return err
	})
	return out, err
}

// DeleteTask implements Store.
func (f *FileStore) DeleteTask(_ context.Context, id string) error {
	return f.update("delete task", func(st *state) error {
		return st.deleteTask(id)
	})
}

// DeleteSlice implements Store.
func (f *FileStore) DeleteSlice(_ context.Context, id string) error {
	return f.update("delete slice", func(st *state) error {
		return st.deleteSlice(id)
	})
}

// Close implements Store. The FileStore holds no open handles between calls.
func (f *FileStore) Close() error {
	return nil
}
