package store

import (
	"context"
	"sync"

	"github.com/Iron-Ham/taskstack/internal/model"
)

// MemoryStore keeps everything in process memory. Safe for concurrent use.
type MemoryStore struct {
	mu sync.RWMutex
	st *state
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{st: newState()}
}

// AppendTask implements Store.
func (m *MemoryStore) AppendTask(_ context.Context, task model.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.appendTask(task)
}

// AppendSlices implements Store.
func (m *MemoryStore) AppendSlices(_ context.Context, slices []model.Slice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.appendSlices(slices)
}

// ListSlices implements Store.
func (m *MemoryStore) ListSlices(_ context.Context, q Query) ([]model.Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.listSlices(q), nil
}

// ListTasks implements Store.
func (m *MemoryStore) ListTasks(_ context.Context, userID string) ([]model.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.listTasks(userID), nil
}

// PatchSlice implements Store.
func (m *MemoryStore) PatchSlice(_ context.Context, id string, p SlicePatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.patchSlice(id, p)
}

// IncrementSkipCount implements Store.
func (m *MemoryStore) IncrementSkipCount(_ context.Context, id string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.incrementSkipCount(id, delta)
}

// PatchTask implements Store.
func (m *MemoryStore) PatchTask(_ context.Context, id string, p TaskPatch) (model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.patchTask(id, p)
}

// DeleteTask implements Store.
func (m *MemoryStore) DeleteTask(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.deleteTask(id)
}

// DeleteSlice implements Store.
func (m *MemoryStore) DeleteSlice(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.deleteSlice(id)
}

// Close implements Store. It is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}
