package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iron-Ham/taskstack/internal/config"
	"github.com/Iron-Ham/taskstack/internal/errors"
	"github.com/Iron-Ham/taskstack/internal/model"
	"github.com/Iron-Ham/taskstack/internal/store"
	"github.com/Iron-Ham/taskstack/internal/store/storetest"
)

func TestMemoryStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return store.NewMemoryStore()
	})
}

func TestFileStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := store.NewFileStore(t.TempDir())
		require.NoError(t, err)
		return s
	})
}

func TestSQLiteStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
		require.NoError(t, err)
		return s
	})
}

func TestFileStore_SharedAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	writer, err := store.NewFileStore(dir)
	require.NoError(t, err)
	reader, err := store.NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, writer.AppendTask(ctx, model.Task{ID: "t1", UserID: "demo", Title: "x"}))
	require.NoError(t, writer.AppendSlices(ctx, []model.Slice{
		{ID: "s1", TaskID: "t1", Title: "x", SequenceIndex: 1, PlannedMinutes: 15, Status: model.StatusTodo},
	}))

	cands, err := reader.ListSlices(ctx, store.Query{})
	require.NoError(t, err)
	assert.Len(t, cands, 1, "a second instance sees writes on its next call")

	_, err = os.Stat(writer.Path())
	assert.NoError(t, err)
	_, err = os.Stat(writer.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")
}

func TestFileStore_CorruptState(t *testing.T) {
	dir := t.TempDir()
	s, err := store.NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0644))

	_, err = s.ListTasks(context.Background(), "")
	require.Error(t, err)
	var se *errors.StoreError
	require.True(t, errors.As(err, &se), "got %T", err)
	assert.Equal(t, store.BackendFile, se.Backend)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ts.db")
	ctx := context.Background()

	s, err := store.NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.AppendTask(ctx, model.Task{ID: "t1", UserID: "demo", Title: "x", Category: model.CategoryGeneric}))
	require.NoError(t, s.Close())

	s, err = store.NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	tasks, err := s.ListTasks(ctx, "demo")
	require.NoError(t, err)
	assert.Len(t, tasks, 1, "migration must not drop existing data")
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     config.StoreConfig
		check   func(t *testing.T, s store.Store)
		wantErr bool
	}{
		{
			name: "memory",
			cfg:  config.StoreConfig{Backend: "memory"},
			check: func(t *testing.T, s store.Store) {
				assert.IsType(t, &store.MemoryStore{}, s)
			},
		},
		{
			name: "file",
			cfg:  config.StoreConfig{Backend: "file", DataDir: filepath.Join(dir, "file")},
			check: func(t *testing.T, s store.Store) {
				assert.IsType(t, &store.FileStore{}, s)
			},
		},
		{
			name: "sqlite",
			cfg:  config.StoreConfig{Backend: "sqlite", DataDir: filepath.Join(dir, "sql")},
			check: func(t *testing.T, s store.Store) {
				assert.IsType(t, &store.SQLiteStore{}, s)
				_, err := os.Stat(filepath.Join(dir, "sql", "taskstack.db"))
				assert.NoError(t, err)
			},
		},
		{
			name:    "unknown",
			cfg:     config.StoreConfig{Backend: "postgres"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := store.Open(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errors.ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			defer s.Close()
			tt.check(t, s)
		})
	}
}
