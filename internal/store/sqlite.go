package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Iron-Ham/taskstack/internal/errors"
	"github.com/Iron-Ham/taskstack/internal/model"
)

// SQLiteStore persists tasks and slices in SQLite. Deleting a task
// cascades to its slices through the foreign key.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at dbPath and
// migrates the schema.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, errors.NewStoreError("create database dir", err).WithBackend(BackendSQLite)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, errors.NewStoreError("open database", err).WithBackend(BackendSQLite)
	}
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, errors.NewStoreError("migrate", err).WithBackend(BackendSQLite)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			category TEXT NOT NULL,
			importance INTEGER NOT NULL DEFAULT 3,
			estimate_minutes INTEGER NOT NULL,
			due_at DATETIME,
			notes TEXT NOT NULL DEFAULT '',
			link TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS slices (
			id TEXT PRIMARY KEY,
			task_id TEXT NOT NULL,
			title TEXT NOT NULL,
			sequence_index REAL NOT NULL,
			planned_minutes INTEGER NOT NULL DEFAULT 15,
			status TEXT NOT NULL DEFAULT 'todo',
			skip_count INTEGER NOT NULL DEFAULT 0,
			snoozed_until DATETIME,
			done_at DATETIME,
			FOREIGN KEY (task_id) REFERENCES tasks(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks(user_id);
		CREATE INDEX IF NOT EXISTS idx_slices_task ON slices(task_id);
		CREATE INDEX IF NOT EXISTS idx_slices_status ON slices(status);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) fail(op string, err error) error {
	return errors.NewStoreError(op, err).WithBackend(BackendSQLite)
}

// AppendTask implements Store.
func (s *SQLiteStore) AppendTask(ctx context.Context, t model.Task) error {
	if t.ID == "" {
		return errors.NewValidationError("task id is required").WithField("id")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, user_id, title, category, importance, estimate_minutes, due_at, notes, link, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.UserID, t.Title, string(t.Category), t.Importance, t.EstimateMinutes,
		nullTime(t.DueAt), t.Notes, t.Link, t.CreatedAt.UTC())
	if err != nil {
		return s.fail("append task", err)
	}
	return nil
}

// AppendSlices implements Store. The batch is inserted in one transaction.
func (s *SQLiteStore) AppendSlices(ctx context.Context, slices []model.Slice) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.fail("append slices", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, sl := range slices {
		if sl.ID == "" {
			return errors.NewValidationError("slice id is required").WithField("id")
		}
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM tasks WHERE id = ?`, sl.TaskID).Scan(&exists)
		if err != nil {
			return s.fail("append slices", err)
		}
		if exists == 0 {
			return errors.TaskNotFound(sl.TaskID)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO slices (id, task_id, title, sequence_index, planned_minutes, status, skip_count, snoozed_until, done_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, sl.ID, sl.TaskID, sl.Title, sl.SequenceIndex, sl.PlannedMinutes, string(sl.Status),
			sl.SkipCount, nullTime(sl.SnoozedUntil), nullTime(sl.DoneAt))
		if err != nil {
			return s.fail("append slices", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return s.fail("append slices", err)
	}
	return nil
}

const candidateColumns = `
	s.id, s.task_id, s.title, s.sequence_index, s.planned_minutes, s.status,
	s.skip_count, s.snoozed_until, s.done_at,
	t.id, t.user_id, t.title, t.category, t.importance, t.estimate_minutes,
	t.due_at, t.notes, t.link, t.created_at`

// ListSlices implements Store.
func (s *SQLiteStore) ListSlices(ctx context.Context, q Query) ([]model.Candidate, error) {
	var (
		where []string
		args  []any
	)
	if q.UserID != "" {
		where = append(where, "t.user_id = ?")
		args = append(args, q.UserID)
	}
	if q.TodoOnly {
		where = append(where, "s.status = ?")
		args = append(args, string(model.StatusTodo))
	}

	query := "SELECT " + candidateColumns + " FROM slices s JOIN tasks t ON t.id = s.task_id"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY t.created_at, t.id, s.sequence_index, s.id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.fail("list slices", err)
	}
	defer rows.Close()

	out := make([]model.Candidate, 0)
	for rows.Next() {
		var (
			c                    model.Candidate
			status, category     string
			snoozed, done, dueAt sql.NullTime
		)
		err := rows.Scan(
			&c.Slice.ID, &c.Slice.TaskID, &c.Slice.Title, &c.Slice.SequenceIndex, &c.Slice.PlannedMinutes,
			&status, &c.Slice.SkipCount, &snoozed, &done,
			&c.Task.ID, &c.Task.UserID, &c.Task.Title, &category, &c.Task.Importance, &c.Task.EstimateMinutes,
			&dueAt, &c.Task.Notes, &c.Task.Link, &c.Task.CreatedAt,
		)
		if err != nil {
			return nil, s.fail("list slices", err)
		}
		c.Slice.Status = model.SliceStatus(status)
		c.Slice.SnoozedUntil = timePtr(snoozed)
		c.Slice.DoneAt = timePtr(done)
		c.Task.Category = model.Category(category)
		c.Task.DueAt = timePtr(dueAt)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail("list slices", err)
	}
	return out, nil
}

const taskColumns = `id, user_id, title, category, importance, estimate_minutes, due_at, notes, link, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (model.Task, error) {
	var (
		t        model.Task
		category string
		dueAt    sql.NullTime
	)
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &category, &t.Importance, &t.EstimateMinutes,
		&dueAt, &t.Notes, &t.Link, &t.CreatedAt)
	if err != nil {
		return model.Task{}, err
	}
	t.Category = model.Category(category)
	t.DueAt = timePtr(dueAt)
	return t, nil
}

// ListTasks implements Store.
func (s *SQLiteStore) ListTasks(ctx context.Context, userID string) ([]model.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks"
	var args []any
	if userID != "" {
		query += " WHERE user_id = ?"
		args = append(args, userID)
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.fail("list tasks", err)
	}
	defer rows.Close()

	out := make([]model.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, s.fail("list tasks", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail("list tasks", err)
	}
	return out, nil
}

// PatchSlice implements Store.
func (s *SQLiteStore) PatchSlice(ctx context.Context, id string, p SlicePatch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.fail("patch slice", err)
	}
	defer func() { _ = tx.Rollback() }()

	var (
		sl            model.Slice
		status        string
		snoozed, done sql.NullTime
	)
	err = tx.QueryRowContext(ctx, `
		SELECT id, status, sequence_index, snoozed_until, done_at FROM slices WHERE id = ?
	`, id).Scan(&sl.ID, &status, &sl.SequenceIndex, &snoozed, &done)
	if err == sql.ErrNoRows {
		return errors.SliceNotFound(id)
	}
	if err != nil {
		return s.fail("patch slice", err)
	}
	sl.Status = model.SliceStatus(status)
	sl.SnoozedUntil = timePtr(snoozed)
	sl.DoneAt = timePtr(done)

	p.apply(&sl)

	_, err = tx.ExecContext(ctx, `
		UPDATE slices SET status = ?, sequence_index = ?, snoozed_until = ?, done_at = ? WHERE id = ?
	`, string(sl.Status), sl.SequenceIndex, nullTime(sl.SnoozedUntil), nullTime(sl.DoneAt), id)
	if err != nil {
		return s.fail("patch slice", err)
	}
	if err := tx.Commit(); err != nil {
		return s.fail("patch slice", err)
	}
	return nil
}

// IncrementSkipCount implements Store.
func (s *SQLiteStore) IncrementSkipCount(ctx context.Context, id string, delta int) error {
	if delta < 0 {
		return errors.NewValidationError("skip count cannot decrease").WithField("delta").WithValue(delta)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE slices SET skip_count = skip_count + ? WHERE id = ?`, delta, id)
	if err != nil {
		return s.fail("increment skip count", err)
	}
	return s.requireRow(res, "increment skip count", errors.SliceNotFound(id))
}

// PatchTask implements Store.
func (s *SQLiteStore) PatchTask(ctx context.Context, id string, p TaskPatch) (model.Task, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Task{}, s.fail("patch task", err)
	}
	defer func() { _ = tx.Rollback() }()

	t, err := scanTask(tx.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return model.Task{}, errors.TaskNotFound(id)
	}
	if err != nil {
		return model.Task{}, s.fail("patch task", err)
	}

	p.apply(&t)

	_, err = tx.ExecContext(ctx, `
		UPDATE tasks SET title = ?, category = ?, importance = ?, estimate_minutes = ?, due_at = ?, notes = ?, link = ?
		WHERE id = ?
	`, t.Title, string(t.Category), t.Importance, t.EstimateMinutes, nullTime(t.DueAt), t.Notes, t.Link, id)
	if err != nil {
		return model.Task{}, s.fail("patch task", err)
	}
	if err := tx.Commit(); err != nil {
		return model.Task{}, s.fail("patch task", err)
	}
	return t, nil
}

// DeleteTask implements Store.
func (s *SQLiteStore) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return s.fail("delete task", err)
	}
	return s.requireRow(res, "delete task", errors.TaskNotFound(id))
}

// DeleteSlice implements Store.
func (s *SQLiteStore) DeleteSlice(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM slices WHERE id = ?`, id)
	if err != nil {
		return s.fail("delete slice", err)
	}
	return s.requireRow(res, "delete slice", errors.SliceNotFound(id))
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) requireRow(res sql.Result, op string, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return s.fail(op, err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

