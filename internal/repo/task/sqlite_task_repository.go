package task

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mkrupp/homecase-tasks/internal/domain"
	"github.com/mkrupp/homecase-tasks/internal/infra/logging"
	"github.com/mkrupp/homecase-tasks/internal/repo/sqldb"
)

const sqliteSelectTasks = "SELECT id, title, completed FROM tasks WHERE owner_id = ? ORDER BY id"

// SQLiteTaskRepository implements Repository on SQLite. SQLite has no
// data-modifying CTEs, so each mutation and the read of the resulting list
// share one transaction, serialized with all other writers.
type SQLiteTaskRepository struct {
	db  *sqldb.DB
	log logging.Logger
}

var _ Repository = (*SQLiteTaskRepository)(nil)

// NewSQLiteTaskRepository creates a new SQLiteTaskRepository using the given connection pool.
func NewSQLiteTaskRepository(db *sqldb.DB) *SQLiteTaskRepository {
	return &SQLiteTaskRepository{
		db:  db,
		log: logging.GetLogger("repo.task.sqlite_task_repository"),
	}
}

// ListTasks implements Repository.ListTasks.
func (r *SQLiteTaskRepository) ListTasks(ctx context.Context, owner domain.UserID) (domain.TaskList, error) {
	return queryTasks(ctx, r.db, sqliteSelectTasks, owner)
}

// CreateTask implements Repository.CreateTask.
func (r *SQLiteTaskRepository) CreateTask(
	ctx context.Context,
	owner domain.UserID,
	title string,
) (domain.TaskList, error) {
	return r.mutate(ctx, owner,
		"INSERT INTO tasks (title, completed, owner_id) VALUES (?, ?, ?)",
		title, false, owner,
	)
}

// UpdateTask implements Repository.UpdateTask.
func (r *SQLiteTaskRepository) UpdateTask(
	ctx context.Context,
	owner domain.UserID,
	id domain.TaskID,
	title string,
	completed bool,
) (domain.TaskList, error) {
	return r.mutate(ctx, owner,
		"UPDATE tasks SET title = ?, completed = ? WHERE id = ? AND owner_id = ?",
		title, completed, id, owner,
	)
}

// DeleteTask implements Repository.DeleteTask.
func (r *SQLiteTaskRepository) DeleteTask(
	ctx context.Context,
	owner domain.UserID,
	id domain.TaskID,
) (domain.TaskList, error) {
	return r.mutate(ctx, owner,
		"DELETE FROM tasks WHERE id = ? AND owner_id = ?",
		id, owner,
	)
}

func (r *SQLiteTaskRepository) mutate(
	ctx context.Context,
	owner domain.UserID,
	stmt string,
	args ...any,
) (tasks domain.TaskList, err error) {
	unlock := r.db.LockWrites()
	defer unlock()

	err = r.db.InTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, stmt, args...)
		if err != nil {
			return fmt.Errorf("exec: %w", sqldb.StorageError(err))
		}

		if n, err := res.RowsAffected(); err == nil {
			r.log.DebugContext(ctx, "tasks mutated", "rows", n)
		}

		tasks, err = queryTasks(ctx, tx, sqliteSelectTasks, owner)

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("mutate tasks: %w", err)
	}

	return tasks, nil
}
