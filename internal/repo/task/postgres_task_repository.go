package task

import (
	"context"
	"fmt"

	"github.com/mkrupp/homecase-tasks/internal/domain"
	"github.com/mkrupp/homecase-tasks/internal/repo/sqldb"
)

// Each mutation is one statement: the data-modifying CTE runs against the
// same snapshot the outer SELECT reads, so the outer query sees the owner's
// rows before the change and the CTE's RETURNING supplies the changed row.
const (
	postgresListTasks = `
		SELECT id, title, completed
		FROM tasks
		WHERE owner_id = $1
		ORDER BY id`

	postgresCreateTask = `
		WITH inserted AS (
			INSERT INTO tasks (title, owner_id)
			VALUES ($1, $2)
			RETURNING id, title, completed
		)
		SELECT id, title, completed FROM tasks WHERE owner_id = $2
		UNION ALL
		SELECT id, title, completed FROM inserted
		ORDER BY id`

	postgresUpdateTask = `
		WITH updated AS (
			UPDATE tasks
			SET title = $1, completed = $2
			WHERE id = $3 AND owner_id = $4
			RETURNING id, title, completed
		)
		SELECT id, title, completed FROM tasks WHERE owner_id = $4 AND id <> $3
		UNION ALL
		SELECT id, title, completed FROM updated
		ORDER BY id`

	postgresDeleteTask = `
		WITH deleted AS (
			DELETE FROM tasks
			WHERE id = $1 AND owner_id = $2
		)
		SELECT id, title, completed
		FROM tasks
		WHERE owner_id = $2 AND id <> $1
		ORDER BY id`
)

// PostgresTaskRepository implements Repository on PostgreSQL with a single
// atomic statement per operation.
type PostgresTaskRepository struct {
	db *sqldb.DB
}

var _ Repository = (*PostgresTaskRepository)(nil)

// NewPostgresTaskRepository creates a new PostgresTaskRepository using the given connection pool.
func NewPostgresTaskRepository(db *sqldb.DB) *PostgresTaskRepository {
	return &PostgresTaskRepository{db: db}
}

// ListTasks implements Repository.ListTasks.
func (r *PostgresTaskRepository) ListTasks(ctx context.Context, owner domain.UserID) (domain.TaskList, error) {
	return queryTasks(ctx, r.db, postgresListTasks, owner)
}

// CreateTask implements Repository.CreateTask.
func (r *PostgresTaskRepository) CreateTask(
	ctx context.Context,
	owner domain.UserID,
	title string,
) (domain.TaskList, error) {
	tasks, err := queryTasks(ctx, r.db, postgresCreateTask, title, owner)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	return tasks, nil
}

// UpdateTask implements Repository.UpdateTask.
func (r *PostgresTaskRepository) UpdateTask(
	ctx context.Context,
	owner domain.UserID,
	id domain.TaskID,
	title string,
	completed bool,
) (domain.TaskList, error) {
	tasks, err := queryTasks(ctx, r.db, postgresUpdateTask, title, completed, id, owner)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	return tasks, nil
}

// DeleteTask implements Repository.DeleteTask.
func (r *PostgresTaskRepository) DeleteTask(
	ctx context.Context,
	owner domain.UserID,
	id domain.TaskID,
) (domain.TaskList, error) {
	tasks, err := queryTasks(ctx, r.db, postgresDeleteTask, id, owner)
	if err != nil {
		return nil, fmt.Errorf("delete task: %w", err)
	}

	return tasks, nil
}
