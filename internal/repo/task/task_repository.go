package task

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mkrupp/homecase-tasks/internal/domain"
	"github.com/mkrupp/homecase-tasks/internal/repo/sqldb"
)

// Repository defines the interface for task persistence. Every operation is
// scoped to the owning user: rows of other users are never read or written.
// Mutations return the owner's full task list as it is right after the
// mutation, ordered by id. A task id the owner does not hold is not an error;
// the mutation affects nothing and the unchanged list is returned.
type Repository interface {
	// ListTasks returns all tasks of owner.
	ListTasks(ctx context.Context, owner domain.UserID) (domain.TaskList, error)

	// CreateTask adds an incomplete task with the given title for owner.
	CreateTask(ctx context.Context, owner domain.UserID, title string) (domain.TaskList, error)

	// UpdateTask sets title and completed on the task if owner holds it.
	UpdateTask(
		ctx context.Context,
		owner domain.UserID,
		id domain.TaskID,
		title string,
		completed bool,
	) (domain.TaskList, error)

	// DeleteTask removes the task if owner holds it.
	DeleteTask(ctx context.Context, owner domain.UserID, id domain.TaskID) (domain.TaskList, error)
}

// RepositoryFactory is a function that creates a new Repository instance.
// Returns an error if initialization fails.
type RepositoryFactory func() (Repository, error)

// SQLTaskRepositoryFactory returns a factory creating the Repository matching
// the driver of db.
func SQLTaskRepositoryFactory(db *sqldb.DB) RepositoryFactory {
	return func() (Repository, error) {
		switch db.Driver() {
		case sqldb.DriverSQLite:
			return NewSQLiteTaskRepository(db), nil
		case sqldb.DriverPostgres:
			return NewPostgresTaskRepository(db), nil
		default:
			return nil, fmt.Errorf("%w: %q", sqldb.ErrUnsupportedDriver, db.Driver())
		}
	}
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryTasks(ctx context.Context, q queryer, query string, args ...any) (domain.TaskList, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", sqldb.StorageError(err))
	}
	defer rows.Close()

	tasks := domain.TaskList{}

	for rows.Next() {
		var task domain.Task
		if err := rows.Scan(&task.ID, &task.Title, &task.Completed); err != nil {
			return nil, fmt.Errorf("scan task: %w", sqldb.StorageError(err))
		}

		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", sqldb.StorageError(err))
	}

	return tasks, nil
}
