package tasksvc

import (
	"context"

	"github.com/mkrupp/homecase-tasks/internal/domain"
)

// TaskService defines the interface for managing the task lists of users.
// Every operation acts on the list of the given owner only, and every
// mutation returns that list as it is right after the mutation.
type TaskService interface {
	// List returns the tasks of owner ordered by id.
	List(ctx context.Context, owner domain.UserID) (domain.TaskList, error)

	// Create adds an incomplete task titled title to the list of owner.
	Create(ctx context.Context, owner domain.UserID, title string) (domain.TaskList, error)

	// Update sets title and completed on the task with the given id.
	// An id owner does not hold leaves the list unchanged.
	Update(ctx context.Context, owner domain.UserID, id domain.TaskID, title string, completed bool) (domain.TaskList, error)

	// Delete removes the task with the given id.
	// An id owner does not hold leaves the list unchanged.
	Delete(ctx context.Context, owner domain.UserID, id domain.TaskID) (domain.TaskList, error)
}
