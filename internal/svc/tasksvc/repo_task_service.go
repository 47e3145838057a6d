package tasksvc

import (
	"context"
	"fmt"

	"github.com/mkrupp/homecase-tasks/internal/domain"
	"github.com/mkrupp/homecase-tasks/internal/infra/logging"
	"github.com/mkrupp/homecase-tasks/internal/repo/task"
)

// RepoTaskService implements TaskService on top of a task repository.
type RepoTaskService struct {
	repo task.Repository
	log  logging.Logger
}

var _ TaskService = (*RepoTaskService)(nil)

// NewRepoTaskService creates a new RepoTaskService using a repository from repoFactory.
func NewRepoTaskService(repoFactory task.RepositoryFactory) (*RepoTaskService, error) {
	repo, err := repoFactory()
	if err != nil {
		return nil, fmt.Errorf("new task repository: %w", err)
	}

	return &RepoTaskService{
		repo: repo,
		log:  logging.GetLogger("svc.tasksvc.repo_task_service"),
	}, nil
}

// List implements TaskService.List.
func (s *RepoTaskService) List(ctx context.Context, owner domain.UserID) (tasks domain.TaskList, err error) {
	defer func() {
		if err != nil {
			s.log.ErrorContext(ctx, "task list failed", "error", err)
		} else {
			s.log.DebugContext(ctx, "tasks listed", "count", len(tasks))
		}
	}()

	tasks, err = s.repo.ListTasks(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return tasks, nil
}

// Create implements TaskService.Create.
func (s *RepoTaskService) Create(ctx context.Context, owner domain.UserID, title string) (tasks domain.TaskList, err error) {
	defer func() {
		if err != nil {
			s.log.ErrorContext(ctx, "task create failed", "error", err)
		} else {
			s.log.DebugContext(ctx, "task created", "count", len(tasks))
		}
	}()

	tasks, err = s.repo.CreateTask(ctx, owner, title)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	return tasks, nil
}

// Update implements TaskService.Update.
func (s *RepoTaskService) Update(
	ctx context.Context,
	owner domain.UserID,
	id domain.TaskID,
	title string,
	completed bool,
) (tasks domain.TaskList, err error) {
	log := s.log.With(logging.Group("task", "id", id, "completed", completed))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "task update failed", "error", err)
		} else {
			log.DebugContext(ctx, "task updated", "count", len(tasks))
		}
	}()

	tasks, err = s.repo.UpdateTask(ctx, owner, id, title, completed)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	return tasks, nil
}

// Delete implements TaskService.Delete.
func (s *RepoTaskService) Delete(
	ctx context.Context,
	owner domain.UserID,
	id domain.TaskID,
) (tasks domain.TaskList, err error) {
	log := s.log.With(logging.Group("task", "id", id))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "task delete failed", "error", err)
		} else {
			log.DebugContext(ctx, "task deleted", "count", len(tasks))
		}
	}()

	tasks, err = s.repo.DeleteTask(ctx, owner, id)
	if err != nil {
		return nil, fmt.Errorf("delete task: %w", err)
	}

	return tasks, nil
}
