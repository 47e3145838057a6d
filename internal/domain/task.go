package domain

import "errors"

// ErrStorage marks failures of the backing store.
var ErrStorage = errors.New("storage error")

// TaskID identifies a task.
type TaskID int64

// Task is a single entry of a user's task list.
type Task struct {
	ID        TaskID `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// TaskList is a user's tasks ordered by ascending id.
type TaskList []Task
