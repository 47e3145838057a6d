package task_test

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/mkrupp/homecase-tasks/internal/domain"
	"github.com/mkrupp/homecase-tasks/internal/repo/sqldb"
	"github.com/mkrupp/homecase-tasks/internal/repo/task"
	"github.com/mkrupp/homecase-tasks/internal/repo/user"
)

// createTestUser inserts a user row so tasks can reference it.
func createTestUser(t *testing.T, db *sqldb.DB, name string) domain.UserID {
	t.Helper()

	username := fmt.Sprintf("%s-%d", name, time.Now().UnixNano())

	id, err := user.NewSQLUserRepository(db).CreateUser(context.Background(), username, "hash")
	if err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}

	return id
}

func assertTasks(t *testing.T, op string, got, want domain.TaskList) {
	t.Helper()

	if got == nil {
		t.Fatalf("%s returned nil list, want non-nil", op)
	}

	if len(got) == 0 && len(want) == 0 {
		return
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("%s = %+v, want %+v", op, got, want)
	}
}

// testRepository runs the behavior every Repository implementation must share.
func testRepository(t *testing.T, db *sqldb.DB) {
	t.Helper()

	repo, err := task.SQLTaskRepositoryFactory(db)()
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}

	ctx := context.Background()

	t.Run("lifecycle", func(t *testing.T) {
		alice := createTestUser(t, db, "alice")

		tasks, err := repo.ListTasks(ctx, alice)
		if err != nil {
			t.Fatalf("ListTasks() error = %v", err)
		}
		assertTasks(t, "ListTasks()", tasks, domain.TaskList{})

		tasks, err = repo.CreateTask(ctx, alice, "buy milk")
		if err != nil {
			t.Fatalf("CreateTask() error = %v", err)
		}
		if len(tasks) != 1 {
			t.Fatalf("CreateTask() returned %d tasks, want 1", len(tasks))
		}

		id := tasks[0].ID
		assertTasks(t, "CreateTask()", tasks, domain.TaskList{{ID: id, Title: "buy milk", Completed: false}})

		tasks, err = repo.UpdateTask(ctx, alice, id, "buy milk", true)
		if err != nil {
			t.Fatalf("UpdateTask() error = %v", err)
		}
		assertTasks(t, "UpdateTask()", tasks, domain.TaskList{{ID: id, Title: "buy milk", Completed: true}})

		tasks, err = repo.DeleteTask(ctx, alice, id)
		if err != nil {
			t.Fatalf("DeleteTask() error = %v", err)
		}
		assertTasks(t, "DeleteTask()", tasks, domain.TaskList{})
	})

	t.Run("orders by ascending id", func(t *testing.T) {
		owner := createTestUser(t, db, "order")

		var tasks domain.TaskList

		for _, title := range []string{"first", "second", "third"} {
			if tasks, err = repo.CreateTask(ctx, owner, title); err != nil {
				t.Fatalf("CreateTask(%q) error = %v", title, err)
			}
		}

		if len(tasks) != 3 {
			t.Fatalf("got %d tasks, want 3", len(tasks))
		}

		for i, title := range []string{"first", "second", "third"} {
			if tasks[i].Title != title {
				t.Errorf("tasks[%d].Title = %q, want %q", i, tasks[i].Title, title)
			}

			if i > 0 && tasks[i].ID <= tasks[i-1].ID {
				t.Errorf("tasks not ordered by id: %+v", tasks)
			}
		}

		updated, err := repo.UpdateTask(ctx, owner, tasks[0].ID, "first, renamed", false)
		if err != nil {
			t.Fatalf("UpdateTask() error = %v", err)
		}

		want := domain.TaskList{
			{ID: tasks[0].ID, Title: "first, renamed"},
			tasks[1],
			tasks[2],
		}
		assertTasks(t, "UpdateTask()", updated, want)
	})

	t.Run("isolates owners", func(t *testing.T) {
		alice := createTestUser(t, db, "alice")
		bob := createTestUser(t, db, "bob")

		aliceTasks, err := repo.CreateTask(ctx, alice, "alice's task")
		if err != nil {
			t.Fatalf("CreateTask() error = %v", err)
		}

		bobTasks, err := repo.CreateTask(ctx, bob, "bob's task")
		if err != nil {
			t.Fatalf("CreateTask() error = %v", err)
		}

		aliceTaskID := aliceTasks[0].ID

		got, err := repo.ListTasks(ctx, bob)
		if err != nil {
			t.Fatalf("ListTasks() error = %v", err)
		}
		assertTasks(t, "ListTasks(bob)", got, bobTasks)

		got, err = repo.UpdateTask(ctx, bob, aliceTaskID, "hijacked", true)
		if err != nil {
			t.Fatalf("UpdateTask() by non-owner error = %v", err)
		}
		assertTasks(t, "UpdateTask() by non-owner", got, bobTasks)

		got, err = repo.DeleteTask(ctx, bob, aliceTaskID)
		if err != nil {
			t.Fatalf("DeleteTask() by non-owner error = %v", err)
		}
		assertTasks(t, "DeleteTask() by non-owner", got, bobTasks)

		got, err = repo.ListTasks(ctx, alice)
		if err != nil {
			t.Fatalf("ListTasks() error = %v", err)
		}
		assertTasks(t, "ListTasks(alice)", got, aliceTasks)
	})

	t.Run("unknown task id is a no-op", func(t *testing.T) {
		owner := createTestUser(t, db, "noop")

		tasks, err := repo.CreateTask(ctx, owner, "keep me")
		if err != nil {
			t.Fatalf("CreateTask() error = %v", err)
		}

		missing := tasks[0].ID + 1_000_000

		got, err := repo.UpdateTask(ctx, owner, missing, "ghost", true)
		if err != nil {
			t.Fatalf("UpdateTask() error = %v", err)
		}
		assertTasks(t, "UpdateTask(missing)", got, tasks)

		got, err = repo.DeleteTask(ctx, owner, missing)
		if err != nil {
			t.Fatalf("DeleteTask() error = %v", err)
		}
		assertTasks(t, "DeleteTask(missing)", got, tasks)
	})

	t.Run("concurrent creates see their own write", func(t *testing.T) {
		owner := createTestUser(t, db, "concurrent")

		const workers = 8

		var wg sync.WaitGroup

		errs := make(chan error, workers)

		for i := range workers {
			wg.Add(1)

			go func(title string) {
				defer wg.Done()

				tasks, err := repo.CreateTask(ctx, owner, title)
				if err != nil {
					errs <- err

					return
				}

				for _, task := range tasks {
					if task.Title == title {
						return
					}
				}

				errs <- fmt.Errorf("created task %q missing from returned list %+v", title, tasks)
			}(fmt.Sprintf("task-%d", i))
		}

		wg.Wait()
		close(errs)

		for err := range errs {
			t.Error(err)
		}

		tasks, err := repo.ListTasks(ctx, owner)
		if err != nil {
			t.Fatalf("ListTasks() error = %v", err)
		}

		if len(tasks) != workers {
			t.Errorf("ListTasks() returned %d tasks, want %d", len(tasks), workers)
		}
	})
}
