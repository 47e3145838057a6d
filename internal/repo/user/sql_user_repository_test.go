package user_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mkrupp/homecase-tasks/internal/domain"
	"github.com/mkrupp/homecase-tasks/internal/repo/sqldb"

	. "github.com/mkrupp/homecase-tasks/internal/repo/user"
)

func setupSQLUserTestRepo(t *testing.T) (*SQLUserRepository, *sqldb.DB) {
	t.Helper()

	db, err := sqldb.Open(context.Background(), sqldb.Config{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "users.db"),
	})
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })

	return NewSQLUserRepository(db), db
}

func TestSQLUserRepository_CreateUser(t *testing.T) {
	t.Parallel()

	repo, _ := setupSQLUserTestRepo(t)
	ctx := context.Background()

	first, err := repo.CreateUser(ctx, "alice", "hash-a")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	second, err := repo.CreateUser(ctx, "bob", "hash-b")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	if first <= 0 || second <= first {
		t.Errorf("ids = %d, %d; want positive and increasing", first, second)
	}

	_, err = repo.CreateUser(ctx, "alice", "hash-c")
	if !errors.Is(err, domain.ErrUserAlreadyExists) {
		t.Errorf("CreateUser() duplicate error = %v, want %v", err, domain.ErrUserAlreadyExists)
	}
}

func TestSQLUserRepository_GetUserByUsername(t *testing.T) {
	t.Parallel()

	repo, _ := setupSQLUserTestRepo(t)
	ctx := context.Background()

	id, err := repo.CreateUser(ctx, "alice", "hash-a")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	tests := []struct {
		name     string
		username string
		wantOK   bool
	}{
		{name: "existing user", username: "alice", wantOK: true},
		{name: "missing user", username: "carol", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			user, ok, err := repo.GetUserByUsername(ctx, tt.username)
			if err != nil {
				t.Fatalf("GetUserByUsername() error = %v", err)
			}

			if ok != tt.wantOK {
				t.Fatalf("GetUserByUsername() ok = %v, want %v", ok, tt.wantOK)
			}

			if !ok {
				if user != nil {
					t.Errorf("GetUserByUsername() user = %+v, want nil", user)
				}

				return
			}

			if user.ID != id || user.Username != "alice" || user.PasswordHash != "hash-a" {
				t.Errorf("GetUserByUsername() = %+v, want id %d alice/hash-a", user, id)
			}

			if user.CreatedAt == 0 {
				t.Error("GetUserByUsername() CreatedAt not set")
			}
		})
	}
}

func TestSQLUserRepository_StorageError(t *testing.T) {
	t.Parallel()

	repo, db := setupSQLUserTestRepo(t)
	_ = db.Close()

	_, err := repo.CreateUser(context.Background(), "alice", "hash")
	if !errors.Is(err, domain.ErrStorage) {
		t.Errorf("CreateUser() on closed db error = %v, want %v", err, domain.ErrStorage)
	}

	_, _, err = repo.GetUserByUsername(context.Background(), "alice")
	if !errors.Is(err, domain.ErrStorage) {
		t.Errorf("GetUserByUsername() on closed db error = %v, want %v", err, domain.ErrStorage)
	}
}
