package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mkrupp/homecase-tasks/internal/domain"
	"github.com/mkrupp/homecase-tasks/internal/infra/logging"
	"github.com/mkrupp/homecase-tasks/internal/repo/sqldb"
)

// SQLUserRepository implements Repository on top of a sqldb.DB.
type SQLUserRepository struct {
	db  *sqldb.DB
	log logging.Logger
}

var _ Repository = (*SQLUserRepository)(nil)

// SQLUserRepositoryFactory creates a factory function that returns a new SQLUserRepository.
func SQLUserRepositoryFactory(db *sqldb.DB) RepositoryFactory {
	return func() (Repository, error) {
		return NewSQLUserRepository(db), nil
	}
}

// NewSQLUserRepository creates a new SQLUserRepository using the given connection pool.
func NewSQLUserRepository(db *sqldb.DB) *SQLUserRepository {
	return &SQLUserRepository{
		db: db,
		log: logging.GetLogger("repo.user.sql_user_repository").With(
			logging.Group("db", "driver", string(db.Driver())),
		),
	}
}

// CreateUser implements Repository.CreateUser.
func (r *SQLUserRepository) CreateUser(
	ctx context.Context,
	username string,
	passwordHash string,
) (_ domain.UserID, err error) {
	unlock := r.db.LockWrites()
	defer unlock()

	var id domain.UserID

	err = r.db.QueryRowContext(ctx,
		r.db.Rebind("INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?) RETURNING id"),
		username,
		passwordHash,
		time.Now().Unix(),
	).Scan(&id)
	if err != nil {
		if sqldb.IsUniqueViolation(err) {
			err = errors.Join(domain.ErrUserAlreadyExists, err)
		} else {
			err = sqldb.StorageError(err)
		}

		return 0, fmt.Errorf("insert user: %w", err)
	}

	r.log.DebugContext(ctx, "user inserted", logging.Group("user", "id", id))

	return id, nil
}

// GetUserByUsername implements Repository.GetUserByUsername.
func (r *SQLUserRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, bool, error) {
	var user domain.User

	err := r.db.QueryRowContext(ctx,
		r.db.Rebind("SELECT id, username, password_hash, created_at FROM users WHERE username = ?"),
		username,
	).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("query user: %w", sqldb.StorageError(err))
	}

	return &user, true, nil
}
