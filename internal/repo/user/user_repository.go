package user

import (
	"context"

	"github.com/mkrupp/homecase-tasks/internal/domain"
)

// Repository defines the interface for user data persistence.
// Usernames are stored as given; callers normalize them first.
type Repository interface {
	// CreateUser adds a new user and returns its store-assigned id.
	// Returns ErrUserAlreadyExists if the username is already taken.
	CreateUser(ctx context.Context, username string, passwordHash string) (domain.UserID, error)

	// GetUserByUsername retrieves a user by their username.
	// Returns the user object and true if found, or nil and false if not found.
	// Returns an error if the operation fails.
	GetUserByUsername(ctx context.Context, username string) (*domain.User, bool, error)
}

// RepositoryFactory is a function that creates a new Repository instance.
// Returns an error if initialization fails.
type RepositoryFactory func() (Repository, error)
