package domain

import (
	"errors"
	"strings"
	"unicode"
)

var (
	// ErrUserAlreadyExists is returned when trying to create a user whose normalized username is taken.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrInvalidCredentials is returned when the username/password combination is incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidUsername is returned when a username is empty after normalization.
	ErrInvalidUsername = errors.New("invalid username")
)

// UserID identifies a user. It is assigned by the store on creation.
type UserID int64

// User represents a registered account.
type User struct {
	ID           UserID // Unique identifier
	Username     string // Normalized login username
	PasswordHash string // Encoded password digest, never the plaintext
	CreatedAt    int64  // Unix timestamp of account creation
}

// NormalizeUsername removes all whitespace from username and lowercases it.
// The result is the uniqueness and lookup key for users.
func NormalizeUsername(username string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}

		return unicode.ToLower(r)
	}, username)
}
