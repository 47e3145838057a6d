package domain

import (
	"errors"
	"time"
)

var (
	// ErrNoAuthToken is returned when an authentication token is required but not provided.
	ErrNoAuthToken = errors.New("no auth token")
	// ErrInvalidAuthToken is returned for a bad signature, a malformed token or a non-integer subject.
	ErrInvalidAuthToken = errors.New("invalid auth token")
	// ErrAuthTokenExpired is returned for a correctly signed token whose expiry has passed.
	ErrAuthTokenExpired = errors.New("auth token expired")
	// ErrUnauthenticated is the single outward signal for any failed request authentication.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// AuthToken holds the verified contents of a bearer token.
type AuthToken struct {
	UserID    UserID    // Subject of the token
	IssuedAt  time.Time // When the token was signed
	ExpiresAt time.Time // When the token stops being accepted
}

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID UserID
}
