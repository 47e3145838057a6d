package authsvc

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkrupp/homecase-tasks/internal/domain"
	"github.com/mkrupp/homecase-tasks/internal/infra/logging"
	"github.com/mkrupp/homecase-tasks/internal/repo/user"
)

// AuthConfig contains configuration parameters for the authentication service.
type AuthConfig struct {
	// SigningKey is the base64-encoded P-256 key pair used to sign tokens (see cmd/keygen)
	SigningKey string `env:"SIGNING_KEY,required"`

	// Argon2 holds the password hashing cost parameters
	Argon2 Argon2Config `envPrefix:"ARGON2_"`
}

// AuthService provides user registration, credential verification and
// token issuance.
type AuthService struct {
	Config   AuthConfig
	UserRepo user.Repository
	Hasher   Hasher
	Tokens   *TokenService
	Log      logging.Logger
}

// NewAuthService creates a new AuthService with the given user repository factory and configuration.
// Returns an error if the signing key cannot be decoded or the user repository cannot be created.
func NewAuthService(repoFactory user.RepositoryFactory, cfg AuthConfig) (*AuthService, error) {
	log := logging.GetLogger("svc.authsvc.auth_service")

	signingKey, err := DecodeSigningKey(cfg.SigningKey)
	if err != nil {
		return nil, fmt.Errorf("decode signing key: %w", err)
	}

	hasher, err := NewPasswordHasher(cfg.Argon2)
	if err != nil {
		return nil, fmt.Errorf("new password hasher: %w", err)
	}

	userRepo, err := repoFactory()
	if err != nil {
		return nil, fmt.Errorf("new user repo: %w", err)
	}

	return &AuthService{
		Config:   cfg,
		UserRepo: userRepo,
		Hasher:   hasher,
		Tokens:   NewTokenService(signingKey),
		Log:      log,
	}, nil
}

// CreateUser registers a user under the normalized form of username.
// Returns domain.ErrUserAlreadyExists if the normalized username is taken.
func (s *AuthService) CreateUser(ctx context.Context, username, password string) (_ domain.UserID, err error) {
	username = domain.NormalizeUsername(username)
	log := s.Log.With(logging.Group("user", "username", username))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "create user failed", "error", err)
		} else {
			log.DebugContext(ctx, "user created")
		}
	}()

	if username == "" {
		return 0, domain.ErrInvalidUsername
	}

	passwordHash, err := s.Hasher.Hash(password)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	userID, err := s.UserRepo.CreateUser(ctx, username, passwordHash)
	if err != nil {
		return 0, fmt.Errorf("create user: %w", err)
	}

	return userID, nil
}

// Authenticate checks a username/password pair. It returns the user id and
// true on success, and false for both an unknown user and a wrong password;
// the two cases do the same hashing work.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (domain.UserID, bool, error) {
	username = domain.NormalizeUsername(username)

	user, ok, err := s.UserRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return 0, false, fmt.Errorf("get user: %w", err)
	}

	if !ok {
		s.Hasher.VerifyAbsent(password)

		return 0, false, nil
	}

	match, err := s.Hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return 0, false, fmt.Errorf("verify password: %w", err)
	}

	if !match {
		return 0, false, nil
	}

	return user.ID, true, nil
}

// Signup creates a user and returns a token for it.
func (s *AuthService) Signup(ctx context.Context, username, password string) (string, error) {
	userID, err := s.CreateUser(ctx, username, password)
	if err != nil {
		return "", err
	}

	return s.issue(ctx, userID)
}

// Login authenticates a user and returns a signed token.
// Returns domain.ErrInvalidCredentials if the username/password pair does not match.
func (s *AuthService) Login(ctx context.Context, username, password string) (_ string, err error) {
	log := s.Log

	defer func() {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			log.WarnContext(ctx, "login rejected", "error", err)
		case err != nil:
			log.ErrorContext(ctx, "login failed", "error", err)
		default:
			log.DebugContext(ctx, "login successful")
		}
	}()

	userID, ok, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", fmt.Errorf("authenticate: %w", err)
	} else if !ok {
		return "", domain.ErrInvalidCredentials
	}

	log = log.With(logging.Group("user", "id", userID))

	return s.issue(ctx, userID)
}

func (s *AuthService) issue(ctx context.Context, userID domain.UserID) (string, error) {
	token, err := s.Tokens.Issue(userID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	s.Log.DebugContext(ctx, "token issued", logging.Group("token",
		"sub", userID,
		"validity", TokenValidity.String(),
	))

	return token, nil
}
