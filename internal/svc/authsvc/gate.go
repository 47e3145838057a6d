package authsvc

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mkrupp/homecase-tasks/internal/domain"
	"github.com/mkrupp/homecase-tasks/internal/infra/logging"
)

const bearerScheme = "Bearer"

// TokenVerifier verifies bearer tokens.
type TokenVerifier interface {
	Verify(tokenString string) (domain.AuthToken, error)
}

// Gate resolves the bearer token of an inbound request to an identity.
// Every failure is reported to the caller as domain.ErrUnauthenticated; the
// precise reason is only logged.
type Gate struct {
	tokens TokenVerifier
	log    logging.Logger
}

// NewGate creates a Gate verifying tokens with the given verifier.
func NewGate(tokens TokenVerifier) *Gate {
	return &Gate{
		tokens: tokens,
		log:    logging.GetLogger("svc.authsvc.gate"),
	}
}

// Authenticate extracts the "Authorization: Bearer <token>" header and verifies the token.
func (g *Gate) Authenticate(ctx context.Context, header http.Header) (domain.Identity, error) {
	token, err := g.authenticate(header)
	if err != nil {
		g.log.WarnContext(ctx, "request authentication failed", "error", err)

		return domain.Identity{}, domain.ErrUnauthenticated
	}

	return domain.Identity{UserID: token.UserID}, nil
}

func (g *Gate) authenticate(header http.Header) (domain.AuthToken, error) {
	authHeader := header.Get("Authorization")
	if authHeader == "" {
		return domain.AuthToken{}, domain.ErrNoAuthToken
	}

	scheme, tokenString, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, bearerScheme) {
		return domain.AuthToken{}, fmt.Errorf("%w: unsupported authorization scheme", domain.ErrInvalidAuthToken)
	}

	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return domain.AuthToken{}, domain.ErrNoAuthToken
	}

	token, err := g.tokens.Verify(tokenString)
	if err != nil {
		return domain.AuthToken{}, fmt.Errorf("verify token: %w", err)
	}

	return token, nil
}
