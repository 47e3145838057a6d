package authsvc

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mkrupp/homecase-tasks/internal/domain"
)

// TokenValidity is how long an issued token is accepted.
const TokenValidity = 2 * time.Hour

// TokenService issues and verifies ES256-signed JWTs whose subject is the
// user id. The signing key is set once at construction and only read afterwards.
type TokenService struct {
	signingKey *ecdsa.PrivateKey

	// Now returns the current time; tests replace it to move the clock.
	Now func() time.Time
}

// NewTokenService creates a TokenService signing with the given key pair.
func NewTokenService(signingKey *ecdsa.PrivateKey) *TokenService {
	return &TokenService{
		signingKey: signingKey,
		Now:        time.Now,
	}
}

// Issue signs a token for userID that expires after TokenValidity.
func (s *TokenService) Issue(userID domain.UserID) (string, error) {
	now := s.Now()

	//nolint:exhaustruct
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(int64(userID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenValidity)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodES256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return token, nil
}

// Verify checks the signature and expiry of tokenString.
// Returns domain.ErrInvalidAuthToken for a bad signature, a malformed token or
// a non-integer subject, and domain.ErrAuthTokenExpired for an expired but
// otherwise valid token.
func (s *TokenService) Verify(tokenString string) (domain.AuthToken, error) {
	var claims jwt.RegisteredClaims

	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return &s.signingKey.PublicKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodES256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return domain.AuthToken{}, errors.Join(domain.ErrInvalidAuthToken, fmt.Errorf("parse token: %w", err))
	}

	if claims.ExpiresAt == nil {
		return domain.AuthToken{}, fmt.Errorf("%w: exp is required", domain.ErrInvalidAuthToken)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return domain.AuthToken{}, errors.Join(domain.ErrInvalidAuthToken, fmt.Errorf("parse subject: %w", err))
	}

	if !s.Now().Before(claims.ExpiresAt.Time) {
		return domain.AuthToken{}, domain.ErrAuthTokenExpired
	}

	token := domain.AuthToken{
		UserID:    domain.UserID(userID),
		ExpiresAt: claims.ExpiresAt.Time,
	}

	if claims.IssuedAt != nil {
		token.IssuedAt = claims.IssuedAt.Time
	}

	return token, nil
}
