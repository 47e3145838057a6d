package authsvc

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	argon2SaltLength = 16
	argon2KeyLength  = 32
)

// ErrInvalidPasswordHash is returned when a stored hash cannot be decoded.
var ErrInvalidPasswordHash = errors.New("invalid password hash")

// Argon2Config holds the argon2id cost parameters used for new hashes.
type Argon2Config struct {
	// Time is the number of passes over memory
	Time uint32 `env:"TIME" envDefault:"2"`
	// Memory is the memory cost in KiB
	Memory uint32 `env:"MEMORY" envDefault:"19456"`
	// Threads is the degree of parallelism
	Threads uint8 `env:"THREADS" envDefault:"1"`
}

// ErrInvalidArgon2Config is returned for cost parameters argon2 cannot run with.
var ErrInvalidArgon2Config = errors.New("invalid argon2 config")

func (cfg Argon2Config) validate() error {
	if cfg.Time == 0 || cfg.Memory == 0 || cfg.Threads == 0 {
		return fmt.Errorf("%w: m=%d,t=%d,p=%d", ErrInvalidArgon2Config, cfg.Memory, cfg.Time, cfg.Threads)
	}

	return nil
}

// Hasher hashes and verifies passwords.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
	// VerifyAbsent does the work of Verify when there is no hash to check against.
	VerifyAbsent(password string)
}

// PasswordHasher hashes and verifies passwords with argon2id. Hashes are
// encoded in PHC string format and carry their own parameters, so changing
// the configuration does not invalidate stored hashes.
type PasswordHasher struct {
	cfg       Argon2Config
	dummyHash string
}

var _ Hasher = (*PasswordHasher)(nil)

// NewPasswordHasher creates a PasswordHasher with the given cost parameters.
func NewPasswordHasher(cfg Argon2Config) (*PasswordHasher, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	hasher := &PasswordHasher{cfg: cfg}

	dummyHash, err := hasher.Hash("")
	if err != nil {
		return nil, fmt.Errorf("hash dummy password: %w", err)
	}

	hasher.dummyHash = dummyHash

	return hasher, nil
}

// Hash derives a salted argon2id hash of password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	salt := make([]byte, argon2SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, h.cfg.Time, h.cfg.Memory, h.cfg.Threads, argon2KeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.cfg.Memory,
		h.cfg.Time,
		h.cfg.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether password matches encodedHash.
func (h *PasswordHasher) Verify(password, encodedHash string) (bool, error) {
	params, salt, key, err := decodeHash(encodedHash)
	if err != nil {
		return false, err
	}

	//nolint:gosec
	other := argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Threads, uint32(len(key)))

	return subtle.ConstantTimeCompare(key, other) == 1, nil
}

// VerifyAbsent performs the same work as Verify against a throwaway hash.
// It is used when no user matches, so both failure cases cost the same.
func (h *PasswordHasher) VerifyAbsent(password string) {
	_, _ = h.Verify(password, h.dummyHash)
}

func decodeHash(encodedHash string) (params Argon2Config, salt, key []byte, err error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return params, nil, nil, ErrInvalidPasswordHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return params, nil, nil, ErrInvalidPasswordHash
	}

	_, err = fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Time, &params.Threads)
	if err != nil {
		return params, nil, nil, errors.Join(ErrInvalidPasswordHash, err)
	}

	if err := params.validate(); err != nil {
		return params, nil, nil, errors.Join(ErrInvalidPasswordHash, err)
	}

	if salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return params, nil, nil, errors.Join(ErrInvalidPasswordHash, err)
	}

	if key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(key) == 0 {
		return params, nil, nil, errors.Join(ErrInvalidPasswordHash, err)
	}

	return params, salt, key, nil
}
