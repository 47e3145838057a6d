package authsvc

import (
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

const p256ScalarSize = 32

// ErrInvalidSigningKey is returned when a configured signing key cannot be used.
var ErrInvalidSigningKey = errors.New("invalid signing key")

// GenerateSigningKey creates a new P-256 key pair for ES256 token signing.
func GenerateSigningKey() (*ecdsa.PrivateKey, error) {
	signingKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}

	return signingKey, nil
}

// EncodeSigningKey encodes the key pair as base64 of its SEC 1 DER form.
func EncodeSigningKey(signingKey *ecdsa.PrivateKey) (string, error) {
	der, err := x509.MarshalECPrivateKey(signingKey)
	if err != nil {
		return "", fmt.Errorf("marshal key: %w", err)
	}

	return base64.StdEncoding.EncodeToString(der), nil
}

// DecodeSigningKey parses a key pair produced by EncodeSigningKey, or a bare
// 32 byte P-256 private scalar as emitted by older key generators.
// Padded and unpadded base64 are both accepted.
func DecodeSigningKey(encoded string) (*ecdsa.PrivateKey, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidSigningKey)
	}

	der, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		if der, err = base64.RawStdEncoding.DecodeString(encoded); err != nil {
			return nil, errors.Join(ErrInvalidSigningKey, fmt.Errorf("decode key: %w", err))
		}
	}

	if len(der) == p256ScalarSize {
		return signingKeyFromScalar(der)
	}

	signingKey, err := x509.ParseECPrivateKey(der)
	if err != nil {
		return nil, errors.Join(ErrInvalidSigningKey, fmt.Errorf("parse key: %w", err))
	}

	if signingKey.Curve != elliptic.P256() {
		return nil, fmt.Errorf("%w: curve %s, want P-256", ErrInvalidSigningKey, signingKey.Curve.Params().Name)
	}

	return signingKey, nil
}

func signingKeyFromScalar(scalar []byte) (*ecdsa.PrivateKey, error) {
	// ecdh rejects zero and out-of-range scalars
	ecdhKey, err := ecdh.P256().NewPrivateKey(scalar)
	if err != nil {
		return nil, errors.Join(ErrInvalidSigningKey, fmt.Errorf("parse scalar: %w", err))
	}

	// uncompressed point: 0x04 || X || Y
	point := ecdhKey.PublicKey().Bytes()

	return &ecdsa.PrivateKey{
		PublicKey: ecdsa.PublicKey{
			Curve: elliptic.P256(),
			X:     new(big.Int).SetBytes(point[1 : 1+p256ScalarSize]),
			Y:     new(big.Int).SetBytes(point[1+p256ScalarSize:]),
		},
		D: new(big.Int).SetBytes(scalar),
	}, nil
}
