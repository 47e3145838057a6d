package authsvc_test

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/mkrupp/homecase-tasks/internal/svc/authsvc"
)

func TestSigningKey_RoundTrip(t *testing.T) {
	t.Parallel()

	signingKey, err := authsvc.GenerateSigningKey()
	if err != nil {
		t.Fatalf("GenerateSigningKey() error = %v", err)
	}

	encoded, err := authsvc.EncodeSigningKey(signingKey)
	if err != nil {
		t.Fatalf("EncodeSigningKey() error = %v", err)
	}

	for _, variant := range []string{encoded, strings.TrimRight(encoded, "="), " " + encoded + "\n"} {
		decoded, err := authsvc.DecodeSigningKey(variant)
		if err != nil {
			t.Fatalf("DecodeSigningKey(%q) error = %v", variant, err)
		}

		if !decoded.Equal(signingKey) {
			t.Errorf("DecodeSigningKey(%q) returned a different key", variant)
		}
	}
}

func TestDecodeSigningKey_Invalid(t *testing.T) {
	t.Parallel()

	p384Key, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate P-384 key: %v", err)
	}

	p384DER, err := x509.MarshalECPrivateKey(p384Key)
	if err != nil {
		t.Fatalf("failed to marshal P-384 key: %v", err)
	}

	tests := []struct {
		name    string
		encoded string
	}{
		{name: "empty", encoded: ""},
		{name: "not base64", encoded: "not a key!"},
		{name: "not a key", encoded: base64.StdEncoding.EncodeToString([]byte("hello"))},
		{name: "wrong curve", encoded: base64.StdEncoding.EncodeToString(p384DER)},
		{name: "zero scalar", encoded: base64.StdEncoding.EncodeToString(make([]byte, 32))},
		{name: "scalar above order", encoded: base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0xff}, 32))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := authsvc.DecodeSigningKey(tt.encoded)
			if !errors.Is(err, authsvc.ErrInvalidSigningKey) {
				t.Errorf("DecodeSigningKey() error = %v, want %v", err, authsvc.ErrInvalidSigningKey)
			}
		})
	}
}

func TestDecodeSigningKey_RawScalar(t *testing.T) {
	t.Parallel()

	signingKey, err := authsvc.GenerateSigningKey()
	if err != nil {
		t.Fatalf("GenerateSigningKey() error = %v", err)
	}

	scalar := signingKey.D.FillBytes(make([]byte, 32))

	for _, encoded := range []string{
		base64.StdEncoding.EncodeToString(scalar),
		base64.RawStdEncoding.EncodeToString(scalar),
	} {
		decoded, err := authsvc.DecodeSigningKey(encoded)
		if err != nil {
			t.Fatalf("DecodeSigningKey(%q) error = %v", encoded, err)
		}

		if !decoded.Equal(signingKey) {
			t.Fatalf("DecodeSigningKey(%q) returned a different key", encoded)
		}

		tokens := authsvc.NewTokenService(decoded)

		token, err := tokens.Issue(3)
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}

		// tokens signed with the scalar form verify under the full key pair
		got, err := authsvc.NewTokenService(signingKey).Verify(token)
		if err != nil || got.UserID != 3 {
			t.Errorf("Verify() = %v, %v; want user 3", got, err)
		}
	}
}
