// Command keygen prints a fresh ES256 signing key for AUTH_SIGNING_KEY.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mkrupp/homecase-tasks/internal/svc/authsvc"
)

func main() {
	if err := run(os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "keygen:", err)
		os.Exit(1)
	}
}

func run(w io.Writer) error {
	key, err := authsvc.GenerateSigningKey()
	if err != nil {
		return fmt.Errorf("generate key: %w", err)
	}

	encoded, err := authsvc.EncodeSigningKey(key)
	if err != nil {
		return fmt.Errorf("encode key: %w", err)
	}

	if _, err := fmt.Fprintln(w, encoded); err != nil {
		return fmt.Errorf("write key: %w", err)
	}

	return nil
}
