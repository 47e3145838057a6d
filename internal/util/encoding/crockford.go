package encoding

import (
	"encoding/base32"
	"strings"
)

const crockfordBase32Alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

//nolint:gochecknoglobals
var crockfordBase32 = base32.NewEncoding(crockfordBase32Alphabet).WithPadding(base32.NoPadding)

// EncodeCrockfordB32LC encodes input with Crockford's Base32 alphabet, without
// padding, in lowercase. Used for compact, URL- and log-safe identifiers.
func EncodeCrockfordB32LC(input []byte) string {
	return strings.ToLower(crockfordBase32.EncodeToString(input))
}
