package jackpot

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// SecretSize is the width of the canonical secret field.
const SecretSize = 32

// CanonicalSecret is the fixed width, right aligned encoding of a secret.
// It is the only form of the secret that is ever hashed or handed to the
// contract.
type CanonicalSecret [SecretSize]byte

// String returns the field as 0x-prefixed hex.
func (c CanonicalSecret) String() string {
	return "0x" + hex.EncodeToString(c[:])
}

// EncodeSecret canonicalizes secret into a 32 byte field.
//
// A 0x or 0X prefix selects hex input: 8 hex digits are read as a big
// endian uint32 and 16 as a big endian uint64, both placed in the low
// bytes of the field. Any other hex length is decoded as raw bytes. Input
// without the prefix is taken as text. Raw bytes and text are right
// aligned, and only the rightmost 32 bytes are kept.
func EncodeSecret(secret string) (CanonicalSecret, error) {
	var field CanonicalSecret

	if !strings.HasPrefix(secret, "0x") && !strings.HasPrefix(secret, "0X") {
		rightAlign(&field, []byte(secret))
		return field, nil
	}

	digits := secret[2:]
	switch len(digits) {
	case 8:
		n, err := strconv.ParseUint(digits, 16, 32)
		if err != nil {
			return field, fmt.Errorf("%w: %q: %v", ErrInvalidSecretFormat,
				secret, err)
		}
		binary.BigEndian.PutUint32(field[SecretSize-4:], uint32(n))
	case 16:
		n, err := strconv.ParseUint(digits, 16, 64)
		if err != nil {
			return field, fmt.Errorf("%w: %q: %v", ErrInvalidSecretFormat,
				secret, err)
		}
		binary.BigEndian.PutUint64(field[SecretSize-8:], n)
	default:
		raw, err := hex.DecodeString(digits)
		if err != nil {
			return field, fmt.Errorf("%w: %q: %v", ErrInvalidSecretFormat,
				secret, err)
		}
		rightAlign(&field, raw)
	}
	return field, nil
}

// rightAlign copies the rightmost bytes of b into the tail of field.
func rightAlign(field *CanonicalSecret, b []byte) {
	if len(b) > SecretSize {
		b = b[len(b)-SecretSize:]
	}
	copy(field[SecretSize-len(b):], b)
}
