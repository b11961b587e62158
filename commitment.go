package jackpot

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Commitment is the public SHA-256 digest of a canonical secret.
type Commitment [chainhash.HashSize]byte

// Commit hashes the padded 32 byte field, not the raw secret text.
func Commit(c CanonicalSecret) Commitment {
	return Commitment(chainhash.HashH(c[:]))
}

// String returns the commitment as 0x followed by 64 lowercase hex digits,
// the form stored as target_hash.
func (c Commitment) String() string {
	return "0x" + hex.EncodeToString(c[:])
}

// Short returns the first 8 hex digits, used to name puzzle files.
func (c Commitment) Short() string {
	return hex.EncodeToString(c[:4])
}

// ParseCommitment parses 64 hex digits with an optional 0x/0X prefix, in
// either case.
func ParseCommitment(s string) (Commitment, error) {
	var c Commitment
	digits := s
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		digits = s[2:]
	}
	if len(digits) != 2*len(c) {
		return c, fmt.Errorf("error parsing commitment %q: want %d hex "+
			"digits, got %d", s, 2*len(c), len(digits))
	}
	if _, err := hex.Decode(c[:], []byte(digits)); err != nil {
		return c, fmt.Errorf("error parsing commitment %q: %v", s, err)
	}
	return c, nil
}
