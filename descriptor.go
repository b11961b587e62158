package jackpot

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
)

// PuzzleDescriptor is the public record of a puzzle, shared with solvers.
// TargetHash and Amount are kept exactly as written.
type PuzzleDescriptor struct {
	TargetHash string    `json:"target_hash"`
	Address    string    `json:"address"`
	TxID       string    `json:"txid"`
	Vout       uint32    `json:"vout"`
	Amount     string    `json:"amount"`
	Hint       string    `json:"hint"`
	CreatedAt  time.Time `json:"created_at"`
}

// UnmarshalJSON also accepts the "hash" key of private records in place of
// target_hash.
func (d *PuzzleDescriptor) UnmarshalJSON(b []byte) error {
	type plain PuzzleDescriptor
	aux := struct {
		*plain
		Hash string `json:"hash"`
	}{plain: (*plain)(d)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if d.TargetHash == "" {
		d.TargetHash = aux.Hash
	}
	return nil
}

// Commitment parses TargetHash.
func (d *PuzzleDescriptor) Commitment() (Commitment, error) {
	return ParseCommitment(d.TargetHash)
}

// Outpoint returns the funding output.
func (d *PuzzleDescriptor) Outpoint() Outpoint {
	return Outpoint{TxID: d.TxID, Vout: d.Vout}
}

// AmountCoins parses Amount.
func (d *PuzzleDescriptor) AmountCoins() (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(d.Amount)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("error parsing amount %q: %v",
			d.Amount, err)
	}
	return amount, nil
}

// AmountBase returns Amount in base units.
func (d *PuzzleDescriptor) AmountBase() (uint64, error) {
	amount, err := d.AmountCoins()
	if err != nil {
		return 0, err
	}
	return CoinsToBase(amount)
}

// Validate checks the fields a solver relies on.
func (d *PuzzleDescriptor) Validate() error {
	if _, err := d.Commitment(); err != nil {
		return err
	}
	if d.Address == "" {
		return fmt.Errorf("puzzle has no address")
	}
	if _, err := d.Outpoint().Hash(); err != nil {
		return err
	}
	if _, err := d.AmountBase(); err != nil {
		return err
	}
	return nil
}

// PrivateRecord is the creator's copy of a puzzle, including the secret.
// It must never be shared alongside the public descriptor.
type PrivateRecord struct {
	Secret    string    `json:"secret"`
	Hash      string    `json:"hash"`
	TxID      string    `json:"txid"`
	Amount    string    `json:"amount"`
	Hint      string    `json:"hint"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

// DefaultHint is the hint used when the creator gives none.
func DefaultHint(secret string) string {
	return fmt.Sprintf("The secret has %d characters", len(secret))
}

// PublicFileName is the file name of the public descriptor of c.
func PublicFileName(c Commitment) string {
	return fmt.Sprintf("puzzle_%s.json", c.Short())
}

// PrivateFileName is the file name of the private record of c.
func PrivateFileName(c Commitment) string {
	return fmt.Sprintf("puzzle_%s_SECRET.json", c.Short())
}

// ReadDescriptor loads a public descriptor from path.
func ReadDescriptor(path string) (*PuzzleDescriptor, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading puzzle: %v", err)
	}
	var d PuzzleDescriptor
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("error decoding puzzle %s: %v", path, err)
	}
	return &d, nil
}

// WriteDescriptor stores d at path.
func WriteDescriptor(path string, d *PuzzleDescriptor) error {
	return writeJSON(path, d, 0o644)
}

// WritePrivateRecord stores r at path, readable by the owner only.
func WritePrivateRecord(path string, r *PrivateRecord) error {
	return writeJSON(path, r, 0o600)
}

func writeJSON(path string, v interface{}, perm os.FileMode) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding %s: %v", path, err)
	}
	if err := os.WriteFile(path, append(b, '\n'), perm); err != nil {
		return fmt.Errorf("error writing %s: %v", path, err)
	}
	return nil
}
