package jackpot

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketPuzzles = []byte("puzzles_by_commitment")
	bucketClaims  = []byte("claims_by_commitment")
)

// ErrPuzzleUnknown is returned for a commitment that was never stored.
var ErrPuzzleUnknown = errors.New("puzzle not in store")

// ClaimStatus is the outcome of one claim attempt.
type ClaimStatus string

const (
	ClaimBuilt          ClaimStatus = "built"
	ClaimBroadcast      ClaimStatus = "broadcast"
	ClaimAlreadyClaimed ClaimStatus = "already_claimed"
	ClaimRejected       ClaimStatus = "rejected"
	ClaimTimedOut       ClaimStatus = "timeout"
)

// ClaimStatusOf maps the result of a broadcast to a status.
func ClaimStatusOf(err error) ClaimStatus {
	switch {
	case err == nil:
		return ClaimBroadcast
	case errors.Is(err, ErrAlreadyClaimed), errors.Is(err, ErrUtxoNotFound):
		return ClaimAlreadyClaimed
	case errors.Is(err, ErrTimeout):
		return ClaimTimedOut
	}
	return ClaimRejected
}

// ClaimAttempt is one recorded attempt to claim a puzzle.
type ClaimAttempt struct {
	TxID        string      `json:"txid"`
	Destination string      `json:"destination"`
	OutputValue uint64      `json:"output_value"`
	Fee         uint64      `json:"fee"`
	Status      ClaimStatus `json:"status"`
	Reason      string      `json:"reason,omitempty"`
	At          time.Time   `json:"at"`
}

// Store is the local puzzle book: puzzles created or tracked on this
// machine and the claims attempted against them.
type Store struct {
	db *bolt.DB
}

// OpenStore opens or creates the puzzle book at path.
func OpenStore(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("store path required")
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("open bbolt: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketPuzzles, bucketClaims} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", string(b), err)
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func commitmentKey(c Commitment) []byte {
	return []byte(hex.EncodeToString(c[:]))
}

// PutPuzzle stores d under its commitment, replacing an earlier version.
func (s *Store) PutPuzzle(d *PuzzleDescriptor) error {
	c, err := d.Commitment()
	if err != nil {
		return err
	}
	v, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode puzzle: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPuzzles).Put(commitmentKey(c), v)
	})
}

// Puzzle returns the puzzle stored for c.
func (s *Store) Puzzle(c Commitment) (*PuzzleDescriptor, error) {
	var d *PuzzleDescriptor
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketPuzzles).Get(commitmentKey(c))
		if v == nil {
			return fmt.Errorf("%w: %s", ErrPuzzleUnknown, c)
		}
		d = new(PuzzleDescriptor)
		return json.Unmarshal(v, d)
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Puzzles returns every stored puzzle ordered by commitment.
func (s *Store) Puzzles() ([]*PuzzleDescriptor, error) {
	var out []*PuzzleDescriptor
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPuzzles).ForEach(func(k, v []byte) error {
			d := new(PuzzleDescriptor)
			if err := json.Unmarshal(v, d); err != nil {
				return fmt.Errorf("decode puzzle %s: %w", k, err)
			}
			out = append(out, d)
			return nil
		})
	})
	return out, err
}

// RecordClaim appends a to the claim log of c.
func (s *Store) RecordClaim(c Commitment, a ClaimAttempt) error {
	v, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode claim: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.Bucket(bucketClaims).CreateBucketIfNotExists(commitmentKey(c))
		if err != nil {
			return err
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		var k [8]byte
		binary.BigEndian.PutUint64(k[:], seq)
		return b.Put(k[:], v)
	})
}

// Claims returns the claim log of c, oldest first.
func (s *Store) Claims(c Commitment) ([]ClaimAttempt, error) {
	var out []ClaimAttempt
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketClaims).Bucket(commitmentKey(c))
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			var a ClaimAttempt
			if err := json.Unmarshal(v, &a); err != nil {
				return err
			}
			out = append(out, a)
			return nil
		})
	})
	return out, err
}
