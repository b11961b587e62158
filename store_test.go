package jackpot

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(filepath.Join(t.TempDir(), "puzzles.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStorePuzzles(t *testing.T) {
	s := openTestStore(t)
	c := mustCommit(t, "bitcoin")

	_, err := s.Puzzle(c)
	assert.ErrorIs(t, err, ErrPuzzleUnknown)

	d := &PuzzleDescriptor{
		TargetHash: c.String(),
		Address:    "tex1pexample",
		TxID:       testTxID,
		Amount:     "0.5",
	}
	require.NoError(t, s.PutPuzzle(d))
	got, err := s.Puzzle(c)
	require.NoError(t, err)
	assert.Equal(t, d.Amount, got.Amount)

	d.Amount = "0.55000000"
	require.NoError(t, s.PutPuzzle(d))
	require.NoError(t, s.PutPuzzle(&PuzzleDescriptor{
		TargetHash: mustCommit(t, "satoshi").String(),
		Amount:     "0.1",
	}))

	all, err := s.Puzzles()
	require.NoError(t, err)
	require.Len(t, all, 2)
	// Keys are ordered by commitment: 41cf... before 5383...
	assert.Equal(t, "0.55000000", all[0].Amount)
	assert.Equal(t, "0.1", all[1].Amount)

	assert.Error(t, s.PutPuzzle(&PuzzleDescriptor{TargetHash: "nope"}))
}

func TestStoreClaims(t *testing.T) {
	s := openTestStore(t)
	c := mustCommit(t, "bitcoin")

	claims, err := s.Claims(c)
	require.NoError(t, err)
	assert.Empty(t, claims)

	at := time.Date(2025, 11, 2, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.RecordClaim(c, ClaimAttempt{
		TxID: "aa", Status: ClaimTimedOut, At: at,
	}))
	require.NoError(t, s.RecordClaim(c, ClaimAttempt{
		TxID: "aa", Status: ClaimBroadcast, OutputValue: 49_997_000, Fee: 3_000,
		At: at.Add(time.Minute),
	}))

	claims, err = s.Claims(c)
	require.NoError(t, err)
	require.Len(t, claims, 2)
	assert.Equal(t, ClaimTimedOut, claims[0].Status)
	assert.Equal(t, ClaimBroadcast, claims[1].Status)
	assert.Equal(t, uint64(49_997_000), claims[1].OutputValue)

	other, err := s.Claims(mustCommit(t, "satoshi"))
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestClaimStatusOf(t *testing.T) {
	assert.Equal(t, ClaimBroadcast, ClaimStatusOf(nil))
	assert.Equal(t, ClaimAlreadyClaimed, ClaimStatusOf(&NodeError{Kind: ErrAlreadyClaimed}))
	assert.Equal(t, ClaimAlreadyClaimed, ClaimStatusOf(fmt.Errorf("%w: x", ErrUtxoNotFound)))
	assert.Equal(t, ClaimTimedOut, ClaimStatusOf(fmt.Errorf("%w: x", ErrTimeout)))
	assert.Equal(t, ClaimRejected, ClaimStatusOf(&NodeError{Kind: ErrBroadcastRejected}))
	assert.Equal(t, ClaimRejected, ClaimStatusOf(errors.New("boom")))
}

func TestOpenStoreRequiresPath(t *testing.T) {
	_, err := OpenStore("")
	assert.Error(t, err)
}
