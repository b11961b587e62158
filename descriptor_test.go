package jackpot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDescriptorJSON = `{
  "target_hash": "0x41CFEE5684A198111ADE5339C4C81CC5FBC281D39B95EBD25B58BE7E16392E39",
  "address": "tex1pexample",
  "txid": "` + testTxID + `",
  "vout": 1,
  "amount": "0.10000000",
  "hint": "The creator of Bitcoin",
  "created_at": "2025-11-02T10:15:30.123456789-03:00"
}`

func TestDescriptorLossless(t *testing.T) {
	var d PuzzleDescriptor
	require.NoError(t, json.Unmarshal([]byte(testDescriptorJSON), &d))

	assert.Equal(t, "0x41CFEE5684A198111ADE5339C4C81CC5FBC281D39B95EBD25B58BE7E16392E39", d.TargetHash)
	assert.Equal(t, "0.10000000", d.Amount)

	b, err := json.Marshal(&d)
	require.NoError(t, err)
	assert.JSONEq(t, testDescriptorJSON, string(b))

	c, err := d.Commitment()
	require.NoError(t, err)
	assert.Equal(t, mustCommit(t, "bitcoin"), c)

	base, err := d.AmountBase()
	require.NoError(t, err)
	assert.Equal(t, uint64(10_000_000), base)
	assert.Equal(t, Outpoint{TxID: testTxID, Vout: 1}, d.Outpoint())
	assert.NoError(t, d.Validate())
}

func TestDescriptorAcceptsPrivateHashKey(t *testing.T) {
	private := `{"secret":"bitcoin","hash":"0x41cfee5684a198111ade5339c4c81cc5fbc281d39b95ebd25b58be7e16392e39",` +
		`"txid":"` + testTxID + `","amount":"0.5","address":"tex1pexample"}`
	var d PuzzleDescriptor
	require.NoError(t, json.Unmarshal([]byte(private), &d))
	c, err := d.Commitment()
	require.NoError(t, err)
	assert.Equal(t, mustCommit(t, "bitcoin"), c)
}

func TestDescriptorValidate(t *testing.T) {
	valid := func() PuzzleDescriptor {
		var d PuzzleDescriptor
		require.NoError(t, json.Unmarshal([]byte(testDescriptorJSON), &d))
		return d
	}
	for name, mutate := range map[string]func(*PuzzleDescriptor){
		"hash":    func(d *PuzzleDescriptor) { d.TargetHash = "0x1234" },
		"address": func(d *PuzzleDescriptor) { d.Address = "" },
		"txid":    func(d *PuzzleDescriptor) { d.TxID = "abc" },
		"amount":  func(d *PuzzleDescriptor) { d.Amount = "a lot" },
		"dust":    func(d *PuzzleDescriptor) { d.Amount = "0.000000001" },
	} {
		d := valid()
		mutate(&d)
		assert.Error(t, d.Validate(), name)
	}
}

func TestDescriptorFiles(t *testing.T) {
	dir := t.TempDir()
	created := time.Date(2025, 11, 2, 10, 15, 30, 0, time.UTC)
	d := &PuzzleDescriptor{
		TargetHash: mustCommit(t, "moon").String(),
		Address:    "tex1pexample",
		TxID:       testTxID,
		Amount:     "0.2",
		Hint:       DefaultHint("moon"),
		CreatedAt:  created,
	}
	public := filepath.Join(dir, "puzzle.json")
	require.NoError(t, WriteDescriptor(public, d))
	got, err := ReadDescriptor(public)
	require.NoError(t, err)
	assert.Equal(t, d.TargetHash, got.TargetHash)
	assert.Equal(t, d.Amount, got.Amount)
	assert.Equal(t, "The secret has 4 characters", got.Hint)
	assert.True(t, created.Equal(got.CreatedAt))

	private := filepath.Join(dir, "puzzle_SECRET.json")
	require.NoError(t, WritePrivateRecord(private, &PrivateRecord{
		Secret: "moon",
		Hash:   d.TargetHash,
	}))
	info, err := os.Stat(private)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	_, err = ReadDescriptor(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestAmountCoins(t *testing.T) {
	d := PuzzleDescriptor{Amount: "1.23456789"}
	amount, err := d.AmountCoins()
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.RequireFromString("1.23456789")))
}
