package jackpot

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/shopspring/decimal"
	"github.com/vulpemventures/go-elements/network"
)

// coinDecimals is the number of base units per coin as a power of ten.
const coinDecimals = 8

// Outpoint identifies a funding output.
type Outpoint struct {
	TxID string
	Vout uint32
}

func (o Outpoint) String() string {
	return fmt.Sprintf("%s:%d", o.TxID, o.Vout)
}

// Hash returns the txid in internal byte order.
func (o Outpoint) Hash() (*chainhash.Hash, error) {
	hash, err := chainhash.NewHashFromStr(o.TxID)
	if err != nil {
		return nil, fmt.Errorf("error parsing txid %q: %v", o.TxID, err)
	}
	if len(o.TxID) != 2*chainhash.HashSize {
		return nil, fmt.Errorf("error parsing txid %q: want %d hex digits",
			o.TxID, 2*chainhash.HashSize)
	}
	return hash, nil
}

// ValueSource records where a resolved value was learned.
type ValueSource int

const (
	// ValueFromOutput is the unblinded value returned for the output itself.
	ValueFromOutput ValueSource = iota
	// ValueFromTransaction is the value on the output entry of the funding
	// transaction record.
	ValueFromTransaction
	// ValueFromFallback is a caller supplied value that was not confirmed
	// on chain.
	ValueFromFallback
)

func (s ValueSource) String() string {
	switch s {
	case ValueFromOutput:
		return "output"
	case ValueFromTransaction:
		return "transaction"
	case ValueFromFallback:
		return "fallback"
	}
	return fmt.Sprintf("ValueSource(%d)", int(s))
}

// ResolvedUtxo is the spendable value and asset of an outpoint.
type ResolvedUtxo struct {
	Outpoint      Outpoint
	Value         uint64
	AssetID       string
	Source        ValueSource
	ScriptPubKey  []byte
	Confirmations int64
}

type scriptPubKeyResult struct {
	Hex     string `json:"hex"`
	Address string `json:"address"`
}

// txOutResult is the subset of gettxout used here. Value and asset are
// absent when the output is blinded.
type txOutResult struct {
	Value           *json.Number       `json:"value"`
	Asset           string             `json:"asset"`
	ValueCommitment string             `json:"valuecommitment"`
	Confirmations   int64              `json:"confirmations"`
	ScriptPubKey    scriptPubKeyResult `json:"scriptPubKey"`
}

type rawTxVout struct {
	N               uint32             `json:"n"`
	Value           *json.Number       `json:"value"`
	Asset           string             `json:"asset"`
	ValueCommitment string             `json:"valuecommitment"`
	ScriptPubKey    scriptPubKeyResult `json:"scriptPubKey"`
}

// rawTxResult is the subset of verbose getrawtransaction used here.
type rawTxResult struct {
	TxID string      `json:"txid"`
	Vout []rawTxVout `json:"vout"`
}

func (r *rawTxResult) output(vout uint32) *rawTxVout {
	for i := range r.Vout {
		if r.Vout[i].N == vout {
			return &r.Vout[i]
		}
	}
	return nil
}

func getRawTransaction(ctx context.Context, node NodeCaller,
	txid string) (*rawTxResult, error) {

	raw, err := node.Call(ctx, "getrawtransaction", txid, true)
	if err != nil {
		return nil, err
	}
	if isNull(raw) {
		return nil, fmt.Errorf("error getting raw transaction %s: no result",
			txid)
	}
	var tx rawTxResult
	if err := json.Unmarshal(raw, &tx); err != nil {
		return nil, fmt.Errorf("error decoding raw transaction %s: %v",
			txid, err)
	}
	return &tx, nil
}

// CoinsToBase converts a decimal coin amount to base units exactly. It
// fails on negative amounts and on more than 8 decimal places.
func CoinsToBase(coins decimal.Decimal) (uint64, error) {
	base := coins.Shift(coinDecimals)
	if base.IsNegative() {
		return 0, fmt.Errorf("negative amount %s", coins)
	}
	if !base.IsInteger() {
		return 0, fmt.Errorf("amount %s has more than %d decimals",
			coins, coinDecimals)
	}
	if base.GreaterThan(decimal.NewFromInt(int64(btcutil.MaxSatoshi))) {
		return 0, fmt.Errorf("amount %s exceeds the money supply", coins)
	}
	return uint64(base.IntPart()), nil
}

// BaseToCoins formats base units as a decimal coin amount.
func BaseToCoins(base uint64) decimal.Decimal {
	return decimal.NewFromInt(int64(base)).Shift(-coinDecimals)
}

func numberToBase(n json.Number) (uint64, error) {
	coins, err := decimal.NewFromString(n.String())
	if err != nil {
		return 0, fmt.Errorf("error parsing amount %q: %v", n, err)
	}
	return CoinsToBase(coins)
}

// UtxoResolver learns the value and asset of a funding output, which may
// be confidential.
type UtxoResolver struct {
	node NodeCaller
	net  *network.Network
}

// NewUtxoResolver returns a resolver querying node. The policy asset of net
// is used when no asset can be read for an output.
func NewUtxoResolver(node NodeCaller, net *network.Network) *UtxoResolver {
	return &UtxoResolver{node: node, net: net}
}

// Resolve returns the value and asset of op. The value is taken from the
// output, then from the funding transaction record, then from fallback. An
// output the node reports as null fails with ErrUtxoNotFound.
func (r *UtxoResolver) Resolve(ctx context.Context, op Outpoint,
	fallback *uint64) (*ResolvedUtxo, error) {

	if _, err := op.Hash(); err != nil {
		return nil, err
	}

	raw, err := r.node.Call(ctx, "gettxout", op.TxID, op.Vout, true)
	if err != nil {
		return nil, err
	}
	if isNull(raw) {
		return nil, fmt.Errorf("%w: %s", ErrUtxoNotFound, op)
	}
	var out txOutResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("error decoding gettxout %s: %v", op, err)
	}

	utxo := &ResolvedUtxo{
		Outpoint:      op,
		AssetID:       out.Asset,
		Confirmations: out.Confirmations,
	}
	if out.ScriptPubKey.Hex != "" {
		utxo.ScriptPubKey, err = hex.DecodeString(out.ScriptPubKey.Hex)
		if err != nil {
			return nil, fmt.Errorf("error decoding script of %s: %v", op, err)
		}
	}

	haveValue := false
	if out.Value != nil {
		utxo.Value, err = numberToBase(*out.Value)
		if err != nil {
			return nil, err
		}
		utxo.Source = ValueFromOutput
		haveValue = true
	}

	if !haveValue || utxo.AssetID == "" {
		tx, err := getRawTransaction(ctx, r.node, op.TxID)
		switch {
		case errors.Is(err, ErrTimeout):
			return nil, err
		case err != nil:
			log.Warnf("Unable to read funding transaction of %s: %v", op, err)
		default:
			if entry := tx.output(op.Vout); entry != nil {
				if !haveValue && entry.Value != nil {
					utxo.Value, err = numberToBase(*entry.Value)
					if err != nil {
						return nil, err
					}
					utxo.Source = ValueFromTransaction
					haveValue = true
				}
				if utxo.AssetID == "" {
					utxo.AssetID = entry.Asset
				}
			}
		}
	}

	if !haveValue {
		if fallback == nil {
			return nil, fmt.Errorf("%w: %s is blinded and no fallback "+
				"amount was given", ErrAmbiguousValue, op)
		}
		log.Warnf("Value of %s is not visible on chain, trusting "+
			"unverified amount %d", op, *fallback)
		utxo.Value = *fallback
		utxo.Source = ValueFromFallback
	}

	if utxo.AssetID == "" {
		log.Warnf("Asset of %s is not visible on chain, assuming policy "+
			"asset %s", op, r.net.AssetID)
		utxo.AssetID = r.net.AssetID
	}

	log.Debugf("Resolved %s: %d of %s (from %s)", op, utxo.Value,
		utxo.AssetID, utxo.Source)
	return utxo, nil
}
