package jackpot

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Wallet funds puzzle addresses from the node's wallet.
type Wallet struct {
	node NodeCaller
}

// NewWallet returns a wallet using the wallet loaded in node.
func NewWallet(node NodeCaller) *Wallet {
	return &Wallet{node: node}
}

// Fund sends amount coins to address and returns the funding txid.
func (w *Wallet) Fund(ctx context.Context, address string,
	amount decimal.Decimal) (string, error) {

	if !amount.IsPositive() {
		return "", fmt.Errorf("error sending to address: amount %s is "+
			"not positive", amount)
	}
	raw, err := w.node.Call(ctx, "sendtoaddress", address,
		json.Number(amount.String()))
	if err != nil {
		return "", fmt.Errorf("error sending to address: %w", err)
	}
	var txid string
	if err := json.Unmarshal(raw, &txid); err != nil {
		return "", fmt.Errorf("error decoding sendtoaddress result: %v", err)
	}
	log.Infof("Sent %s to %s in %s", amount, address, txid)
	return txid, nil
}

// FindVout returns the index of the output of txid paying scriptPubKey.
func (w *Wallet) FindVout(ctx context.Context, txid string,
	scriptPubKey []byte) (uint32, error) {

	tx, err := getRawTransaction(ctx, w.node, txid)
	if err != nil {
		return 0, err
	}
	want := hex.EncodeToString(scriptPubKey)
	for _, out := range tx.Vout {
		if out.ScriptPubKey.Hex == want {
			return out.N, nil
		}
	}
	return 0, fmt.Errorf("error finding output: %s pays no output to %s",
		txid, want)
}
