package jackpot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcjson"
)

// rpcVerifyAlreadyInChain is the sendrawtransaction code for a
// transaction that is already confirmed.
const rpcVerifyAlreadyInChain btcjson.RPCErrorCode = -27

// spentReasons are reject reasons meaning the puzzle input is gone or is
// being spent by a competing claim.
var spentReasons = []string{
	"missingorspent",
	"missing-inputs",
	"missing inputs",
	"txn-mempool-conflict",
	"insufficient fee, rejecting replacement",
}

// knownReasons are reject reasons meaning this very transaction is
// already known to the node.
var knownReasons = []string{
	"already in block chain",
	"already in utxo set",
	"txn-already-known",
	"txn-already-in-mempool",
}

// Broadcaster submits finalized claims to the network.
type Broadcaster struct {
	node NodeCaller
}

// NewBroadcaster returns a broadcaster sending through node.
func NewBroadcaster(node NodeCaller) *Broadcaster {
	return &Broadcaster{node: node}
}

// Broadcast sends claim once and returns its txid. A claim whose input was
// spent by someone else fails with ErrAlreadyClaimed, other rejections
// with ErrBroadcastRejected. A timed out call is not retried, the claim
// may or may not have reached the network.
func (b *Broadcaster) Broadcast(ctx context.Context, claim *FinalizedClaim) (string, error) {
	raw, err := b.node.Call(ctx, "sendrawtransaction", claim.Hex)
	if err != nil {
		var rpcErr *btcjson.RPCError
		if !errors.As(err, &rpcErr) {
			return "", err
		}
		if isKnownRejection(rpcErr) {
			log.Infof("Claim %s is already known to the node: %s",
				claim.TxID, rpcErr.Message)
			return claim.TxID, nil
		}
		return "", classifyRejection(rpcErr)
	}

	var txid string
	if err := json.Unmarshal(raw, &txid); err != nil {
		return "", fmt.Errorf("error decoding sendrawtransaction result: %v", err)
	}
	if txid != claim.TxID {
		log.Warnf("Node returned txid %s for claim %s", txid, claim.TxID)
	}
	log.Infof("Broadcast claim %s", txid)
	return txid, nil
}

func containsAny(msg string, reasons []string) bool {
	msg = strings.ToLower(msg)
	for _, r := range reasons {
		if strings.Contains(msg, r) {
			return true
		}
	}
	return false
}

func isKnownRejection(e *btcjson.RPCError) bool {
	return e.Code == rpcVerifyAlreadyInChain || containsAny(e.Message, knownReasons)
}

// classifyRejection maps a node rejection to ErrAlreadyClaimed or
// ErrBroadcastRejected.
func classifyRejection(e *btcjson.RPCError) error {
	kind := ErrBroadcastRejected
	if containsAny(e.Message, spentReasons) {
		kind = ErrAlreadyClaimed
	}
	return &NodeError{Kind: kind, Code: int(e.Code), Message: e.Message}
}
