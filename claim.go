package jackpot

import (
	"fmt"

	"github.com/vulpemventures/go-elements/elementsutil"
	"github.com/vulpemventures/go-elements/transaction"
)

const (
	DEFAULT_SAT_FEE  = 3000
	CLAIM_TX_VERSION = 2
)

// UnsignedClaim holds the spend of a puzzle output before its witness is
// attached. Its outputs are, in order, the value output paying the
// destination and the explicit fee output.
type UnsignedClaim struct {
	Outpoint          Outpoint
	InputValue        uint64
	OutputValue       uint64
	Fee               uint64
	AssetID           string
	DestinationScript []byte
}

// BuildClaim prepares a claim of inputValue of assetID at op, paying
// everything but fee to destinationScript.
func BuildClaim(op Outpoint, inputValue uint64, assetID string,
	destinationScript []byte, fee uint64) (*UnsignedClaim, error) {

	if inputValue <= fee {
		return nil, &InsufficientValueError{InputValue: inputValue, Fee: fee}
	}
	// An empty script is how a fee output is recognised.
	if len(destinationScript) == 0 {
		return nil, fmt.Errorf("error building claim: empty destination script")
	}
	claim := &UnsignedClaim{
		Outpoint:          op,
		InputValue:        inputValue,
		OutputValue:       inputValue - fee,
		Fee:               fee,
		AssetID:           assetID,
		DestinationScript: append([]byte(nil), destinationScript...),
	}
	// Validate the encoding now so AttachWitness can only fail on the stack.
	if _, err := claim.Tx(); err != nil {
		return nil, err
	}
	return claim, nil
}

// Tx returns a fresh transaction for the claim, with an empty witness.
func (c *UnsignedClaim) Tx() (*transaction.Transaction, error) {
	hash, err := c.Outpoint.Hash()
	if err != nil {
		return nil, err
	}
	asset, err := elementsutil.AssetHashToBytes(c.AssetID)
	if err != nil {
		return nil, fmt.Errorf("error encoding asset %q: %v", c.AssetID, err)
	}
	value, err := elementsutil.ValueToBytes(c.OutputValue)
	if err != nil {
		return nil, fmt.Errorf("error encoding value: %v", err)
	}
	fee, err := elementsutil.ValueToBytes(c.Fee)
	if err != nil {
		return nil, fmt.Errorf("error encoding fee: %v", err)
	}

	tx := transaction.NewTx(CLAIM_TX_VERSION)
	in := transaction.NewTxInput(hash[:], c.Outpoint.Vout)
	in.Sequence = 0
	tx.AddInput(in)
	tx.AddOutput(transaction.NewTxOutput(asset, value, c.DestinationScript))
	tx.AddOutput(transaction.NewTxOutput(asset, fee, []byte{}))
	return tx, nil
}

// WitnessStack is the script path witness of a claim. Script may be left
// empty to produce the three entry form.
type WitnessStack struct {
	Witness      []byte
	Program      []byte
	Script       []byte
	ControlBlock []byte
}

// Items returns the stack in spending order: witness, program, the
// optional leaf script, control block.
func (s WitnessStack) Items() [][]byte {
	items := [][]byte{s.Witness, s.Program}
	if len(s.Script) > 0 {
		items = append(items, s.Script)
	}
	return append(items, s.ControlBlock)
}

// FinalizedClaim is a claim transaction ready for broadcast.
type FinalizedClaim struct {
	Claim   *UnsignedClaim
	Tx      *transaction.Transaction
	Witness [][]byte
	TxID    string
	Hex     string
}

// AttachWitness returns the finalized claim spending with stack. The
// unsigned claim is left untouched, no signature is involved.
func (c *UnsignedClaim) AttachWitness(stack WitnessStack) (*FinalizedClaim, error) {
	switch {
	case len(stack.Witness) == 0:
		return nil, fmt.Errorf("error attaching witness: empty witness")
	case len(stack.Program) == 0:
		return nil, fmt.Errorf("error attaching witness: empty program")
	case len(stack.ControlBlock) == 0:
		return nil, fmt.Errorf("error attaching witness: empty control block")
	}

	tx, err := c.Tx()
	if err != nil {
		return nil, err
	}
	items := stack.Items()
	tx.Inputs[0].Witness = items

	txHex, err := tx.ToHex()
	if err != nil {
		return nil, fmt.Errorf("error serializing claim: %v", err)
	}
	return &FinalizedClaim{
		Claim:   c,
		Tx:      tx,
		Witness: items,
		TxID:    tx.TxHash().String(),
		Hex:     txHex,
	}, nil
}
