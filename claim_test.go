package jackpot

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vulpemventures/go-elements/elementsutil"
	"github.com/vulpemventures/go-elements/transaction"
)

var testDestination = append([]byte{0x00, 0x14}, bytes.Repeat([]byte{0x42}, 20)...)

func testStack() WitnessStack {
	return WitnessStack{
		Witness:      []byte{0x01, 0x02},
		Program:      []byte{0x03, 0x04, 0x05},
		Script:       bytes.Repeat([]byte{0x06}, 32),
		ControlBlock: append([]byte{0xbe}, bytes.Repeat([]byte{0x07}, 32)...),
	}
}

func TestBuildClaimValues(t *testing.T) {
	claim, err := BuildClaim(testOutpoint, 10_000_000, testAsset, testDestination, 3_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(9_997_000), claim.OutputValue)
	assert.Equal(t, uint64(3_000), claim.Fee)
	assert.Equal(t, uint64(10_000_000), claim.InputValue)
}

func TestBuildClaimInsufficientValue(t *testing.T) {
	for _, input := range []uint64{2_000, 3_000, 0} {
		_, err := BuildClaim(testOutpoint, input, testAsset, testDestination, 3_000)
		require.ErrorIs(t, err, ErrInsufficientValue)

		var insufficient *InsufficientValueError
		require.ErrorAs(t, err, &insufficient)
		assert.Equal(t, input, insufficient.InputValue)
		assert.Equal(t, uint64(3_000), insufficient.Fee)
	}
}

func TestBuildClaimRejectsBadInputs(t *testing.T) {
	_, err := BuildClaim(testOutpoint, 10_000, testAsset, nil, 3_000)
	assert.Error(t, err)

	_, err = BuildClaim(Outpoint{TxID: "zz"}, 10_000, testAsset, testDestination, 3_000)
	assert.Error(t, err)

	_, err = BuildClaim(testOutpoint, 10_000, "not an asset", testDestination, 3_000)
	assert.Error(t, err)
}

func TestClaimTransactionLayout(t *testing.T) {
	claim, err := BuildClaim(testOutpoint, 10_000_000, testAsset, testDestination, 3_000)
	require.NoError(t, err)
	tx, err := claim.Tx()
	require.NoError(t, err)

	require.Len(t, tx.Inputs, 1)
	hash, err := chainhash.NewHashFromStr(testTxID)
	require.NoError(t, err)
	assert.Equal(t, hash[:], tx.Inputs[0].Hash)
	assert.Equal(t, testOutpoint.Vout, tx.Inputs[0].Index)
	assert.Empty(t, tx.Inputs[0].Witness)

	require.Len(t, tx.Outputs, 2)
	value, err := elementsutil.ValueFromBytes(tx.Outputs[0].Value)
	require.NoError(t, err)
	assert.Equal(t, uint64(9_997_000), value)
	assert.Equal(t, testDestination, tx.Outputs[0].Script)

	fee, err := elementsutil.ValueFromBytes(tx.Outputs[1].Value)
	require.NoError(t, err)
	assert.Equal(t, uint64(3_000), fee)
	assert.Empty(t, tx.Outputs[1].Script)

	assert.Equal(t, tx.Outputs[0].Asset, tx.Outputs[1].Asset)
	asset, err := elementsutil.AssetHashToBytes(testAsset)
	require.NoError(t, err)
	assert.Equal(t, asset, tx.Outputs[0].Asset)
}

func TestAttachWitnessOrder(t *testing.T) {
	claim, err := BuildClaim(testOutpoint, 10_000_000, testAsset, testDestination, 3_000)
	require.NoError(t, err)
	stack := testStack()

	final, err := claim.AttachWitness(stack)
	require.NoError(t, err)
	require.Len(t, final.Witness, 4)
	assert.Equal(t, stack.Witness, final.Witness[0])
	assert.Equal(t, stack.Program, final.Witness[1])
	assert.Equal(t, stack.Script, final.Witness[2])
	assert.Equal(t, stack.ControlBlock, final.Witness[3])

	// The serialized transaction carries the same stack.
	decoded, err := transaction.NewTxFromHex(final.Hex)
	require.NoError(t, err)
	require.Len(t, decoded.Inputs, 1)
	require.Len(t, decoded.Inputs[0].Witness, 4)
	for i, item := range final.Witness {
		assert.Equal(t, item, decoded.Inputs[0].Witness[i])
	}
	assert.Equal(t, final.TxID, decoded.TxHash().String())
}

func TestAttachWitnessWithoutScript(t *testing.T) {
	claim, err := BuildClaim(testOutpoint, 10_000_000, testAsset, testDestination, 3_000)
	require.NoError(t, err)
	stack := testStack()
	stack.Script = nil

	final, err := claim.AttachWitness(stack)
	require.NoError(t, err)
	require.Len(t, final.Witness, 3)
	assert.Equal(t, stack.ControlBlock, final.Witness[2])
}

func TestAttachWitnessLeavesClaimUntouched(t *testing.T) {
	claim, err := BuildClaim(testOutpoint, 10_000_000, testAsset, testDestination, 3_000)
	require.NoError(t, err)

	first, err := claim.AttachWitness(testStack())
	require.NoError(t, err)
	other := testStack()
	other.Witness = []byte{0xff}
	second, err := claim.AttachWitness(other)
	require.NoError(t, err)

	// The witness is outside the txid.
	assert.Equal(t, first.TxID, second.TxID)
	assert.NotEqual(t, first.Hex, second.Hex)
	assert.Equal(t, []byte{0x01, 0x02}, first.Witness[0])

	tx, err := claim.Tx()
	require.NoError(t, err)
	assert.Empty(t, tx.Inputs[0].Witness)
}

func TestAttachWitnessRejectsIncompleteStack(t *testing.T) {
	claim, err := BuildClaim(testOutpoint, 10_000_000, testAsset, testDestination, 3_000)
	require.NoError(t, err)

	for _, mutate := range []func(*WitnessStack){
		func(s *WitnessStack) { s.Witness = nil },
		func(s *WitnessStack) { s.Program = nil },
		func(s *WitnessStack) { s.ControlBlock = nil },
	} {
		stack := testStack()
		mutate(&stack)
		_, err := claim.AttachWitness(stack)
		assert.Error(t, err)
	}
}
