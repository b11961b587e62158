package jackpot

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/vulpemventures/go-elements/network"
	"github.com/vulpemventures/go-elements/payment"
	"github.com/vulpemventures/go-elements/taproot"
)

// NUMS_INTERNAL_KEY is the BIP-341 point with no known discrete log. It
// makes the output a valid taproot key while ruling out a key path spend.
const NUMS_INTERNAL_KEY = "50929b74c1a04954b78b4b6035e97a5e078a5a0f28ec96d547bfee9ace803ac0"

// NUMSInternalKey parses NUMS_INTERNAL_KEY.
func NUMSInternalKey() *btcec.PublicKey {
	raw, _ := hex.DecodeString(NUMS_INTERNAL_KEY)
	key, err := schnorr.ParsePubKey(raw)
	if err != nil {
		panic(fmt.Sprintf("invalid NUMS internal key: %v", err))
	}
	return key
}

// SpendingLeaf is the only script path of a puzzle output.
type SpendingLeaf struct {
	Script      []byte
	LeafVersion uint8
}

// BuildLeaf returns the leaf for a compiled script.
func BuildLeaf(script []byte, leafVersion uint8) SpendingLeaf {
	return SpendingLeaf{
		Script:      append([]byte(nil), script...),
		LeafVersion: leafVersion,
	}
}

// ContractLeaf returns the leaf of a compiled contract.
func ContractLeaf(c CompiledContract) SpendingLeaf {
	return BuildLeaf(c.Script(), c.LeafVersion())
}

// SpendInfo is everything needed to pay to, and spend from, a single leaf
// puzzle output. It is recomputed on demand and never stored.
type SpendInfo struct {
	InternalKey  *btcec.PublicKey
	OutputKey    *btcec.PublicKey
	MerkleRoot   chainhash.Hash
	ControlBlock []byte
	Address      string
	ScriptPubKey []byte
}

// DeriveSpendInfo commits leaf to a taproot output tweaked from internalKey
// and encodes its address for net. The result depends only on the leaf and
// the key.
func DeriveSpendInfo(leaf SpendingLeaf, internalKey *btcec.PublicKey,
	net *network.Network) (*SpendInfo, error) {

	// Step 1: Construct the Taproot script tree with one leaf.
	tapLeaf := taproot.NewTapElementsLeaf(
		txscript.TapscriptLeafVersion(leaf.LeafVersion), leaf.Script,
	)
	tapScriptTree := taproot.AssembleTaprootScriptTree(tapLeaf)
	if len(tapScriptTree.LeafMerkleProofs) != 1 {
		return nil, fmt.Errorf("%w: expected 1 leaf proof, got %d",
			ErrTapTree, len(tapScriptTree.LeafMerkleProofs))
	}

	// Step 2: Tweak the internal key with the root, which for a single
	// leaf is the leaf hash itself.
	tapScriptRootHash := tapScriptTree.RootNode.TapHash()
	if leafHash := tapLeaf.TapHash(); tapScriptRootHash != leafHash {
		return nil, fmt.Errorf("%w: root %s is not leaf hash %s",
			ErrTapTree, tapScriptRootHash, leafHash)
	}
	outputKey := taproot.ComputeTaprootOutputKey(
		internalKey, tapScriptRootHash[:],
	)

	proof := tapScriptTree.LeafMerkleProofs[0]
	if len(proof.InclusionProof) != 0 {
		return nil, fmt.Errorf("%w: single leaf has a sibling path",
			ErrTapTree)
	}
	ctrlBlock := proof.ToControlBlock(internalKey)
	ctrlBlockBytes, err := ctrlBlock.ToBytes()
	if err != nil {
		return nil, fmt.Errorf("%w: error serializing control block: %v",
			ErrTapTree, err)
	}

	// Step 3: Generate the Bech32m address.
	pay, err := payment.FromTweakedKey(outputKey, net, nil)
	if err != nil {
		return nil, fmt.Errorf("error building taproot payment: %v", err)
	}
	address, err := pay.TaprootAddress()
	if err != nil {
		return nil, fmt.Errorf("error encoding Taproot address: %v", err)
	}
	pkScript, err := payToTaprootScript(outputKey)
	if err != nil {
		return nil, fmt.Errorf("error building p2tr script: %v", err)
	}

	return &SpendInfo{
		InternalKey:  internalKey,
		OutputKey:    outputKey,
		MerkleRoot:   tapScriptRootHash,
		ControlBlock: ctrlBlockBytes,
		Address:      address,
		ScriptPubKey: pkScript,
	}, nil
}

// payToTaprootScript creates a pk script for a pay-to-taproot output key.
func payToTaprootScript(taprootKey *btcec.PublicKey) ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_1).
		AddData(schnorr.SerializePubKey(taprootKey)).
		Script()
}
