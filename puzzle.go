package jackpot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/shopspring/decimal"
	"github.com/vulpemventures/go-elements/network"
)

// Game creates, funds and claims puzzles. It holds no mutable state: every
// call recomputes what it needs from its inputs.
type Game struct {
	compiler    ContractCompiler
	resolver    *UtxoResolver
	broadcaster *Broadcaster
	wallet      *Wallet
	net         *network.Network
	internalKey *btcec.PublicKey
	fee         uint64
	now         func() time.Time
}

// NewGame returns a game compiling with compiler and talking to node. fee
// is the claim fee in base units.
func NewGame(compiler ContractCompiler, node NodeCaller, net *network.Network,
	fee uint64) *Game {

	return &Game{
		compiler:    compiler,
		resolver:    NewUtxoResolver(node, net),
		broadcaster: NewBroadcaster(node),
		wallet:      NewWallet(node),
		net:         net,
		internalKey: NUMSInternalKey(),
		fee:         fee,
		now:         time.Now,
	}
}

// Puzzle is the compiled program and derived output of a commitment.
type Puzzle struct {
	Commitment Commitment
	Contract   CompiledContract
	Leaf       SpendingLeaf
	SpendInfo  *SpendInfo
}

// Address returns the puzzle address.
func (p *Puzzle) Address() string {
	return p.SpendInfo.Address
}

// Derive compiles the program for c and derives its output.
func (g *Game) Derive(ctx context.Context, c Commitment) (*Puzzle, error) {
	contract, err := g.compiler.Compile(ctx, c)
	if err != nil {
		return nil, err
	}
	leaf := ContractLeaf(contract)
	info, err := DeriveSpendInfo(leaf, g.internalKey, g.net)
	if err != nil {
		return nil, err
	}
	return &Puzzle{
		Commitment: c,
		Contract:   contract,
		Leaf:       leaf,
		SpendInfo:  info,
	}, nil
}

// DeriveAddress returns the puzzle for secret without funding it.
func (g *Game) DeriveAddress(ctx context.Context, secret string) (*Puzzle, error) {
	canonical, err := EncodeSecret(secret)
	if err != nil {
		return nil, err
	}
	return g.Derive(ctx, Commit(canonical))
}

// CreateRequest describes a new puzzle.
type CreateRequest struct {
	Secret string
	// Amount is the prize in coins, as typed by the creator. It is kept
	// verbatim in the records.
	Amount string
	// Hint defaults to DefaultHint(Secret).
	Hint string
}

// CreateResult is a funded puzzle.
type CreateResult struct {
	Puzzle  *Puzzle
	Public  *PuzzleDescriptor
	Private *PrivateRecord
}

// Create derives the puzzle of req.Secret, funds it with req.Amount from
// the node wallet and returns its public and private records. When the
// funding output cannot be located vout 0 is recorded and a warning is
// logged, the funds are sent either way.
func (g *Game) Create(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	amount := strings.TrimSpace(req.Amount)
	coins, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %v", req.Amount, err)
	}
	if _, err := CoinsToBase(coins); err != nil || !coins.IsPositive() {
		return nil, fmt.Errorf("invalid amount %q", req.Amount)
	}
	hint := req.Hint
	if hint == "" {
		hint = DefaultHint(req.Secret)
	}

	puzzle, err := g.DeriveAddress(ctx, req.Secret)
	if err != nil {
		return nil, err
	}
	log.Infof("Puzzle %s pays to %s", puzzle.Commitment, puzzle.Address())

	txid, err := g.wallet.Fund(ctx, puzzle.Address(), coins)
	if err != nil {
		return nil, err
	}
	vout, err := g.wallet.FindVout(ctx, txid, puzzle.SpendInfo.ScriptPubKey)
	if err != nil {
		log.Warnf("Unable to locate funding output of %s, recording "+
			"vout 0: %v", txid, err)
		vout = 0
	}

	createdAt := g.now()
	return &CreateResult{
		Puzzle: puzzle,
		Public: &PuzzleDescriptor{
			TargetHash: puzzle.Commitment.String(),
			Address:    puzzle.Address(),
			TxID:       txid,
			Vout:       vout,
			Amount:     amount,
			Hint:       hint,
			CreatedAt:  createdAt,
		},
		Private: &PrivateRecord{
			Secret:    req.Secret,
			Hash:      puzzle.Commitment.String(),
			TxID:      txid,
			Amount:    amount,
			Hint:      hint,
			Address:   puzzle.Address(),
			CreatedAt: createdAt,
		},
	}, nil
}

// VerifySecret checks secret against the commitment of d before anything
// is compiled or built.
func VerifySecret(d *PuzzleDescriptor, secret string) (CanonicalSecret, error) {
	expected, err := d.Commitment()
	if err != nil {
		return CanonicalSecret{}, err
	}
	canonical, err := EncodeSecret(secret)
	if err != nil {
		return CanonicalSecret{}, err
	}
	if actual := Commit(canonical); actual != expected {
		return CanonicalSecret{}, &SecretMismatchError{
			Expected: expected,
			Actual:   actual,
		}
	}
	return canonical, nil
}

// SolveRequest is an attempt to claim a puzzle.
type SolveRequest struct {
	Descriptor        *PuzzleDescriptor
	Secret            string
	DestinationScript []byte
	// OmitScript leaves the leaf script out of the witness stack.
	OmitScript bool
	// DryRun builds the claim without broadcasting it.
	DryRun bool
}

// ClaimResult is a built, and unless dry run, broadcast claim.
type ClaimResult struct {
	Puzzle      *Puzzle
	Utxo        *ResolvedUtxo
	Claim       *FinalizedClaim
	TxID        string
	Broadcasted bool
}

// Solve claims the puzzle of req.Descriptor with req.Secret. A wrong
// secret fails with *SecretMismatchError before any compilation or node
// call. The claim is broadcast once, losing the race to another solver
// surfaces as ErrUtxoNotFound or ErrAlreadyClaimed.
func (g *Game) Solve(ctx context.Context, req SolveRequest) (*ClaimResult, error) {
	d := req.Descriptor
	secret, err := VerifySecret(d, req.Secret)
	if err != nil {
		return nil, err
	}
	commitment, _ := d.Commitment()

	puzzle, err := g.Derive(ctx, commitment)
	if err != nil {
		return nil, err
	}
	if puzzle.Address() != d.Address {
		return nil, &AddressMismatchError{
			Expected: d.Address,
			Actual:   puzzle.Address(),
		}
	}

	var fallback *uint64
	if amount, err := d.AmountBase(); err == nil {
		fallback = &amount
	} else {
		log.Warnf("Ignoring puzzle amount as fallback: %v", err)
	}
	utxo, err := g.resolver.Resolve(ctx, d.Outpoint(), fallback)
	if err != nil {
		return nil, err
	}

	program, witness, err := puzzle.Contract.Satisfy(ctx, secret)
	if err != nil {
		return nil, err
	}

	unsigned, err := BuildClaim(utxo.Outpoint, utxo.Value, utxo.AssetID,
		req.DestinationScript, g.fee)
	if err != nil {
		return nil, err
	}
	stack := WitnessStack{
		Witness:      witness,
		Program:      program,
		ControlBlock: puzzle.SpendInfo.ControlBlock,
	}
	if !req.OmitScript {
		stack.Script = puzzle.Leaf.Script
	}
	claim, err := unsigned.AttachWitness(stack)
	if err != nil {
		return nil, err
	}
	log.Infof("Built claim %s paying %d (fee %d)", claim.TxID,
		unsigned.OutputValue, unsigned.Fee)

	result := &ClaimResult{
		Puzzle: puzzle,
		Utxo:   utxo,
		Claim:  claim,
		TxID:   claim.TxID,
	}
	if req.DryRun {
		return result, nil
	}
	txid, err := g.broadcaster.Broadcast(ctx, claim)
	if err != nil {
		return result, err
	}
	result.TxID = txid
	result.Broadcasted = true
	return result, nil
}

// AddToPot sends amount more coins to the address of d and returns the
// funding txid and d with the increased amount. The new output is separate
// from the tracked outpoint and is not spent by Solve.
func (g *Game) AddToPot(ctx context.Context, d *PuzzleDescriptor,
	amount decimal.Decimal) (string, *PuzzleDescriptor, error) {

	current, err := d.AmountCoins()
	if err != nil {
		return "", nil, err
	}
	if _, err := CoinsToBase(amount); err != nil {
		return "", nil, fmt.Errorf("invalid amount %s: %v", amount, err)
	}
	txid, err := g.wallet.Fund(ctx, d.Address, amount)
	if err != nil {
		return "", nil, err
	}
	log.Warnf("Output of %s is tracked separately from %s", txid,
		d.Outpoint())

	updated := *d
	updated.Amount = current.Add(amount).StringFixed(coinDecimals)
	return txid, &updated, nil
}
