package jackpot

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSecretFormat is returned when a 0x-prefixed secret is not
	// valid hex.
	ErrInvalidSecretFormat = errors.New("invalid secret format")

	// ErrCompile is returned when the contract template cannot be compiled
	// against a commitment.
	ErrCompile = errors.New("contract compilation failed")

	// ErrSatisfaction is returned when a secret does not satisfy the
	// compiled program. It is distinct from ErrSecretMismatch, which is the
	// cheap commitment pre-check.
	ErrSatisfaction = errors.New("secret does not satisfy program")

	// ErrSecretMismatch is returned when the commitment of a secret differs
	// from the stored commitment.
	ErrSecretMismatch = errors.New("secret does not match commitment")

	// ErrAddressMismatch is returned when the derived puzzle address differs
	// from the one recorded in the descriptor.
	ErrAddressMismatch = errors.New("derived address does not match descriptor")

	// ErrTapTree signals a broken single-leaf tap tree invariant. It should
	// never be returned for a well formed leaf.
	ErrTapTree = errors.New("tap tree invariant violated")

	// ErrUtxoNotFound is returned when the node reports the funding output
	// as absent. This is what a solver sees once a competing claim spent it.
	ErrUtxoNotFound = errors.New("utxo not found")

	// ErrAmbiguousValue is returned when the value of an output can be
	// learned neither on chain nor from a fallback.
	ErrAmbiguousValue = errors.New("utxo value is ambiguous")

	// ErrInsufficientValue is returned when the input value does not cover
	// the fee.
	ErrInsufficientValue = errors.New("insufficient value")

	// ErrAlreadyClaimed is returned when the node rejects a claim because
	// its input was already spent by another claim.
	ErrAlreadyClaimed = errors.New("puzzle already claimed")

	// ErrBroadcastRejected is returned for any other node rejection of a
	// claim transaction.
	ErrBroadcastRejected = errors.New("broadcast rejected")

	// ErrTimeout is returned when a node call exceeds its deadline. Calls
	// are never retried.
	ErrTimeout = errors.New("node call timed out")
)

// SecretMismatchError reports both commitments of a failed secret check.
type SecretMismatchError struct {
	Expected Commitment
	Actual   Commitment
}

func (e *SecretMismatchError) Error() string {
	return fmt.Sprintf("%v: expected %s, got %s", ErrSecretMismatch,
		e.Expected, e.Actual)
}

func (e *SecretMismatchError) Unwrap() error { return ErrSecretMismatch }

// AddressMismatchError reports the recorded and the re-derived address.
type AddressMismatchError struct {
	Expected string
	Actual   string
}

func (e *AddressMismatchError) Error() string {
	return fmt.Sprintf("%v: expected %s, got %s", ErrAddressMismatch,
		e.Expected, e.Actual)
}

func (e *AddressMismatchError) Unwrap() error { return ErrAddressMismatch }

// InsufficientValueError carries the input value and fee of a claim that
// cannot pay its own fee.
type InsufficientValueError struct {
	InputValue uint64
	Fee        uint64
}

func (e *InsufficientValueError) Error() string {
	return fmt.Sprintf("%v: input value %d does not exceed fee %d",
		ErrInsufficientValue, e.InputValue, e.Fee)
}

func (e *InsufficientValueError) Unwrap() error { return ErrInsufficientValue }

// NodeError is a rejection reported by the node, kept with its code and
// message and classified by Kind.
type NodeError struct {
	Kind    error
	Code    int
	Message string
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("%v: node error %d: %s", e.Kind, e.Code, e.Message)
}

func (e *NodeError) Unwrap() error { return e.Kind }
