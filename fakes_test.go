package jackpot

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"
)

// hashLockCompiler stands in for the SimplicityHL bridge. Its script is a
// digest of the commitment and it only satisfies with the matching secret.
type hashLockCompiler struct {
	compiles int
}

func (h *hashLockCompiler) Compile(_ context.Context, c Commitment) (CompiledContract, error) {
	h.compiles++
	return &hashLockContract{commitment: c}, nil
}

type hashLockContract struct {
	commitment Commitment
}

func (h *hashLockContract) Commitment() Commitment { return h.commitment }

func (h *hashLockContract) Script() []byte {
	return chainhash.HashB(append([]byte("hashlock"), h.commitment[:]...))
}

func (h *hashLockContract) LeafVersion() uint8 { return SimplicityLeafVersion }

func (h *hashLockContract) Satisfy(_ context.Context, secret CanonicalSecret) ([]byte, []byte, error) {
	if Commit(secret) != h.commitment {
		return nil, nil, fmt.Errorf("%w: hash mismatch", ErrSatisfaction)
	}
	return append([]byte{0xaa}, h.Script()...), secret[:], nil
}

type nodeHandler func(params []interface{}) (json.RawMessage, error)

// fakeNode answers node calls from per-method handlers and records the
// methods called.
type fakeNode struct {
	handlers map[string]nodeHandler
	calls    []string
}

func newFakeNode() *fakeNode {
	return &fakeNode{handlers: make(map[string]nodeHandler)}
}

func (f *fakeNode) on(method string, h nodeHandler) *fakeNode {
	f.handlers[method] = h
	return f
}

func (f *fakeNode) reply(method string, raw string) *fakeNode {
	return f.on(method, func([]interface{}) (json.RawMessage, error) {
		return json.RawMessage(raw), nil
	})
}

func (f *fakeNode) fail(method string, err error) *fakeNode {
	return f.on(method, func([]interface{}) (json.RawMessage, error) {
		return nil, err
	})
}

func (f *fakeNode) Call(_ context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	f.calls = append(f.calls, method)
	h, ok := f.handlers[method]
	if !ok {
		return nil, fmt.Errorf("unexpected call %s", method)
	}
	return h(params)
}

func (f *fakeNode) called(method string) int {
	n := 0
	for _, c := range f.calls {
		if c == method {
			n++
		}
	}
	return n
}

func mustJSON(t *testing.T, v interface{}) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func mustCommit(t *testing.T, secret string) Commitment {
	t.Helper()
	c, err := EncodeSecret(secret)
	require.NoError(t, err)
	return Commit(c)
}

const testTxID = "5b2f6a0c8d9e1f3a4b5c6d7e8f90a1b2c3d4e5f60718293a4b5c6d7e8f90a1b2"
