package jackpot

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// SimplicityLeafVersion is the tapleaf version of Simplicity programs on
// Elements.
const SimplicityLeafVersion = 0xbe

const (
	DEFAULT_COMMITMENT_PARAM = "TARGET_HASH"
	DEFAULT_SECRET_PARAM     = "SECRET"
)

// ContractCompiler compiles the puzzle program against a commitment.
// Compile must be deterministic: the same commitment yields the same script
// on any machine at any time, since creation and claiming happen apart.
type ContractCompiler interface {
	Compile(ctx context.Context, commitment Commitment) (CompiledContract, error)
}

// CompiledContract is a puzzle program bound to one commitment.
type CompiledContract interface {
	// Commitment returns the commitment the program was compiled for.
	Commitment() Commitment

	// Script returns the leaf script committed to by the puzzle address.
	Script() []byte

	// LeafVersion returns the tapleaf version of Script.
	LeafVersion() uint8

	// Satisfy returns the encoded program and witness proving knowledge of
	// secret. It fails with ErrSatisfaction unless Commit(secret) equals
	// Commitment().
	Satisfy(ctx context.Context, secret CanonicalSecret) (program, witness []byte, err error)
}

// SimplicityConfig locates the SimplicityHL bridge and the puzzle template.
type SimplicityConfig struct {
	// Command is the bridge executable.
	Command string
	// Template is the path of the .simf puzzle template.
	Template string
	// CommitmentParam names the template parameter bound to the commitment.
	CommitmentParam string
	// SecretParam names the witness value bound to the secret.
	SecretParam string
}

// SimplicityCompiler compiles the puzzle template by running an external
// SimplicityHL bridge:
//
//	<command> --template <path> --arg NAME=0x<hex> [--witness NAME=0x<hex>]
//
// The bridge prints {"cmr": hex, "program": base64, "witness": base64} on
// stdout; program and witness are only present when a witness was given.
type SimplicityCompiler struct {
	cfg SimplicityConfig
	run runFunc
}

// NewSimplicityCompiler returns a compiler for cfg, filling in the default
// parameter names.
func NewSimplicityCompiler(cfg SimplicityConfig) (*SimplicityCompiler, error) {
	if cfg.Command == "" {
		return nil, fmt.Errorf("error creating compiler: no bridge command")
	}
	if cfg.Template == "" {
		return nil, fmt.Errorf("error creating compiler: no template")
	}
	if cfg.CommitmentParam == "" {
		cfg.CommitmentParam = DEFAULT_COMMITMENT_PARAM
	}
	if cfg.SecretParam == "" {
		cfg.SecretParam = DEFAULT_SECRET_PARAM
	}
	return &SimplicityCompiler{cfg: cfg, run: execRun}, nil
}

type bridgeOutput struct {
	CMR     string `json:"cmr"`
	Program string `json:"program"`
	Witness string `json:"witness"`
}

func (s *SimplicityCompiler) invoke(ctx context.Context, commitment Commitment,
	secret *CanonicalSecret) (*bridgeOutput, error) {

	args := []string{
		"--template", s.cfg.Template,
		"--arg", s.cfg.CommitmentParam + "=" + commitment.String(),
	}
	if secret != nil {
		args = append(args, "--witness", s.cfg.SecretParam+"="+secret.String())
	}
	stdout, stderr, err := s.run(ctx, s.cfg.Command, args...)
	if err != nil {
		msg := strings.TrimSpace(string(stderr))
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("%s", msg)
	}
	var out bridgeOutput
	if err := json.Unmarshal(stdout, &out); err != nil {
		return nil, fmt.Errorf("error decoding bridge output: %v", err)
	}
	return &out, nil
}

// Compile implements ContractCompiler.
func (s *SimplicityCompiler) Compile(ctx context.Context,
	commitment Commitment) (CompiledContract, error) {

	out, err := s.invoke(ctx, commitment, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompile, err)
	}
	cmr, err := hex.DecodeString(out.CMR)
	if err != nil || len(cmr) != 32 {
		return nil, fmt.Errorf("%w: bad cmr %q", ErrCompile, out.CMR)
	}
	log.Debugf("Compiled %s for %s: cmr %x", s.cfg.Template, commitment, cmr)
	return &simplicityContract{
		compiler:   s,
		commitment: commitment,
		cmr:        cmr,
	}, nil
}

type simplicityContract struct {
	compiler   *SimplicityCompiler
	commitment Commitment
	cmr        []byte
}

func (c *simplicityContract) Commitment() Commitment { return c.commitment }

// Script is the commitment merkle root of the program.
func (c *simplicityContract) Script() []byte {
	return append([]byte(nil), c.cmr...)
}

func (c *simplicityContract) LeafVersion() uint8 { return SimplicityLeafVersion }

func (c *simplicityContract) Satisfy(ctx context.Context,
	secret CanonicalSecret) ([]byte, []byte, error) {

	out, err := c.compiler.invoke(ctx, c.commitment, &secret)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrSatisfaction, err)
	}
	cmr, err := hex.DecodeString(out.CMR)
	if err != nil || !bytes.Equal(cmr, c.cmr) {
		return nil, nil, fmt.Errorf("%w: satisfied program cmr %q differs "+
			"from compiled cmr %x", ErrSatisfaction, out.CMR, c.cmr)
	}
	program, err := base64.StdEncoding.DecodeString(out.Program)
	if err != nil || len(program) == 0 {
		return nil, nil, fmt.Errorf("%w: bad program encoding",
			ErrSatisfaction)
	}
	witness, err := base64.StdEncoding.DecodeString(out.Witness)
	if err != nil || len(witness) == 0 {
		return nil, nil, fmt.Errorf("%w: bad witness encoding",
			ErrSatisfaction)
	}
	return program, witness, nil
}
