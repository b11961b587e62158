package jackpot

import (
	"fmt"
	"time"

	"github.com/vulpemventures/go-elements/network"
)

const (
	TRANSPORT_RPC = "rpc"
	TRANSPORT_CLI = "cli"

	DEFAULT_NETWORK = "testnet"
	DEFAULT_CHAIN   = "liquidtestnet"
	DEFAULT_TIMEOUT = 30 * time.Second
)

type Config struct {
	// Transport selects how the node is reached: "rpc" or "cli".
	Transport string

	// RPC transport.
	Host         string
	User         string
	Pass         string
	HTTPPostMode bool
	DisableTLS   bool

	// CLI transport.
	CLIPath string
	Chain   string

	// Wallet is the node wallet used for funding, on both transports.
	Wallet string

	// Network is one of "liquid", "testnet" or "regtest".
	Network string

	// Timeout bounds every node call. Zero disables it.
	Timeout time.Duration

	Compiler SimplicityConfig

	// Fee is the claim fee in base units.
	Fee uint64
}

// NetworkParams returns the Elements network named by name, defaulting to
// the Liquid testnet.
func NetworkParams(name string) (*network.Network, error) {
	switch name {
	case "liquid", "mainnet":
		return &network.Liquid, nil
	case "testnet", "liquidtestnet", "":
		return &network.Testnet, nil
	case "regtest", "elementsregtest":
		return &network.Regtest, nil
	}
	return nil, fmt.Errorf("unknown network %q", name)
}

// withDefaults fills in unset fields.
func (c Config) withDefaults() Config {
	if c.Transport == "" {
		c.Transport = TRANSPORT_RPC
	}
	if c.Network == "" {
		c.Network = DEFAULT_NETWORK
	}
	if c.Chain == "" {
		c.Chain = DEFAULT_CHAIN
	}
	if c.Timeout == 0 {
		c.Timeout = DEFAULT_TIMEOUT
	}
	if c.Fee == 0 {
		c.Fee = DEFAULT_SAT_FEE
	}
	return c
}

// NewNode returns the node caller selected by config and a function
// releasing it.
func NewNode(config Config) (NodeCaller, func(), error) {
	config = config.withDefaults()
	switch config.Transport {
	case TRANSPORT_RPC:
		node, err := NewRPCNode(config)
		if err != nil {
			return nil, nil, err
		}
		return node, node.Close, nil
	case TRANSPORT_CLI:
		node, err := NewCLINode(config)
		if err != nil {
			return nil, nil, err
		}
		return node, func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown transport %q", config.Transport)
}

// NewGameFromConfig wires a Game to the node and compiler of config.
func NewGameFromConfig(config Config) (*Game, func(), error) {
	config = config.withDefaults()
	net, err := NetworkParams(config.Network)
	if err != nil {
		return nil, nil, err
	}
	compiler, err := NewSimplicityCompiler(config.Compiler)
	if err != nil {
		return nil, nil, err
	}
	node, closeNode, err := NewNode(config)
	if err != nil {
		return nil, nil, err
	}
	return NewGame(compiler, node, net, config.Fee), closeNode, nil
}
