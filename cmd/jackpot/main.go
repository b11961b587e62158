package main

import (
	"fmt"
	"os"
	"time"

	"github.com/btcsuite/btclog"
	jackpot "github.com/rollkit/liquid-jackpot"
	"github.com/spf13/cobra"
)

var (
	cfg        jackpot.Config
	debugLevel string
	storePath  string
	outDir     string
)

var rootCmd = &cobra.Command{
	Use:   "jackpot",
	Short: "Create and claim hash puzzles on Liquid",
	Long: `jackpot locks funds behind the SHA-256 of a secret in a single leaf
Simplicity taproot output. Anyone who knows the secret can claim them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return setupLogging()
	},
}

func setupLogging() error {
	level, ok := btclog.LevelFromString(debugLevel)
	if !ok {
		return fmt.Errorf("invalid debug level %q", debugLevel)
	}
	backend := btclog.NewBackend(os.Stderr)
	logger := backend.Logger("JPOT")
	logger.SetLevel(level)
	jackpot.UseLogger(logger)
	return nil
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&cfg.Transport, "transport", jackpot.TRANSPORT_RPC,
		"how to reach elementsd: rpc or cli")
	f.StringVar(&cfg.Host, "rpchost", "localhost:18891", "elementsd RPC host")
	f.StringVar(&cfg.User, "rpcuser", "", "elementsd RPC user")
	f.StringVar(&cfg.Pass, "rpcpass", "", "elementsd RPC password")
	f.BoolVar(&cfg.DisableTLS, "notls", true, "disable TLS for RPC")
	f.StringVar(&cfg.CLIPath, "elementscli", "elements-cli",
		"path of elements-cli for the cli transport")
	f.StringVar(&cfg.Chain, "chain", jackpot.DEFAULT_CHAIN,
		"chain passed to elements-cli")
	f.StringVar(&cfg.Wallet, "wallet", "", "node wallet used for funding")
	f.StringVar(&cfg.Network, "network", jackpot.DEFAULT_NETWORK,
		"address network: liquid, testnet or regtest")
	f.DurationVar(&cfg.Timeout, "timeout", jackpot.DEFAULT_TIMEOUT,
		"deadline of every node call")
	f.StringVar(&cfg.Compiler.Command, "simc", "simc-bridge",
		"SimplicityHL bridge executable")
	f.StringVar(&cfg.Compiler.Template, "template", "puzzle_jackpot.simf",
		"puzzle contract template")
	f.Uint64Var(&cfg.Fee, "fee", jackpot.DEFAULT_SAT_FEE,
		"claim fee in base units")
	f.StringVar(&storePath, "store", "puzzles.db",
		"puzzle book; empty disables it")
	f.StringVar(&outDir, "outdir", ".", "directory for puzzle files")
	f.StringVar(&debugLevel, "debuglevel", "info",
		"log level: trace, debug, info, warn, error, critical, off")
	cfg.HTTPPostMode = true

	rootCmd.AddCommand(
		newCreateCommand(),
		newAddressCommand(),
		newSolveCommand(),
		newAddToPotCommand(),
		newListCommand(),
	)
}

// openStore opens the puzzle book, or returns nil when it is disabled.
func openStore() (*jackpot.Store, error) {
	if storePath == "" {
		return nil, nil
	}
	return jackpot.OpenStore(storePath)
}

func withGame(fn func(*jackpot.Game) error) error {
	game, closeGame, err := jackpot.NewGameFromConfig(cfg)
	if err != nil {
		return err
	}
	defer closeGame()
	return fn(game)
}

func now() time.Time { return time.Now() }

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
