package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"path/filepath"

	jackpot "github.com/rollkit/liquid-jackpot"
	"github.com/spf13/cobra"
)

func newCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create <secret> <amount> [hint]",
		Short: "Create and fund a puzzle",
		Long: `Compute the commitment of the secret, compile the puzzle contract
against it, fund the resulting address from the node wallet and write the
public puzzle file and the creator's private file. The hint defaults to the
number of characters of the secret.`,
		Example: `jackpot create "satoshi" 0.1
jackpot create "bitcoin" 0.5 "The creator of Bitcoin"`,
		Args: cobra.RangeArgs(2, 3),
		RunE: runCreate,
	}
}

func runCreate(cmd *cobra.Command, args []string) error {
	req := jackpot.CreateRequest{Secret: args[0], Amount: args[1]}
	if len(args) == 3 {
		req.Hint = args[2]
	}

	return withGame(func(game *jackpot.Game) error {
		res, err := game.Create(context.Background(), req)
		if err != nil {
			return err
		}
		c := res.Puzzle.Commitment
		public := filepath.Join(outDir, jackpot.PublicFileName(c))
		private := filepath.Join(outDir, jackpot.PrivateFileName(c))
		// The private file goes first, it is the only copy of the secret.
		if err := jackpot.WritePrivateRecord(private, res.Private); err != nil {
			return err
		}
		if err := jackpot.WriteDescriptor(public, res.Public); err != nil {
			return err
		}
		store, err := openStore()
		if err != nil {
			return err
		}
		if store != nil {
			defer store.Close()
			if err := store.PutPuzzle(res.Public); err != nil {
				return err
			}
		}

		fmt.Println("Puzzle created")
		fmt.Printf("  Address:     %s\n", res.Public.Address)
		fmt.Printf("  Prize:       %s\n", res.Public.Amount)
		fmt.Printf("  Hint:        %q\n", res.Public.Hint)
		fmt.Printf("  Target hash: %s\n", res.Public.TargetHash)
		fmt.Printf("  Funding:     %s:%d\n", res.Public.TxID, res.Public.Vout)
		fmt.Printf("  Script:      %s\n", hex.EncodeToString(res.Puzzle.Leaf.Script))
		fmt.Println()
		fmt.Printf("Share %s with participants.\n", public)
		fmt.Printf("Do NOT share %s.\n", private)
		return nil
	})
}

func newAddressCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "address <secret>",
		Short: "Derive the puzzle address of a secret without funding it",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return withGame(func(game *jackpot.Game) error {
				p, err := game.DeriveAddress(context.Background(), args[0])
				if err != nil {
					return err
				}
				fmt.Printf("Target hash:   %s\n", p.Commitment)
				fmt.Printf("Address:       %s\n", p.Address())
				fmt.Printf("Merkle root:   %s\n", p.SpendInfo.MerkleRoot)
				fmt.Printf("Control block: %x\n", p.SpendInfo.ControlBlock)
				return nil
			})
		},
	}
}
