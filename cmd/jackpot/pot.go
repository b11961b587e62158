package main

import (
	"context"
	"fmt"

	jackpot "github.com/rollkit/liquid-jackpot"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newAddToPotCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "addtopot <puzzle.json> <amount>",
		Short: "Send more funds to a puzzle address",
		Long: `Send the amount to the puzzle address and update the prize in the
puzzle file. The extra funds land in a separate output: a claim only spends
the outpoint recorded in the file.`,
		Example: `jackpot addtopot puzzle_2cf24dba.json 0.05`,
		Args:    cobra.ExactArgs(2),
		RunE:    runAddToPot,
	}
}

func runAddToPot(_ *cobra.Command, args []string) error {
	desc, err := jackpot.ReadDescriptor(args[0])
	if err != nil {
		return err
	}
	amount, err := decimal.NewFromString(args[1])
	if err != nil {
		return fmt.Errorf("invalid amount %q: %v", args[1], err)
	}

	return withGame(func(game *jackpot.Game) error {
		fmt.Printf("Puzzle address: %s\n", desc.Address)
		fmt.Printf("Current prize:  %s\n", desc.Amount)
		fmt.Printf("Adding:         %s\n", amount)

		txid, updated, err := game.AddToPot(context.Background(), desc, amount)
		if err != nil {
			return err
		}
		if err := jackpot.WriteDescriptor(args[0], updated); err != nil {
			return err
		}
		store, err := openStore()
		if err != nil {
			return err
		}
		if store != nil {
			defer store.Close()
			if err := store.PutPuzzle(updated); err != nil {
				return err
			}
		}
		fmt.Printf("Funds added in %s\n", txid)
		fmt.Printf("New prize: %s\n", updated.Amount)
		return nil
	})
}
