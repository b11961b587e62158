package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the puzzles and claims in the puzzle book",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			if store == nil {
				return fmt.Errorf("no puzzle book, set --store")
			}
			defer store.Close()

			puzzles, err := store.Puzzles()
			if err != nil {
				return err
			}
			for _, p := range puzzles {
				fmt.Printf("%s %s %s %s:%d %q\n", p.TargetHash, p.Address,
					p.Amount, p.TxID, p.Vout, p.Hint)
				c, err := p.Commitment()
				if err != nil {
					return err
				}
				claims, err := store.Claims(c)
				if err != nil {
					return err
				}
				for _, a := range claims {
					fmt.Printf("    %s %s %s %s\n", a.At.Format("2006-01-02 15:04:05"),
						a.Status, a.TxID, a.Reason)
				}
			}
			return nil
		},
	}
}
