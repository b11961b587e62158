package main

import (
	"context"
	"errors"
	"fmt"

	jackpot "github.com/rollkit/liquid-jackpot"
	"github.com/spf13/cobra"
	"github.com/vulpemventures/go-elements/address"
)

type solveCommand struct {
	DryRun   bool
	NoScript bool
}

func newSolveCommand() *cobra.Command {
	cc := &solveCommand{}
	cmd := &cobra.Command{
		Use:   "solve <puzzle.json> <secret> <destination>",
		Short: "Claim a puzzle prize with its secret",
		Long: `Check the secret against the puzzle's target hash, resolve the funding
output, satisfy the contract and broadcast a claim paying the prize minus
the fee to the destination address. The claim is broadcast once; if a
competing solver already claimed the prize this is reported, not retried.`,
		Example: `jackpot solve puzzle_2cf24dba.json "satoshi" tex1q...`,
		Args:    cobra.ExactArgs(3),
		RunE:    cc.Execute,
	}
	cmd.Flags().BoolVar(&cc.DryRun, "dryrun", false,
		"print the claim instead of broadcasting it")
	cmd.Flags().BoolVar(&cc.NoScript, "noscript", false,
		"leave the leaf script out of the witness stack")
	return cmd
}

func (c *solveCommand) Execute(_ *cobra.Command, args []string) error {
	desc, err := jackpot.ReadDescriptor(args[0])
	if err != nil {
		return err
	}
	if err := desc.Validate(); err != nil {
		return err
	}
	destScript, err := address.ToOutputScript(args[2])
	if err != nil {
		return fmt.Errorf("invalid destination %q: %v", args[2], err)
	}
	fmt.Printf("Puzzle address: %s\n", desc.Address)
	fmt.Printf("Target hash:    %s\n", desc.TargetHash)

	// Fail fast, before the node or the compiler are involved.
	if _, err := jackpot.VerifySecret(desc, args[1]); err != nil {
		var mismatch *jackpot.SecretMismatchError
		if errors.As(err, &mismatch) {
			fmt.Println("Wrong secret!")
			fmt.Printf("  Expected: %s\n", mismatch.Expected)
			fmt.Printf("  Got:      %s\n", mismatch.Actual)
		}
		return err
	}
	fmt.Println("Secret matches the target hash.")

	return withGame(func(game *jackpot.Game) error {
		res, err := game.Solve(context.Background(), jackpot.SolveRequest{
			Descriptor:        desc,
			Secret:            args[1],
			DestinationScript: destScript,
			OmitScript:        c.NoScript,
			DryRun:            c.DryRun,
		})
		recordAttempt(desc, args[2], res, err)
		switch {
		case errors.Is(err, jackpot.ErrUtxoNotFound),
			errors.Is(err, jackpot.ErrAlreadyClaimed):
			fmt.Println("Too late, this puzzle was already claimed.")
			return err
		case err != nil:
			return err
		}

		claim := res.Claim.Claim
		if !res.Broadcasted {
			fmt.Printf("Claim %s (not broadcast):\n%s\n", res.TxID, res.Claim.Hex)
			return nil
		}
		fmt.Println("You solved the puzzle!")
		fmt.Printf("  TXID:  %s\n", res.TxID)
		fmt.Printf("  Paid:  %d to %s\n", claim.OutputValue, args[2])
		fmt.Printf("  Fee:   %d\n", claim.Fee)
		fmt.Printf("  Input: %d (%s)\n", res.Utxo.Value, res.Utxo.Source)
		return nil
	})
}

// recordAttempt logs a claim attempt in the puzzle book, if enabled. An
// attempt that failed before a claim was built is kept without a txid.
func recordAttempt(desc *jackpot.PuzzleDescriptor, dest string,
	res *jackpot.ClaimResult, err error) {

	if err == nil && (res == nil || res.Claim == nil) {
		return
	}
	store, openErr := openStore()
	if openErr != nil || store == nil {
		return
	}
	defer store.Close()

	status := jackpot.ClaimStatusOf(err)
	if err == nil && !res.Broadcasted {
		status = jackpot.ClaimBuilt
	}
	attempt := jackpot.ClaimAttempt{
		Destination: dest,
		Status:      status,
		At:          now(),
	}
	if res != nil && res.Claim != nil {
		attempt.TxID = res.TxID
		attempt.OutputValue = res.Claim.Claim.OutputValue
		attempt.Fee = res.Claim.Claim.Fee
	}
	if err != nil {
		attempt.Reason = err.Error()
	}
	c, _ := desc.Commitment()
	if err := store.RecordClaim(c, attempt); err != nil {
		fmt.Printf("warning: unable to record claim: %v\n", err)
	}
}
