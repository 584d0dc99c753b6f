package cmd

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/rishi7822/Finalproject/pkg/units"
)

var balanceCmd = &cobra.Command{
	Use:   "balance [address]",
	Short: "Show the SOL balance of an account",
	Long:  `Shows the balance of address, or of the keystore account when no address is given.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		var (
			account solana.PublicKey
			err     error
		)
		if len(args) == 1 {
			account, err = solana.PublicKeyFromBase58(args[0])
		} else {
			account, err = keystoreAddress(ctx)
		}
		if err != nil {
			return err
		}

		client, err := newRPCClient()
		if err != nil {
			return err
		}
		lamports, err := client.GetBalance(ctx, account)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", account, units.Format(units.ToDisplay(lamports)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}
