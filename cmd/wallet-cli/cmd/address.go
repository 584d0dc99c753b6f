package cmd

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/rishi7822/Finalproject/pkg/keystore"
)

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Print the keystore account address",
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := keystoreAddress(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), owner)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addressCmd)
}

// keystoreAddress reads the address stored in the keystore and only unlocks
// it when the address is missing.
func keystoreAddress(ctx context.Context) (solana.PublicKey, error) {
	ks, err := keystore.LoadFromFile(keystorePath)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if ks.Address != "" {
		return solana.PublicKeyFromBase58(ks.Address)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	w := openWallet()
	if err := w.Connect(ctx); err != nil {
		return solana.PublicKey{}, err
	}
	return w.PublicKey(), nil
}
