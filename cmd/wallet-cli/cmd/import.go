package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rishi7822/Finalproject/internal/provider"
	"github.com/rishi7822/Finalproject/pkg/bip39"
	"github.com/rishi7822/Finalproject/pkg/keystore"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import an existing key into a keystore",
	Long: `Reads a base58 secret key (as exported by Phantom or solana-keygen) or,
with --mnemonic, a BIP-39 phrase, and stores it in an encrypted keystore.
The secret is read from the terminal without echo.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		asMnemonic, _ := cmd.Flags().GetBool("mnemonic")
		light, _ := cmd.Flags().GetBool("light")
		force, _ := cmd.Flags().GetBool("force")

		if err := checkOverwrite(force); err != nil {
			return err
		}

		kind := keystore.KindSecretKey
		prompt := "Base58 secret key: "
		if asMnemonic {
			kind = keystore.KindMnemonic
			prompt = "Mnemonic: "
		}

		secret, err := provider.ReadTerminalPassword(prompt)
		if err != nil {
			return err
		}
		secret = strings.TrimSpace(secret)
		if secret == "" {
			return errors.New("secret must not be empty")
		}
		if asMnemonic && !bip39.NewMnemonicService().ValidateMnemonic(secret) {
			return bip39.ErrInvalidMnemonic
		}

		password, err := newPassword()
		if err != nil {
			return err
		}

		n, p := scryptParams(light)
		owner, err := provider.CreateKeystore(keystorePath, kind, secret, password, derivationPath, n, p)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Imported %s\nKeystore saved to %s\n", owner, keystorePath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().Bool("mnemonic", false, "import a BIP-39 mnemonic instead of a secret key")
	importCmd.Flags().Bool("light", false, "use light scrypt parameters (faster, weaker)")
	importCmd.Flags().Bool("force", false, "overwrite an existing keystore")
}
