package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rishi7822/Finalproject/internal/provider"
	"github.com/rishi7822/Finalproject/pkg/bip39"
	"github.com/rishi7822/Finalproject/pkg/keystore"
)

// newCmd represents the new command
var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a new wallet",
	Long: `Generates a random BIP-39 mnemonic, derives the Solana account at the
derivation path and stores the mnemonic in an encrypted keystore.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		words, _ := cmd.Flags().GetInt("words")
		light, _ := cmd.Flags().GetBool("light")
		force, _ := cmd.Flags().GetBool("force")

		bitSize := 128
		switch words {
		case 12:
		case 24:
			bitSize = 256
		default:
			return fmt.Errorf("--words must be 12 or 24, got %d", words)
		}

		if err := checkOverwrite(force); err != nil {
			return err
		}

		mnemonic, err := bip39.NewMnemonicService().GenerateMnemonic(bitSize)
		if err != nil {
			return err
		}

		password, err := newPassword()
		if err != nil {
			return err
		}

		n, p := scryptParams(light)
		owner, err := provider.CreateKeystore(keystorePath, keystore.KindMnemonic, mnemonic, password, derivationPath, n, p)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "---------------------------------------------------")
		fmt.Fprintf(out, "Mnemonic:\n%s\n", mnemonic)
		fmt.Fprintln(out, "---------------------------------------------------")
		fmt.Fprintf(out, "Address [%s]: %s\n", derivationPath, owner)
		fmt.Fprintf(out, "Keystore saved to %s\n", keystorePath)
		fmt.Fprintln(out, "Write the mnemonic down. Anyone who has it controls this wallet.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(newCmd)
	newCmd.Flags().Int("words", 24, "mnemonic length, 12 or 24")
	newCmd.Flags().Bool("light", false, "use light scrypt parameters (faster, weaker)")
	newCmd.Flags().Bool("force", false, "overwrite an existing keystore")
}

func checkOverwrite(force bool) error {
	if force {
		return nil
	}
	if _, err := os.Stat(keystorePath); err == nil {
		return fmt.Errorf("keystore %s already exists, use --force to overwrite", keystorePath)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// newPassword takes the password from WALLET_PASSWORD or asks twice.
func newPassword() (string, error) {
	if pw := os.Getenv(provider.PasswordEnv); pw != "" {
		return pw, nil
	}
	pw, err := provider.ReadTerminalPassword("New keystore password: ")
	if err != nil {
		return "", err
	}
	if pw == "" {
		return "", errors.New("password must not be empty")
	}
	confirm, err := provider.ReadTerminalPassword("Repeat password: ")
	if err != nil {
		return "", err
	}
	if pw != confirm {
		return "", errors.New("passwords do not match")
	}
	return pw, nil
}

func scryptParams(light bool) (n, p int) {
	if light {
		return keystore.LightScryptN, keystore.LightScryptP
	}
	return keystore.StandardScryptN, keystore.StandardScryptP
}
