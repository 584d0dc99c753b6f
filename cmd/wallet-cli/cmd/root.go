package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rishi7822/Finalproject/internal/chain"
	"github.com/rishi7822/Finalproject/internal/provider"
	"github.com/rishi7822/Finalproject/pkg/config"
	"github.com/rishi7822/Finalproject/pkg/hdkey"
)

var (
	keystorePath   string
	network        string
	rpcURL         string
	derivationPath string
	confirmTimeout time.Duration
	pollInterval   time.Duration
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wallet-cli",
	Short: "Solana wallet command line tool",
	Long: `A command line wallet for Solana.
Creates and imports encrypted keystores, shows the account address and
balance, and sends SOL transfers.

Flags default to the values in config.yaml and the environment
(WALLET_KEYSTORE_PATH, SOLANA_NETWORK, SOLANA_RPC_URL).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	defaults := defaultFlags()
	rootCmd.PersistentFlags().StringVarP(&keystorePath, "keystore", "k", defaults.Wallet.KeystorePath, "keystore file path")
	rootCmd.PersistentFlags().StringVar(&network, "network", defaults.Solana.Network, "devnet, testnet, mainnet-beta or localnet")
	rootCmd.PersistentFlags().StringVar(&rpcURL, "rpc-url", defaults.Solana.RpcUrl, "explicit RPC endpoint, overrides --network")
	rootCmd.PersistentFlags().StringVar(&derivationPath, "path", defaults.Wallet.DerivationPath, "derivation path for mnemonic keystores")
	rootCmd.PersistentFlags().DurationVar(&confirmTimeout, "confirm-timeout", defaults.Solana.ConfirmTimeout, "how long to wait for a transaction to confirm")
	rootCmd.PersistentFlags().DurationVar(&pollInterval, "poll-interval", defaults.Solana.PollInterval, "how often to poll the transaction status")
}

// defaultFlags reads the shared configuration. The CLI still works without
// it, falling back to built-in defaults.
func defaultFlags() config.Config {
	if cfg, err := config.Load(); err == nil {
		return *cfg
	}
	var cfg config.Config
	cfg.Wallet.KeystorePath = "wallet.json"
	cfg.Wallet.DerivationPath = hdkey.SolanaPath
	cfg.Solana.Network = "devnet"
	cfg.Solana.ConfirmTimeout = chain.DefaultConfirmTimeout
	cfg.Solana.PollInterval = chain.DefaultPollInterval
	return cfg
}

func newRPCClient() (*chain.Client, error) {
	endpoint, err := chain.ResolveEndpoint(network, rpcURL)
	if err != nil {
		return nil, err
	}
	return chain.New(endpoint,
		chain.WithConfirmTimeout(confirmTimeout),
		chain.WithPollInterval(pollInterval),
	), nil
}

func openWallet(opts ...provider.Option) *provider.KeystoreWallet {
	opts = append([]provider.Option{provider.WithDerivationPath(derivationPath)}, opts...)
	return provider.NewKeystoreWallet(keystorePath, provider.PromptPassword("Keystore password: "), opts...)
}
