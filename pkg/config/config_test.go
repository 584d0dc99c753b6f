package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.HttpPort)
	assert.Equal(t, "devnet", cfg.Solana.Network)
	assert.Equal(t, 60*time.Second, cfg.Solana.ConfirmTimeout)
	assert.Equal(t, "wallet.json", cfg.Wallet.KeystorePath)
	assert.Equal(t, "m/44'/501'/0'/0'", cfg.Wallet.DerivationPath)
	assert.False(t, cfg.Wallet.AutoConnect)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := chdirTemp(t)

	yaml := []byte("app:\n  http_port: \"9090\"\nsolana:\n  network: testnet\n  confirm_timeout: 5s\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))
	t.Setenv("WALLET_KEYSTORE_PATH", "/tmp/k.json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.HttpPort)
	assert.Equal(t, "testnet", cfg.Solana.Network)
	assert.Equal(t, 5*time.Second, cfg.Solana.ConfirmTimeout)
	assert.Equal(t, "/tmp/k.json", cfg.Wallet.KeystorePath)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SOLANA_NETWORK=mainnet-beta\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("SOLANA_NETWORK") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "mainnet-beta", cfg.Solana.Network)
}

func TestValidate(t *testing.T) {
	base := Config{
		Solana: SolanaConfig{Network: "devnet", ConfirmTimeout: time.Second, PollInterval: time.Second},
		Wallet: WalletConfig{KeystorePath: "wallet.json"},
	}
	require.NoError(t, base.Validate())

	bad := base
	bad.Solana.Network = "moon"
	assert.Error(t, bad.Validate())

	custom := bad
	custom.Solana.RpcUrl = "http://127.0.0.1:8899"
	assert.NoError(t, custom.Validate())

	noKeystore := base
	noKeystore.Wallet.KeystorePath = ""
	assert.Error(t, noKeystore.Validate())
}
