package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rishi7822/Finalproject/internal/chain"
	"github.com/rishi7822/Finalproject/internal/provider"
	"github.com/rishi7822/Finalproject/internal/session"
	"github.com/rishi7822/Finalproject/pkg/keystore"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestNewAndAddress(t *testing.T) {
	t.Setenv(provider.PasswordEnv, "hunter22")
	path := filepath.Join(t.TempDir(), "wallet.json")

	out, err := runCLI(t, "new", "--light", "--words", "12", "-k", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Keystore saved to "+path)

	ks, err := keystore.LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, keystore.KindMnemonic, ks.Kind)
	assert.Contains(t, out, ks.Address)

	mnemonic, err := keystore.Decrypt(ks, "hunter22")
	require.NoError(t, err)
	assert.Len(t, strings.Fields(mnemonic), 12)

	out, err = runCLI(t, "address", "-k", path)
	require.NoError(t, err)
	assert.Equal(t, ks.Address, strings.TrimSpace(out))

	_, err = runCLI(t, "new", "--light", "--words", "12", "-k", path)
	assert.ErrorContains(t, err, "already exists")
}

func TestNew_InvalidWords(t *testing.T) {
	t.Setenv(provider.PasswordEnv, "hunter22")
	_, err := runCLI(t, "new", "--words", "13", "-k", filepath.Join(t.TempDir(), "w.json"))
	assert.ErrorContains(t, err, "--words")
}

func TestConfirmOnTerminal(t *testing.T) {
	from, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	to, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	tx, err := session.BuildTransfer(from.PublicKey(), to.PublicKey(), 1_500_000_000, solana.Hash{1})
	require.NoError(t, err)

	var out bytes.Buffer
	assert.NoError(t, confirmOnTerminal(strings.NewReader("y\n"), &out)(context.Background(), tx))
	assert.Contains(t, out.String(), "To:     "+to.PublicKey().String())
	assert.Contains(t, out.String(), "Amount: 1.5 SOL")

	assert.Error(t, confirmOnTerminal(strings.NewReader("n\n"), &out)(context.Background(), tx))
	assert.Error(t, confirmOnTerminal(strings.NewReader(""), &out)(context.Background(), tx))
}

func TestNewRPCClient_UsesConfirmSettings(t *testing.T) {
	require.NoError(t, rootCmd.PersistentFlags().Parse([]string{
		"--rpc-url", "http://127.0.0.1:8899",
		"--confirm-timeout", "90s",
		"--poll-interval", "250ms",
	}))
	t.Cleanup(func() {
		rpcURL = ""
		confirmTimeout = chain.DefaultConfirmTimeout
		pollInterval = chain.DefaultPollInterval
	})

	client, err := newRPCClient()
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8899", client.Endpoint())
	assert.Equal(t, 90*time.Second, client.ConfirmTimeout())
	assert.Equal(t, 250*time.Millisecond, client.PollInterval())
}
