package bip39

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestGenerateMnemonic(t *testing.T) {
	service := NewMnemonicService()

	m12, err := service.GenerateMnemonic(128)
	require.NoError(t, err)
	assert.Len(t, strings.Fields(m12), 12)
	assert.True(t, service.ValidateMnemonic(m12))

	m24, err := service.GenerateMnemonic(256)
	require.NoError(t, err)
	assert.Len(t, strings.Fields(m24), 24)
	assert.True(t, service.ValidateMnemonic(m24))
}

func TestMnemonicToSeed(t *testing.T) {
	service := NewMnemonicService()
	expected := "5eb00bbddcf069084889a8ab9155568165f5c453ccb85e70811aaed6f6da5fc19a5ac40b389cd370d086206dec8aa6c43daea6690f20ad3d8d48b2d2ce9e38e4"

	seed, err := service.MnemonicToSeed(testMnemonic, "")
	require.NoError(t, err)
	assert.Equal(t, expected, hex.EncodeToString(seed))

	// Extra whitespace and casing do not change the seed.
	seed2, err := service.MnemonicToSeed("  ABANDON abandon abandon abandon abandon abandon\nabandon abandon abandon abandon abandon about ", "")
	require.NoError(t, err)
	assert.Equal(t, seed, seed2)
}

func TestMnemonicToSeed_Invalid(t *testing.T) {
	service := NewMnemonicService()

	_, err := service.MnemonicToSeed("abandon abandon abandon", "")
	assert.ErrorIs(t, err, ErrInvalidMnemonic)
	assert.False(t, service.ValidateMnemonic("hello world"))
}
