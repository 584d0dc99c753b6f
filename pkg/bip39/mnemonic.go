package bip39

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

// ErrInvalidMnemonic is returned when a phrase fails the BIP-39 checksum.
var ErrInvalidMnemonic = errors.New("invalid mnemonic")

// MnemonicService wraps BIP-39 phrase generation and seed derivation.
type MnemonicService struct{}

func NewMnemonicService() *MnemonicService {
	return &MnemonicService{}
}

// GenerateMnemonic returns a new random phrase. bitSize is the entropy size,
// 128 (12 words) or 256 (24 words).
func (s *MnemonicService) GenerateMnemonic(bitSize int) (string, error) {
	entropy, err := bip39.NewEntropy(bitSize)
	if err != nil {
		return "", fmt.Errorf("generate entropy: %w", err)
	}

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("generate mnemonic: %w", err)
	}

	return mnemonic, nil
}

func (s *MnemonicService) ValidateMnemonic(mnemonic string) bool {
	return bip39.IsMnemonicValid(Normalize(mnemonic))
}

// MnemonicToSeed derives the 64-byte BIP-39 seed. passphrase may be empty.
func (s *MnemonicService) MnemonicToSeed(mnemonic string, passphrase string) ([]byte, error) {
	mnemonic = Normalize(mnemonic)
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMnemonic, err)
	}
	return seed, nil
}

// Normalize lowercases the phrase and collapses whitespace.
func Normalize(mnemonic string) string {
	return strings.Join(strings.Fields(strings.ToLower(mnemonic)), " ")
}
