// Package hdkey derives Solana account keys from a BIP-39 seed with SLIP-0010
// ed25519 derivation.
package hdkey

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/anyproto/go-slip10"
)

// HardenedKeyStart is the first hardened child index (2^31).
const HardenedKeyStart uint32 = 0x80000000

// SolanaPath is the account path used by Phantom and solana-keygen for account 0.
const SolanaPath = "m/44'/501'/0'/0'"

var (
	ErrInvalidSeed = errors.New("invalid seed")
	ErrInvalidPath = errors.New("invalid derivation path")
	// ed25519 only supports hardened derivation.
	ErrNonHardened = errors.New("ed25519 derivation requires hardened indexes")
)

// Key is a derived node.
type Key struct {
	Secret []byte // 32-byte ed25519 seed
}

// PrivateKey expands the node secret into a 64-byte ed25519 private key.
func (k *Key) PrivateKey() ed25519.PrivateKey {
	return ed25519.NewKeyFromSeed(k.Secret)
}

// ParsePath parses paths like m/44'/501'/0'/0'. "h" and "H" are accepted as
// hardened markers as well as "'". The root "m" alone is not an account path.
func ParsePath(path string) ([]uint32, error) {
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "m/") {
		return nil, fmt.Errorf("%w: %q must start with m/", ErrInvalidPath, path)
	}

	segments := strings.Split(path[2:], "/")
	indexes := make([]uint32, 0, len(segments))
	for _, segment := range segments {
		hardened := false
		if strings.HasSuffix(segment, "'") || strings.HasSuffix(segment, "h") || strings.HasSuffix(segment, "H") {
			hardened = true
			segment = segment[:len(segment)-1]
		}
		if !hardened {
			return nil, fmt.Errorf("%w: segment %q", ErrNonHardened, segment)
		}

		val, err := strconv.ParseUint(segment, 10, 31)
		if err != nil {
			return nil, fmt.Errorf("%w: segment %q: %v", ErrInvalidPath, segment, err)
		}
		indexes = append(indexes, uint32(val)+HardenedKeyStart)
	}
	return indexes, nil
}

// CanonicalPath rewrites path in the m/44'/501'/0'/0' form.
func CanonicalPath(path string) (string, error) {
	indexes, err := ParsePath(path)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("m")
	for _, index := range indexes {
		fmt.Fprintf(&b, "/%d'", index-HardenedKeyStart)
	}
	return b.String(), nil
}

// DerivePath derives the node at path from seed.
func DerivePath(seed []byte, path string) (*Key, error) {
	if len(seed) < 16 || len(seed) > 64 {
		return nil, ErrInvalidSeed
	}
	canonical, err := CanonicalPath(path)
	if err != nil {
		return nil, err
	}

	node, err := slip10.DeriveForPath(canonical, seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	secret := node.RawSeed()
	return &Key{Secret: append([]byte(nil), secret[:]...)}, nil
}
