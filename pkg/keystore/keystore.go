package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"golang.org/x/crypto/scrypt"
)

// Kind tells the wallet how to turn the decrypted secret into a signing key.
type Kind string

const (
	KindMnemonic  Kind = "mnemonic"   // BIP-39 phrase, derived with a path
	KindSecretKey Kind = "secret_key" // raw 64-byte ed25519 key, base58
)

var (
	// ErrDecrypt is returned for a wrong password or a tampered file.
	ErrDecrypt = errors.New("invalid password or corrupted data (MAC mismatch)")
	// ErrKDFParams is returned when a file asks for scrypt work outside the
	// accepted limits.
	ErrKDFParams = errors.New("unsupported scrypt parameters")
)

// EncryptedKeyJSON follows the layout of an Ethereum V3 keystore but stores a
// wallet secret (mnemonic or base58 key) instead of a single private key.
type EncryptedKeyJSON struct {
	Address string     `json:"address,omitempty"` // base58 public key, informational
	Kind    Kind       `json:"kind"`
	Crypto  CryptoJSON `json:"crypto"`
	Id      string     `json:"id"`
	Version int        `json:"version"`
}

type CryptoJSON struct {
	Cipher       string       `json:"cipher"`
	CipherText   string       `json:"ciphertext"`
	CipherParams CipherParams `json:"cipherparams"`
	KDF          string       `json:"kdf"`
	KDFParams    KDFParams    `json:"kdfparams"`
	MAC          string       `json:"mac"`
}

type CipherParams struct {
	IV string `json:"iv"`
}

type KDFParams struct {
	DKLen int    `json:"dklen"`
	N     int    `json:"n"`
	R     int    `json:"r"`
	P     int    `json:"p"`
	Salt  string `json:"salt"`
}

// Scrypt work factors. Light is for tests and low-powered machines.
const (
	StandardScryptN = 1 << 18
	StandardScryptP = 1
	LightScryptN    = 1 << 12
	LightScryptP    = 6

	scryptR     = 8
	scryptDKLen = 32

	// Limits on parameters read from a file. N=1<<20 with r=8 needs 1 GiB.
	MaxScryptN = 1 << 20
	MaxScryptP = 16
)

// Encrypt seals secret with password using the standard scrypt parameters.
func Encrypt(kind Kind, secret, password string) (*EncryptedKeyJSON, error) {
	return EncryptWithParams(kind, secret, password, StandardScryptN, StandardScryptP)
}

// EncryptWithParams seals secret with password using scrypt(n, r=8, p) and
// AES-256-GCM.
func EncryptWithParams(kind Kind, secret, password string, n, p int) (*EncryptedKeyJSON, error) {
	if kind != KindMnemonic && kind != KindSecretKey {
		return nil, fmt.Errorf("unknown keystore kind %q", kind)
	}
	if err := checkKDFParams(KDFParams{DKLen: scryptDKLen, N: n, R: scryptR, P: p}); err != nil {
		return nil, err
	}

	salt := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}

	derivedKey, err := scrypt.Key([]byte(password), salt, n, scryptR, p, scryptDKLen)
	if err != nil {
		return nil, err
	}

	gcm, err := newGCM(derivedKey)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	ciphertext := gcm.Seal(nil, nonce, []byte(secret), nil)
	mac := computeMAC(derivedKey, ciphertext)

	return &EncryptedKeyJSON{
		Kind:    kind,
		Version: 3,
		Id:      uuid.NewString(),
		Crypto: CryptoJSON{
			Cipher:     "aes-256-gcm",
			CipherText: hex.EncodeToString(ciphertext),
			CipherParams: CipherParams{
				IV: hex.EncodeToString(nonce),
			},
			KDF: "scrypt",
			KDFParams: KDFParams{
				DKLen: scryptDKLen,
				N:     n,
				R:     scryptR,
				P:     p,
				Salt:  hex.EncodeToString(salt),
			},
			MAC: hex.EncodeToString(mac),
		},
	}, nil
}

// Decrypt returns the secret sealed in keyJSON.
func Decrypt(keyJSON *EncryptedKeyJSON, password string) (string, error) {
	if keyJSON.Crypto.KDF != "scrypt" {
		return "", fmt.Errorf("unsupported kdf %q", keyJSON.Crypto.KDF)
	}

	salt, err := hex.DecodeString(keyJSON.Crypto.KDFParams.Salt)
	if err != nil {
		return "", fmt.Errorf("invalid salt: %w", err)
	}
	nonce, err := hex.DecodeString(keyJSON.Crypto.CipherParams.IV)
	if err != nil {
		return "", fmt.Errorf("invalid iv: %w", err)
	}
	ciphertext, err := hex.DecodeString(keyJSON.Crypto.CipherText)
	if err != nil {
		return "", fmt.Errorf("invalid ciphertext: %w", err)
	}
	mac, err := hex.DecodeString(keyJSON.Crypto.MAC)
	if err != nil {
		return "", fmt.Errorf("invalid mac: %w", err)
	}

	params := keyJSON.Crypto.KDFParams
	if err := checkKDFParams(params); err != nil {
		return "", err
	}
	derivedKey, err := scrypt.Key([]byte(password), salt, params.N, params.R, params.P, params.DKLen)
	if err != nil {
		return "", err
	}

	if subtle.ConstantTimeCompare(mac, computeMAC(derivedKey, ciphertext)) != 1 {
		return "", ErrDecrypt
	}

	gcm, err := newGCM(derivedKey)
	if err != nil {
		return "", err
	}
	if len(nonce) != gcm.NonceSize() {
		return "", fmt.Errorf("invalid iv length %d", len(nonce))
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("decryption failed: %w", err)
	}

	return string(plaintext), nil
}

func checkKDFParams(p KDFParams) error {
	switch {
	case p.DKLen != scryptDKLen:
		return fmt.Errorf("%w: dklen %d, want %d", ErrKDFParams, p.DKLen, scryptDKLen)
	case p.R != scryptR:
		return fmt.Errorf("%w: r %d, want %d", ErrKDFParams, p.R, scryptR)
	case p.N < 2 || p.N > MaxScryptN || p.N&(p.N-1) != 0:
		return fmt.Errorf("%w: n %d must be a power of two up to %d", ErrKDFParams, p.N, MaxScryptN)
	case p.P < 1 || p.P > MaxScryptP:
		return fmt.Errorf("%w: p %d must be between 1 and %d", ErrKDFParams, p.P, MaxScryptP)
	}
	return nil
}

// SaveToFile writes the keystore with owner-only permissions.
func (k *EncryptedKeyJSON) SaveToFile(filename string) error {
	data, err := json.MarshalIndent(k, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0600)
}

// LoadFromFile reads a keystore written by SaveToFile.
func LoadFromFile(filename string) (*EncryptedKeyJSON, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var k EncryptedKeyJSON
	if err := json.Unmarshal(data, &k); err != nil {
		return nil, fmt.Errorf("parse keystore %s: %w", filename, err)
	}
	if k.Kind == "" {
		k.Kind = KindMnemonic
	}
	return &k, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// computeMAC is SHA256(derivedKey || ciphertext).
func computeMAC(derivedKey, ciphertext []byte) []byte {
	h := sha256.New()
	h.Write(derivedKey)
	h.Write(ciphertext)
	return h.Sum(nil)
}
