package provider

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"go.uber.org/zap"

	"github.com/rishi7822/Finalproject/internal/session"
	"github.com/rishi7822/Finalproject/pkg/bip39"
	"github.com/rishi7822/Finalproject/pkg/hdkey"
	"github.com/rishi7822/Finalproject/pkg/keystore"
	"github.com/rishi7822/Finalproject/pkg/logger"
)

var (
	ErrNotConnected   = errors.New("wallet is not connected")
	ErrSignerMismatch = errors.New("transaction fee payer is not the connected account")
	ErrRejected       = errors.New("user rejected the request")
	ErrInvalidSecret  = errors.New("invalid secret key")
)

// PasswordFunc supplies the keystore password when the wallet connects.
type PasswordFunc func(ctx context.Context) (string, error)

// ApproveFunc is asked before every signature. A non-nil error rejects the
// request.
type ApproveFunc func(ctx context.Context, tx *solana.Transaction) error

// StaticPassword returns a PasswordFunc that always yields password.
func StaticPassword(password string) PasswordFunc {
	return func(context.Context) (string, error) {
		return password, nil
	}
}

var _ session.WalletProvider = (*KeystoreWallet)(nil)

// KeystoreWallet is a WalletProvider backed by an encrypted keystore file.
// The key is only held in memory after Connect.
type KeystoreWallet struct {
	path           string
	derivationPath string
	password       PasswordFunc
	approve        ApproveFunc
	log            *zap.Logger

	mu  sync.RWMutex
	key solana.PrivateKey
}

type Option func(*KeystoreWallet)

func WithDerivationPath(path string) Option {
	return func(w *KeystoreWallet) { w.derivationPath = path }
}

func WithApproval(fn ApproveFunc) Option {
	return func(w *KeystoreWallet) { w.approve = fn }
}

func WithLogger(l *zap.Logger) Option {
	return func(w *KeystoreWallet) { w.log = l }
}

func NewKeystoreWallet(path string, password PasswordFunc, opts ...Option) *KeystoreWallet {
	w := &KeystoreWallet{
		path:           path,
		derivationPath: hdkey.SolanaPath,
		password:       password,
		log:            logger.Log,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Connect unlocks the keystore. Calling it on a connected wallet is a no-op.
func (w *KeystoreWallet) Connect(ctx context.Context) error {
	if w.IsConnected() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	ks, err := keystore.LoadFromFile(w.path)
	if err != nil {
		return fmt.Errorf("load keystore: %w", err)
	}

	password, err := w.password(ctx)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	secret, err := keystore.Decrypt(ks, password)
	if err != nil {
		return err
	}

	key, err := KeyFromSecret(ks.Kind, secret, w.derivationPath)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.key = key
	w.mu.Unlock()

	w.log.Info("keystore unlocked",
		zap.String("path", w.path),
		zap.String("kind", string(ks.Kind)),
		zap.String("address", key.PublicKey().String()))
	return nil
}

func (w *KeystoreWallet) IsConnected() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.key != nil
}

// PublicKey returns the connected account, or the zero key before Connect.
func (w *KeystoreWallet) PublicKey() solana.PublicKey {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.key == nil {
		return solana.PublicKey{}
	}
	return w.key.PublicKey()
}

// SignTransaction signs tx in place and returns it. The fee payer must be the
// connected account.
func (w *KeystoreWallet) SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error) {
	w.mu.RLock()
	key := w.key
	w.mu.RUnlock()
	if key == nil {
		return nil, ErrNotConnected
	}
	if tx == nil || len(tx.Message.AccountKeys) == 0 {
		return nil, errors.New("empty transaction")
	}

	owner := key.PublicKey()
	if !tx.Message.AccountKeys[0].Equals(owner) {
		return nil, fmt.Errorf("%w: payer %s", ErrSignerMismatch, tx.Message.AccountKeys[0])
	}

	if w.approve != nil {
		if err := w.approve(ctx, tx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRejected, err)
		}
	}

	_, err := tx.Sign(func(pub solana.PublicKey) *solana.PrivateKey {
		if pub.Equals(owner) {
			return &key
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}
	return tx, nil
}

// KeyFromSecret turns a decrypted keystore secret into a signing key. A
// mnemonic is derived at path; a secret key is base58, either the 64-byte
// solana-keygen form or a 32-byte seed.
func KeyFromSecret(kind keystore.Kind, secret, path string) (solana.PrivateKey, error) {
	switch kind {
	case keystore.KindMnemonic:
		seed, err := bip39.NewMnemonicService().MnemonicToSeed(secret, "")
		if err != nil {
			return nil, err
		}
		node, err := hdkey.DerivePath(seed, path)
		if err != nil {
			return nil, err
		}
		return solana.PrivateKey(node.PrivateKey()), nil

	case keystore.KindSecretKey:
		raw, err := base58.Decode(secret)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSecret, err)
		}
		switch len(raw) {
		case ed25519.SeedSize:
			return solana.PrivateKey(ed25519.NewKeyFromSeed(raw)), nil
		case ed25519.PrivateKeySize:
			expanded := ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize])
			if !expanded.Equal(ed25519.PrivateKey(raw)) {
				return nil, fmt.Errorf("%w: public half does not match seed", ErrInvalidSecret)
			}
			return solana.PrivateKey(raw), nil
		default:
			return nil, fmt.Errorf("%w: %d bytes", ErrInvalidSecret, len(raw))
		}

	default:
		return nil, fmt.Errorf("unknown keystore kind %q", kind)
	}
}

// CreateKeystore encrypts secret into a new keystore file at path and returns
// the account it controls. n and p are the scrypt work factors.
func CreateKeystore(path string, kind keystore.Kind, secret, password, derivationPath string, n, p int) (solana.PublicKey, error) {
	if kind == keystore.KindMnemonic {
		secret = bip39.Normalize(secret)
	}
	key, err := KeyFromSecret(kind, secret, derivationPath)
	if err != nil {
		return solana.PublicKey{}, err
	}

	ks, err := keystore.EncryptWithParams(kind, secret, password, n, p)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("encrypt keystore: %w", err)
	}
	ks.Address = key.PublicKey().String()

	if err := ks.SaveToFile(path); err != nil {
		return solana.PublicKey{}, fmt.Errorf("save keystore: %w", err)
	}
	return key.PublicKey(), nil
}
