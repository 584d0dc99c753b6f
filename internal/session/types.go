package session

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

// WalletProvider holds the user's signing key. It never exposes the key
// itself, only connect and sign capabilities.
type WalletProvider interface {
	// Connect asks the wallet to authorize this session.
	Connect(ctx context.Context) error
	// IsConnected reports whether a previous Connect is still authorized.
	IsConnected() bool
	// PublicKey is the connected account. Only meaningful once connected.
	PublicKey() solana.PublicKey
	// SignTransaction returns tx signed by the wallet account.
	SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error)
}

// RPCClient is the subset of a node's JSON-RPC API the session uses.
type RPCClient interface {
	// GetBalance returns the account balance in lamports.
	GetBalance(ctx context.Context, account solana.PublicKey) (uint64, error)
	LatestBlockhash(ctx context.Context) (solana.Hash, error)
	// SendAndConfirmTransaction submits a signed transaction and blocks until
	// the cluster confirms it.
	SendAndConfirmTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
}

// Session is the connection state. It lives until the process exits.
type Session struct {
	Connected bool
	Owner     *solana.PublicKey
	Balance   *decimal.Decimal // SOL
}

// TransferDraft is the user's pending input.
type TransferDraft struct {
	Recipient string
	Amount    decimal.Decimal // SOL
}

// TransferResult is the outcome of the last send attempt.
type TransferResult struct {
	Status string
}

// Notice categories, one per failure class surfaced to the user.
const (
	CategoryProviderAbsent = "provider_absent"
	CategoryConnectFailed  = "connect_failed"
	CategoryBalanceFailed  = "balance_failed"
	CategoryTransferFailed = "transfer_failed"
)

// Notice is the last error surfaced to the user.
type Notice struct {
	Code     int    `json:"code"`
	Category string `json:"category"`
	Message  string `json:"message"`
}

// View is an immutable snapshot of the controller for rendering.
type View struct {
	ProviderAvailable bool    `json:"provider_available"`
	Connected         bool    `json:"connected"`
	Owner             string  `json:"owner,omitempty"`
	Balance           string  `json:"balance,omitempty"` // SOL, empty while unknown
	Recipient         string  `json:"recipient"`
	Amount            string  `json:"amount"`
	Status            string  `json:"status,omitempty"`
	Pending           bool    `json:"pending"`
	Notice            *Notice `json:"notice,omitempty"`
}
