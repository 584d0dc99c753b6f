package chain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/rishi7822/Finalproject/internal/session"
	"github.com/rishi7822/Finalproject/pkg/logger"
)

var (
	ErrUnknownNetwork = errors.New("unknown solana network")
	ErrConfirmTimeout = errors.New("transaction was not confirmed in time")
)

// Defaults used when the config leaves them unset.
const (
	DefaultConfirmTimeout = 60 * time.Second
	DefaultPollInterval   = time.Second
)

// ResolveEndpoint picks the RPC URL. An explicit url wins over the network name.
func ResolveEndpoint(network, url string) (string, error) {
	if url = strings.TrimSpace(url); url != "" {
		return url, nil
	}
	switch strings.ToLower(strings.TrimSpace(network)) {
	case "", "devnet":
		return rpc.DevNet_RPC, nil
	case "testnet":
		return rpc.TestNet_RPC, nil
	case "mainnet", "mainnet-beta":
		return rpc.MainNetBeta_RPC, nil
	case "localnet", "localhost":
		return rpc.LocalNet_RPC, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownNetwork, network)
	}
}

var _ session.RPCClient = (*Client)(nil)

// Client adapts a Solana JSON-RPC node to session.RPCClient.
type Client struct {
	rpc            *rpc.Client
	endpoint       string
	confirmTimeout time.Duration
	pollInterval   time.Duration
	log            *zap.Logger
}

type Option func(*Client)

func WithConfirmTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.confirmTimeout = d
		}
	}
}

func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		rpc:            rpc.New(endpoint),
		endpoint:       endpoint,
		confirmTimeout: DefaultConfirmTimeout,
		pollInterval:   DefaultPollInterval,
		log:            logger.Log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

// ConfirmTimeout is how long SendAndConfirmTransaction waits for confirmation.
func (c *Client) ConfirmTimeout() time.Duration {
	return c.confirmTimeout
}

func (c *Client) PollInterval() time.Duration {
	return c.pollInterval
}

// GetBalance returns the lamport balance at confirmed commitment.
func (c *Client) GetBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	out, err := c.rpc.GetBalance(ctx, account, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("get balance of %s: %w", account, err)
	}
	return out.Value, nil
}

func (c *Client) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	out, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("get latest blockhash: %w", err)
	}
	if out == nil || out.Value == nil {
		return solana.Hash{}, errors.New("get latest blockhash: empty response")
	}
	return out.Value.Blockhash, nil
}

// SendAndConfirmTransaction submits tx and polls its status until the cluster
// reports it confirmed or finalized, the transaction fails, or the confirm
// timeout passes.
func (c *Client) SendAndConfirmTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("send transaction: %w", err)
	}
	c.log.Debug("transaction submitted", zap.String("signature", sig.String()))

	if err := c.waitForConfirmation(ctx, sig); err != nil {
		return sig, err
	}
	return sig, nil
}

func (c *Client) waitForConfirmation(ctx context.Context, sig solana.Signature) error {
	ctx, cancel := context.WithTimeout(ctx, c.confirmTimeout)
	defer cancel()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		out, err := c.rpc.GetSignatureStatuses(ctx, true, sig)
		if err != nil {
			// transient node errors are retried until the deadline
			c.log.Warn("get signature status failed", zap.String("signature", sig.String()), zap.Error(err))
		} else if out != nil && len(out.Value) > 0 && out.Value[0] != nil {
			status := out.Value[0]
			if status.Err != nil {
				return fmt.Errorf("transaction %s failed: %v", sig, status.Err)
			}
			switch status.ConfirmationStatus {
			case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
				return nil
			}
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("%w: %s", ErrConfirmTimeout, sig)
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
