package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rishi7822/Finalproject/pkg/errno"
	"github.com/rishi7822/Finalproject/pkg/logger"
	"github.com/rishi7822/Finalproject/pkg/monitor"
	"github.com/rishi7822/Finalproject/pkg/units"
)

const (
	StatusSentFormat = "Transaction sent. Transaction ID: %s"
	StatusFailed     = "Transaction failed."
)

// Transfer steps named in TransferError.
const (
	StepAmount    = "amount"
	StepRecipient = "recipient"
	StepBlockhash = "blockhash"
	StepBuild     = "build"
	StepSign      = "sign"
	StepSubmit    = "submit"
)

// TransferError reports which step of a send failed. It matches
// errno.ErrTransferFailed under errors.Is.
type TransferError struct {
	Step string
	Err  error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer failed at %s: %v", e.Step, e.Err)
}

func (e *TransferError) Unwrap() []error {
	return []error{errno.ErrTransferFailed, e.Err}
}

// Controller owns the wallet session state and drives the connect, balance
// and transfer workflows. It is safe for concurrent use; the mutex is never
// held across a provider or RPC call.
type Controller struct {
	provider WalletProvider
	rpc      RPCClient
	log      *zap.Logger
	metrics  *monitor.BusinessMetrics

	mu      sync.Mutex
	session Session
	draft   TransferDraft
	result  TransferResult
	notice  *Notice
	pending bool
}

type Option func(*Controller)

func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.log = l }
}

func WithMetrics(m *monitor.BusinessMetrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// New creates a controller. A nil provider means no wallet is installed;
// every operation then reports errno.ErrProviderAbsent.
func New(provider WalletProvider, rpc RPCClient, opts ...Option) *Controller {
	c := &Controller{
		provider: provider,
		rpc:      rpc,
		log:      logger.Log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Initialize adopts a wallet that is already connected, e.g. unlocked on
// startup. A provider that is not connected leaves the session untouched.
func (c *Controller) Initialize(ctx context.Context) error {
	if c.provider == nil {
		c.log.Warn("wallet provider not found")
		c.setNotice(CategoryProviderAbsent, errno.ErrProviderAbsent, errno.ErrProviderAbsent.Message)
		return errno.ErrProviderAbsent
	}
	if !c.provider.IsConnected() {
		return nil
	}
	return c.attach(ctx)
}

// Connect asks the provider to connect and then populates owner and balance
// the same way Initialize does.
func (c *Controller) Connect(ctx context.Context) error {
	if c.provider == nil {
		c.log.Warn("connect requested without a wallet provider")
		c.setNotice(CategoryProviderAbsent, errno.ErrProviderAbsent, errno.ErrProviderAbsent.Message)
		c.metrics.ObserveConnect(errno.ErrProviderAbsent)
		return errno.ErrProviderAbsent
	}

	err := c.provider.Connect(ctx)
	c.metrics.ObserveConnect(err)
	if err != nil {
		c.log.Error("failed to connect wallet", zap.Error(err))
		c.setNotice(CategoryConnectFailed, errno.ErrConnectFailed, errno.ErrConnectFailed.Message+": "+err.Error())
		return fmt.Errorf("%w: %w", errno.ErrConnectFailed, err)
	}
	return c.attach(ctx)
}

func (c *Controller) attach(ctx context.Context) error {
	owner := c.provider.PublicKey()

	c.mu.Lock()
	if c.session.Owner == nil || !c.session.Owner.Equals(owner) {
		c.session.Balance = nil
	}
	c.session.Connected = true
	c.session.Owner = &owner
	if c.notice != nil && (c.notice.Category == CategoryProviderAbsent || c.notice.Category == CategoryConnectFailed) {
		c.notice = nil
	}
	c.mu.Unlock()

	c.log.Info("wallet connected", zap.String("owner", owner.String()))
	return c.RefreshBalance(ctx)
}

// RefreshBalance queries the connected account's balance.
func (c *Controller) RefreshBalance(ctx context.Context) error {
	c.mu.Lock()
	if !c.session.Connected || c.session.Owner == nil {
		c.mu.Unlock()
		return errno.ErrNotReady
	}
	owner := *c.session.Owner
	c.mu.Unlock()

	lamports, err := c.rpc.GetBalance(ctx, owner)
	c.metrics.ObserveBalance(err)
	if err != nil {
		c.log.Error("failed to fetch balance", zap.String("owner", owner.String()), zap.Error(err))
		c.setNotice(CategoryBalanceFailed, errno.ErrBalanceFetch, errno.ErrBalanceFetch.Message+": "+err.Error())
		return fmt.Errorf("%w: %w", errno.ErrBalanceFetch, err)
	}

	balance := units.ToDisplay(lamports)
	c.mu.Lock()
	// the account may have changed while the query was in flight
	if c.session.Owner != nil && c.session.Owner.Equals(owner) {
		c.session.Balance = &balance
	}
	if c.notice != nil && c.notice.Category == CategoryBalanceFailed {
		c.notice = nil
	}
	c.mu.Unlock()
	return nil
}

// SetRecipient stores the recipient address, trimmed.
func (c *Controller) SetRecipient(addr string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Recipient = strings.TrimSpace(addr)
}

func (c *Controller) SetAmount(amount decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Amount = amount
}

// SetAmountText parses a user-typed amount from its leading number, so
// "1.5 SOL" stores 1.5. Input without a leading number becomes zero, which
// the send guard rejects.
func (c *Controller) SetAmountText(text string) {
	amount, err := units.ParseLeading(text)
	if err != nil {
		amount = decimal.Zero
	}
	c.SetAmount(amount)
}

// SendTransfer moves the drafted amount from the connected account to the
// drafted recipient. It does nothing and returns errno.ErrNotReady unless the
// session is connected, a recipient is set and the amount is at least one
// lamport. A send already in flight yields errno.ErrBusy.
func (c *Controller) SendTransfer(ctx context.Context) error {
	c.mu.Lock()
	if c.pending {
		c.mu.Unlock()
		return errno.ErrBusy
	}
	return c.sendLocked(ctx)
}

// Submit replaces the draft with draft and sends it. Storing the draft and
// claiming the in-flight slot happen under one lock, so concurrent callers
// each send their own recipient and amount or get errno.ErrBusy. The draft
// is left untouched when a send is already in flight.
func (c *Controller) Submit(ctx context.Context, draft TransferDraft) error {
	c.mu.Lock()
	if c.pending {
		c.mu.Unlock()
		return errno.ErrBusy
	}
	draft.Recipient = strings.TrimSpace(draft.Recipient)
	c.draft = draft
	return c.sendLocked(ctx)
}

// sendLocked is entered with c.mu held and releases it.
func (c *Controller) sendLocked(ctx context.Context) error {
	if !c.session.Connected || c.session.Owner == nil || c.draft.Recipient == "" || !c.draft.Amount.IsPositive() {
		c.mu.Unlock()
		return errno.ErrNotReady
	}
	lamports, err := units.ToBase(c.draft.Amount)
	if err == nil && lamports == 0 {
		c.mu.Unlock()
		return errno.ErrNotReady
	}
	if err != nil {
		terr := &TransferError{Step: StepAmount, Err: err}
		c.failTransferLocked(terr)
		c.mu.Unlock()
		c.log.Error("transfer rejected", zap.Error(terr))
		c.metrics.ObserveTransfer(0, 0, terr)
		return terr
	}
	owner := *c.session.Owner
	recipient := c.draft.Recipient
	c.pending = true
	c.mu.Unlock()

	start := time.Now()
	sig, err := c.transfer(ctx, owner, recipient, lamports)
	c.metrics.ObserveTransfer(lamports, time.Since(start).Seconds(), err)

	c.mu.Lock()
	c.pending = false
	if err != nil {
		c.failTransferLocked(err)
		c.mu.Unlock()
		c.log.Error("error sending transaction",
			zap.String("owner", owner.String()),
			zap.String("recipient", recipient),
			zap.Uint64("lamports", lamports),
			zap.Error(err))
		return err
	}
	c.result.Status = fmt.Sprintf(StatusSentFormat, sig.String())
	c.draft = TransferDraft{}
	if c.notice != nil && c.notice.Category == CategoryTransferFailed {
		c.notice = nil
	}
	c.mu.Unlock()

	c.log.Info("transaction confirmed",
		zap.String("signature", sig.String()),
		zap.String("recipient", recipient),
		zap.Uint64("lamports", lamports))

	// The transfer already succeeded; a failed refresh only sets a notice.
	_ = c.RefreshBalance(ctx)
	return nil
}

// transfer runs the handshake: blockhash, build, sign, submit and confirm.
func (c *Controller) transfer(ctx context.Context, owner solana.PublicKey, recipientAddr string, lamports uint64) (solana.Signature, error) {
	recipient, err := solana.PublicKeyFromBase58(recipientAddr)
	if err != nil {
		return solana.Signature{}, &TransferError{Step: StepRecipient, Err: err}
	}

	blockhash, err := c.rpc.LatestBlockhash(ctx)
	if err != nil {
		return solana.Signature{}, &TransferError{Step: StepBlockhash, Err: err}
	}

	tx, err := BuildTransfer(owner, recipient, lamports, blockhash)
	if err != nil {
		return solana.Signature{}, &TransferError{Step: StepBuild, Err: err}
	}

	signed, err := c.provider.SignTransaction(ctx, tx)
	if err != nil {
		return solana.Signature{}, &TransferError{Step: StepSign, Err: err}
	}
	if signed == nil {
		return solana.Signature{}, &TransferError{Step: StepSign, Err: errors.New("provider returned no transaction")}
	}

	sig, err := c.rpc.SendAndConfirmTransaction(ctx, signed)
	if err != nil {
		return solana.Signature{}, &TransferError{Step: StepSubmit, Err: err}
	}
	return sig, nil
}

func (c *Controller) failTransferLocked(err error) {
	c.result.Status = StatusFailed
	c.notice = &Notice{
		Code:     errno.ErrTransferFailed.Code,
		Category: CategoryTransferFailed,
		Message:  err.Error(),
	}
}

func (c *Controller) setNotice(category string, e errno.Errno, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notice = &Notice{Code: e.Code, Category: category, Message: msg}
}

// View returns a snapshot of the current state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		ProviderAvailable: c.provider != nil,
		Connected:         c.session.Connected,
		Recipient:         c.draft.Recipient,
		Amount:            c.draft.Amount.String(),
		Status:            c.result.Status,
		Pending:           c.pending,
	}
	if c.session.Owner != nil {
		v.Owner = c.session.Owner.String()
	}
	if c.session.Balance != nil {
		v.Balance = c.session.Balance.String()
	}
	if c.notice != nil {
		n := *c.notice
		v.Notice = &n
	}
	return v
}

// Session returns a copy of the connection state.
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.session
	if s.Owner != nil {
		owner := *s.Owner
		s.Owner = &owner
	}
	if s.Balance != nil {
		balance := *s.Balance
		s.Balance = &balance
	}
	return s
}

// Draft returns a copy of the transfer draft.
func (c *Controller) Draft() TransferDraft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// BuildTransfer returns an unsigned transaction with a single system
// transfer of lamports from -> to, paid by from.
func BuildTransfer(from, to solana.PublicKey, lamports uint64, blockhash solana.Hash) (*solana.Transaction, error) {
	return solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(lamports, from, to).Build(),
		},
		blockhash,
		solana.TransactionPayer(from),
	)
}
