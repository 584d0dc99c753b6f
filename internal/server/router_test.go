package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rishi7822/Finalproject/internal/handler/response"
	"github.com/rishi7822/Finalproject/internal/session"
	"github.com/rishi7822/Finalproject/pkg/errno"
	"github.com/rishi7822/Finalproject/pkg/monitor"
	"github.com/rishi7822/Finalproject/pkg/ratelimit"
)

// fakeWallet signs with an in-memory key.
type fakeWallet struct {
	mu        sync.Mutex
	key       solana.PrivateKey
	connected bool
}

func (w *fakeWallet) Connect(context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.connected = true
	return nil
}

func (w *fakeWallet) IsConnected() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.connected
}

func (w *fakeWallet) PublicKey() solana.PublicKey { return w.key.PublicKey() }

func (w *fakeWallet) SignTransaction(_ context.Context, tx *solana.Transaction) (*solana.Transaction, error) {
	_, err := tx.Sign(func(solana.PublicKey) *solana.PrivateKey { return &w.key })
	return tx, err
}

// fakeChain keeps balances in memory and confirms every transaction. When
// release is set, a send reports on submitted and waits for release before
// confirming.
type fakeChain struct {
	mu       sync.Mutex
	balances map[solana.PublicKey]uint64
	sent     []*solana.Transaction

	submitted chan struct{}
	release   chan struct{}
}

func (c *fakeChain) GetBalance(_ context.Context, pk solana.PublicKey) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.balances[pk], nil
}

func (c *fakeChain) LatestBlockhash(context.Context) (solana.Hash, error) {
	return solana.Hash{42}, nil
}

func (c *fakeChain) SendAndConfirmTransaction(_ context.Context, tx *solana.Transaction) (solana.Signature, error) {
	c.mu.Lock()
	c.sent = append(c.sent, tx)
	submitted, release := c.submitted, c.release
	c.mu.Unlock()

	if release != nil {
		submitted <- struct{}{}
		<-release
	}
	return tx.Signatures[0], nil
}

func (c *fakeChain) Sent() []*solana.Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*solana.Transaction(nil), c.sent...)
}

// transferOf decodes the single system transfer in tx.
func transferOf(t *testing.T, tx *solana.Transaction) (solana.PublicKey, uint64) {
	t.Helper()
	require.Len(t, tx.Message.Instructions, 1)
	ix := tx.Message.Instructions[0]
	accounts, err := ix.ResolveInstructionAccounts(&tx.Message)
	require.NoError(t, err)
	decoded, err := system.DecodeInstruction(accounts, ix.Data)
	require.NoError(t, err)
	transfer, ok := decoded.Impl.(*system.Transfer)
	require.True(t, ok)
	return transfer.GetRecipientAccount().PublicKey, *transfer.Lamports
}

type testEnv struct {
	router *gin.Engine
	ctrl   *session.Controller
	wallet *fakeWallet
	chain  *fakeChain
	reg    *prometheus.Registry
}

func newTestEnv(t *testing.T, limiter *ratelimit.MapLimiter) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	wallet := &fakeWallet{key: key}
	chain := &fakeChain{balances: map[solana.PublicKey]uint64{key.PublicKey(): 3_000_000_000}}

	reg := prometheus.NewRegistry()
	ctrl := session.New(wallet, chain, session.WithMetrics(monitor.NewBusinessMetrics(reg)))

	return &testEnv{
		router: NewHTTPRouter(RouterDeps{Session: ctrl, Registry: reg, Limiter: limiter}),
		ctrl:   ctrl,
		wallet: wallet,
		chain:  chain,
		reg:    reg,
	}
}

func (e *testEnv) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp response.Response
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestRouter_ConnectAndTransfer(t *testing.T) {
	env := newTestEnv(t, nil)

	_, resp := env.do(t, http.MethodPost, "/api/v1/session/connect", "")
	require.Equal(t, errno.OK.Code, resp.Code)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, env.wallet.PublicKey().String(), data["owner"])
	assert.Equal(t, "3", data["balance"])

	recipient, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	_, resp = env.do(t, http.MethodPost, "/api/v1/transfer",
		`{"recipient":"`+recipient.PublicKey().String()+`","amount":"1.25"}`)
	require.Equal(t, errno.OK.Code, resp.Code)
	data = resp.Data.(map[string]interface{})
	assert.Contains(t, data["status"], "Transaction sent. Transaction ID: ")
	assert.Equal(t, "", data["recipient"])

	require.Len(t, env.chain.sent, 1)
	assert.NoError(t, env.chain.sent[0].VerifySignatures())
}

func TestRouter_OverlappingTransfersKeepTheirOwnDraft(t *testing.T) {
	env := newTestEnv(t, nil)
	_, resp := env.do(t, http.MethodPost, "/api/v1/session/connect", "")
	require.Equal(t, errno.OK.Code, resp.Code)

	first, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	second, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	env.chain.mu.Lock()
	env.chain.submitted = make(chan struct{}, 1)
	env.chain.release = make(chan struct{})
	env.chain.mu.Unlock()

	firstDone := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/transfer",
			strings.NewReader(`{"recipient":"`+first.PublicKey().String()+`","amount":"1"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)
		firstDone <- w
	}()

	select {
	case <-env.chain.submitted:
	case <-time.After(5 * time.Second):
		t.Fatal("first transfer never reached the chain")
	}

	// the first send is waiting for confirmation
	_, resp = env.do(t, http.MethodPost, "/api/v1/transfer",
		`{"recipient":"`+second.PublicKey().String()+`","amount":"7"}`)
	assert.Equal(t, errno.ErrBusy.Code, resp.Code)
	assert.Equal(t, "1", env.ctrl.Draft().Amount.String())
	assert.Equal(t, first.PublicKey().String(), env.ctrl.Draft().Recipient)

	env.chain.mu.Lock()
	release := env.chain.release
	env.chain.release = nil
	env.chain.mu.Unlock()
	close(release)

	var firstResp response.Response
	w := <-firstDone
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &firstResp))
	assert.Equal(t, errno.OK.Code, firstResp.Code)

	sent := env.chain.Sent()
	require.Len(t, sent, 1)
	to, lamports := transferOf(t, sent[0])
	assert.Equal(t, first.PublicKey(), to)
	assert.Equal(t, uint64(1_000_000_000), lamports)

	// once the first send is done the second goes through with its own draft
	_, resp = env.do(t, http.MethodPost, "/api/v1/transfer",
		`{"recipient":"`+second.PublicKey().String()+`","amount":"7"}`)
	require.Equal(t, errno.OK.Code, resp.Code)

	sent = env.chain.Sent()
	require.Len(t, sent, 2)
	to, lamports = transferOf(t, sent[1])
	assert.Equal(t, second.PublicKey(), to)
	assert.Equal(t, uint64(7_000_000_000), lamports)
}

func TestRouter_TransferBeforeConnect(t *testing.T) {
	env := newTestEnv(t, nil)

	_, resp := env.do(t, http.MethodPost, "/api/v1/transfer",
		`{"recipient":"`+solana.SystemProgramID.String()+`","amount":"1"}`)
	assert.Equal(t, errno.ErrNotReady.Code, resp.Code)
	assert.Empty(t, env.chain.sent)
}

func TestRouter_PageFlow(t *testing.T) {
	env := newTestEnv(t, nil)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/connect", nil))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.True(t, env.ctrl.View().Connected)

	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Wallet Balance: 3 SOL")
}

func TestRouter_Health(t *testing.T) {
	env := newTestEnv(t, nil)

	w, resp := env.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "UP", resp.Data.(map[string]interface{})["status"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_Metrics(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(t, http.MethodPost, "/api/v1/session/connect", "")

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `wallet_connect_total{result="success"} 1`)
	assert.Contains(t, string(body), "http_requests_total")
}

func TestRouter_RateLimit(t *testing.T) {
	env := newTestEnv(t, ratelimit.New(0.001, 1, time.Minute))

	_, resp := env.do(t, http.MethodPost, "/api/v1/session/connect", "")
	assert.Equal(t, errno.OK.Code, resp.Code)

	w, resp := env.do(t, http.MethodPost, "/api/v1/session/connect", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, errno.ErrTooManyRequests.Code, resp.Code)

	// reads are not limited
	_, resp = env.do(t, http.MethodGet, "/api/v1/session", "")
	assert.Equal(t, errno.OK.Code, resp.Code)
}

func TestRouter_NotFound(t *testing.T) {
	env := newTestEnv(t, nil)

	w, resp := env.do(t, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, errno.ErrNotFound.Code, resp.Code)
}
