package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rishi7822/Finalproject/internal/handler/request"
	"github.com/rishi7822/Finalproject/internal/handler/response"
	"github.com/rishi7822/Finalproject/internal/session"
	"github.com/rishi7822/Finalproject/pkg/errno"
	"github.com/rishi7822/Finalproject/pkg/logger"
	"github.com/rishi7822/Finalproject/pkg/units"
	"github.com/rishi7822/Finalproject/pkg/validator"
)

// SessionService is the part of session.Controller the handlers drive.
type SessionService interface {
	View() session.View
	Connect(ctx context.Context) error
	RefreshBalance(ctx context.Context) error
	Submit(ctx context.Context, draft session.TransferDraft) error
}

type SessionHandler struct {
	svc SessionService
	log *zap.Logger
}

func NewSessionHandler(svc SessionService) *SessionHandler {
	return &SessionHandler{svc: svc, log: logger.Log}
}

// GetSession godoc
// @Summary Current session
// @Tags Session
// @Produce json
// @Success 200 {object} response.Response{data=session.View}
// @Router /api/v1/session [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	response.Success(c, h.svc.View())
}

// Connect godoc
// @Summary Connect the wallet
// @Description Unlocks the wallet and loads owner and balance.
// @Tags Session
// @Produce json
// @Success 200 {object} response.Response{data=session.View}
// @Router /api/v1/session/connect [post]
func (h *SessionHandler) Connect(c *gin.Context) {
	if err := h.svc.Connect(c.Request.Context()); err != nil && !errors.Is(err, errno.ErrBalanceFetch) {
		response.ErrorWithData(c, err, h.svc.View())
		return
	}
	// a failed balance lookup leaves the wallet connected; the notice says why
	response.Success(c, h.svc.View())
}

// RefreshBalance godoc
// @Summary Re-query the balance
// @Tags Session
// @Produce json
// @Success 200 {object} response.Response{data=session.View}
// @Router /api/v1/session/balance/refresh [post]
func (h *SessionHandler) RefreshBalance(c *gin.Context) {
	if err := h.svc.RefreshBalance(c.Request.Context()); err != nil {
		response.ErrorWithData(c, err, h.svc.View())
		return
	}
	response.Success(c, h.svc.View())
}

// Transfer godoc
// @Summary Send SOL
// @Description Transfers amount SOL from the connected account to recipient and waits for confirmation.
// @Tags Transfer
// @Accept json
// @Produce json
// @Param request body request.TransferRequest true "transfer"
// @Success 200 {object} response.Response{data=session.View}
// @Router /api/v1/transfer [post]
func (h *SessionHandler) Transfer(c *gin.Context) {
	var req request.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errno.ErrBind.WithMessage(validator.GetErrorMsg(err)))
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		response.Error(c, errno.ErrBind.WithMessage("amount must be a number greater than 0"))
		return
	}

	draft := session.TransferDraft{Recipient: req.Recipient, Amount: amount}
	if err := h.svc.Submit(c.Request.Context(), draft); err != nil {
		response.ErrorWithData(c, err, h.svc.View())
		return
	}
	response.Success(c, h.svc.View())
}

// Page renders the wallet page.
func (h *SessionHandler) Page(c *gin.Context) {
	c.HTML(http.StatusOK, PageTemplate, h.svc.View())
}

// ConnectForm handles the page's Connect button.
func (h *SessionHandler) ConnectForm(c *gin.Context) {
	// the outcome is shown through the view's notice
	_ = h.svc.Connect(c.Request.Context())
	c.Redirect(http.StatusSeeOther, "/")
}

// TransferForm handles the page's Send button.
func (h *SessionHandler) TransferForm(c *gin.Context) {
	var form request.TransferForm
	if err := c.ShouldBind(&form); err != nil {
		h.log.Warn("bad transfer form", zap.Error(err))
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	// text with no leading number stays zero and fails the send guard
	amount, _ := units.ParseLeading(form.Amount)
	draft := session.TransferDraft{Recipient: form.Recipient, Amount: amount}
	if err := h.svc.Submit(c.Request.Context(), draft); err != nil && !errors.Is(err, errno.ErrTransferFailed) {
		h.log.Debug("transfer not sent", zap.Error(err))
	}
	c.Redirect(http.StatusSeeOther, "/")
}
