package handler

import (
	"strings"

	"paylock-gateway/internal/adapter/http/dto"
	"paylock-gateway/internal/core/ports"
	"paylock-gateway/pkg/apperror"
	"paylock-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// AccountHandler handles balance and funding endpoints.
type AccountHandler struct {
	ledgerSvc ports.LedgerService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(ledgerSvc ports.LedgerService) *AccountHandler {
	return &AccountHandler{ledgerSvc: ledgerSvc}
}

// Topup handles POST /api/v1/accounts/topup.
func (h *AccountHandler) Topup(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.TopupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	currency := strings.ToUpper(req.Currency)
	if err := h.ledgerSvc.Deposit(c.Request.Context(), caller, currency, req.Amount); err != nil {
		response.Error(c, err)
		return
	}

	balance, err := h.ledgerSvc.BalanceOf(c.Request.Context(), caller, currency)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{
		Balance:  balance,
		Currency: currency,
	})
}

// Balance handles GET /api/v1/accounts/balance?currency=NHB.
func (h *AccountHandler) Balance(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	currency := strings.ToUpper(strings.TrimSpace(c.Query("currency")))
	if currency == "" {
		response.Error(c, apperror.Validation("currency query parameter is required"))
		return
	}

	balance, err := h.ledgerSvc.BalanceOf(c.Request.Context(), caller, currency)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{
		Balance:  balance,
		Currency: currency,
	})
}
