package handler

import (
	"context"

	"paylock-gateway/internal/adapter/http/dto"
	"paylock-gateway/internal/core/domain"
	"paylock-gateway/internal/core/ports"
	"paylock-gateway/pkg/apperror"
	"paylock-gateway/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminHandler handles the owner-gated protocol mutators. Ownership is
// enforced by the service, not here.
type AdminHandler struct {
	adminSvc ports.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminSvc ports.AdminService) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc}
}

// SetFeeRate handles PUT /api/v1/admin/fee-rate.
func (h *AdminHandler) SetFeeRate(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.SetFeeRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	settings, err := h.adminSvc.SetFeeRate(c.Request.Context(), caller, *req.RateBps)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.FromSettings(settings))
}

// SetFeeCollector handles PUT /api/v1/admin/fee-collector.
func (h *AdminHandler) SetFeeCollector(c *gin.Context) {
	h.setAccount(c, h.adminSvc.SetFeeCollector)
}

// SetArbitrator handles PUT /api/v1/admin/arbitrator.
func (h *AdminHandler) SetArbitrator(c *gin.Context) {
	h.setAccount(c, h.adminSvc.SetArbitrator)
}

// SetEscrowDuration handles PUT /api/v1/admin/escrow-duration.
func (h *AdminHandler) SetEscrowDuration(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.SetEscrowDurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	settings, err := h.adminSvc.SetDefaultEscrowDuration(c.Request.Context(), caller, req.Days)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.FromSettings(settings))
}

// SetCurrency handles PUT /api/v1/admin/currencies.
func (h *AdminHandler) SetCurrency(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.SetCurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	if err := h.adminSvc.SetCurrencySupport(c.Request.Context(), caller, req.Code, *req.Enabled); err != nil {
		response.Error(c, err)
		return
	}

	currencies, err := h.adminSvc.ListCurrencies(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toCurrencyResponses(currencies))
}

// GetSettings handles GET /api/v1/admin/settings.
func (h *AdminHandler) GetSettings(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	settings, err := h.adminSvc.GetSettings(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.FromSettings(settings))
}

// ListCurrencies handles GET /api/v1/currencies. Public: clients need the
// allow-list before creating anything.
func (h *AdminHandler) ListCurrencies(c *gin.Context) {
	currencies, err := h.adminSvc.ListCurrencies(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toCurrencyResponses(currencies))
}

func (h *AdminHandler) setAccount(
	c *gin.Context,
	op func(ctx context.Context, callerID uuid.UUID, accountID uuid.UUID) (*domain.Settings, error),
) {
	caller, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.SetAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid account id"))
		return
	}

	settings, err := op(c.Request.Context(), caller, accountID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.FromSettings(settings))
}

func toCurrencyResponses(currencies []domain.Currency) []dto.CurrencyResponse {
	out := make([]dto.CurrencyResponse, 0, len(currencies))
	for _, cur := range currencies {
		out = append(out, dto.CurrencyResponse{Code: cur.Code, Enabled: cur.Enabled})
	}
	return out
}
