package handler

import (
	"paylock-gateway/internal/adapter/http/dto"
	"paylock-gateway/internal/core/ports"
	"paylock-gateway/pkg/apperror"
	"paylock-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// LinkHandler handles payment link endpoints.
type LinkHandler struct {
	linkSvc ports.PaymentLinkService
}

// NewLinkHandler creates a new LinkHandler.
func NewLinkHandler(linkSvc ports.PaymentLinkService) *LinkHandler {
	return &LinkHandler{linkSvc: linkSvc}
}

// Create handles POST /api/v1/links. The authenticated caller becomes the
// merchant.
func (h *LinkHandler) Create(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.CreatePaymentLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	link, err := h.linkSvc.Create(c.Request.Context(), ports.CreatePaymentLinkRequest{
		MerchantID: caller,
		Amount:     req.Amount,
		Currency:   req.Currency,
		Metadata:   req.Metadata,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toLinkResponse(link))
}

// Pay handles POST /api/v1/links/:id/pay.
func (h *LinkHandler) Pay(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	id, ok := parseEntityID(c)
	if !ok {
		return
	}

	link, err := h.linkSvc.Pay(c.Request.Context(), caller, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toLinkResponse(link))
}

// Deactivate handles POST /api/v1/links/:id/deactivate.
func (h *LinkHandler) Deactivate(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	id, ok := parseEntityID(c)
	if !ok {
		return
	}

	link, err := h.linkSvc.Deactivate(c.Request.Context(), caller, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toLinkResponse(link))
}

// Get handles GET /api/v1/links/:id.
func (h *LinkHandler) Get(c *gin.Context) {
	id, ok := parseEntityID(c)
	if !ok {
		return
	}

	link, err := h.linkSvc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toLinkResponse(link))
}

// List handles GET /api/v1/links.
func (h *LinkHandler) List(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	links, err := h.linkSvc.ListByMerchant(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toLinkResponses(links))
}
