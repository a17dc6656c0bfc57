package handler

import (
	"paylock-gateway/internal/adapter/http/dto"
	"paylock-gateway/internal/core/domain"
	"paylock-gateway/internal/core/ports"
	"paylock-gateway/pkg/apperror"
	"paylock-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// ReceiptHandler handles receipt issuance and verification.
type ReceiptHandler struct {
	receiptSvc ports.ReceiptService
}

// NewReceiptHandler creates a new ReceiptHandler.
func NewReceiptHandler(receiptSvc ports.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{receiptSvc: receiptSvc}
}

// Issue handles POST /api/v1/receipts.
func (h *ReceiptHandler) Issue(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.IssueReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	entityRef, err := domain.ParseEntityID(req.EntityRef)
	if err != nil {
		response.Error(c, apperror.Validation("invalid entity ref"))
		return
	}

	receipt, err := h.receiptSvc.Issue(c.Request.Context(), caller, entityRef)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toReceiptResponse(receipt))
}

// Verify handles GET /api/v1/receipts/:id/verify. Verification is public:
// anyone holding a receipt id may check it.
func (h *ReceiptHandler) Verify(c *gin.Context) {
	id, ok := parseEntityID(c)
	if !ok {
		return
	}

	valid, err := h.receiptSvc.Verify(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.VerifyReceiptResponse{
		ID:    id.String(),
		Valid: valid,
	})
}
