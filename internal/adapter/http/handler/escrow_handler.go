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

// EscrowHandler handles escrow endpoints. Every mutating route reads the
// caller from the JWT context; the service layer decides whether that caller
// may perform the operation.
type EscrowHandler struct {
	escrowSvc ports.EscrowService
}

// NewEscrowHandler creates a new EscrowHandler.
func NewEscrowHandler(escrowSvc ports.EscrowService) *EscrowHandler {
	return &EscrowHandler{escrowSvc: escrowSvc}
}

func parseEntityID(c *gin.Context) (domain.EntityID, bool) {
	id, err := domain.ParseEntityID(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid entity id"))
		return domain.EntityID{}, false
	}
	return id, true
}

// Create handles POST /api/v1/escrows.
func (h *EscrowHandler) Create(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.CreateEscrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	merchantID, err := uuid.Parse(req.MerchantID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid merchant id"))
		return
	}

	escrow, err := h.escrowSvc.Create(c.Request.Context(), ports.CreateEscrowRequest{
		BuyerID:      caller,
		MerchantID:   merchantID,
		Amount:       req.Amount,
		Currency:     req.Currency,
		Description:  req.Description,
		DeadlineDays: req.DeadlineDays,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toEscrowResponse(escrow))
}

// Fund handles POST /api/v1/escrows/:id/fund.
func (h *EscrowHandler) Fund(c *gin.Context) {
	h.transition(c, h.escrowSvc.Fund)
}

// Complete handles POST /api/v1/escrows/:id/complete.
func (h *EscrowHandler) Complete(c *gin.Context) {
	h.transition(c, h.escrowSvc.Complete)
}

// Refund handles POST /api/v1/escrows/:id/refund.
func (h *EscrowHandler) Refund(c *gin.Context) {
	h.transition(c, h.escrowSvc.Refund)
}

// ClaimExpired handles POST /api/v1/escrows/:id/claim.
func (h *EscrowHandler) ClaimExpired(c *gin.Context) {
	h.transition(c, h.escrowSvc.ClaimExpired)
}

// Dispute handles POST /api/v1/escrows/:id/dispute.
func (h *EscrowHandler) Dispute(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	id, ok := parseEntityID(c)
	if !ok {
		return
	}

	var req dto.DisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	escrow, err := h.escrowSvc.Dispute(c.Request.Context(), caller, id, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toEscrowResponse(escrow))
}

// Resolve handles POST /api/v1/escrows/:id/resolve.
func (h *EscrowHandler) Resolve(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	id, ok := parseEntityID(c)
	if !ok {
		return
	}

	var req dto.ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	escrow, err := h.escrowSvc.Resolve(c.Request.Context(), caller, id, *req.MerchantPercent)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toEscrowResponse(escrow))
}

// Get handles GET /api/v1/escrows/:id.
func (h *EscrowHandler) Get(c *gin.Context) {
	id, ok := parseEntityID(c)
	if !ok {
		return
	}

	escrow, err := h.escrowSvc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toEscrowResponse(escrow))
}

// Status handles GET /api/v1/escrows/:id/status.
func (h *EscrowHandler) Status(c *gin.Context) {
	id, ok := parseEntityID(c)
	if !ok {
		return
	}

	state, err := h.escrowSvc.Status(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.EscrowStatusResponse{
		ID:    id.String(),
		State: string(state),
	})
}

// List handles GET /api/v1/escrows.
func (h *EscrowHandler) List(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	escrows, err := h.escrowSvc.ListByParticipant(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toEscrowResponses(escrows))
}

// transition runs the caller+id state machine operations that share a shape.
func (h *EscrowHandler) transition(
	c *gin.Context,
	op func(ctx context.Context, callerID uuid.UUID, id domain.EntityID) (*domain.Escrow, error),
) {
	caller, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	id, ok := parseEntityID(c)
	if !ok {
		return
	}

	escrow, err := op(c.Request.Context(), caller, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toEscrowResponse(escrow))
}
