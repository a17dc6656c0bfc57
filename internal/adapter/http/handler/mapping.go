package handler

import (
	"time"

	"paylock-gateway/internal/adapter/http/dto"
	"paylock-gateway/internal/adapter/http/middleware"
	"paylock-gateway/internal/core/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// callerID extracts the authenticated account id set by the JWT middleware.
func callerID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(middleware.CtxAccountID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func toEscrowResponse(e *domain.Escrow) dto.EscrowResponse {
	return dto.EscrowResponse{
		ID:            e.ID.String(),
		MerchantID:    e.MerchantID.String(),
		BuyerID:       e.BuyerID.String(),
		Amount:        e.Amount,
		Currency:      e.Currency,
		State:         string(e.State),
		Deadline:      e.Deadline.UTC().Format(time.RFC3339),
		Description:   e.Description,
		DisputeReason: e.DisputeReason,
		Winner:        string(e.Winner),
		CreatedAt:     e.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     e.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toEscrowResponses(escrows []domain.Escrow) []dto.EscrowResponse {
	out := make([]dto.EscrowResponse, 0, len(escrows))
	for i := range escrows {
		out = append(out, toEscrowResponse(&escrows[i]))
	}
	return out
}

func toLinkResponse(l *domain.PaymentLink) dto.PaymentLinkResponse {
	return dto.PaymentLinkResponse{
		ID:         l.ID.String(),
		MerchantID: l.MerchantID.String(),
		Amount:     l.Amount,
		Currency:   l.Currency,
		Active:     l.Active,
		Metadata:   l.Metadata,
		CreatedAt:  l.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  l.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toLinkResponses(links []domain.PaymentLink) []dto.PaymentLinkResponse {
	out := make([]dto.PaymentLinkResponse, 0, len(links))
	for i := range links {
		out = append(out, toLinkResponse(&links[i]))
	}
	return out
}

func toReceiptResponse(r *domain.Receipt) dto.ReceiptResponse {
	return dto.ReceiptResponse{
		ID:          r.ID.String(),
		EntityRef:   r.EntityRef.String(),
		RequesterID: r.RequesterID.String(),
		IssuedAt:    r.IssuedAt.UTC().Format(time.RFC3339),
	}
}
