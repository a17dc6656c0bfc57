package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentLink is a one-shot payment request issued by a merchant. A link
// settles at most once, enforced by the active flag rather than deletion, so
// settled links remain queryable for audit and receipt lookups.
type PaymentLink struct {
	ID         EntityID  `json:"id"`
	MerchantID uuid.UUID `json:"merchant_id"`
	Amount     int64     `json:"amount"` // Smallest currency unit
	Currency   string    `json:"currency"`
	Active     bool      `json:"active"`
	Metadata   string    `json:"metadata,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
