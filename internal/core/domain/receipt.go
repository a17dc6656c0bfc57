package domain

import (
	"time"

	"github.com/google/uuid"
)

// Receipt is an append-only proof-of-settlement token. Receipts carry no
// financial effect; they reference the settled entity by id, never by handle.
type Receipt struct {
	ID          EntityID  `json:"id"`
	EntityRef   EntityID  `json:"entity_ref"` // Escrow or payment link id
	RequesterID uuid.UUID `json:"requester_id"`
	IssuedAt    time.Time `json:"issued_at"`
}
