package domain

import (
	"time"

	"github.com/google/uuid"
)

// EscrowState represents the lifecycle state of an escrow.
type EscrowState string

const (
	EscrowStateCreated   EscrowState = "CREATED"
	EscrowStateFunded    EscrowState = "FUNDED"
	EscrowStateCompleted EscrowState = "COMPLETED"
	EscrowStateRefunded  EscrowState = "REFUNDED"
	EscrowStateDisputed  EscrowState = "DISPUTED"
	EscrowStateResolved  EscrowState = "RESOLVED"
)

// DisputeWinner records which party received the strictly larger share of a
// resolved dispute. An exact 50/50 split records no winner.
type DisputeWinner string

const (
	WinnerNone     DisputeWinner = ""
	WinnerMerchant DisputeWinner = "MERCHANT"
	WinnerBuyer    DisputeWinner = "BUYER"
)

// Escrow is a time-boxed custody agreement between a buyer and a merchant.
// Amount, currency and participants are immutable after creation; only the
// state machine fields change, and never out of a terminal state.
type Escrow struct {
	ID            EntityID      `json:"id"`
	MerchantID    uuid.UUID     `json:"merchant_id"`
	BuyerID       uuid.UUID     `json:"buyer_id"`
	Amount        int64         `json:"amount"` // Smallest currency unit
	Currency      string        `json:"currency"`
	State         EscrowState   `json:"state"`
	Deadline      time.Time     `json:"deadline"`
	Description   string        `json:"description"`
	DisputeReason string        `json:"dispute_reason,omitempty"`
	Winner        DisputeWinner `json:"winner,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// IsTerminal returns true if no fund-moving operation may touch the escrow.
// Receipt issuance is the only act permitted on a terminal escrow.
func (e *Escrow) IsTerminal() bool {
	return e.State == EscrowStateCompleted ||
		e.State == EscrowStateRefunded ||
		e.State == EscrowStateResolved
}

// Expired reports whether the deadline has strictly passed. Funding requires
// now before the deadline; expiry claim requires now after it. At the exact
// deadline instant both operations fail.
func (e *Escrow) Expired(now time.Time) bool {
	return now.After(e.Deadline)
}

// DetermineWinner returns the party that received the strictly larger share.
func DetermineWinner(merchantShare, buyerShare int64) DisputeWinner {
	switch {
	case merchantShare > buyerShare:
		return WinnerMerchant
	case buyerShare > merchantShare:
		return WinnerBuyer
	default:
		return WinnerNone
	}
}

// SplitDispute divides the full escrow amount by the arbitrator's merchant
// percentage. No platform fee applies to disputed settlements; the two
// shares always sum to the exact amount.
func SplitDispute(amount int64, merchantPercent int) (merchantShare, buyerShare int64) {
	merchantShare = amount * int64(merchantPercent) / 100
	buyerShare = amount - merchantShare
	return merchantShare, buyerShare
}
