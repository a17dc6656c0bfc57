package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account is a registered participant identity. Roles (buyer, merchant,
// arbitrator, owner) are not stored here: buyer and merchant are positional
// per entity, arbitrator and owner come from the protocol settings.
type Account struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never expose
	DisplayName  string    `json:"display_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Balance is a per-account, per-currency holding in smallest units. The
// platform custody account's balances hold funds locked in active escrows.
type Balance struct {
	AccountID uuid.UUID `json:"account_id"`
	Currency  string    `json:"currency"`
	Available int64     `json:"available"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LedgerEntryKind tags the purpose of a single transfer leg.
type LedgerEntryKind string

const (
	EntryKindDeposit      LedgerEntryKind = "DEPOSIT"
	EntryKindLinkPayment  LedgerEntryKind = "LINK_PAYMENT"
	EntryKindEscrowFund   LedgerEntryKind = "ESCROW_FUND"
	EntryKindRelease      LedgerEntryKind = "RELEASE"
	EntryKindRefund       LedgerEntryKind = "REFUND"
	EntryKindFee          LedgerEntryKind = "FEE"
	EntryKindDisputeSplit LedgerEntryKind = "DISPUTE_SPLIT"
)

// LedgerEntry is the immutable audit record of one transfer leg. All legs of
// a logical operation share the same pgx transaction, so either every entry
// of a split exists or none does.
type LedgerEntry struct {
	ID          uuid.UUID       `json:"id"`
	EntityRef   *EntityID       `json:"entity_ref,omitempty"` // Escrow/link the leg belongs to
	FromAccount uuid.UUID       `json:"from_account"`
	ToAccount   uuid.UUID       `json:"to_account"`
	Currency    string          `json:"currency"`
	Amount      int64           `json:"amount"`
	Kind        LedgerEntryKind `json:"kind"`
	CreatedAt   time.Time       `json:"created_at"`
}
