package ports

import (
	"context"
	"time"

	"paylock-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// LedgerService abstracts movement of value between accounts. Transfer runs
// inside the caller's transaction so that every leg of a logical operation
// commits or rolls back together.
type LedgerService interface {
	// Transfer moves amount between two accounts inside tx, locking both
	// balance rows. Insufficient funds returns ErrTransferFailure and writes
	// nothing.
	Transfer(ctx context.Context, tx pgx.Tx, req TransferRequest) error
	// Deposit credits an account in its own transaction (test funding).
	Deposit(ctx context.Context, accountID uuid.UUID, currency string, amount int64) error
	BalanceOf(ctx context.Context, accountID uuid.UUID, currency string) (int64, error)
}

// TransferRequest describes one transfer leg.
type TransferRequest struct {
	From      uuid.UUID
	To        uuid.UUID
	Currency  string
	Amount    int64
	Kind      domain.LedgerEntryKind
	EntityRef *domain.EntityID
}

// EscrowService drives the escrow state machine. Every mutating operation is
// atomic: validate, move funds and write the new state in one transaction.
type EscrowService interface {
	Create(ctx context.Context, req CreateEscrowRequest) (*domain.Escrow, error)
	Fund(ctx context.Context, callerID uuid.UUID, id domain.EntityID) (*domain.Escrow, error)
	Complete(ctx context.Context, callerID uuid.UUID, id domain.EntityID) (*domain.Escrow, error)
	Refund(ctx context.Context, callerID uuid.UUID, id domain.EntityID) (*domain.Escrow, error)
	Dispute(ctx context.Context, callerID uuid.UUID, id domain.EntityID, reason string) (*domain.Escrow, error)
	Resolve(ctx context.Context, callerID uuid.UUID, id domain.EntityID, merchantPercent int) (*domain.Escrow, error)
	ClaimExpired(ctx context.Context, callerID uuid.UUID, id domain.EntityID) (*domain.Escrow, error)
	Get(ctx context.Context, id domain.EntityID) (*domain.Escrow, error)
	Status(ctx context.Context, id domain.EntityID) (domain.EscrowState, error)
	ListByParticipant(ctx context.Context, accountID uuid.UUID) ([]domain.Escrow, error)
}

// CreateEscrowRequest holds validated input for escrow creation. The caller
// is always the buyer.
type CreateEscrowRequest struct {
	BuyerID      uuid.UUID
	MerchantID   uuid.UUID
	Amount       int64
	Currency     string
	Description  string
	DeadlineDays int32 // 0 = protocol default duration
}

// PaymentLinkService manages one-shot payment requests.
type PaymentLinkService interface {
	Create(ctx context.Context, req CreatePaymentLinkRequest) (*domain.PaymentLink, error)
	// Pay settles an active link: amount minus fee to the merchant, fee to
	// the collector, link marked inactive. Settles at most once.
	Pay(ctx context.Context, payerID uuid.UUID, id domain.EntityID) (*domain.PaymentLink, error)
	// Deactivate is merchant-only and idempotent: deactivating an inactive
	// link is a no-op success.
	Deactivate(ctx context.Context, callerID uuid.UUID, id domain.EntityID) (*domain.PaymentLink, error)
	Get(ctx context.Context, id domain.EntityID) (*domain.PaymentLink, error)
	ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]domain.PaymentLink, error)
}

// CreatePaymentLinkRequest holds validated input for link creation.
type CreatePaymentLinkRequest struct {
	MerchantID uuid.UUID
	Amount     int64
	Currency   string
	Metadata   string
}

// ReceiptService issues and verifies proof-of-settlement tokens.
type ReceiptService interface {
	// Issue mints a fresh receipt for a settled entity. Escrows must be in a
	// terminal state; links may be receipted any time after creation.
	Issue(ctx context.Context, requesterID uuid.UUID, entityRef domain.EntityID) (*domain.Receipt, error)
	Verify(ctx context.Context, id domain.EntityID) (bool, error)
}

// AdminService exposes the owner-gated protocol mutators.
type AdminService interface {
	SetFeeRate(ctx context.Context, callerID uuid.UUID, rateBps int32) (*domain.Settings, error)
	SetFeeCollector(ctx context.Context, callerID uuid.UUID, collectorID uuid.UUID) (*domain.Settings, error)
	SetArbitrator(ctx context.Context, callerID uuid.UUID, arbitratorID uuid.UUID) (*domain.Settings, error)
	SetDefaultEscrowDuration(ctx context.Context, callerID uuid.UUID, days int32) (*domain.Settings, error)
	SetCurrencySupport(ctx context.Context, callerID uuid.UUID, code string, enabled bool) error
	GetSettings(ctx context.Context, callerID uuid.UUID) (*domain.Settings, error)
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)
}

// AuthService defines authentication business logic.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*domain.Account, error)
	Login(ctx context.Context, username, password string) (string, time.Time, error) // token, expiry, error
}

// RegisterRequest holds input for account registration.
type RegisterRequest struct {
	Username    string
	Password    string
	DisplayName string
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(accountID uuid.UUID) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	AccountID uuid.UUID
}

// ReceiptCache is the Redis fast path for receipt verification. Postgres is
// the source of truth; the cache only short-circuits known-good lookups.
type ReceiptCache interface {
	// Seen returns true if the receipt id is known to the cache.
	Seen(ctx context.Context, id string) (bool, error)
	Mark(ctx context.Context, id string, ttl time.Duration) error
}
