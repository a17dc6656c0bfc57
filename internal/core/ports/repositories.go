package ports

import (
	"context"

	"paylock-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AccountRepository defines persistence operations for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
}

// BalanceRepository defines persistence for per-account currency balances.
// Methods accepting pgx.Tx are used inside transaction blocks for pessimistic
// locking; a transfer locks both balance rows before any write.
type BalanceRepository interface {
	Get(ctx context.Context, accountID uuid.UUID, currency string) (*domain.Balance, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, currency string) (*domain.Balance, error)
	// Add applies a signed delta, creating the row at zero if absent.
	Add(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, currency string, delta int64) error
}

// LedgerEntryRepository persists the immutable audit record of transfer legs.
type LedgerEntryRepository interface {
	Create(ctx context.Context, tx pgx.Tx, entry *domain.LedgerEntry) error
	ListByEntity(ctx context.Context, ref domain.EntityID) ([]domain.LedgerEntry, error)
}

// EscrowRepository defines persistence operations for escrows. Rows are
// append-only: escrows are never deleted, only their state machine fields
// change via Update inside a locked transaction.
type EscrowRepository interface {
	// Create inserts a new escrow. An id collision returns ErrDuplicateID.
	Create(ctx context.Context, escrow *domain.Escrow) error
	GetByID(ctx context.Context, id domain.EntityID) (*domain.Escrow, error)
	// GetByIDForUpdate locks the escrow row. MUST be called within a transaction.
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id domain.EntityID) (*domain.Escrow, error)
	Update(ctx context.Context, tx pgx.Tx, escrow *domain.Escrow) error
	ListByParticipant(ctx context.Context, accountID uuid.UUID) ([]domain.Escrow, error)
}

// PaymentLinkRepository defines persistence operations for payment links.
type PaymentLinkRepository interface {
	Create(ctx context.Context, link *domain.PaymentLink) error
	GetByID(ctx context.Context, id domain.EntityID) (*domain.PaymentLink, error)
	// GetByIDForUpdate locks the link row. MUST be called within a transaction.
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id domain.EntityID) (*domain.PaymentLink, error)
	SetActive(ctx context.Context, tx pgx.Tx, id domain.EntityID, active bool) error
	ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]domain.PaymentLink, error)
}

// ReceiptRepository persists settlement receipts, append-only.
type ReceiptRepository interface {
	Create(ctx context.Context, receipt *domain.Receipt) error
	Exists(ctx context.Context, id domain.EntityID) (bool, error)
	ListByEntity(ctx context.Context, ref domain.EntityID) ([]domain.Receipt, error)
}

// CurrencyRepository manages the owner-mutable currency allow-list.
type CurrencyRepository interface {
	Upsert(ctx context.Context, code string, enabled bool) error
	IsSupported(ctx context.Context, code string) (bool, error)
	List(ctx context.Context) ([]domain.Currency, error)
}

// SettingsRepository manages the single protocol settings row.
type SettingsRepository interface {
	Get(ctx context.Context) (*domain.Settings, error)
	Update(ctx context.Context, settings *domain.Settings) error
	// Ensure inserts the defaults if no settings row exists yet.
	Ensure(ctx context.Context, defaults *domain.Settings) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
