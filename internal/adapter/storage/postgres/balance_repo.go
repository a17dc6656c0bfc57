package postgres

import (
	"context"
	"errors"
	"fmt"

	"paylock-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// BalanceRepo implements ports.BalanceRepository. One row per account and
// currency; rows are created on first credit.
type BalanceRepo struct {
	pool Pool
}

// NewBalanceRepo creates a new BalanceRepo.
func NewBalanceRepo(pool Pool) *BalanceRepo {
	return &BalanceRepo{pool: pool}
}

// Get fetches a balance without locking. A missing row returns nil, nil.
func (r *BalanceRepo) Get(ctx context.Context, accountID uuid.UUID, currency string) (*domain.Balance, error) {
	query := `SELECT account_id, currency, available, updated_at
		FROM balances WHERE account_id = $1 AND currency = $2`

	b := &domain.Balance{}
	err := r.pool.QueryRow(ctx, query, accountID, currency).Scan(
		&b.AccountID, &b.Currency, &b.Available, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return b, nil
}

// GetForUpdate fetches a balance with a row lock. MUST be called within a
// transaction. A missing row returns nil, nil.
func (r *BalanceRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, currency string) (*domain.Balance, error) {
	query := `SELECT account_id, currency, available, updated_at
		FROM balances WHERE account_id = $1 AND currency = $2 FOR UPDATE`

	b := &domain.Balance{}
	err := tx.QueryRow(ctx, query, accountID, currency).Scan(
		&b.AccountID, &b.Currency, &b.Available, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get balance for update: %w", err)
	}
	return b, nil
}

// Add applies a signed delta within a transaction, creating the row at zero
// if absent.
func (r *BalanceRepo) Add(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, currency string, delta int64) error {
	query := `INSERT INTO balances (account_id, currency, available, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (account_id, currency)
		DO UPDATE SET available = balances.available + $3, updated_at = NOW()`

	_, err := tx.Exec(ctx, query, accountID, currency, delta)
	if err != nil {
		return fmt.Errorf("adjust balance: %w", err)
	}
	return nil
}
