package postgres

import (
	"context"
	"errors"
	"fmt"

	"paylock-gateway/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// CurrencyRepo implements ports.CurrencyRepository.
type CurrencyRepo struct {
	pool Pool
}

// NewCurrencyRepo creates a new CurrencyRepo.
func NewCurrencyRepo(pool Pool) *CurrencyRepo {
	return &CurrencyRepo{pool: pool}
}

// Upsert inserts or updates an allow-list entry.
func (r *CurrencyRepo) Upsert(ctx context.Context, code string, enabled bool) error {
	query := `INSERT INTO currencies (code, enabled, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (code) DO UPDATE SET enabled = $2, updated_at = NOW()`

	if _, err := r.pool.Exec(ctx, query, code, enabled); err != nil {
		return fmt.Errorf("upsert currency: %w", err)
	}
	return nil
}

// IsSupported reports whether the currency is currently enabled.
func (r *CurrencyRepo) IsSupported(ctx context.Context, code string) (bool, error) {
	query := `SELECT enabled FROM currencies WHERE code = $1`

	var enabled bool
	err := r.pool.QueryRow(ctx, query, code).Scan(&enabled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check currency: %w", err)
	}
	return enabled, nil
}

// List returns the full allow-list, enabled and disabled entries alike.
func (r *CurrencyRepo) List(ctx context.Context) ([]domain.Currency, error) {
	query := `SELECT code, enabled, updated_at FROM currencies ORDER BY code ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list currencies: %w", err)
	}
	defer rows.Close()

	var currencies []domain.Currency
	for rows.Next() {
		var c domain.Currency
		if err := rows.Scan(&c.Code, &c.Enabled, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan currency: %w", err)
		}
		currencies = append(currencies, c)
	}
	return currencies, rows.Err()
}
