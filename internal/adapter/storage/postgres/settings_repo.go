package postgres

import (
	"context"
	"errors"
	"fmt"

	"paylock-gateway/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// SettingsRepo implements ports.SettingsRepository. The table holds exactly
// one row, keyed by a constant id.
type SettingsRepo struct {
	pool Pool
}

// NewSettingsRepo creates a new SettingsRepo.
func NewSettingsRepo(pool Pool) *SettingsRepo {
	return &SettingsRepo{pool: pool}
}

// Get fetches the protocol settings row.
func (r *SettingsRepo) Get(ctx context.Context) (*domain.Settings, error) {
	query := `SELECT owner_id, arbitrator_id, fee_collector_id, fee_rate_bps, default_escrow_days, updated_at
		FROM protocol_settings WHERE id = 1`

	s := &domain.Settings{}
	err := r.pool.QueryRow(ctx, query).Scan(
		&s.OwnerID, &s.ArbitratorID, &s.FeeCollectorID,
		&s.FeeRateBps, &s.DefaultEscrowDays, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("protocol settings not initialized")
		}
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return s, nil
}

// Update writes the protocol settings row.
func (r *SettingsRepo) Update(ctx context.Context, s *domain.Settings) error {
	query := `UPDATE protocol_settings
		SET owner_id = $1, arbitrator_id = $2, fee_collector_id = $3,
		    fee_rate_bps = $4, default_escrow_days = $5, updated_at = $6
		WHERE id = 1`

	tag, err := r.pool.Exec(ctx, query,
		s.OwnerID, s.ArbitratorID, s.FeeCollectorID,
		s.FeeRateBps, s.DefaultEscrowDays, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("protocol settings not initialized")
	}
	return nil
}

// Ensure inserts the defaults if no settings row exists yet. Startup calls
// this once; an existing row wins over the configured defaults.
func (r *SettingsRepo) Ensure(ctx context.Context, defaults *domain.Settings) error {
	query := `INSERT INTO protocol_settings
		(id, owner_id, arbitrator_id, fee_collector_id, fee_rate_bps, default_escrow_days, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, NOW())
		ON CONFLICT (id) DO NOTHING`

	_, err := r.pool.Exec(ctx, query,
		defaults.OwnerID, defaults.ArbitratorID, defaults.FeeCollectorID,
		defaults.FeeRateBps, defaults.DefaultEscrowDays,
	)
	if err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}
	return nil
}
