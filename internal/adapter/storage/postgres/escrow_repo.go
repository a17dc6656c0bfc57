package postgres

import (
	"context"
	"errors"
	"fmt"

	"paylock-gateway/internal/core/domain"
	"paylock-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// EscrowRepo implements ports.EscrowRepository. Escrow ids are stored as the
// hex text form of the 32-byte identifier; the primary key enforces the
// no-collision rule.
type EscrowRepo struct {
	pool Pool
}

// NewEscrowRepo creates a new EscrowRepo.
func NewEscrowRepo(pool Pool) *EscrowRepo {
	return &EscrowRepo{pool: pool}
}

const escrowColumns = `id, merchant_id, buyer_id, amount, currency, state, deadline,
	description, dispute_reason, winner, created_at, updated_at`

// Create inserts a new escrow. An id collision maps to ErrDuplicateID.
func (r *EscrowRepo) Create(ctx context.Context, e *domain.Escrow) error {
	query := `INSERT INTO escrows (` + escrowColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.pool.Exec(ctx, query,
		e.ID.String(), e.MerchantID, e.BuyerID, e.Amount, e.Currency,
		string(e.State), e.Deadline, e.Description, e.DisputeReason,
		string(e.Winner), e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.ErrDuplicateID()
		}
		return fmt.Errorf("insert escrow: %w", err)
	}
	return nil
}

// GetByID fetches an escrow without locking.
func (r *EscrowRepo) GetByID(ctx context.Context, id domain.EntityID) (*domain.Escrow, error) {
	query := `SELECT ` + escrowColumns + ` FROM escrows WHERE id = $1`
	return scanEscrow(r.pool.QueryRow(ctx, query, id.String()))
}

// GetByIDForUpdate fetches an escrow with a row lock. MUST be called within
// a transaction.
func (r *EscrowRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id domain.EntityID) (*domain.Escrow, error) {
	query := `SELECT ` + escrowColumns + ` FROM escrows WHERE id = $1 FOR UPDATE`
	return scanEscrow(tx.QueryRow(ctx, query, id.String()))
}

// Update writes the mutable state machine fields within a transaction.
func (r *EscrowRepo) Update(ctx context.Context, tx pgx.Tx, e *domain.Escrow) error {
	query := `UPDATE escrows SET state = $1, dispute_reason = $2, winner = $3, updated_at = $4
		WHERE id = $5`

	tag, err := tx.Exec(ctx, query,
		string(e.State), e.DisputeReason, string(e.Winner), e.UpdatedAt, e.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("update escrow: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("escrow not found: %s", e.ID)
	}
	return nil
}

// ListByParticipant returns escrows where the account is buyer or merchant,
// newest first.
func (r *EscrowRepo) ListByParticipant(ctx context.Context, accountID uuid.UUID) ([]domain.Escrow, error) {
	query := `SELECT ` + escrowColumns + ` FROM escrows
		WHERE buyer_id = $1 OR merchant_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("list escrows: %w", err)
	}
	defer rows.Close()

	var escrows []domain.Escrow
	for rows.Next() {
		e, err := scanEscrowRow(rows)
		if err != nil {
			return nil, err
		}
		escrows = append(escrows, *e)
	}
	return escrows, rows.Err()
}

func scanEscrow(row pgx.Row) (*domain.Escrow, error) {
	e, err := scanEscrowRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return e, nil
}

func scanEscrowRow(row pgx.Row) (*domain.Escrow, error) {
	e := &domain.Escrow{}
	var id, state, winner string
	err := row.Scan(
		&id, &e.MerchantID, &e.BuyerID, &e.Amount, &e.Currency,
		&state, &e.Deadline, &e.Description, &e.DisputeReason,
		&winner, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.ID, err = domain.ParseEntityID(id)
	if err != nil {
		return nil, fmt.Errorf("parse escrow id: %w", err)
	}
	e.State = domain.EscrowState(state)
	e.Winner = domain.DisputeWinner(winner)
	return e, nil
}
