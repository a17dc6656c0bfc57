package postgres

import (
	"context"
	"fmt"

	"paylock-gateway/internal/core/domain"
	"paylock-gateway/pkg/apperror"
)

// ReceiptRepo implements ports.ReceiptRepository, append-only.
type ReceiptRepo struct {
	pool Pool
}

// NewReceiptRepo creates a new ReceiptRepo.
func NewReceiptRepo(pool Pool) *ReceiptRepo {
	return &ReceiptRepo{pool: pool}
}

// Create inserts a receipt. An id collision maps to ErrDuplicateID.
func (r *ReceiptRepo) Create(ctx context.Context, receipt *domain.Receipt) error {
	query := `INSERT INTO receipts (id, entity_ref, requester_id, issued_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.pool.Exec(ctx, query,
		receipt.ID.String(), receipt.EntityRef.String(),
		receipt.RequesterID, receipt.IssuedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.ErrDuplicateID()
		}
		return fmt.Errorf("insert receipt: %w", err)
	}
	return nil
}

// Exists reports whether a receipt with the given id was ever issued.
func (r *ReceiptRepo) Exists(ctx context.Context, id domain.EntityID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM receipts WHERE id = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, id.String()).Scan(&exists); err != nil {
		return false, fmt.Errorf("check receipt: %w", err)
	}
	return exists, nil
}

// ListByEntity returns all receipts minted against an entity, oldest first.
func (r *ReceiptRepo) ListByEntity(ctx context.Context, ref domain.EntityID) ([]domain.Receipt, error) {
	query := `SELECT id, entity_ref, requester_id, issued_at
		FROM receipts WHERE entity_ref = $1 ORDER BY issued_at ASC`

	rows, err := r.pool.Query(ctx, query, ref.String())
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	defer rows.Close()

	var receipts []domain.Receipt
	for rows.Next() {
		var receipt domain.Receipt
		var id, entityRef string
		if err := rows.Scan(&id, &entityRef, &receipt.RequesterID, &receipt.IssuedAt); err != nil {
			return nil, fmt.Errorf("scan receipt: %w", err)
		}
		if receipt.ID, err = domain.ParseEntityID(id); err != nil {
			return nil, fmt.Errorf("parse receipt id: %w", err)
		}
		if receipt.EntityRef, err = domain.ParseEntityID(entityRef); err != nil {
			return nil, fmt.Errorf("parse receipt entity ref: %w", err)
		}
		receipts = append(receipts, receipt)
	}
	return receipts, rows.Err()
}
