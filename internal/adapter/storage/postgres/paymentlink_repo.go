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

// PaymentLinkRepo implements ports.PaymentLinkRepository.
type PaymentLinkRepo struct {
	pool Pool
}

// NewPaymentLinkRepo creates a new PaymentLinkRepo.
func NewPaymentLinkRepo(pool Pool) *PaymentLinkRepo {
	return &PaymentLinkRepo{pool: pool}
}

const linkColumns = `id, merchant_id, amount, currency, active, metadata, created_at, updated_at`

// Create inserts a new payment link. An id collision maps to ErrDuplicateID.
func (r *PaymentLinkRepo) Create(ctx context.Context, link *domain.PaymentLink) error {
	query := `INSERT INTO payment_links (` + linkColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		link.ID.String(), link.MerchantID, link.Amount, link.Currency,
		link.Active, link.Metadata, link.CreatedAt, link.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.ErrDuplicateID()
		}
		return fmt.Errorf("insert payment link: %w", err)
	}
	return nil
}

// GetByID fetches a payment link without locking.
func (r *PaymentLinkRepo) GetByID(ctx context.Context, id domain.EntityID) (*domain.PaymentLink, error) {
	query := `SELECT ` + linkColumns + ` FROM payment_links WHERE id = $1`
	return scanLink(r.pool.QueryRow(ctx, query, id.String()))
}

// GetByIDForUpdate fetches a payment link with a row lock. MUST be called
// within a transaction.
func (r *PaymentLinkRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id domain.EntityID) (*domain.PaymentLink, error) {
	query := `SELECT ` + linkColumns + ` FROM payment_links WHERE id = $1 FOR UPDATE`
	return scanLink(tx.QueryRow(ctx, query, id.String()))
}

// SetActive flips the active flag within a transaction.
func (r *PaymentLinkRepo) SetActive(ctx context.Context, tx pgx.Tx, id domain.EntityID, active bool) error {
	query := `UPDATE payment_links SET active = $1, updated_at = NOW() WHERE id = $2`

	tag, err := tx.Exec(ctx, query, active, id.String())
	if err != nil {
		return fmt.Errorf("set payment link active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payment link not found: %s", id)
	}
	return nil
}

// ListByMerchant returns all links issued by a merchant, newest first.
func (r *PaymentLinkRepo) ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]domain.PaymentLink, error) {
	query := `SELECT ` + linkColumns + ` FROM payment_links
		WHERE merchant_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, merchantID)
	if err != nil {
		return nil, fmt.Errorf("list payment links: %w", err)
	}
	defer rows.Close()

	var links []domain.PaymentLink
	for rows.Next() {
		link, err := scanLinkRow(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, *link)
	}
	return links, rows.Err()
}

func scanLink(row pgx.Row) (*domain.PaymentLink, error) {
	link, err := scanLinkRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return link, nil
}

func scanLinkRow(row pgx.Row) (*domain.PaymentLink, error) {
	link := &domain.PaymentLink{}
	var id string
	err := row.Scan(
		&id, &link.MerchantID, &link.Amount, &link.Currency,
		&link.Active, &link.Metadata, &link.CreatedAt, &link.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	link.ID, err = domain.ParseEntityID(id)
	if err != nil {
		return nil, fmt.Errorf("parse payment link id: %w", err)
	}
	return link, nil
}
