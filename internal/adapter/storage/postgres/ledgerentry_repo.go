package postgres

import (
	"context"
	"fmt"

	"paylock-gateway/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// LedgerEntryRepo implements ports.LedgerEntryRepository. Entries are
// insert-only; there is no update or delete path.
type LedgerEntryRepo struct {
	pool Pool
}

// NewLedgerEntryRepo creates a new LedgerEntryRepo.
func NewLedgerEntryRepo(pool Pool) *LedgerEntryRepo {
	return &LedgerEntryRepo{pool: pool}
}

// Create inserts a ledger entry within a database transaction.
func (r *LedgerEntryRepo) Create(ctx context.Context, tx pgx.Tx, entry *domain.LedgerEntry) error {
	query := `INSERT INTO ledger_entries (id, entity_ref, from_account, to_account, currency, amount, kind, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	var entityRef *string
	if entry.EntityRef != nil {
		s := entry.EntityRef.String()
		entityRef = &s
	}

	_, err := tx.Exec(ctx, query,
		entry.ID, entityRef, entry.FromAccount, entry.ToAccount,
		entry.Currency, entry.Amount, string(entry.Kind), entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// ListByEntity returns all transfer legs recorded against an escrow or
// payment link, oldest first.
func (r *LedgerEntryRepo) ListByEntity(ctx context.Context, ref domain.EntityID) ([]domain.LedgerEntry, error) {
	query := `SELECT id, entity_ref, from_account, to_account, currency, amount, kind, created_at
		FROM ledger_entries WHERE entity_ref = $1 ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, ref.String())
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var entry domain.LedgerEntry
		var entityRef *string
		var kind string
		err := rows.Scan(
			&entry.ID, &entityRef, &entry.FromAccount, &entry.ToAccount,
			&entry.Currency, &entry.Amount, &kind, &entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		if entityRef != nil {
			id, err := domain.ParseEntityID(*entityRef)
			if err != nil {
				return nil, fmt.Errorf("parse entity ref: %w", err)
			}
			entry.EntityRef = &id
		}
		entry.Kind = domain.LedgerEntryKind(kind)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
