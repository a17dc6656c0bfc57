package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"paylock-gateway/internal/core/domain"
	"paylock-gateway/internal/core/ports"
	"paylock-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// LedgerServiceImpl implements ports.LedgerService on per-account balance
// rows with pessimistic locking. All legs of one logical operation share the
// caller's transaction, so a dispute split paying two parties either commits
// both legs or neither.
type LedgerServiceImpl struct {
	balanceRepo ports.BalanceRepository
	entryRepo   ports.LedgerEntryRepository
	transactor  ports.DBTransactor
	log         zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	balanceRepo ports.BalanceRepository,
	entryRepo ports.LedgerEntryRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		balanceRepo: balanceRepo,
		entryRepo:   entryRepo,
		transactor:  transactor,
		log:         log,
	}
}

// Transfer moves value between two accounts inside the caller's transaction.
// Both balance rows are locked in deterministic id order before any write.
func (s *LedgerServiceImpl) Transfer(ctx context.Context, tx pgx.Tx, req ports.TransferRequest) error {
	if req.Amount <= 0 {
		return apperror.ErrInvalidInput("transfer amount must be positive")
	}
	if req.From == req.To {
		return apperror.ErrInvalidInput("transfer source and destination must differ")
	}

	var fromBalance *domain.Balance
	for _, accountID := range lockOrder(req.From, req.To) {
		bal, err := s.balanceRepo.GetForUpdate(ctx, tx, accountID, req.Currency)
		if err != nil {
			return apperror.InternalError(fmt.Errorf("lock balance %s/%s: %w", accountID, req.Currency, err))
		}
		if accountID == req.From {
			fromBalance = bal
		}
	}

	if fromBalance == nil || fromBalance.Available < req.Amount {
		return apperror.ErrTransferFailure(fmt.Sprintf("insufficient %s balance", req.Currency))
	}

	if err := s.balanceRepo.Add(ctx, tx, req.From, req.Currency, -req.Amount); err != nil {
		return apperror.InternalError(fmt.Errorf("debit %s: %w", req.From, err))
	}
	if err := s.balanceRepo.Add(ctx, tx, req.To, req.Currency, req.Amount); err != nil {
		return apperror.InternalError(fmt.Errorf("credit %s: %w", req.To, err))
	}

	entry := &domain.LedgerEntry{
		ID:          uuid.New(),
		EntityRef:   req.EntityRef,
		FromAccount: req.From,
		ToAccount:   req.To,
		Currency:    req.Currency,
		Amount:      req.Amount,
		Kind:        req.Kind,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.entryRepo.Create(ctx, tx, entry); err != nil {
		return apperror.InternalError(fmt.Errorf("record ledger entry: %w", err))
	}

	return nil
}

// Deposit credits an account in its own transaction. This is the funding
// interface the external test-token minting utility calls.
func (s *LedgerServiceImpl) Deposit(ctx context.Context, accountID uuid.UUID, currency string, amount int64) error {
	if amount <= 0 {
		return apperror.ErrInvalidInput("deposit amount must be positive")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.balanceRepo.Add(ctx, dbTx, accountID, currency, amount); err != nil {
		return apperror.InternalError(fmt.Errorf("credit deposit: %w", err))
	}

	entry := &domain.LedgerEntry{
		ID:          uuid.New(),
		FromAccount: uuid.Nil, // Minted, no source account
		ToAccount:   accountID,
		Currency:    currency,
		Amount:      amount,
		Kind:        domain.EntryKindDeposit,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.entryRepo.Create(ctx, dbTx, entry); err != nil {
		return apperror.InternalError(fmt.Errorf("record deposit entry: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("account_id", accountID.String()).
		Str("currency", currency).
		Int64("amount", amount).
		Msg("deposit credited")

	return nil
}

// BalanceOf returns the available balance; missing rows read as zero.
func (s *LedgerServiceImpl) BalanceOf(ctx context.Context, accountID uuid.UUID, currency string) (int64, error) {
	bal, err := s.balanceRepo.Get(ctx, accountID, currency)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("get balance: %w", err))
	}
	if bal == nil {
		return 0, nil
	}
	return bal.Available, nil
}

// lockOrder returns the two account ids in deterministic order so concurrent
// transfers touching the same pair cannot deadlock.
func lockOrder(a, b uuid.UUID) [2]uuid.UUID {
	if bytes.Compare(a[:], b[:]) <= 0 {
		return [2]uuid.UUID{a, b}
	}
	return [2]uuid.UUID{b, a}
}
