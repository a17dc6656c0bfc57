package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"paylock-gateway/internal/core/domain"
	"paylock-gateway/internal/core/ports"
	"paylock-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EscrowServiceImpl implements ports.EscrowService. Every mutating operation
// follows the same shape: begin a transaction, lock the escrow row, validate
// role and state, move funds through the ledger, write the new state, commit.
// The row lock held across validate -> transfer -> mutate is the per-entity
// critical section; no concurrent caller can observe an in-flight operation.
type EscrowServiceImpl struct {
	escrowRepo   ports.EscrowRepository
	currencyRepo ports.CurrencyRepository
	settingsRepo ports.SettingsRepository
	ledger       ports.LedgerService
	transactor   ports.DBTransactor
	custodyID    uuid.UUID
	log          zerolog.Logger
	now          func() time.Time
}

// NewEscrowService creates a new EscrowServiceImpl. custodyID is the platform
// account that holds funds while an escrow is in flight.
func NewEscrowService(
	escrowRepo ports.EscrowRepository,
	currencyRepo ports.CurrencyRepository,
	settingsRepo ports.SettingsRepository,
	ledger ports.LedgerService,
	transactor ports.DBTransactor,
	custodyID uuid.UUID,
	log zerolog.Logger,
) *EscrowServiceImpl {
	return &EscrowServiceImpl{
		escrowRepo:   escrowRepo,
		currencyRepo: currencyRepo,
		settingsRepo: settingsRepo,
		ledger:       ledger,
		transactor:   transactor,
		custodyID:    custodyID,
		log:          log,
		now:          time.Now,
	}
}

// Create registers a new escrow in state Created. The caller is the buyer.
// The currency allow-list is consulted here and never re-checked later.
func (s *EscrowServiceImpl) Create(ctx context.Context, req ports.CreateEscrowRequest) (*domain.Escrow, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidInput("escrow amount must be positive")
	}
	if req.MerchantID == uuid.Nil {
		return nil, apperror.ErrInvalidInput("merchant is required")
	}

	supported, err := s.currencyRepo.IsSupported(ctx, req.Currency)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check currency: %w", err))
	}
	if !supported {
		return nil, apperror.ErrInvalidInput(fmt.Sprintf("currency %s is not supported", req.Currency))
	}

	days := req.DeadlineDays
	if days == 0 {
		settings, err := s.settingsRepo.Get(ctx)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("load settings: %w", err))
		}
		days = settings.DefaultEscrowDays
	}
	if err := domain.ValidateEscrowDays(days); err != nil {
		return nil, apperror.ErrInvalidInput(err.Error())
	}

	now := s.now().UTC()
	id, err := domain.NewEntityID(req.BuyerID, req.Amount, req.Currency, now, req.Description)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("derive escrow id: %w", err))
	}

	escrow := &domain.Escrow{
		ID:          id,
		MerchantID:  req.MerchantID,
		BuyerID:     req.BuyerID,
		Amount:      req.Amount,
		Currency:    req.Currency,
		State:       domain.EscrowStateCreated,
		Deadline:    now.Add(time.Duration(days) * 24 * time.Hour),
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.escrowRepo.Create(ctx, escrow); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("escrow_id", escrow.ID.String()).
		Str("buyer_id", req.BuyerID.String()).
		Str("merchant_id", req.MerchantID.String()).
		Int64("amount", req.Amount).
		Str("currency", req.Currency).
		Time("deadline", escrow.Deadline).
		Msg("escrow created")

	return escrow, nil
}

// Fund moves the full amount from the buyer into custody. Buyer-only,
// Created state only, and strictly before the deadline.
func (s *EscrowServiceImpl) Fund(ctx context.Context, callerID uuid.UUID, id domain.EntityID) (*domain.Escrow, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	escrow, err := s.escrowRepo.GetByIDForUpdate(ctx, dbTx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock escrow: %w", err))
	}
	if escrow == nil {
		return nil, apperror.ErrNotFound("escrow")
	}

	if err := AuthorizeEscrow(OpFundEscrow, callerID, escrow, uuid.Nil); err != nil {
		return nil, err
	}
	if escrow.State != domain.EscrowStateCreated {
		return nil, apperror.ErrInvalidState(fmt.Sprintf("cannot fund escrow in state %s", escrow.State))
	}

	now := s.now().UTC()
	if !now.Before(escrow.Deadline) {
		return nil, apperror.ErrDeadlineViolation("funding deadline has passed")
	}

	err = s.ledger.Transfer(ctx, dbTx, ports.TransferRequest{
		From:      escrow.BuyerID,
		To:        s.custodyID,
		Currency:  escrow.Currency,
		Amount:    escrow.Amount,
		Kind:      domain.EntryKindEscrowFund,
		EntityRef: &escrow.ID,
	})
	if err != nil {
		return nil, err
	}

	escrow.State = domain.EscrowStateFunded
	escrow.UpdatedAt = now
	if err := s.escrowRepo.Update(ctx, dbTx, escrow); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update escrow: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("escrow_id", escrow.ID.String()).
		Int64("amount", escrow.Amount).
		Msg("escrow funded")

	return escrow, nil
}

// Complete releases custody to the merchant minus the platform fee. Buyer-only.
func (s *EscrowServiceImpl) Complete(ctx context.Context, callerID uuid.UUID, id domain.EntityID) (*domain.Escrow, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	escrow, err := s.escrowRepo.GetByIDForUpdate(ctx, dbTx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock escrow: %w", err))
	}
	if escrow == nil {
		return nil, apperror.ErrNotFound("escrow")
	}

	if err := AuthorizeEscrow(OpCompleteEscrow, callerID, escrow, uuid.Nil); err != nil {
		return nil, err
	}
	if escrow.State != domain.EscrowStateFunded {
		return nil, apperror.ErrInvalidState(fmt.Sprintf("cannot complete escrow in state %s", escrow.State))
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load settings: %w", err))
	}
	fee := domain.PlatformFee(escrow.Amount, settings.FeeRateBps)

	err = s.ledger.Transfer(ctx, dbTx, ports.TransferRequest{
		From:      s.custodyID,
		To:        escrow.MerchantID,
		Currency:  escrow.Currency,
		Amount:    escrow.Amount - fee,
		Kind:      domain.EntryKindRelease,
		EntityRef: &escrow.ID,
	})
	if err != nil {
		return nil, err
	}
	if fee > 0 {
		err = s.ledger.Transfer(ctx, dbTx, ports.TransferRequest{
			From:      s.custodyID,
			To:        settings.FeeCollectorID,
			Currency:  escrow.Currency,
			Amount:    fee,
			Kind:      domain.EntryKindFee,
			EntityRef: &escrow.ID,
		})
		if err != nil {
			return nil, err
		}
	}

	escrow.State = domain.EscrowStateCompleted
	escrow.UpdatedAt = s.now().UTC()
	if err := s.escrowRepo.Update(ctx, dbTx, escrow); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update escrow: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("escrow_id", escrow.ID.String()).
		Int64("merchant_amount", escrow.Amount-fee).
		Int64("fee", fee).
		Msg("escrow completed")

	return escrow, nil
}

// Refund returns the full amount to the buyer with no fee. Merchant-only.
func (s *EscrowServiceImpl) Refund(ctx context.Context, callerID uuid.UUID, id domain.EntityID) (*domain.Escrow, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	escrow, err := s.escrowRepo.GetByIDForUpdate(ctx, dbTx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock escrow: %w", err))
	}
	if escrow == nil {
		return nil, apperror.ErrNotFound("escrow")
	}

	if err := AuthorizeEscrow(OpRefundEscrow, callerID, escrow, uuid.Nil); err != nil {
		return nil, err
	}
	if escrow.State != domain.EscrowStateFunded {
		return nil, apperror.ErrInvalidState(fmt.Sprintf("cannot refund escrow in state %s", escrow.State))
	}

	err = s.ledger.Transfer(ctx, dbTx, ports.TransferRequest{
		From:      s.custodyID,
		To:        escrow.BuyerID,
		Currency:  escrow.Currency,
		Amount:    escrow.Amount,
		Kind:      domain.EntryKindRefund,
		EntityRef: &escrow.ID,
	})
	if err != nil {
		return nil, err
	}

	escrow.State = domain.EscrowStateRefunded
	escrow.UpdatedAt = s.now().UTC()
	if err := s.escrowRepo.Update(ctx, dbTx, escrow); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update escrow: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("escrow_id", escrow.ID.String()).
		Int64("amount", escrow.Amount).
		Msg("escrow refunded by merchant")

	return escrow, nil
}

// Dispute freezes a funded escrow pending arbitration. Buyer or merchant,
// non-empty reason required. No funds move.
func (s *EscrowServiceImpl) Dispute(ctx context.Context, callerID uuid.UUID, id domain.EntityID, reason string) (*domain.Escrow, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	escrow, err := s.escrowRepo.GetByIDForUpdate(ctx, dbTx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock escrow: %w", err))
	}
	if escrow == nil {
		return nil, apperror.ErrNotFound("escrow")
	}

	if err := AuthorizeEscrow(OpRaiseDispute, callerID, escrow, uuid.Nil); err != nil {
		return nil, err
	}
	if escrow.State != domain.EscrowStateFunded {
		return nil, apperror.ErrInvalidState(fmt.Sprintf("cannot dispute escrow in state %s", escrow.State))
	}
	if strings.TrimSpace(reason) == "" {
		return nil, apperror.ErrInvalidInput("dispute reason is required")
	}

	escrow.State = domain.EscrowStateDisputed
	escrow.DisputeReason = reason
	escrow.UpdatedAt = s.now().UTC()
	if err := s.escrowRepo.Update(ctx, dbTx, escrow); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update escrow: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("escrow_id", escrow.ID.String()).
		Str("raised_by", callerID.String()).
		Str("reason", reason).
		Msg("escrow disputed")

	return escrow, nil
}

// Resolve splits the full amount between merchant and buyer by the
// arbitrator's percentage. No platform fee applies to disputed settlements.
func (s *EscrowServiceImpl) Resolve(ctx context.Context, callerID uuid.UUID, id domain.EntityID, merchantPercent int) (*domain.Escrow, error) {
	if merchantPercent < 0 || merchantPercent > 100 {
		return nil, apperror.ErrInvalidInput("merchant percent must be between 0 and 100")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	escrow, err := s.escrowRepo.GetByIDForUpdate(ctx, dbTx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock escrow: %w", err))
	}
	if escrow == nil {
		return nil, apperror.ErrNotFound("escrow")
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load settings: %w", err))
	}
	if err := AuthorizeEscrow(OpResolveDispute, callerID, escrow, settings.ArbitratorID); err != nil {
		return nil, err
	}
	if escrow.State != domain.EscrowStateDisputed {
		return nil, apperror.ErrInvalidState(fmt.Sprintf("cannot resolve escrow in state %s", escrow.State))
	}

	merchantShare, buyerShare := domain.SplitDispute(escrow.Amount, merchantPercent)

	if merchantShare > 0 {
		err = s.ledger.Transfer(ctx, dbTx, ports.TransferRequest{
			From:      s.custodyID,
			To:        escrow.MerchantID,
			Currency:  escrow.Currency,
			Amount:    merchantShare,
			Kind:      domain.EntryKindDisputeSplit,
			EntityRef: &escrow.ID,
		})
		if err != nil {
			return nil, err
		}
	}
	if buyerShare > 0 {
		err = s.ledger.Transfer(ctx, dbTx, ports.TransferRequest{
			From:      s.custodyID,
			To:        escrow.BuyerID,
			Currency:  escrow.Currency,
			Amount:    buyerShare,
			Kind:      domain.EntryKindDisputeSplit,
			EntityRef: &escrow.ID,
		})
		if err != nil {
			return nil, err
		}
	}

	escrow.State = domain.EscrowStateResolved
	escrow.Winner = domain.DetermineWinner(merchantShare, buyerShare)
	escrow.UpdatedAt = s.now().UTC()
	if err := s.escrowRepo.Update(ctx, dbTx, escrow); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update escrow: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("escrow_id", escrow.ID.String()).
		Int("merchant_percent", merchantPercent).
		Int64("merchant_share", merchantShare).
		Int64("buyer_share", buyerShare).
		Str("winner", string(escrow.Winner)).
		Msg("dispute resolved")

	return escrow, nil
}

// ClaimExpired lets the buyer reclaim a funded escrow whose deadline has
// strictly passed. A disputed escrow cannot be expiry-claimed: the state
// check gates on Funded, so arbitration must run to completion.
func (s *EscrowServiceImpl) ClaimExpired(ctx context.Context, callerID uuid.UUID, id domain.EntityID) (*domain.Escrow, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	escrow, err := s.escrowRepo.GetByIDForUpdate(ctx, dbTx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock escrow: %w", err))
	}
	if escrow == nil {
		return nil, apperror.ErrNotFound("escrow")
	}

	if err := AuthorizeEscrow(OpClaimExpired, callerID, escrow, uuid.Nil); err != nil {
		return nil, err
	}
	if escrow.State != domain.EscrowStateFunded {
		return nil, apperror.ErrInvalidState(fmt.Sprintf("cannot claim escrow in state %s", escrow.State))
	}
	if !escrow.Expired(s.now().UTC()) {
		return nil, apperror.ErrDeadlineViolation("escrow deadline has not passed")
	}

	err = s.ledger.Transfer(ctx, dbTx, ports.TransferRequest{
		From:      s.custodyID,
		To:        escrow.BuyerID,
		Currency:  escrow.Currency,
		Amount:    escrow.Amount,
		Kind:      domain.EntryKindRefund,
		EntityRef: &escrow.ID,
	})
	if err != nil {
		return nil, err
	}

	escrow.State = domain.EscrowStateRefunded
	escrow.UpdatedAt = s.now().UTC()
	if err := s.escrowRepo.Update(ctx, dbTx, escrow); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update escrow: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("escrow_id", escrow.ID.String()).
		Int64("amount", escrow.Amount).
		Msg("expired escrow reclaimed by buyer")

	return escrow, nil
}

// Get fetches an escrow by id.
func (s *EscrowServiceImpl) Get(ctx context.Context, id domain.EntityID) (*domain.Escrow, error) {
	escrow, err := s.escrowRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get escrow: %w", err))
	}
	if escrow == nil {
		return nil, apperror.ErrNotFound("escrow")
	}
	return escrow, nil
}

// Status returns just the lifecycle state.
func (s *EscrowServiceImpl) Status(ctx context.Context, id domain.EntityID) (domain.EscrowState, error) {
	escrow, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return escrow.State, nil
}

// ListByParticipant returns escrows where the account is buyer or merchant.
func (s *EscrowServiceImpl) ListByParticipant(ctx context.Context, accountID uuid.UUID) ([]domain.Escrow, error) {
	escrows, err := s.escrowRepo.ListByParticipant(ctx, accountID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list escrows: %w", err))
	}
	return escrows, nil
}
