package service

import (
	"context"
	"fmt"
	"time"

	"paylock-gateway/internal/core/domain"
	"paylock-gateway/internal/core/ports"
	"paylock-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const receiptCacheTTL = 24 * time.Hour

// ReceiptServiceImpl implements ports.ReceiptService. Postgres holds the
// receipts; Redis is a best-effort fast path for verification.
type ReceiptServiceImpl struct {
	escrowRepo  ports.EscrowRepository
	linkRepo    ports.PaymentLinkRepository
	receiptRepo ports.ReceiptRepository
	cache       ports.ReceiptCache
	log         zerolog.Logger
	now         func() time.Time
}

// NewReceiptService creates a new ReceiptServiceImpl.
func NewReceiptService(
	escrowRepo ports.EscrowRepository,
	linkRepo ports.PaymentLinkRepository,
	receiptRepo ports.ReceiptRepository,
	cache ports.ReceiptCache,
	log zerolog.Logger,
) *ReceiptServiceImpl {
	return &ReceiptServiceImpl{
		escrowRepo:  escrowRepo,
		linkRepo:    linkRepo,
		receiptRepo: receiptRepo,
		cache:       cache,
		log:         log,
		now:         time.Now,
	}
}

// Issue mints a fresh receipt for a settled entity. Escrow receipts require
// a terminal state; link receipts may be requested any time after creation.
// Repeated requests mint distinct, independently verifiable receipts.
func (s *ReceiptServiceImpl) Issue(ctx context.Context, requesterID uuid.UUID, entityRef domain.EntityID) (*domain.Receipt, error) {
	escrow, err := s.escrowRepo.GetByID(ctx, entityRef)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get escrow: %w", err))
	}

	if escrow != nil {
		if !escrow.IsTerminal() {
			return nil, apperror.ErrInvalidState(
				fmt.Sprintf("receipts require a settled escrow, state is %s", escrow.State))
		}
	} else {
		link, err := s.linkRepo.GetByID(ctx, entityRef)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("get payment link: %w", err))
		}
		if link == nil {
			return nil, apperror.ErrNotFound("entity")
		}
	}

	now := s.now().UTC()
	id, err := domain.NewReceiptID(entityRef, requesterID, now)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("derive receipt id: %w", err))
	}

	receipt := &domain.Receipt{
		ID:          id,
		EntityRef:   entityRef,
		RequesterID: requesterID,
		IssuedAt:    now,
	}
	if err := s.receiptRepo.Create(ctx, receipt); err != nil {
		return nil, err
	}

	// Best-effort cache warm; Postgres remains the source of truth.
	if err := s.cache.Mark(ctx, receipt.ID.String(), receiptCacheTTL); err != nil {
		s.log.Warn().Err(err).Str("receipt_id", receipt.ID.String()).Msg("failed to cache receipt")
	}

	s.log.Info().
		Str("receipt_id", receipt.ID.String()).
		Str("entity_ref", entityRef.String()).
		Str("requester_id", requesterID.String()).
		Msg("receipt issued")

	return receipt, nil
}

// Verify reports whether a receipt id was ever issued. Safe to call
// arbitrarily often.
func (s *ReceiptServiceImpl) Verify(ctx context.Context, id domain.EntityID) (bool, error) {
	seen, err := s.cache.Seen(ctx, id.String())
	if err != nil {
		s.log.Warn().Err(err).Msg("receipt cache check failed, falling through to DB")
	} else if seen {
		return true, nil
	}

	exists, err := s.receiptRepo.Exists(ctx, id)
	if err != nil {
		return false, apperror.InternalError(fmt.Errorf("check receipt: %w", err))
	}
	if exists {
		if err := s.cache.Mark(ctx, id.String(), receiptCacheTTL); err != nil {
			s.log.Warn().Err(err).Msg("failed to backfill receipt cache")
		}
	}
	return exists, nil
}
