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

// PaymentLinkServiceImpl implements ports.PaymentLinkService.
type PaymentLinkServiceImpl struct {
	linkRepo     ports.PaymentLinkRepository
	currencyRepo ports.CurrencyRepository
	settingsRepo ports.SettingsRepository
	ledger       ports.LedgerService
	transactor   ports.DBTransactor
	log          zerolog.Logger
	now          func() time.Time
}

// NewPaymentLinkService creates a new PaymentLinkServiceImpl.
func NewPaymentLinkService(
	linkRepo ports.PaymentLinkRepository,
	currencyRepo ports.CurrencyRepository,
	settingsRepo ports.SettingsRepository,
	ledger ports.LedgerService,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *PaymentLinkServiceImpl {
	return &PaymentLinkServiceImpl{
		linkRepo:     linkRepo,
		currencyRepo: currencyRepo,
		settingsRepo: settingsRepo,
		ledger:       ledger,
		transactor:   transactor,
		log:          log,
		now:          time.Now,
	}
}

// Create issues a new one-shot payment request owned by the caller.
func (s *PaymentLinkServiceImpl) Create(ctx context.Context, req ports.CreatePaymentLinkRequest) (*domain.PaymentLink, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidInput("payment link amount must be positive")
	}

	supported, err := s.currencyRepo.IsSupported(ctx, req.Currency)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check currency: %w", err))
	}
	if !supported {
		return nil, apperror.ErrInvalidInput(fmt.Sprintf("currency %s is not supported", req.Currency))
	}

	now := s.now().UTC()
	id, err := domain.NewEntityID(req.MerchantID, req.Amount, req.Currency, now, req.Metadata)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("derive link id: %w", err))
	}

	link := &domain.PaymentLink{
		ID:         id,
		MerchantID: req.MerchantID,
		Amount:     req.Amount,
		Currency:   req.Currency,
		Active:     true,
		Metadata:   req.Metadata,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.linkRepo.Create(ctx, link); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("link_id", link.ID.String()).
		Str("merchant_id", req.MerchantID.String()).
		Int64("amount", req.Amount).
		Str("currency", req.Currency).
		Msg("payment link created")

	return link, nil
}

// Pay settles an active link at most once: amount minus fee to the merchant,
// fee to the collector, link marked inactive. The link row stays locked from
// the active-flag check through the transfers, so a concurrent payer cannot
// slip in between; a failed transfer rolls everything back and the link
// remains active.
func (s *PaymentLinkServiceImpl) Pay(ctx context.Context, payerID uuid.UUID, id domain.EntityID) (*domain.PaymentLink, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	link, err := s.linkRepo.GetByIDForUpdate(ctx, dbTx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock payment link: %w", err))
	}
	if link == nil {
		return nil, apperror.ErrNotFound("payment link")
	}
	if !link.Active {
		return nil, apperror.ErrInvalidState("payment link is no longer active")
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load settings: %w", err))
	}
	fee := domain.PlatformFee(link.Amount, settings.FeeRateBps)

	err = s.ledger.Transfer(ctx, dbTx, ports.TransferRequest{
		From:      payerID,
		To:        link.MerchantID,
		Currency:  link.Currency,
		Amount:    link.Amount - fee,
		Kind:      domain.EntryKindLinkPayment,
		EntityRef: &link.ID,
	})
	if err != nil {
		return nil, err
	}
	if fee > 0 {
		err = s.ledger.Transfer(ctx, dbTx, ports.TransferRequest{
			From:      payerID,
			To:        settings.FeeCollectorID,
			Currency:  link.Currency,
			Amount:    fee,
			Kind:      domain.EntryKindFee,
			EntityRef: &link.ID,
		})
		if err != nil {
			return nil, err
		}
	}

	if err := s.linkRepo.SetActive(ctx, dbTx, link.ID, false); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("deactivate link: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	link.Active = false
	link.UpdatedAt = s.now().UTC()

	s.log.Info().
		Str("link_id", link.ID.String()).
		Str("payer_id", payerID.String()).
		Int64("merchant_amount", link.Amount-fee).
		Int64("fee", fee).
		Msg("payment link settled")

	return link, nil
}

// Deactivate disables a link. Merchant-only; deactivating an already
// inactive link is a no-op success rather than an error.
func (s *PaymentLinkServiceImpl) Deactivate(ctx context.Context, callerID uuid.UUID, id domain.EntityID) (*domain.PaymentLink, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	link, err := s.linkRepo.GetByIDForUpdate(ctx, dbTx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock payment link: %w", err))
	}
	if link == nil {
		return nil, apperror.ErrNotFound("payment link")
	}

	if err := RequireLinkMerchant(callerID, link); err != nil {
		return nil, err
	}

	if !link.Active {
		// Already inactive: nothing to write.
		return link, nil
	}

	if err := s.linkRepo.SetActive(ctx, dbTx, link.ID, false); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("deactivate link: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	link.Active = false
	link.UpdatedAt = s.now().UTC()

	s.log.Info().
		Str("link_id", link.ID.String()).
		Msg("payment link deactivated by merchant")

	return link, nil
}

// Get fetches a payment link by id.
func (s *PaymentLinkServiceImpl) Get(ctx context.Context, id domain.EntityID) (*domain.PaymentLink, error) {
	link, err := s.linkRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get payment link: %w", err))
	}
	if link == nil {
		return nil, apperror.ErrNotFound("payment link")
	}
	return link, nil
}

// ListByMerchant returns all links issued by the merchant, active or not.
func (s *PaymentLinkServiceImpl) ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]domain.PaymentLink, error) {
	links, err := s.linkRepo.ListByMerchant(ctx, merchantID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list payment links: %w", err))
	}
	return links, nil
}
