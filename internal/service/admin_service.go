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

// AdminServiceImpl implements ports.AdminService: the owner-gated protocol
// parameter mutators. Bound checks live in domain; this layer adds the role
// gate and persistence.
type AdminServiceImpl struct {
	settingsRepo ports.SettingsRepository
	currencyRepo ports.CurrencyRepository
	log          zerolog.Logger
}

// NewAdminService creates a new AdminServiceImpl.
func NewAdminService(
	settingsRepo ports.SettingsRepository,
	currencyRepo ports.CurrencyRepository,
	log zerolog.Logger,
) *AdminServiceImpl {
	return &AdminServiceImpl{
		settingsRepo: settingsRepo,
		currencyRepo: currencyRepo,
		log:          log,
	}
}

// SetFeeRate updates the platform fee rate, capped at 500 bps.
func (s *AdminServiceImpl) SetFeeRate(ctx context.Context, callerID uuid.UUID, rateBps int32) (*domain.Settings, error) {
	settings, err := s.ownerSettings(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateFeeRate(rateBps); err != nil {
		return nil, apperror.ErrInvalidInput(err.Error())
	}

	settings.FeeRateBps = rateBps
	if err := s.save(ctx, settings); err != nil {
		return nil, err
	}

	s.log.Info().Int32("fee_rate_bps", rateBps).Msg("fee rate updated")
	return settings, nil
}

// SetFeeCollector updates the account receiving platform fees.
func (s *AdminServiceImpl) SetFeeCollector(ctx context.Context, callerID uuid.UUID, collectorID uuid.UUID) (*domain.Settings, error) {
	settings, err := s.ownerSettings(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if collectorID == uuid.Nil {
		return nil, apperror.ErrInvalidInput("fee collector is required")
	}

	settings.FeeCollectorID = collectorID
	if err := s.save(ctx, settings); err != nil {
		return nil, err
	}

	s.log.Info().Str("fee_collector_id", collectorID.String()).Msg("fee collector updated")
	return settings, nil
}

// SetArbitrator updates the dispute arbitrator identity.
func (s *AdminServiceImpl) SetArbitrator(ctx context.Context, callerID uuid.UUID, arbitratorID uuid.UUID) (*domain.Settings, error) {
	settings, err := s.ownerSettings(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if arbitratorID == uuid.Nil {
		return nil, apperror.ErrInvalidInput("arbitrator is required")
	}

	settings.ArbitratorID = arbitratorID
	if err := s.save(ctx, settings); err != nil {
		return nil, err
	}

	s.log.Info().Str("arbitrator_id", arbitratorID.String()).Msg("arbitrator updated")
	return settings, nil
}

// SetDefaultEscrowDuration updates the default deadline window (1-365 days).
func (s *AdminServiceImpl) SetDefaultEscrowDuration(ctx context.Context, callerID uuid.UUID, days int32) (*domain.Settings, error) {
	settings, err := s.ownerSettings(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateEscrowDays(days); err != nil {
		return nil, apperror.ErrInvalidInput(err.Error())
	}

	settings.DefaultEscrowDays = days
	if err := s.save(ctx, settings); err != nil {
		return nil, err
	}

	s.log.Info().Int32("default_escrow_days", days).Msg("default escrow duration updated")
	return settings, nil
}

// SetCurrencySupport flips a currency allow-list entry. Disabling a currency
// never invalidates entities created while it was enabled.
func (s *AdminServiceImpl) SetCurrencySupport(ctx context.Context, callerID uuid.UUID, code string, enabled bool) error {
	if _, err := s.ownerSettings(ctx, callerID); err != nil {
		return err
	}

	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return apperror.ErrInvalidInput("currency code is required")
	}

	if err := s.currencyRepo.Upsert(ctx, code, enabled); err != nil {
		return apperror.InternalError(fmt.Errorf("upsert currency: %w", err))
	}

	s.log.Info().Str("currency", code).Bool("enabled", enabled).Msg("currency support updated")
	return nil
}

// GetSettings returns the protocol settings. Owner-only, like the mutators.
func (s *AdminServiceImpl) GetSettings(ctx context.Context, callerID uuid.UUID) (*domain.Settings, error) {
	return s.ownerSettings(ctx, callerID)
}

// ListCurrencies returns the full allow-list, enabled and disabled entries.
func (s *AdminServiceImpl) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	currencies, err := s.currencyRepo.List(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list currencies: %w", err))
	}
	return currencies, nil
}

func (s *AdminServiceImpl) ownerSettings(ctx context.Context, callerID uuid.UUID) (*domain.Settings, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load settings: %w", err))
	}
	if err := RequireOwner(callerID, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *AdminServiceImpl) save(ctx context.Context, settings *domain.Settings) error {
	settings.UpdatedAt = time.Now().UTC()
	if err := s.settingsRepo.Update(ctx, settings); err != nil {
		return apperror.InternalError(fmt.Errorf("save settings: %w", err))
	}
	return nil
}
