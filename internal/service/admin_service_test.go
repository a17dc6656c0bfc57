package service

import (
	"context"
	"testing"

	"paylock-gateway/internal/core/domain"
	"paylock-gateway/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type adminTestDeps struct {
	svc          *AdminServiceImpl
	settingsRepo *mocks.MockSettingsRepository
	currencyRepo *mocks.MockCurrencyRepository
	ownerID      uuid.UUID
	ctrl         *gomock.Controller
}

func setupAdminService(t *testing.T) *adminTestDeps {
	ctrl := gomock.NewController(t)
	d := &adminTestDeps{
		settingsRepo: mocks.NewMockSettingsRepository(ctrl),
		currencyRepo: mocks.NewMockCurrencyRepository(ctrl),
		ownerID:      uuid.New(),
		ctrl:         ctrl,
	}
	d.svc = NewAdminService(d.settingsRepo, d.currencyRepo, zerolog.Nop())
	return d
}

func (d *adminTestDeps) settings() *domain.Settings {
	return &domain.Settings{
		OwnerID:           d.ownerID,
		ArbitratorID:      uuid.New(),
		FeeCollectorID:    uuid.New(),
		FeeRateBps:        100,
		DefaultEscrowDays: 14,
	}
}

func TestAdminService_SetFeeRate_Success(t *testing.T) {
	d := setupAdminService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.settingsRepo.EXPECT().Get(ctx).Return(d.settings(), nil)
	d.settingsRepo.EXPECT().Update(ctx, gomock.Any()).Return(nil)

	settings, err := d.svc.SetFeeRate(ctx, d.ownerID, 250)
	require.NoError(t, err)
	assert.Equal(t, int32(250), settings.FeeRateBps)
}

func TestAdminService_SetFeeRate_AboveCap(t *testing.T) {
	d := setupAdminService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.settingsRepo.EXPECT().Get(ctx).Return(d.settings(), nil)

	settings, err := d.svc.SetFeeRate(ctx, d.ownerID, 501)
	assert.Nil(t, settings)
	assertAppError(t, err, "ESC_001")
}

func TestAdminService_SetFeeRate_NotOwner(t *testing.T) {
	d := setupAdminService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.settingsRepo.EXPECT().Get(ctx).Return(d.settings(), nil)

	settings, err := d.svc.SetFeeRate(ctx, uuid.New(), 200)
	assert.Nil(t, settings)
	assertAppError(t, err, "ESC_003")
}

func TestAdminService_SetFeeCollector(t *testing.T) {
	d := setupAdminService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	collectorID := uuid.New()
	d.settingsRepo.EXPECT().Get(ctx).Return(d.settings(), nil)
	d.settingsRepo.EXPECT().Update(ctx, gomock.Any()).Return(nil)

	settings, err := d.svc.SetFeeCollector(ctx, d.ownerID, collectorID)
	require.NoError(t, err)
	assert.Equal(t, collectorID, settings.FeeCollectorID)
}

func TestAdminService_SetFeeCollector_NilID(t *testing.T) {
	d := setupAdminService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.settingsRepo.EXPECT().Get(ctx).Return(d.settings(), nil)

	settings, err := d.svc.SetFeeCollector(ctx, d.ownerID, uuid.Nil)
	assert.Nil(t, settings)
	assertAppError(t, err, "ESC_001")
}

func TestAdminService_SetArbitrator(t *testing.T) {
	d := setupAdminService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	arbitratorID := uuid.New()
	d.settingsRepo.EXPECT().Get(ctx).Return(d.settings(), nil)
	d.settingsRepo.EXPECT().Update(ctx, gomock.Any()).Return(nil)

	settings, err := d.svc.SetArbitrator(ctx, d.ownerID, arbitratorID)
	require.NoError(t, err)
	assert.Equal(t, arbitratorID, settings.ArbitratorID)
}

func TestAdminService_SetDefaultEscrowDuration(t *testing.T) {
	d := setupAdminService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.settingsRepo.EXPECT().Get(ctx).Return(d.settings(), nil)
	d.settingsRepo.EXPECT().Update(ctx, gomock.Any()).Return(nil)

	settings, err := d.svc.SetDefaultEscrowDuration(ctx, d.ownerID, 30)
	require.NoError(t, err)
	assert.Equal(t, int32(30), settings.DefaultEscrowDays)
}

func TestAdminService_SetDefaultEscrowDuration_OutOfRange(t *testing.T) {
	d := setupAdminService(t)
	defer d.ctrl.Finish()

	for _, days := range []int32{0, 366} {
		ctx := context.Background()
		d.settingsRepo.EXPECT().Get(ctx).Return(d.settings(), nil)

		settings, err := d.svc.SetDefaultEscrowDuration(ctx, d.ownerID, days)
		assert.Nil(t, settings)
		assertAppError(t, err, "ESC_001")
	}
}

func TestAdminService_SetCurrencySupport_NormalizesCode(t *testing.T) {
	d := setupAdminService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.settingsRepo.EXPECT().Get(ctx).Return(d.settings(), nil)
	d.currencyRepo.EXPECT().Upsert(ctx, "USDC", true).Return(nil)

	err := d.svc.SetCurrencySupport(ctx, d.ownerID, " usdc ", true)
	require.NoError(t, err)
}

func TestAdminService_SetCurrencySupport_EmptyCode(t *testing.T) {
	d := setupAdminService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.settingsRepo.EXPECT().Get(ctx).Return(d.settings(), nil)

	err := d.svc.SetCurrencySupport(ctx, d.ownerID, "  ", true)
	assertAppError(t, err, "ESC_001")
}

func TestAdminService_SetCurrencySupport_NotOwner(t *testing.T) {
	d := setupAdminService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.settingsRepo.EXPECT().Get(ctx).Return(d.settings(), nil)

	err := d.svc.SetCurrencySupport(ctx, uuid.New(), "NHB", false)
	assertAppError(t, err, "ESC_003")
}

func TestAdminService_ListCurrencies(t *testing.T) {
	d := setupAdminService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.currencyRepo.EXPECT().List(ctx).Return([]domain.Currency{
		{Code: "NHB", Enabled: true},
		{Code: "USDC", Enabled: false},
	}, nil)

	currencies, err := d.svc.ListCurrencies(ctx)
	require.NoError(t, err)
	assert.Len(t, currencies, 2)
}
