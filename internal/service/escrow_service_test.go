package service

import (
	"context"
	"testing"
	"time"

	"paylock-gateway/internal/core/domain"
	"paylock-gateway/internal/core/ports"
	"paylock-gateway/internal/core/ports/mocks"
	"paylock-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type escrowTestDeps struct {
	svc          *EscrowServiceImpl
	escrowRepo   *mocks.MockEscrowRepository
	currencyRepo *mocks.MockCurrencyRepository
	settingsRepo *mocks.MockSettingsRepository
	ledger       *mocks.MockLedgerService
	transactor   *mocks.MockDBTransactor
	custodyID    uuid.UUID
	ctrl         *gomock.Controller
}

func setupEscrowService(t *testing.T) *escrowTestDeps {
	ctrl := gomock.NewController(t)
	d := &escrowTestDeps{
		escrowRepo:   mocks.NewMockEscrowRepository(ctrl),
		currencyRepo: mocks.NewMockCurrencyRepository(ctrl),
		settingsRepo: mocks.NewMockSettingsRepository(ctrl),
		ledger:       mocks.NewMockLedgerService(ctrl),
		transactor:   mocks.NewMockDBTransactor(ctrl),
		custodyID:    uuid.New(),
		ctrl:         ctrl,
	}
	d.svc = NewEscrowService(
		d.escrowRepo, d.currencyRepo, d.settingsRepo,
		d.ledger, d.transactor, d.custodyID, zerolog.Nop(),
	)
	return d
}

// mockTx implements pgx.Tx for testing
type mockTx struct{ pgx.Tx }

func (m *mockTx) Rollback(_ context.Context) error { return nil }
func (m *mockTx) Commit(_ context.Context) error   { return nil }

func testEntityID(b byte) domain.EntityID {
	var id domain.EntityID
	for i := range id {
		id[i] = b
	}
	return id
}

// ==================== Create Tests ====================

func TestEscrowService_Create_Success(t *testing.T) {
	d := setupEscrowService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	buyerID := uuid.New()
	merchantID := uuid.New()

	d.currencyRepo.EXPECT().IsSupported(ctx, "NHB").Return(true, nil)
	d.settingsRepo.EXPECT().Get(ctx).Return(&domain.Settings{DefaultEscrowDays: 14}, nil)
	d.escrowRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)

	start := time.Now().UTC()
	escrow, err := d.svc.Create(ctx, ports.CreateEscrowRequest{
		BuyerID:     buyerID,
		MerchantID:  merchantID,
		Amount:      1000,
		Currency:    "NHB",
		Description: "order #42",
	})
	require.NoError(t, err)
	require.NotNil(t, escrow)
	assert.Equal(t, domain.EscrowStateCreated, escrow.State)
	assert.Equal(t, buyerID, escrow.BuyerID)
	assert.Equal(t, merchantID, escrow.MerchantID)
	assert.Equal(t, int64(1000), escrow.Amount)
	assert.False(t, escrow.ID.IsZero())
	// default duration seeded from settings
	assert.WithinDuration(t, start.Add(14*24*time.Hour), escrow.Deadline, 5*time.Second)
}

func TestEscrowService_Create_ExplicitDeadline(t *testing.T) {
	d := setupEscrowService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.currencyRepo.EXPECT().IsSupported(ctx, "NHB").Return(true, nil)
	d.escrowRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)

	start := time.Now().UTC()
	escrow, err := d.svc.Create(ctx, ports.CreateEscrowRequest{
		BuyerID:      uuid.New(),
		MerchantID:   uuid.New(),
		Amount:       500,
		Currency:     "NHB",
		DeadlineDays: 30,
	})
	require.NoError(t, err)
	assert.WithinDuration(t, start.Add(30*24*time.Hour), escrow.Deadline, 5*time.Second)
}

func TestEscrowService_Create_InvalidAmount(t *testing.T) {
	d := setupEscrowService(t)
	defer d.ctrl.Finish()

	escrow, err := d.svc.Create(context.Background(), ports.CreateEscrowRequest{
		BuyerID:    uuid.New(),
		MerchantID: uuid.New(),
		Amount:     0,
		Currency:   "NHB",
	})
	assert.Nil(t, escrow)
	assertAppError(t, err, "ESC_001")
}

func TestEscrowService_Create_UnsupportedCurrency(t *testing.T) {
	d := setupEscrowService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.currencyRepo.EXPECT().IsSupported(ctx, "XYZ").Return(false, nil)

	escrow, err := d.svc.Create(ctx, ports.CreateEscrowRequest{
		BuyerID:    uuid.New(),
		MerchantID: uuid.New(),
		Amount:     1000,
		Currency:   "XYZ",
	})
	assert.Nil(t, escrow)
	assertAppError(t, err, "ESC_001")
}

func TestEscrowService_Create_DeadlineOutOfRange(t *testing.T) {
	d := setupEscrowService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.currencyRepo.EXPECT().IsSupported(ctx, "NHB").Return(true, nil)

	escrow, err := d.svc.Create(ctx, ports.CreateEscrowRequest{
		BuyerID:      uuid.New(),
		MerchantID:   uuid.New(),
		Amount:       1000,
		Currency:     "NHB",
		DeadlineDays: 400,
	})
	assert.Nil(t, escrow)
	assertAppError(t, err, "ESC_001")
}

func TestEscrowService_Create_DuplicateID(t *testing.T) {
	d := setupEscrowService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.currencyRepo.EXPECT().IsSupported(ctx, "NHB").Return(true, nil)
	d.escrowRepo.EXPECT().Create(ctx, gomock.Any()).Return(apperror.ErrDuplicateID())

	escrow, err := d.svc.Create(ctx, ports.CreateEscrowRequest{
		BuyerID:      uuid.New(),
		MerchantID:   uuid.New(),
		Amount:       1000,
		Currency:     "NHB",
		DeadlineDays: 7,
	})
	assert.Nil(t, escrow)
	assertAppError(t, err, "ESC_007")
}

// ==================== Fund Tests ====================

func fundedEscrow(buyerID, merchantID uuid.UUID, deadline time.Time) *domain.Escrow {
	return &domain.Escrow{
		ID:         testEntityID(0xab),
		BuyerID:    buyerID,
		MerchantID: merchantID,
		Amount:     1000,
		Currency:   "NHB",
		State:      domain.EscrowStateFunded,
		Deadline:   deadline,
	}
}

func TestEscrowService_Fund_Success(t *testing.T) {
	d := setupEscrowService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	buyerID := uuid.New()
	merchantID := uuid.New()
	tx := &mockTx{}

	escrow := fundedEscrow(buyerID, merchantID, time.Now().Add(24*time.Hour))
	escrow.State = domain.EscrowStateCreated

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.escrowRepo.EXPECT().GetByIDForUpdate(ctx, tx, escrow.ID).Return(escrow, nil)
	d.ledger.EXPECT().Transfer(ctx, tx, ports.TransferRequest{
		From:      buyerID,
		To:        d.custodyID,
		Currency:  "NHB",
		Amount:    1000,
		Kind:      domain.EntryKindEscrowFund,
		EntityRef: &escrow.ID,
	}).Return(nil)
	d.escrowRepo.EXPECT().Update(ctx, tx, gomock.Any()).Return(nil)

	result, err := d.svc.Fund(ctx, buyerID, escrow.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EscrowStateFunded, result.State)
}

func TestEscrowService_Fund_NotBuyer(t *testing.T) {
	d := setupEscrowService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	escrow := fundedEscrow(uuid.New(), uuid.New(), time.Now().Add(24*time.Hour))
	escrow.State = domain.EscrowStateCreated

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.escrowRepo.EXPECT().GetByIDForUpdate(ctx, tx, escrow.ID).Return(escrow, nil)

	// merchant tries to fund
	result, err := d.svc.Fund(ctx, escrow.MerchantID, escrow.ID)
	assert.Nil(t, result)
	assertAppError(t, err, "ESC_003")
}

func TestEscrowService_Fund_NotFound(t *testing.T) {
	d := setupEscrowService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	id := testEntityID(0x01)

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.escrowRepo.EXPECT().GetByIDForUpdate(ctx, tx, id).Return(nil, nil)

	result, err := d.svc.Fund(ctx, uuid.New(), id)
	assert.Nil(t, result)
	assertAppError(t, err, "ESC_002")
}

func TestEscrowService_Fund_WrongState(t *testing.T) {
	d := setupEscrowService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	escrow := fundedEscrow(uuid.New(), uuid.New(), time.Now().Add(24*time.Hour))
	// already funded

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.escrowRepo.EXPECT().GetByIDForUpdate(ctx, tx, escrow.ID).Return(escrow, nil)

	result, err := d.svc.Fund(ctx, escrow.BuyerID, escrow.ID)
	assert.Nil(t, result)
	assertAppError(t, err, "ESC_004")
}

func TestEscrowService_Fund_PastDeadline(t *testing.T) {
	d := setupEscrowService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	escrow := fundedEscrow(uuid.New(), uuid.New(), time.Now().Add(-time.Hour))
	escrow.State = domain.EscrowStateCreated

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.escrowRepo.EXPECT().GetByIDForUpdate(ctx, tx, escrow.ID).Return(escrow, nil)

	result, err := d.svc.Fund(ctx, escrow.BuyerID, escrow.ID)
	assert.Nil(t, result)
	assertAppError(t, err, "ESC_005")
}

func TestEscrowService_Fund_AtExactDeadline(t *testing.T) {
	d := setupEscrowService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	deadline := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	escrow := fundedEscrow(uuid.New(), uuid.New(), deadline)
	escrow.State = domain.EscrowStateCreated

	d.svc.now = func() time.Time { return deadline }

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.escrowRepo.EXPECT().GetByIDForUpdate(ctx, tx, escrow.ID).Return(escrow, nil)

	// the exact deadline instant is already too late to fund
	result, err := d.svc.Fund(ctx, escrow.BuyerID, escrow.ID)
	assert.Nil(t, result)
	assertAppError(t, err, "ESC_005")
}

func TestEscrowService_Fund_InsufficientBalance(t *testing.T) {
	d := setupEscrowService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	escrow := fundedEscrow(uuid.New(), uuid.New(), time.Now().Add(24*time.Hour))
	escrow.State = domain.EscrowStateCreated

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.escrowRepo.EXPECT().GetByIDForUpdate(ctx, tx, escrow.ID).Return(escrow, nil)
	d.ledger.EXPECT().Transfer(ctx, tx, gomock.Any()).Return(apperror.ErrTransferFailure("insufficient NHB balance"))

	result, err := d.svc.Fund(ctx, escrow.BuyerID, escrow.ID)
	assert.Nil(t, result)
	assertAppError(t, err, "ESC_006")
}

// ==================== Complete Tests ====================

func TestEscrowService_Complete_Success(t *testing.T) {
	d := setupEscrowService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	buyerID := uuid.New()
	merchantID := uuid.New()
	collectorID := uuid.New()
	tx := &mockTx{}

	escrow := fundedEscrow(buyerID, merchantID, time.Now().Add(24*time.Hour))

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.escrowRepo.EXPECT().GetByIDForUpdate(ctx, tx, escrow.ID).Return(escrow, nil)
	d.settingsRepo.EXPECT().Get(ctx).Return(&domain.Settings{
		FeeRateBps:     100,
		FeeCollectorID: collectorID,
	}, nil)
	// 1000 at 100 bps: 990 to the merchant, 10 to the collector
	d.ledger.EXPECT().Transfer(ctx, tx, ports.TransferRequest{
		From:      d.custodyID,
		To:        merchantID,
		Currency:  "NHB",
		Amount:    990,
		Kind:      domain.EntryKindRelease,
		EntityRef: &escrow.ID,
	}).Return(nil)
	d.ledger.EXPECT().Transfer(ctx, tx, ports.TransferRequest{
		From:      d.custodyID,
		To:        collectorID,
		Currency:  "NHB",
		Amount:    10,
		Kind:      domain.EntryKindFee,
		EntityRef: &escrow.ID,
	}).Return(nil)
	d.escrowRepo.EXPECT().Update(ctx, tx, gomock.Any()).Return(nil)

	result, err := d.svc.Complete(ctx, buyerID, escrow.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EscrowStateCompleted, result.State)
}

func TestEscrowService_Complete_ZeroFeeSkipsFeeLeg(t *testing.T) {
	d := setupEscrowService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	buyerID := uuid.New()
	merchantID := uuid.New()
	tx := &mockTx{}

	escrow := fundedEscrow(buyerID, merchantID, time.Now().Add(24*time.Hour))

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.escrowRepo.EXPECT().GetByIDForUpdate(ctx, tx, escrow.ID).Return(escrow, nil)
	d.settingsRepo.EXPECT().Get(ctx).Return(&domain.Settings{FeeRateBps: 0}, nil)
	d.ledger.EXPECT().Transfer(ctx, tx, ports.TransferRequest{
		From:      d.custodyID,
		To:        merchantID,
		Currency:  "NHB",
		Amount:    1000,
		Kind:      domain.EntryKindRelease,
		EntityRef: &escrow.ID,
	}).Return(nil)
	d.escrowRepo.EXPECT().Update(ctx, tx, gomock.Any()).Return(nil)

	result, err := d.svc.Complete(ctx, buyerID, escrow.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EscrowStateCompleted, result.State)
}

func TestEscrowService_Complete_MerchantForbidden(t *testing.T) {
	d := setupEscrowService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	escrow := fundedEscrow(uuid.New(), uuid.New(), time.Now().Add(24*time.Hour))

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.escrowRepo.EXPECT().GetByIDForUpdate(ctx, tx, escrow.ID).Return(escrow, nil)

	result, err := d.svc.Complete(ctx, escrow.MerchantID, escrow.ID)
	assert.Nil(t, result)
	assertAppError(t, err, "ESC_003")
}

func TestEscrowService_Complete_NotFunded(t *testing.T) {
	d := setupEscrowService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	escrow := fundedEscrow(uuid.New(), uuid.New(), time.Now().Add(24*time.Hour))
	escrow.State = domain.EscrowStateCompleted

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.escrowRepo.EXPECT().GetByIDForUpdate(ctx, tx, escrow.ID).Return(escrow, nil)

	// settling a second time must fail
	result, err := d.svc.Complete(ctx, escrow.BuyerID, escrow.ID)
	assert.Nil(t, result)
	assertAppError(t, err, "ESC_004")
}

// ==================== Refund Tests ====================

func TestEscrowService_Refund_Success(t *testing.T) {
	d := setupEscrowService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	buyerID := uuid.New()
	merchantID := uuid.New()
	tx := &mockTx{}

	escrow := fundedEscrow(buyerID, merchantID, time.Now().Add(24*time.Hour))

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.escrowRepo.EXPECT().GetByIDForUpdate(ctx, tx, escrow.ID).Return(escrow, nil)
	// full amount back, no fee
	d.ledger.EXPECT().Transfer(ctx, tx, ports.TransferRequest{
		From:      d.custodyID,
		To:        buyerID,
		Currency:  "NHB",
		Amount:    1000,
		Kind:      domain.EntryKindRefund,
		EntityRef: &escrow.ID,
	}).Return(nil)
	d.escrowRepo.EXPECT().Update(ctx, tx, gomock.Any()).Return(nil)

	result, err := d.svc.Refund(ctx, merchantID, escrow.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EscrowStateRefunded, result.State)
}

func TestEscrowService_Refund_BuyerForbidden(t *testing.T) {
	d := setupEscrowService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	escrow := fundedEscrow(uuid.New(), uuid.New(), time.Now().Add(24*time.Hour))

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.escrowRepo.EXPECT().GetByIDForUpdate(ctx, tx, escrow.ID).Return(escrow, nil)

	result, err := d.svc.Refund(ctx, escrow.BuyerID, escrow.ID)
	assert.Nil(t, result)
	assertAppError(t, err, "ESC_003")
}

// ==================== Dispute Tests ====================

func TestEscrowService_Dispute_ByBuyer(t *testing.T) {
	d := setupEscrowService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	escrow := fundedEscrow(uuid.New(), uuid.New(), time.Now().Add(24*time.Hour))

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.escrowRepo.EXPECT().GetByIDForUpdate(ctx, tx, escrow.ID).Return(escrow, nil)
	d.escrowRepo.EXPECT().Update(ctx, tx, gomock.Any()).Return(nil)

	result, err := d.svc.Dispute(ctx, escrow.BuyerID, escrow.ID, "item never arrived")
	require.NoError(t, err)
	assert.Equal(t, domain.EscrowStateDisputed, result.State)
	assert.Equal(t, "item never arrived", result.DisputeReason)
}

func TestEscrowService_Dispute_ByMerchant(t *testing.T) {
	d := setupEscrowService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	escrow := fundedEscrow(uuid.New(), uuid.New(), time.Now().Add(24*time.Hour))

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.escrowRepo.EXPECT().GetByIDForUpdate(ctx, tx, escrow.ID).Return(escrow, nil)
	d.escrowRepo.EXPECT().Update(ctx, tx, gomock.Any()).Return(nil)

	result, err := d.svc.Dispute(ctx, escrow.MerchantID, escrow.ID, "chargeback abuse")
	require.NoError(t, err)
	assert.Equal(t, domain.EscrowStateDisputed, result.State)
}

func TestEscrowService_Dispute_EmptyReason(t *testing.T) {
	d := setupEscrowService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	escrow := fundedEscrow(uuid.New(), uuid.New(), time.Now().Add(24*time.Hour))

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.escrowRepo.EXPECT().GetByIDForUpdate(ctx, tx, escrow.ID).Return(escrow, nil)

	result, err := d.svc.Dispute(ctx, escrow.BuyerID, escrow.ID, "   ")
	assert.Nil(t, result)
	assertAppError(t, err, "ESC_001")
}

func TestEscrowService_Dispute_ThirdParty(t *testing.T) {
	d := setupEscrowService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	escrow := fundedEscrow(uuid.New(), uuid.New(), time.Now().Add(24*time.Hour))

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.escrowRepo.EXPECT().GetByIDForUpdate(ctx, tx, escrow.ID).Return(escrow, nil)

	result, err := d.svc.Dispute(ctx, uuid.New(), escrow.ID, "reason")
	assert.Nil(t, result)
	assertAppError(t, err, "ESC_003")
}

// ==================== Resolve Tests ====================

func TestEscrowService_Resolve_Split(t *testing.T) {
	d := setupEscrowService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	arbitratorID := uuid.New()
	tx := &mockTx{}

	escrow := fundedEscrow(uuid.New(), uuid.New(), time.Now().Add(24*time.Hour))
	escrow.State = domain.EscrowStateDisputed

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.escrowRepo.EXPECT().GetByIDForUpdate(ctx, tx, escrow.ID).Return(escrow, nil)
	d.settingsRepo.EXPECT().Get(ctx).Return(&domain.Settings{ArbitratorID: arbitratorID}, nil)
	// 30% of 1000: 300 merchant, 700 buyer, no fee on either leg
	d.ledger.EXPECT().Transfer(ctx, tx, ports.TransferRequest{
		From:      d.custodyID,
		To:        escrow.MerchantID,
		Currency:  "NHB",
		Amount:    300,
		Kind:      domain.EntryKindDisputeSplit,
		EntityRef: &escrow.ID,
	}).Return(nil)
	d.ledger.EXPECT().Transfer(ctx, tx, ports.TransferRequest{
		From:      d.custodyID,
		To:        escrow.BuyerID,
		Currency:  "NHB",
		Amount:    700,
		Kind:      domain.EntryKindDisputeSplit,
		EntityRef: &escrow.ID,
	}).Return(nil)
	d.escrowRepo.EXPECT().Update(ctx, tx, gomock.Any()).Return(nil)

	result, err := d.svc.Resolve(ctx, arbitratorID, escrow.ID, 30)
	require.NoError(t, err)
	assert.Equal(t, domain.EscrowStateResolved, result.State)
	assert.Equal(t, domain.WinnerBuyer, result.Winner)
}

func TestEscrowService_Resolve_FullToMerchant(t *testing.T) {
	d := setupEscrowService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	arbitratorID := uuid.New()
	tx := &mockTx{}

	escrow := fundedEscrow(uuid.New(), uuid.New(), time.Now().Add(24*time.Hour))
	escrow.State = domain.EscrowStateDisputed

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.escrowRepo.EXPECT().GetByIDForUpdate(ctx, tx, escrow.ID).Return(escrow, nil)
	d.settingsRepo.EXPECT().Get(ctx).Return(&domain.Settings{ArbitratorID: arbitratorID}, nil)
	// single leg, the zero buyer share writes nothing
	d.ledger.EXPECT().Transfer(ctx, tx, ports.TransferRequest{
		From:      d.custodyID,
		To:        escrow.MerchantID,
		Currency:  "NHB",
		Amount:    1000,
		Kind:      domain.EntryKindDisputeSplit,
		EntityRef: &escrow.ID,
	}).Return(nil)
	d.escrowRepo.EXPECT().Update(ctx, tx, gomock.Any()).Return(nil)

	result, err := d.svc.Resolve(ctx, arbitratorID, escrow.ID, 100)
	require.NoError(t, err)
	assert.Equal(t, domain.WinnerMerchant, result.Winner)
}

func TestEscrowService_Resolve_EvenSplitNoWinner(t *testing.T) {
	d := setupEscrowService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	arbitratorID := uuid.New()
	tx := &mockTx{}

	escrow := fundedEscrow(uuid.New(), uuid.New(), time.Now().Add(24*time.Hour))
	escrow.State = domain.EscrowStateDisputed

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.escrowRepo.EXPECT().GetByIDForUpdate(ctx, tx, escrow.ID).Return(escrow, nil)
	d.settingsRepo.EXPECT().Get(ctx).Return(&domain.Settings{ArbitratorID: arbitratorID}, nil)
	d.ledger.EXPECT().Transfer(ctx, tx, gomock.Any()).Return(nil).Times(2)
	d.escrowRepo.EXPECT().Update(ctx, tx, gomock.Any()).Return(nil)

	result, err := d.svc.Resolve(ctx, arbitratorID, escrow.ID, 50)
	require.NoError(t, err)
	assert.Equal(t, domain.WinnerNone, result.Winner)
}

func TestEscrowService_Resolve_PercentOutOfRange(t *testing.T) {
	d := setupEscrowService(t)
	defer d.ctrl.Finish()

	result, err := d.svc.Resolve(context.Background(), uuid.New(), testEntityID(0x02), 101)
	assert.Nil(t, result)
	assertAppError(t, err, "ESC_001")
}

func TestEscrowService_Resolve_NotArbitrator(t *testing.T) {
	d := setupEscrowService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	escrow := fundedEscrow(uuid.New(), uuid.New(), time.Now().Add(24*time.Hour))
	escrow.State = domain.EscrowStateDisputed

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.escrowRepo.EXPECT().GetByIDForUpdate(ctx, tx, escrow.ID).Return(escrow, nil)
	d.settingsRepo.EXPECT().Get(ctx).Return(&domain.Settings{ArbitratorID: uuid.New()}, nil)

	// even the buyer cannot resolve
	result, err := d.svc.Resolve(ctx, escrow.BuyerID, escrow.ID, 50)
	assert.Nil(t, result)
	assertAppError(t, err, "ESC_003")
}

func TestEscrowService_Resolve_NotDisputed(t *testing.T) {
	d := setupEscrowService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	arbitratorID := uuid.New()
	tx := &mockTx{}
	escrow := fundedEscrow(uuid.New(), uuid.New(), time.Now().Add(24*time.Hour))

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.escrowRepo.EXPECT().GetByIDForUpdate(ctx, tx, escrow.ID).Return(escrow, nil)
	d.settingsRepo.EXPECT().Get(ctx).Return(&domain.Settings{ArbitratorID: arbitratorID}, nil)

	result, err := d.svc.Resolve(ctx, arbitratorID, escrow.ID, 50)
	assert.Nil(t, result)
	assertAppError(t, err, "ESC_004")
}

// ==================== ClaimExpired Tests ====================

func TestEscrowService_ClaimExpired_Success(t *testing.T) {
	d := setupEscrowService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	deadline := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	escrow := fundedEscrow(uuid.New(), uuid.New(), deadline)

	// day 15, well past a day-10 deadline
	d.svc.now = func() time.Time { return deadline.Add(5 * 24 * time.Hour) }

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.escrowRepo.EXPECT().GetByIDForUpdate(ctx, tx, escrow.ID).Return(escrow, nil)
	d.ledger.EXPECT().Transfer(ctx, tx, ports.TransferRequest{
		From:      d.custodyID,
		To:        escrow.BuyerID,
		Currency:  "NHB",
		Amount:    1000,
		Kind:      domain.EntryKindRefund,
		EntityRef: &escrow.ID,
	}).Return(nil)
	d.escrowRepo.EXPECT().Update(ctx, tx, gomock.Any()).Return(nil)

	result, err := d.svc.ClaimExpired(ctx, escrow.BuyerID, escrow.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EscrowStateRefunded, result.State)
}

func TestEscrowService_ClaimExpired_BeforeDeadline(t *testing.T) {
	d := setupEscrowService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	deadline := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	escrow := fundedEscrow(uuid.New(), uuid.New(), deadline)

	// day 5 of a day-10 deadline
	d.svc.now = func() time.Time { return deadline.Add(-5 * 24 * time.Hour) }

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.escrowRepo.EXPECT().GetByIDForUpdate(ctx, tx, escrow.ID).Return(escrow, nil)

	result, err := d.svc.ClaimExpired(ctx, escrow.BuyerID, escrow.ID)
	assert.Nil(t, result)
	assertAppError(t, err, "ESC_005")
}

func TestEscrowService_ClaimExpired_AtExactDeadline(t *testing.T) {
	d := setupEscrowService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	deadline := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	escrow := fundedEscrow(uuid.New(), uuid.New(), deadline)

	d.svc.now = func() time.Time { return deadline }

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.escrowRepo.EXPECT().GetByIDForUpdate(ctx, tx, escrow.ID).Return(escrow, nil)

	// expiry requires the deadline to have strictly passed
	result, err := d.svc.ClaimExpired(ctx, escrow.BuyerID, escrow.ID)
	assert.Nil(t, result)
	assertAppError(t, err, "ESC_005")
}

func TestEscrowService_ClaimExpired_DisputedBlocksClaim(t *testing.T) {
	d := setupEscrowService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	escrow := fundedEscrow(uuid.New(), uuid.New(), time.Now().Add(-24*time.Hour))
	escrow.State = domain.EscrowStateDisputed

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.escrowRepo.EXPECT().GetByIDForUpdate(ctx, tx, escrow.ID).Return(escrow, nil)

	// arbitration must finish even when the deadline has passed
	result, err := d.svc.ClaimExpired(ctx, escrow.BuyerID, escrow.ID)
	assert.Nil(t, result)
	assertAppError(t, err, "ESC_004")
}

func TestEscrowService_ClaimExpired_MerchantForbidden(t *testing.T) {
	d := setupEscrowService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	escrow := fundedEscrow(uuid.New(), uuid.New(), time.Now().Add(-24*time.Hour))

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.escrowRepo.EXPECT().GetByIDForUpdate(ctx, tx, escrow.ID).Return(escrow, nil)

	result, err := d.svc.ClaimExpired(ctx, escrow.MerchantID, escrow.ID)
	assert.Nil(t, result)
	assertAppError(t, err, "ESC_003")
}

// ==================== Read Tests ====================

func TestEscrowService_Get_NotFound(t *testing.T) {
	d := setupEscrowService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	id := testEntityID(0x03)
	d.escrowRepo.EXPECT().GetByID(ctx, id).Return(nil, nil)

	result, err := d.svc.Get(ctx, id)
	assert.Nil(t, result)
	assertAppError(t, err, "ESC_002")
}

func TestEscrowService_Status(t *testing.T) {
	d := setupEscrowService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	escrow := fundedEscrow(uuid.New(), uuid.New(), time.Now().Add(24*time.Hour))
	d.escrowRepo.EXPECT().GetByID(ctx, escrow.ID).Return(escrow, nil)

	state, err := d.svc.Status(ctx, escrow.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EscrowStateFunded, state)
}

// ==================== Helper ====================

func assertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, expectedCode, appErr.Code)
}
