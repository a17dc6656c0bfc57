package service

import (
	"context"
	"testing"

	"paylock-gateway/internal/core/domain"
	"paylock-gateway/internal/core/ports"
	"paylock-gateway/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type ledgerTestDeps struct {
	svc         *LedgerServiceImpl
	balanceRepo *mocks.MockBalanceRepository
	entryRepo   *mocks.MockLedgerEntryRepository
	transactor  *mocks.MockDBTransactor
	ctrl        *gomock.Controller
}

func setupLedgerService(t *testing.T) *ledgerTestDeps {
	ctrl := gomock.NewController(t)
	d := &ledgerTestDeps{
		balanceRepo: mocks.NewMockBalanceRepository(ctrl),
		entryRepo:   mocks.NewMockLedgerEntryRepository(ctrl),
		transactor:  mocks.NewMockDBTransactor(ctrl),
		ctrl:        ctrl,
	}
	d.svc = NewLedgerService(d.balanceRepo, d.entryRepo, d.transactor, zerolog.Nop())
	return d
}

func TestLedgerService_Transfer_Success(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	from := uuid.New()
	to := uuid.New()
	tx := &mockTx{}

	d.balanceRepo.EXPECT().GetForUpdate(ctx, tx, from, "NHB").Return(&domain.Balance{
		AccountID: from, Currency: "NHB", Available: 5000,
	}, nil)
	d.balanceRepo.EXPECT().GetForUpdate(ctx, tx, to, "NHB").Return(&domain.Balance{
		AccountID: to, Currency: "NHB", Available: 0,
	}, nil)
	d.balanceRepo.EXPECT().Add(ctx, tx, from, "NHB", int64(-3000)).Return(nil)
	d.balanceRepo.EXPECT().Add(ctx, tx, to, "NHB", int64(3000)).Return(nil)
	d.entryRepo.EXPECT().Create(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ any, entry *domain.LedgerEntry) error {
			assert.Equal(t, from, entry.FromAccount)
			assert.Equal(t, to, entry.ToAccount)
			assert.Equal(t, int64(3000), entry.Amount)
			assert.Equal(t, domain.EntryKindEscrowFund, entry.Kind)
			return nil
		})

	err := d.svc.Transfer(ctx, tx, ports.TransferRequest{
		From:     from,
		To:       to,
		Currency: "NHB",
		Amount:   3000,
		Kind:     domain.EntryKindEscrowFund,
	})
	require.NoError(t, err)
}

func TestLedgerService_Transfer_InsufficientFunds(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	from := uuid.New()
	to := uuid.New()
	tx := &mockTx{}

	d.balanceRepo.EXPECT().GetForUpdate(ctx, tx, from, "NHB").Return(&domain.Balance{
		AccountID: from, Currency: "NHB", Available: 100,
	}, nil)
	d.balanceRepo.EXPECT().GetForUpdate(ctx, tx, to, "NHB").Return(nil, nil)

	err := d.svc.Transfer(ctx, tx, ports.TransferRequest{
		From:     from,
		To:       to,
		Currency: "NHB",
		Amount:   3000,
		Kind:     domain.EntryKindEscrowFund,
	})
	assertAppError(t, err, "ESC_006")
}

func TestLedgerService_Transfer_MissingSourceRow(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	from := uuid.New()
	to := uuid.New()
	tx := &mockTx{}

	// no balance row at all reads as zero
	d.balanceRepo.EXPECT().GetForUpdate(ctx, tx, from, "NHB").Return(nil, nil)
	d.balanceRepo.EXPECT().GetForUpdate(ctx, tx, to, "NHB").Return(nil, nil)

	err := d.svc.Transfer(ctx, tx, ports.TransferRequest{
		From:     from,
		To:       to,
		Currency: "NHB",
		Amount:   1,
		Kind:     domain.EntryKindLinkPayment,
	})
	assertAppError(t, err, "ESC_006")
}

func TestLedgerService_Transfer_InvalidAmount(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	err := d.svc.Transfer(context.Background(), &mockTx{}, ports.TransferRequest{
		From:     uuid.New(),
		To:       uuid.New(),
		Currency: "NHB",
		Amount:   0,
	})
	assertAppError(t, err, "ESC_001")
}

func TestLedgerService_Transfer_SelfTransfer(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	id := uuid.New()
	err := d.svc.Transfer(context.Background(), &mockTx{}, ports.TransferRequest{
		From:     id,
		To:       id,
		Currency: "NHB",
		Amount:   100,
	})
	assertAppError(t, err, "ESC_001")
}

func TestLedgerService_Deposit_Success(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	accountID := uuid.New()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.balanceRepo.EXPECT().Add(ctx, tx, accountID, "NHB", int64(10000)).Return(nil)
	d.entryRepo.EXPECT().Create(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ any, entry *domain.LedgerEntry) error {
			assert.Equal(t, uuid.Nil, entry.FromAccount)
			assert.Equal(t, domain.EntryKindDeposit, entry.Kind)
			return nil
		})

	err := d.svc.Deposit(ctx, accountID, "NHB", 10000)
	require.NoError(t, err)
}

func TestLedgerService_Deposit_InvalidAmount(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	err := d.svc.Deposit(context.Background(), uuid.New(), "NHB", -1)
	assertAppError(t, err, "ESC_001")
}

func TestLedgerService_BalanceOf_MissingRowIsZero(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	accountID := uuid.New()
	d.balanceRepo.EXPECT().Get(ctx, accountID, "NHB").Return(nil, nil)

	bal, err := d.svc.BalanceOf(ctx, accountID, "NHB")
	require.NoError(t, err)
	assert.Equal(t, int64(0), bal)
}

func TestLockOrder_Deterministic(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	assert.Equal(t, lockOrder(a, b), lockOrder(b, a))
}
