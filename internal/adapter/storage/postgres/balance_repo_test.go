package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceRepo_Get(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBalanceRepo(mock)
	accountID := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM balances WHERE account_id").
		WithArgs(accountID, "NHB").
		WillReturnRows(pgxmock.NewRows([]string{"account_id", "currency", "available", "updated_at"}).
			AddRow(accountID, "NHB", int64(5000), time.Now()))

	balance, err := repo.Get(context.Background(), accountID, "NHB")
	require.NoError(t, err)
	require.NotNil(t, balance)
	assert.Equal(t, int64(5000), balance.Available)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBalanceRepo_Get_MissingRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBalanceRepo(mock)
	accountID := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM balances WHERE account_id").
		WithArgs(accountID, "NHB").
		WillReturnRows(pgxmock.NewRows([]string{"account_id", "currency", "available", "updated_at"}))

	balance, err := repo.Get(context.Background(), accountID, "NHB")
	require.NoError(t, err)
	assert.Nil(t, balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBalanceRepo_GetForUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBalanceRepo(mock)
	accountID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM balances WHERE account_id .+ FOR UPDATE").
		WithArgs(accountID, "NHB").
		WillReturnRows(pgxmock.NewRows([]string{"account_id", "currency", "available", "updated_at"}).
			AddRow(accountID, "NHB", int64(2500), time.Now()))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	balance, err := repo.GetForUpdate(context.Background(), tx, accountID, "NHB")
	require.NoError(t, err)
	require.NotNil(t, balance)
	assert.Equal(t, int64(2500), balance.Available)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBalanceRepo_Add_Upsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBalanceRepo(mock)
	accountID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO balances").
		WithArgs(accountID, "NHB", int64(-1000)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Add(context.Background(), tx, accountID, "NHB", -1000)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
