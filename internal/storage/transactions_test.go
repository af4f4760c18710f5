package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nisioka/self-money/internal/common"
	"github.com/nisioka/self-money/internal/model"
	"github.com/nisioka/self-money/internal/service"
	"github.com/nisioka/self-money/internal/testutil"
)

func newTestTransaction(accountID, categoryID int64) *model.Transaction {
	return &model.Transaction{
		Date:        time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		Description: "スーパーマーケット",
		Amount:      -3500,
		AccountID:   accountID,
		CategoryID:  categoryID,
		ExternalID:  "楽天銀行-2026-01-15--3500-スーパーマーケット-0",
	}
}

func TestCreateTransaction(t *testing.T) {
	db := testutil.SetupTestDB(t, "食費")
	account := db.MustCreateAccount("楽天銀行", model.AccountTypeBank, 0, nil)

	created, err := db.Storage.CreateTransaction(context.Background(),
		newTestTransaction(account.ID, db.MustCategoryID("食費")))
	require.NoError(t, err)

	assert.NotZero(t, created.ID)
	assert.Equal(t, int64(-3500), created.Amount)
	assert.False(t, created.IsManual)
}

func TestCreateTransactionDuplicateExternalID(t *testing.T) {
	db := testutil.SetupTestDB(t, "食費")
	account := db.MustCreateAccount("楽天銀行", model.AccountTypeBank, 0, nil)
	ctx := context.Background()
	categoryID := db.MustCategoryID("食費")

	_, err := db.Storage.CreateTransaction(ctx, newTestTransaction(account.ID, categoryID))
	require.NoError(t, err)

	_, err = db.Storage.CreateTransaction(ctx, newTestTransaction(account.ID, categoryID))
	assert.ErrorIs(t, err, common.ErrDuplicateExternalID)
}

func TestGetTransactionByExternalID(t *testing.T) {
	db := testutil.SetupTestDB(t, "食費")
	account := db.MustCreateAccount("楽天銀行", model.AccountTypeBank, 0, nil)
	ctx := context.Background()

	found, err := db.Storage.GetTransactionByExternalID(ctx, "missing-id")
	require.NoError(t, err)
	assert.Nil(t, found, "unknown external id returns nil, not an error")

	txn := newTestTransaction(account.ID, db.MustCategoryID("食費"))
	created, err := db.Storage.CreateTransaction(ctx, txn)
	require.NoError(t, err)

	found, err = db.Storage.GetTransactionByExternalID(ctx, txn.ExternalID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)
}

func TestGetTransactionsByMonth(t *testing.T) {
	db := testutil.SetupTestDB(t, "食費")
	account := db.MustCreateAccount("楽天銀行", model.AccountTypeBank, 0, nil)
	ctx := context.Background()
	categoryID := db.MustCategoryID("食費")

	dates := []time.Time{
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	for i, date := range dates {
		_, err := db.Storage.CreateTransaction(ctx, &model.Transaction{
			Date:        date,
			Description: "購入",
			Amount:      -1000,
			AccountID:   account.ID,
			CategoryID:  categoryID,
			IsManual:    true,
		})
		require.NoError(t, err, "transaction %d", i)
	}

	january, err := db.Storage.GetTransactionsByMonth(ctx, 2026, time.January, nil)
	require.NoError(t, err)
	assert.Len(t, january, 2)

	february, err := db.Storage.GetTransactionsByMonth(ctx, 2026, time.February, nil)
	require.NoError(t, err)
	assert.Len(t, february, 1)
}

func TestGetTransactionsByMonthFiltersAccount(t *testing.T) {
	db := testutil.SetupTestDB(t, "食費")
	first := db.MustCreateAccount("楽天銀行", model.AccountTypeBank, 0, nil)
	second := db.MustCreateAccount("三井住友銀行", model.AccountTypeBank, 0, nil)
	ctx := context.Background()
	categoryID := db.MustCategoryID("食費")

	for _, accountID := range []int64{first.ID, second.ID} {
		_, err := db.Storage.CreateTransaction(ctx, &model.Transaction{
			Date:        time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			Description: "購入",
			Amount:      -500,
			AccountID:   accountID,
			CategoryID:  categoryID,
			IsManual:    true,
		})
		require.NoError(t, err)
	}

	filtered, err := db.Storage.GetTransactionsByMonth(ctx, 2026, time.March, &first.ID)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, first.ID, filtered[0].AccountID)
}

func TestUpdateTransaction(t *testing.T) {
	db := testutil.SetupTestDB(t, "食費", "外食")
	account := db.MustCreateAccount("楽天銀行", model.AccountTypeBank, 0, nil)
	ctx := context.Background()

	created, err := db.Storage.CreateTransaction(ctx, newTestTransaction(account.ID, db.MustCategoryID("食費")))
	require.NoError(t, err)

	newCategory := db.MustCategoryID("外食")
	memo := "ランチ"
	updated, err := db.Storage.UpdateTransaction(ctx, created.ID, service.TransactionUpdate{
		CategoryID: &newCategory,
		Memo:       &memo,
	})
	require.NoError(t, err)

	assert.Equal(t, newCategory, updated.CategoryID)
	assert.Equal(t, "ランチ", updated.Memo)
	assert.Equal(t, created.Amount, updated.Amount, "amount untouched")
}

func TestDeleteTransaction(t *testing.T) {
	db := testutil.SetupTestDB(t, "食費")
	account := db.MustCreateAccount("楽天銀行", model.AccountTypeBank, 0, nil)
	ctx := context.Background()

	created, err := db.Storage.CreateTransaction(ctx, newTestTransaction(account.ID, db.MustCategoryID("食費")))
	require.NoError(t, err)

	require.NoError(t, db.Storage.DeleteTransaction(ctx, created.ID))

	_, err = db.Storage.GetTransaction(ctx, created.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
