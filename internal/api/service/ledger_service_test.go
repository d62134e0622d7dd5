package service

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/membership-loyalty-core/internal/config"
	"github.com/membership-loyalty-core/internal/domain/account"
	"github.com/membership-loyalty-core/internal/domain/ledger"
)

func newLedgerServiceForTest(accountRepo account.Repository, ledgerRepo ledger.Repository) LedgerService {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	return NewLedgerService(logger, fakeTxExecutor{}, &config.RetryConfig{MaxAttempts: 3}, accountRepo, ledgerRepo)
}

func TestLedgerServiceImpl_Debit(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockAccounts := new(MockAccountRepository)
		mockEntries := new(MockLedgerRepository)
		service := newLedgerServiceForTest(mockAccounts, mockEntries)

		acc := account.NewAccount(userID)
		acc.CurrentPoints = 500

		mockAccounts.On("WithTx", mock.Anything).Return(mockAccounts)
		mockEntries.On("WithTx", mock.Anything).Return(mockEntries)
		mockAccounts.On("LockForUpdate", ctx, userID).Return(acc, nil).Once()
		mockEntries.On("Insert", ctx, mock.MatchedBy(func(entry *ledger.Entry) bool {
			return entry.Amount == -200 && entry.Type == ledger.EntryTypeExchange && entry.SourceID == "redeem-1"
		})).Return(true, nil).Once()
		mockAccounts.On("Update", ctx, acc).Return(nil).Once()

		result, err := service.Debit(ctx, userID, 200, ledger.EntryTypeExchange, "redeem-1", "gift card")

		require.NoError(t, err)
		assert.False(t, result.Replayed)
		assert.Equal(t, int64(-200), result.Entry.Amount)
		assert.Equal(t, int64(300), acc.CurrentPoints)
		mockAccounts.AssertExpectations(t)
		mockEntries.AssertExpectations(t)
	})

	t.Run("ReplaySkipsMutation", func(t *testing.T) {
		mockAccounts := new(MockAccountRepository)
		mockEntries := new(MockLedgerRepository)
		service := newLedgerServiceForTest(mockAccounts, mockEntries)

		acc := account.NewAccount(userID)
		acc.CurrentPoints = 500
		prior := ledger.NewEntry(userID, -200, ledger.EntryTypeExchange, "redeem-1", "gift card")

		mockAccounts.On("WithTx", mock.Anything).Return(mockAccounts)
		mockEntries.On("WithTx", mock.Anything).Return(mockEntries)
		mockAccounts.On("LockForUpdate", ctx, userID).Return(acc, nil).Once()
		mockEntries.On("Insert", ctx, mock.AnythingOfType("*ledger.Entry")).Return(false, nil).Once()
		mockEntries.On("GetBySource", ctx, ledger.EntryTypeExchange, "redeem-1").Return(prior, nil).Once()

		result, err := service.Debit(ctx, userID, 200, ledger.EntryTypeExchange, "redeem-1", "gift card")

		require.NoError(t, err)
		assert.True(t, result.Replayed)
		assert.Equal(t, prior, result.Entry)
		assert.Equal(t, int64(500), acc.CurrentPoints, "balance must not move on replay")
		mockAccounts.AssertNotCalled(t, "Update")
		mockAccounts.AssertExpectations(t)
		mockEntries.AssertExpectations(t)
	})

	t.Run("InsufficientPoints", func(t *testing.T) {
		mockAccounts := new(MockAccountRepository)
		mockEntries := new(MockLedgerRepository)
		service := newLedgerServiceForTest(mockAccounts, mockEntries)

		acc := account.NewAccount(userID)
		acc.CurrentPoints = 100

		mockAccounts.On("WithTx", mock.Anything).Return(mockAccounts)
		mockEntries.On("WithTx", mock.Anything).Return(mockEntries)
		mockAccounts.On("LockForUpdate", ctx, userID).Return(acc, nil).Once()
		mockEntries.On("Insert", ctx, mock.AnythingOfType("*ledger.Entry")).Return(true, nil).Once()

		result, err := service.Debit(ctx, userID, 200, ledger.EntryTypeExchange, "redeem-1", "")

		assert.Nil(t, result)
		assert.ErrorIs(t, err, account.ErrInsufficientPoints)
		assert.Equal(t, int64(100), acc.CurrentPoints)
		mockAccounts.AssertNotCalled(t, "Update")
	})

	t.Run("NonPositiveAmount", func(t *testing.T) {
		mockAccounts := new(MockAccountRepository)
		mockEntries := new(MockLedgerRepository)
		service := newLedgerServiceForTest(mockAccounts, mockEntries)

		result, err := service.Debit(ctx, userID, 0, ledger.EntryTypeExchange, "redeem-1", "")

		assert.Nil(t, result)
		assert.ErrorIs(t, err, account.ErrInvalidAmount)
		mockAccounts.AssertNotCalled(t, "LockForUpdate")
	})

	t.Run("InvalidEntryType", func(t *testing.T) {
		mockAccounts := new(MockAccountRepository)
		mockEntries := new(MockLedgerRepository)
		service := newLedgerServiceForTest(mockAccounts, mockEntries)

		result, err := service.Debit(ctx, userID, 100, ledger.EntryType("chargeback"), "redeem-1", "")

		assert.Nil(t, result)
		assert.Error(t, err)
		mockAccounts.AssertNotCalled(t, "LockForUpdate")
	})

	t.Run("AccountNotFound", func(t *testing.T) {
		mockAccounts := new(MockAccountRepository)
		mockEntries := new(MockLedgerRepository)
		service := newLedgerServiceForTest(mockAccounts, mockEntries)

		mockAccounts.On("WithTx", mock.Anything).Return(mockAccounts)
		mockEntries.On("WithTx", mock.Anything).Return(mockEntries)
		mockAccounts.On("LockForUpdate", ctx, userID).Return(nil, account.ErrAccountNotFound{UserID: userID}).Once()

		result, err := service.Debit(ctx, userID, 100, ledger.EntryTypeExchange, "redeem-1", "")

		assert.Nil(t, result)
		assert.ErrorIs(t, err, account.ErrAccountNotFound{})
		mockEntries.AssertNotCalled(t, "Insert")
	})
}

func TestLedgerServiceImpl_ListEntries(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockAccounts := new(MockAccountRepository)
		mockEntries := new(MockLedgerRepository)
		service := newLedgerServiceForTest(mockAccounts, mockEntries)

		entries := []*ledger.Entry{
			ledger.NewEntry(userID, 150, ledger.EntryTypePurchase, "order-1", ""),
		}
		mockEntries.On("ListByUser", ctx, userID, ledger.TimeRange{}, 25, 50).Return(entries, nil).Once()
		mockEntries.On("CountByUser", ctx, userID, ledger.TimeRange{}).Return(int64(51), nil).Once()

		result, total, err := service.ListEntries(ctx, userID, ledger.TimeRange{}, 3, 25)

		require.NoError(t, err)
		assert.Len(t, result, 1)
		assert.Equal(t, int64(51), total)
		mockEntries.AssertExpectations(t)
	})

	t.Run("DefaultsPagination", func(t *testing.T) {
		mockAccounts := new(MockAccountRepository)
		mockEntries := new(MockLedgerRepository)
		service := newLedgerServiceForTest(mockAccounts, mockEntries)

		mockEntries.On("ListByUser", ctx, userID, ledger.TimeRange{}, 20, 0).Return([]*ledger.Entry{}, nil).Once()
		mockEntries.On("CountByUser", ctx, userID, ledger.TimeRange{}).Return(int64(0), nil).Once()

		_, _, err := service.ListEntries(ctx, userID, ledger.TimeRange{}, 0, 0)

		require.NoError(t, err)
		mockEntries.AssertExpectations(t)
	})
}
