package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/membership-loyalty-core/internal/config"
	"github.com/membership-loyalty-core/internal/domain/account"
	"github.com/membership-loyalty-core/internal/domain/ledger"
)

// LedgerServiceImpl implements the LedgerService interface
type LedgerServiceImpl struct {
	db          TxExecutor
	retryCfg    *config.RetryConfig
	accountRepo account.Repository
	ledgerRepo  ledger.Repository
	logger      *slog.Logger
}

// NewLedgerService creates a new ledger service
func NewLedgerService(logger *slog.Logger, db TxExecutor, retryCfg *config.RetryConfig, accountRepo account.Repository, ledgerRepo ledger.Repository) LedgerService {
	return &LedgerServiceImpl{
		db:          db,
		retryCfg:    retryCfg,
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		logger:      logger,
	}
}

// Debit spends points. The negative entry and the balance decrement commit
// together or not at all; the account row lock serializes concurrent movements
// for the same user. An insufficient balance aborts before anything is written.
func (s *LedgerServiceImpl) Debit(ctx context.Context, userID uuid.UUID, amount int64, entryType ledger.EntryType, sourceID, description string) (*DebitResult, error) {
	if amount <= 0 {
		return nil, account.ErrInvalidAmount
	}
	if !entryType.Valid() {
		return nil, fmt.Errorf("invalid ledger entry type: %s", entryType)
	}

	var result DebitResult
	err := s.db.ExecuteTxWithRetry(ctx, s.retryCfg, func(tx pgx.Tx) error {
		accounts := s.accountRepo.WithTx(tx)
		entries := s.ledgerRepo.WithTx(tx)

		acc, err := accounts.LockForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		entry := ledger.NewEntry(userID, -amount, entryType, sourceID, description)
		inserted, err := entries.Insert(ctx, entry)
		if err != nil {
			return err
		}
		if !inserted {
			// Same (type, source_id) already recorded: an idempotent replay.
			// The balance was adjusted when the original committed.
			prior, err := entries.GetBySource(ctx, entryType, sourceID)
			if err != nil {
				return err
			}
			result = DebitResult{Entry: prior, Replayed: true}
			return nil
		}

		if err := acc.Debit(amount); err != nil {
			return err
		}
		if err := accounts.Update(ctx, acc); err != nil {
			return err
		}

		result = DebitResult{Entry: entry}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Points debited",
		"user_id", userID.String(),
		"amount", amount,
		"type", string(entryType),
		"source_id", sourceID,
		"replayed", result.Replayed,
	)
	return &result, nil
}

// ListEntries retrieves a newest-first page of the user's ledger along with
// the total count inside the optional time range
func (s *LedgerServiceImpl) ListEntries(ctx context.Context, userID uuid.UUID, tr ledger.TimeRange, page, perPage int) ([]*ledger.Entry, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	offset := (page - 1) * perPage

	entries, err := s.ledgerRepo.ListByUser(ctx, userID, tr, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.ledgerRepo.CountByUser(ctx, userID, tr)
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
