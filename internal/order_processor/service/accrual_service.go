package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/membership-loyalty-core/internal/domain/shared"
	"github.com/membership-loyalty-core/internal/platform/persistence"
)

type AccrualServiceImpl struct {
	pgDB          *persistence.PostgresDB
	validator     EventValidator
	accrualMgr    AccrualManager
	outboxManager OutboxManager
	logger        *slog.Logger
}

func NewAccrualService(
	pgDB *persistence.PostgresDB,
	validator EventValidator,
	accrualMgr AccrualManager,
	outboxManager OutboxManager,
	logger *slog.Logger,
) AccrualService {
	return &AccrualServiceImpl{
		pgDB:          pgDB,
		validator:     validator,
		accrualMgr:    accrualMgr,
		outboxManager: outboxManager,
		logger:        logger,
	}
}

// ProcessOrderPaid handles the core logic for crediting one paid order.
func (s *AccrualServiceImpl) ProcessOrderPaid(ctx context.Context, event *shared.OrderPaidEvent) error {
	logger := s.logger
	if event.CorrelationID != "" {
		logger = s.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Processing order paid event", "order_id", event.OrderID, "user_id", event.UserID.String())

	// 1. Validate the event
	if err := s.validator.Validate(ctx, event); err != nil {
		logger.Error("Order event validation failed", "order_id", event.OrderID, "error", err)
		return Permanent("order event validation failed", err)
	}

	// 2. Check idempotency before opening a transaction. Redelivered events
	// short-circuit here; a race slipping past is still caught by the ledger
	// insert inside the transaction.
	skip, err := s.validator.CheckIdempotency(ctx, event)
	if err != nil {
		return err // Let Kafka retry
	}
	if skip {
		logger.Info("Order already credited, skipping", "order_id", event.OrderID)
		return nil
	}

	// 3. Begin database transaction
	var tx pgx.Tx
	tx, err = s.pgDB.Pool().Begin(ctx)
	if err != nil {
		logger.Error("Failed to begin database transaction", "order_id", event.OrderID, "error", err)
		return fmt.Errorf("failed to begin DB transaction for order %s: %w", event.OrderID, err)
	}
	defer func() {
		if p := recover(); p != nil {
			logger.Error("Panic recovered, rolling back transaction", "panic", p, "order_id", event.OrderID)
			_ = tx.Rollback(ctx)
			panic(p) // Re-panic
		} else if err != nil {
			logger.Error("Error occurred, rolling back transaction", "error", err, "order_id", event.OrderID)
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				logger.Error("Failed to rollback transaction after error", "rollback_error", rbErr, "original_error", err, "order_id", event.OrderID)
			}
		}
	}()

	// 4. Lock the account and apply the accrual
	outcome, err := s.accrualMgr.AccrueInTx(ctx, tx, event)
	if err != nil {
		var permErr *PermanentError
		if errors.As(err, &permErr) {
			return err // DLQ, never retried
		}
		return err // Propagate for retry
	}

	if outcome.Replayed {
		// The original transaction already wrote the outbox record too.
		_ = tx.Rollback(ctx)
		logger.Info("Order already credited, nothing to apply", "order_id", event.OrderID)
		return nil
	}

	// 5. Stage the archive record in the same transaction
	if err = s.outboxManager.CreateOutboxEntry(ctx, tx, event, outcome); err != nil {
		return err // Let the defer handle rollback
	}

	// 6. Commit transaction
	if err = tx.Commit(ctx); err != nil {
		logger.Error("Failed to commit database transaction",
			"order_id", event.OrderID,
			"user_id", event.UserID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to commit DB transaction for order %s: %w", event.OrderID, err)
	}

	logger.Info("Accrual committed",
		"order_id", event.OrderID,
		"user_id", event.UserID.String(),
		"points_earned", outcome.PointsEarned,
		"balance_after", outcome.Account.CurrentPoints,
	)
	return nil
}
