package components

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/membership-loyalty-core/internal/domain/outbox"
	"github.com/membership-loyalty-core/internal/domain/shared"
	"github.com/membership-loyalty-core/internal/order_processor/service"
)

type OutboxManagerImpl struct {
	outboxRepo outbox.Repository
	logger     *slog.Logger
}

func NewOutboxManager(outboxRepo outbox.Repository, logger *slog.Logger) service.OutboxManager {
	return &OutboxManagerImpl{
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

// CreateOutboxEntry stages the accrual archive record in the same transaction
// as the accrual itself, so the archive never sees an order the ledger missed
func (m *OutboxManagerImpl) CreateOutboxEntry(ctx context.Context, tx pgx.Tx, event *shared.OrderPaidEvent, outcome *service.AccrualOutcome) error {
	logger := m.logger
	if event.CorrelationID != "" {
		logger = m.logger.With("correlation_id", event.CorrelationID)
	}

	outboxRepoTx := m.outboxRepo.WithTx(tx)

	now := time.Now().UTC()
	accrualEvent := &outbox.AccrualEvent{
		OrderID:       event.OrderID,
		UserID:        event.UserID,
		EntryID:       outcome.Entry.ID,
		PointsEarned:  outcome.PointsEarned,
		GrowthDelta:   outcome.GrowthDelta,
		BalanceAfter:  outcome.Account.CurrentPoints,
		GrowthAfter:   outcome.Account.TotalGrowthValue,
		TierBefore:    outcome.TierBefore,
		TierAfter:     outcome.Account.CurrentTierID,
		CorrelationID: event.CorrelationID,
		ProcessedAt:   &now,
	}

	outboxMessage, err := outbox.NewMessage(accrualEvent)
	if err != nil {
		logger.Error("Failed to create outbox message payload",
			"order_id", event.OrderID,
			"error", err,
		)
		return fmt.Errorf("failed to create outbox message payload for order %s: %w", event.OrderID, err)
	}

	if err = outboxRepoTx.Create(ctx, outboxMessage); err != nil {
		logger.Error("Failed to create outbox message",
			"order_id", event.OrderID,
			"user_id", event.UserID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to create outbox message for order %s: %w", event.OrderID, err)
	}
	logger.Info("Outbox message created",
		"order_id", event.OrderID,
		"outbox_id", outboxMessage.ID,
	)

	return nil
}
