package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/membership-loyalty-core/internal/domain/ledger"
	"github.com/membership-loyalty-core/internal/domain/shared"
	"github.com/membership-loyalty-core/internal/order_processor/service"
)

type EventValidatorImpl struct {
	ledgerRepo ledger.Repository
	logger     *slog.Logger
}

func NewEventValidator(ledgerRepo ledger.Repository, logger *slog.Logger) service.EventValidator {
	return &EventValidatorImpl{
		ledgerRepo: ledgerRepo,
		logger:     logger,
	}
}

// Validate checks order-paid event validity
func (v *EventValidatorImpl) Validate(ctx context.Context, event *shared.OrderPaidEvent) error {
	logger := v.logger
	if event.CorrelationID != "" {
		logger = v.logger.With("correlation_id", event.CorrelationID)
	}

	if err := event.Validate(); err != nil {
		logger.Error("Malformed order paid event", "order_id", event.OrderID, "error", err)
		return err
	}

	return nil
}

// CheckIdempotency checks if the order was already credited. The ledger keeps
// one purchase entry per order id, so a hit means a redelivered event.
func (v *EventValidatorImpl) CheckIdempotency(ctx context.Context, event *shared.OrderPaidEvent) (bool, error) {
	logger := v.logger
	if event.CorrelationID != "" {
		logger = v.logger.With("correlation_id", event.CorrelationID)
	}

	existingEntry, err := v.ledgerRepo.GetBySource(ctx, ledger.EntryTypePurchase, event.OrderID)
	if err != nil {
		if errors.Is(err, ledger.ErrEntryNotFound{}) {
			return false, nil // Not yet credited, continue processing
		}
		logger.Error("Failed to check ledger for idempotency", "order_id", event.OrderID, "error", err)
		return false, fmt.Errorf("idempotency check failed for order %s: %w", event.OrderID, err)
	}

	logger.Info("Order already credited (idempotency)", "order_id", event.OrderID, "entry_id", existingEntry.ID.String())
	return true, nil // Skip processing
}
