package service

import (
	"context"
	"log/slog"

	"github.com/membership-loyalty-core/internal/domain/shared"
	"github.com/membership-loyalty-core/internal/platform/messaging/producers"
)

// EventServiceImpl implements the EventService interface
type EventServiceImpl struct {
	producer producers.MessagePublisher
	logger   *slog.Logger
}

// NewEventService creates a new event service
func NewEventService(logger *slog.Logger, producer producers.MessagePublisher) EventService {
	return &EventServiceImpl{
		producer: producer,
		logger:   logger,
	}
}

// PublishOrderPaid validates the event and publishes it keyed by order id.
// The processor owns the accrual; redeliveries collapse on the ledger's
// (type, source_id) barrier, so publishing twice is harmless.
func (s *EventServiceImpl) PublishOrderPaid(ctx context.Context, event *shared.OrderPaidEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}

	if err := s.producer.Publish(ctx, event.OrderID, event); err != nil {
		s.logger.Error("Failed to publish order paid event",
			"order_id", event.OrderID,
			"user_id", event.UserID.String(),
			"error", err,
		)
		return err
	}

	s.logger.Info("Order paid event published",
		"order_id", event.OrderID,
		"user_id", event.UserID.String(),
		"pay_amount", event.PayAmount.String(),
	)
	return nil
}
