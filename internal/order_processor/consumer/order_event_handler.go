package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/membership-loyalty-core/internal/domain/shared"
	"github.com/membership-loyalty-core/internal/order_processor/service"
	"github.com/membership-loyalty-core/internal/platform/messaging/producers"
)

// OrderEventHandler handles incoming order-paid messages from Kafka
type OrderEventHandler struct {
	accrualService service.AccrualService
	producer       producers.DeadLetterPublisher
	logger         *slog.Logger
}

// NewOrderEventHandler creates a new handler
func NewOrderEventHandler(
	logger *slog.Logger,
	accrualService service.AccrualService,
	producer producers.DeadLetterPublisher,
) *OrderEventHandler {
	return &OrderEventHandler{
		accrualService: accrualService,
		producer:       producer,
		logger:         logger,
	}
}

// HandleMessage processes Kafka messages. Permanent failures go to the DLQ
// and the offset is committed; transient failures return an error so the
// message is redelivered.
func (h *OrderEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var event shared.OrderPaidEvent
	if err := json.Unmarshal(value, &event); err != nil {
		unmarshalErrorMsg := "Failed to unmarshal order paid event from Kafka message"
		h.logger.Error(unmarshalErrorMsg,
			"error", err,
			"message_key", string(key),
		)
		return h.sendToDLQ(ctx, key, value, fmt.Sprintf("%s: %s", unmarshalErrorMsg, err.Error()), err)
	}

	// Add correlation ID to logger
	logger := h.logger
	if event.CorrelationID != "" {
		logger = h.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Received order paid event for accrual",
		"order_id", event.OrderID,
		"user_id", event.UserID.String(),
		"pay_amount", event.PayAmount.String(),
	)

	if err := h.accrualService.ProcessOrderPaid(ctx, &event); err != nil {
		var permErr *service.PermanentError
		if errors.As(err, &permErr) {
			logger.Error("Order paid event is unprocessable",
				"order_id", event.OrderID,
				"reason", permErr.Reason,
				"error", err,
			)
			return h.sendToDLQ(ctx, key, value, permErr.Reason, err)
		}

		logger.Error("Failed to process order paid event",
			"order_id", event.OrderID,
			"user_id", event.UserID.String(),
			"error", err,
		)
		return fmt.Errorf("processing order %s failed: %w", event.OrderID, err)
	}

	logger.Info("Successfully processed order paid event", "order_id", event.OrderID)
	return nil // Success, commit offset
}

// sendToDLQ parks the message and commits the offset. When the DLQ is
// unavailable the original error is returned so Kafka redelivers.
func (h *OrderEventHandler) sendToDLQ(ctx context.Context, key, value []byte, reason string, cause error) error {
	if h.producer == nil {
		return fmt.Errorf("unprocessable message and no DLQ configured: %w", cause)
	}

	if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, reason); dlqErr != nil {
		h.logger.Error("Failed to publish message to DLQ",
			"dlq_error", dlqErr,
			"original_error", cause,
			"message_key", string(key),
		)
		return fmt.Errorf("DLQ publish failed: %w", cause)
	}

	h.logger.Info("Published unprocessable message to DLQ", "message_key", string(key), "reason", reason)
	return nil // Message parked, commit offset
}
