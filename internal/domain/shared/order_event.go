package shared

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrMissingOrderID   = errors.New("order id is required")
	ErrMissingUserID    = errors.New("user id is required")
	ErrInvalidPayAmount = errors.New("pay amount must be positive")
)

// OrderPaidEvent is the Kafka message emitted when an order transitions to paid.
// Delivery is at-least-once; consumers rely on the ledger's (type, source_id)
// barrier rather than transport-level deduplication.
type OrderPaidEvent struct {
	OrderID       string          `json:"order_id"`
	UserID        uuid.UUID       `json:"user_id"`
	PayAmount     decimal.Decimal `json:"pay_amount"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
}

// Validate checks the event carries everything accrual needs. A malformed
// event is never retried; it goes to the DLQ.
func (e *OrderPaidEvent) Validate() error {
	if e.OrderID == "" {
		return ErrMissingOrderID
	}
	if e.UserID == uuid.Nil {
		return ErrMissingUserID
	}
	if !e.PayAmount.IsPositive() {
		return ErrInvalidPayAmount
	}
	return nil
}
