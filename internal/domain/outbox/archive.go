package outbox

import (
	"context"

	"github.com/google/uuid"
)

// Archive is the durable store accrual events are shipped to by the poller.
// Archiving the same order twice must converge on a single record so a crash
// between publish and status update stays harmless. The read side backs the
// accrual history API.
type Archive interface {
	Store(ctx context.Context, event *AccrualEvent) error
	GetByOrderID(ctx context.Context, orderID string) (*AccrualEvent, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*AccrualEvent, error)
}

// ErrEventNotFound indicates no archived accrual event for the order
type ErrEventNotFound struct {
	OrderID string
}

func (e ErrEventNotFound) Error() string {
	return "accrual event not found: " + e.OrderID
}

// Is matches any ErrEventNotFound when the target carries no order id
func (e ErrEventNotFound) Is(target error) bool {
	t, ok := target.(ErrEventNotFound)
	if !ok {
		return false
	}
	if t.OrderID == "" {
		return true
	}
	return e.OrderID == t.OrderID
}
