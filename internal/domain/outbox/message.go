package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Status defines message publishing states
type Status string

const (
	StatusPending         Status = "PENDING"
	StatusProcessed       Status = "PROCESSED"
	StatusFailedToPublish Status = "FAILED_TO_PUBLISH"
)

// AccrualEvent is the archived record of one committed points accrual. It is
// written to the outbox inside the accrual transaction and later shipped to
// the MongoDB archive by the poller.
type AccrualEvent struct {
	OrderID       string     `json:"order_id" bson:"order_id"`
	UserID        uuid.UUID  `json:"user_id" bson:"user_id"`
	EntryID       uuid.UUID  `json:"entry_id" bson:"entry_id"`
	PointsEarned  int64      `json:"points_earned" bson:"points_earned"`
	GrowthDelta   int64      `json:"growth_delta" bson:"growth_delta"`
	BalanceAfter  int64      `json:"balance_after" bson:"balance_after"`
	GrowthAfter   int64      `json:"growth_after" bson:"growth_after"`
	TierBefore    *uuid.UUID `json:"tier_before,omitempty" bson:"tier_before,omitempty"`
	TierAfter     *uuid.UUID `json:"tier_after,omitempty" bson:"tier_after,omitempty"`
	CorrelationID string     `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty" bson:"processed_at,omitempty"`
}

// Message stores an accrual event for reliable delivery to the archive
type Message struct {
	ID            int64           `json:"id"`
	OrderID       string          `json:"order_id"`
	UserID        uuid.UUID       `json:"user_id"`
	Payload       json.RawMessage `json:"payload"`
	Status        Status          `json:"status"`
	Attempts      int             `json:"attempts"`
	CreatedAt     time.Time       `json:"created_at"`
	LastAttemptAt *time.Time      `json:"last_attempt_at,omitempty"`
}

func NewMessage(event *AccrualEvent) (*Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	return &Message{
		OrderID:   event.OrderID,
		UserID:    event.UserID,
		Payload:   payload,
		Status:    StatusPending,
		Attempts:  0,
		CreatedAt: time.Now(),
	}, nil
}

func (m *Message) IncrementAttempts() {
	m.Attempts++
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsProcessed() {
	m.Status = StatusProcessed
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsFailed() {
	m.Status = StatusFailedToPublish
	now := time.Now()
	m.LastAttemptAt = &now
}

// GetAccrualEvent extracts the accrual event from the payload
func (m *Message) GetAccrualEvent() (*AccrualEvent, error) {
	var event AccrualEvent
	if err := json.Unmarshal(m.Payload, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
