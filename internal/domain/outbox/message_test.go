package outbox

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	event := &AccrualEvent{
		OrderID:      "ord-20260831-0001",
		UserID:       uuid.New(),
		EntryID:      uuid.New(),
		PointsEarned: 150,
		GrowthDelta:  100,
		BalanceAfter: 150,
		GrowthAfter:  100,
	}

	msg, err := NewMessage(event)
	require.NoError(t, err)

	assert.Equal(t, event.OrderID, msg.OrderID)
	assert.Equal(t, event.UserID, msg.UserID)
	assert.Equal(t, StatusPending, msg.Status)
	assert.Zero(t, msg.Attempts)
	assert.Nil(t, msg.LastAttemptAt)

	decoded, err := msg.GetAccrualEvent()
	require.NoError(t, err)
	assert.Equal(t, event.OrderID, decoded.OrderID)
	assert.Equal(t, event.PointsEarned, decoded.PointsEarned)
	assert.Equal(t, event.GrowthAfter, decoded.GrowthAfter)
}

func TestMessage_StateTransitions(t *testing.T) {
	msg := &Message{Status: StatusPending}

	msg.IncrementAttempts()
	assert.Equal(t, 1, msg.Attempts)
	assert.NotNil(t, msg.LastAttemptAt)

	msg.MarkAsProcessed()
	assert.Equal(t, StatusProcessed, msg.Status)

	msg.MarkAsFailed()
	assert.Equal(t, StatusFailedToPublish, msg.Status)
}

func TestMessage_GetAccrualEvent_InvalidPayload(t *testing.T) {
	msg := &Message{Payload: []byte("not json")}

	_, err := msg.GetAccrualEvent()
	assert.Error(t, err)
}
