package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/membership-loyalty-core/internal/domain/shared"
)

type MockMessagePublisher struct {
	mock.Mock
}

func (m *MockMessagePublisher) Publish(ctx context.Context, key string, value interface{}) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

func TestEventServiceImpl_PublishOrderPaid(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	validEvent := func() *shared.OrderPaidEvent {
		return &shared.OrderPaidEvent{
			OrderID:   "order-55",
			UserID:    uuid.New(),
			PayAmount: decimal.NewFromFloat(120.50),
			Timestamp: time.Now(),
		}
	}

	t.Run("Success", func(t *testing.T) {
		mockPublisher := new(MockMessagePublisher)
		service := NewEventService(logger, mockPublisher)

		event := validEvent()
		mockPublisher.On("Publish", ctx, "order-55", event).Return(nil).Once()

		err := service.PublishOrderPaid(ctx, event)

		assert.NoError(t, err)
		mockPublisher.AssertExpectations(t)
	})

	t.Run("RejectsNonPositiveAmount", func(t *testing.T) {
		mockPublisher := new(MockMessagePublisher)
		service := NewEventService(logger, mockPublisher)

		event := validEvent()
		event.PayAmount = decimal.Zero

		err := service.PublishOrderPaid(ctx, event)

		assert.ErrorIs(t, err, shared.ErrInvalidPayAmount)
		mockPublisher.AssertNotCalled(t, "Publish")
	})

	t.Run("RejectsMissingOrderID", func(t *testing.T) {
		mockPublisher := new(MockMessagePublisher)
		service := NewEventService(logger, mockPublisher)

		event := validEvent()
		event.OrderID = ""

		err := service.PublishOrderPaid(ctx, event)

		assert.ErrorIs(t, err, shared.ErrMissingOrderID)
		mockPublisher.AssertNotCalled(t, "Publish")
	})

	t.Run("PublishError", func(t *testing.T) {
		mockPublisher := new(MockMessagePublisher)
		service := NewEventService(logger, mockPublisher)

		event := validEvent()
		mockPublisher.On("Publish", ctx, "order-55", event).Return(errors.New("broker down")).Once()

		err := service.PublishOrderPaid(ctx, event)

		assert.Error(t, err)
		mockPublisher.AssertExpectations(t)
	})
}
