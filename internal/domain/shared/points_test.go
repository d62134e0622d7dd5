package shared

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPointsEarned(t *testing.T) {
	t.Run("ratio 1.5 on 100 yields 150", func(t *testing.T) {
		got := PointsEarned(decimal.NewFromInt(100), decimal.NewFromFloat(1.5))
		assert.Equal(t, int64(150), got)
	})

	t.Run("fractional result floors", func(t *testing.T) {
		got := PointsEarned(decimal.NewFromFloat(99.99), decimal.NewFromFloat(1.5))
		assert.Equal(t, int64(149), got)
	})

	t.Run("ratio below one", func(t *testing.T) {
		got := PointsEarned(decimal.NewFromInt(10), decimal.NewFromFloat(0.5))
		assert.Equal(t, int64(5), got)
	})
}

func TestGrowthDelta(t *testing.T) {
	assert.Equal(t, int64(100), GrowthDelta(decimal.NewFromInt(100)))
	assert.Equal(t, int64(99), GrowthDelta(decimal.NewFromFloat(99.99)))
}

func TestOrderPaidEvent_Validate(t *testing.T) {
	valid := OrderPaidEvent{
		OrderID:   "ord-1",
		UserID:    uuid.New(),
		PayAmount: decimal.NewFromInt(100),
		Timestamp: time.Now(),
	}
	assert.NoError(t, valid.Validate())

	missingOrder := valid
	missingOrder.OrderID = ""
	assert.ErrorIs(t, missingOrder.Validate(), ErrMissingOrderID)

	missingUser := valid
	missingUser.UserID = uuid.Nil
	assert.ErrorIs(t, missingUser.Validate(), ErrMissingUserID)

	zeroAmount := valid
	zeroAmount.PayAmount = decimal.Zero
	assert.ErrorIs(t, zeroAmount.Validate(), ErrInvalidPayAmount)

	negative := valid
	negative.PayAmount = decimal.NewFromInt(-5)
	assert.ErrorIs(t, negative.Validate(), ErrInvalidPayAmount)
}
