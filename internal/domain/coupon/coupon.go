package coupon

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrEmptyName       = errors.New("coupon name cannot be empty")
	ErrInvalidType     = errors.New("coupon type must be amount_off or discount")
	ErrInvalidQuantity = errors.New("total quantity must be positive")
	ErrInvalidWindow   = errors.New("end time must be after start time")
)

// Type distinguishes fixed-amount coupons from percentage discounts
type Type string

const (
	TypeAmountOff Type = "amount_off"
	TypeDiscount  Type = "discount"
)

// ClaimStatus tracks a claimed coupon's lifecycle. The accounting core only
// creates unused claims; redemption transitions belong to checkout.
type ClaimStatus string

const (
	ClaimStatusUnused  ClaimStatus = "unused"
	ClaimStatusUsed    ClaimStatus = "used"
	ClaimStatusExpired ClaimStatus = "expired"
)

// Coupon is a bounded pool of claimable units for a campaign. The invariant
// 0 <= RemainingQuantity <= TotalQuantity holds under any interleaving of
// concurrent claims; the only mutation path is the conditional decrement.
type Coupon struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	Type              Type            `json:"type"`
	Value             decimal.Decimal `json:"value"`
	MinSpend          decimal.Decimal `json:"min_spend"`
	TotalQuantity     int64           `json:"total_quantity"`
	RemainingQuantity int64           `json:"remaining_quantity"`
	StartTime         time.Time       `json:"start_time"`
	EndTime           time.Time       `json:"end_time"`
	IsActive          bool            `json:"is_active"`
	CreatedAt         time.Time       `json:"created_at"`
}

// NewCoupon creates a campaign with the full pool unclaimed.
func NewCoupon(name string, couponType Type, value, minSpend decimal.Decimal, totalQuantity int64, startTime, endTime time.Time) (*Coupon, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if couponType != TypeAmountOff && couponType != TypeDiscount {
		return nil, ErrInvalidType
	}
	if totalQuantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if !endTime.After(startTime) {
		return nil, ErrInvalidWindow
	}

	return &Coupon{
		ID:                uuid.New(),
		Name:              name,
		Type:              couponType,
		Value:             value,
		MinSpend:          minSpend,
		TotalQuantity:     totalQuantity,
		RemainingQuantity: totalQuantity,
		StartTime:         startTime,
		EndTime:           endTime,
		IsActive:          true,
		CreatedAt:         time.Now(),
	}, nil
}

// Claimable reports whether the campaign accepts claims at the given instant,
// ignoring stock. Stock is only ever judged by the conditional decrement.
func (c *Coupon) Claimable(now time.Time) bool {
	return c.IsActive && !now.Before(c.StartTime) && !now.After(c.EndTime)
}

// UserCoupon is one successful claim. Created exactly once per decremented
// unit, in the same atomic unit as the decrement, and never mutated here.
type UserCoupon struct {
	ID         uuid.UUID   `json:"id"`
	UserID     uuid.UUID   `json:"user_id"`
	CouponID   uuid.UUID   `json:"coupon_id"`
	Status     ClaimStatus `json:"status"`
	ObtainedAt time.Time   `json:"obtained_at"`
	ExpiresAt  time.Time   `json:"expires_at"`
}

// NewClaim records a successful claim against the coupon's validity window.
func NewClaim(userID uuid.UUID, c *Coupon) *UserCoupon {
	return &UserCoupon{
		ID:         uuid.New(),
		UserID:     userID,
		CouponID:   c.ID,
		Status:     ClaimStatusUnused,
		ObtainedAt: time.Now(),
		ExpiresAt:  c.EndTime,
	}
}
