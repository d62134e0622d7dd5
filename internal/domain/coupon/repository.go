package coupon

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines coupon inventory persistence operations.
//
// DecrementStock is the single mutation path for inventory: it decrements
// remaining_quantity by one only when the campaign is active, inside its
// validity window and has stock left, all judged in one statement. Concurrent
// claims on the same coupon serialize on the row; the loser observes a false
// return, never a torn state.
type Repository interface {
	Create(ctx context.Context, c *Coupon) error
	GetByID(ctx context.Context, id uuid.UUID) (*Coupon, error)
	ListActive(ctx context.Context, now time.Time) ([]*Coupon, error)

	// DecrementStock returns true when a unit was taken. A false return with
	// nil error means the conditional update matched no row; the caller
	// inspects the coupon to tell NotFound, Inactive and OutOfStock apart.
	DecrementStock(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)

	InsertClaim(ctx context.Context, claim *UserCoupon) error
	ListClaimsByUser(ctx context.Context, userID uuid.UUID) ([]*UserCoupon, error)
	CountClaims(ctx context.Context, couponID uuid.UUID) (int64, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrCouponNotFound indicates a missing coupon campaign
type ErrCouponNotFound struct {
	CouponID uuid.UUID
}

func (e ErrCouponNotFound) Error() string {
	return "coupon not found: " + e.CouponID.String()
}

// Is matches any ErrCouponNotFound when the target carries a nil CouponID
func (e ErrCouponNotFound) Is(target error) bool {
	t, ok := target.(ErrCouponNotFound)
	if !ok {
		return false
	}
	if t.CouponID == uuid.Nil {
		return true
	}
	return e.CouponID == t.CouponID
}

// ErrCouponInactive indicates the campaign is disabled or outside its window
type ErrCouponInactive struct {
	CouponID uuid.UUID
}

func (e ErrCouponInactive) Error() string {
	return "coupon not claimable: " + e.CouponID.String()
}

// Is matches any ErrCouponInactive when the target carries a nil CouponID
func (e ErrCouponInactive) Is(target error) bool {
	t, ok := target.(ErrCouponInactive)
	if !ok {
		return false
	}
	if t.CouponID == uuid.Nil {
		return true
	}
	return e.CouponID == t.CouponID
}

// ErrOutOfStock indicates the pool is exhausted; nothing was mutated
type ErrOutOfStock struct {
	CouponID uuid.UUID
}

func (e ErrOutOfStock) Error() string {
	return "coupon out of stock: " + e.CouponID.String()
}

// Is matches any ErrOutOfStock when the target carries a nil CouponID
func (e ErrOutOfStock) Is(target error) bool {
	t, ok := target.(ErrOutOfStock)
	if !ok {
		return false
	}
	if t.CouponID == uuid.Nil {
		return true
	}
	return e.CouponID == t.CouponID
}
