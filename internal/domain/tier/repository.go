package tier

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines membership tier persistence operations. The accounting
// core only reads; Create exists for the admin surface.
type Repository interface {
	Create(ctx context.Context, t *Tier) error
	GetByID(ctx context.Context, id uuid.UUID) (*Tier, error)

	// ListOrdered returns all tiers ordered by ascending level
	ListOrdered(ctx context.Context) ([]*Tier, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrTierNotFound indicates a missing tier definition
type ErrTierNotFound struct {
	TierID uuid.UUID
}

func (e ErrTierNotFound) Error() string {
	return "membership tier not found: " + e.TierID.String()
}

// Is matches any ErrTierNotFound when the target carries a nil TierID
func (e ErrTierNotFound) Is(target error) bool {
	t, ok := target.(ErrTierNotFound)
	if !ok {
		return false
	}
	if t.TierID == uuid.Nil {
		return true
	}
	return e.TierID == t.TierID
}

// ErrDuplicateLevel indicates a tier level uniqueness violation
type ErrDuplicateLevel struct {
	Level int
}

func (e ErrDuplicateLevel) Error() string {
	return "membership tier level already exists"
}
