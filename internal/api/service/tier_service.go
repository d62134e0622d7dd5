package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/membership-loyalty-core/internal/domain/tier"
)

// TierServiceImpl implements the TierService interface
type TierServiceImpl struct {
	tierRepo tier.Repository
}

// NewTierService creates a new tier service
func NewTierService(tierRepo tier.Repository) TierService {
	return &TierServiceImpl{
		tierRepo: tierRepo,
	}
}

// List retrieves all tiers ordered by ascending level
func (s *TierServiceImpl) List(ctx context.Context) ([]*tier.Tier, error) {
	return s.tierRepo.ListOrdered(ctx)
}

// Create registers a new tier definition. Accounts pick it up on their next
// credit; there is no retroactive re-evaluation.
func (s *TierServiceImpl) Create(ctx context.Context, name string, level int, requiredGrowth int64, discountRate, pointsRatio decimal.Decimal) (*tier.Tier, error) {
	t, err := tier.NewTier(name, level, requiredGrowth, discountRate, pointsRatio)
	if err != nil {
		return nil, err
	}

	if err := s.tierRepo.Create(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}
