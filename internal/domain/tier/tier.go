package tier

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrEmptyName          = errors.New("tier name cannot be empty")
	ErrInvalidLevel       = errors.New("tier level must be positive")
	ErrNegativeThreshold  = errors.New("required growth value cannot be negative")
	ErrInvalidPointsRatio = errors.New("points ratio must be positive")
)

// Tier is one membership level. Levels are totally ordered and
// RequiredGrowthValue is strictly increasing with level. Tiers are immutable
// per version and read-only to the accounting core; admin changes take effect
// on the next evaluation.
type Tier struct {
	ID                  uuid.UUID       `json:"id"`
	Name                string          `json:"name"`
	Level               int             `json:"level"`
	RequiredGrowthValue int64           `json:"required_growth_value"`
	DiscountRate        decimal.Decimal `json:"discount_rate"`
	PointsRatio         decimal.Decimal `json:"points_ratio"`
	CreatedAt           time.Time       `json:"created_at"`
}

// NewTier creates a tier definition after validating its fields.
func NewTier(name string, level int, requiredGrowth int64, discountRate, pointsRatio decimal.Decimal) (*Tier, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if level <= 0 {
		return nil, ErrInvalidLevel
	}
	if requiredGrowth < 0 {
		return nil, ErrNegativeThreshold
	}
	if !pointsRatio.IsPositive() {
		return nil, ErrInvalidPointsRatio
	}

	return &Tier{
		ID:                  uuid.New(),
		Name:                name,
		Level:               level,
		RequiredGrowthValue: requiredGrowth,
		DiscountRate:        discountRate,
		PointsRatio:         pointsRatio,
		CreatedAt:           time.Now(),
	}, nil
}

// ForGrowth returns the tier with the largest RequiredGrowthValue that does
// not exceed growthValue, or nil when no tier qualifies. tiers may arrive in
// any order; the function is pure and deterministic.
func ForGrowth(growthValue int64, tiers []*Tier) *Tier {
	var best *Tier
	for _, t := range tiers {
		if t.RequiredGrowthValue > growthValue {
			continue
		}
		if best == nil || t.RequiredGrowthValue > best.RequiredGrowthValue ||
			(t.RequiredGrowthValue == best.RequiredGrowthValue && t.Level > best.Level) {
			best = t
		}
	}
	return best
}

// DefaultPointsRatio applies when a user holds no tier.
var DefaultPointsRatio = decimal.NewFromInt(1)
