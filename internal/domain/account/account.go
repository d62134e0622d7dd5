package account

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrInsufficientPoints = errors.New("insufficient points balance")
	ErrNegativeGrowth     = errors.New("growth delta cannot be negative")
)

// Account is the per-user loyalty snapshot. CurrentPoints always equals the
// sum of committed ledger amounts for the user; TotalGrowthValue only grows.
// Both are mutated exclusively inside the transaction that records the
// justifying ledger entry.
//
// Version is the optimistic lock token. Mutators leave it at the value read
// from the store; the repository increments it on a successful update, so
// several mutations between one load and one update still compare against
// the loaded version.
type Account struct {
	UserID           uuid.UUID  `json:"user_id"`
	CurrentPoints    int64      `json:"current_points"`
	TotalGrowthValue int64      `json:"total_growth_value"`
	CurrentTierID    *uuid.UUID `json:"current_tier_id,omitempty"`
	Version          int        `json:"version"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// NewAccount creates a fresh loyalty account with zero balances and no tier.
func NewAccount(userID uuid.UUID) *Account {
	now := time.Now()
	return &Account{
		UserID:    userID,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Credit increases the points balance and, for purchase-driven credits, the
// growth value. growthDelta is zero for non-purchase credit types.
func (a *Account) Credit(points int64, growthDelta int64) error {
	if points <= 0 {
		return ErrInvalidAmount
	}
	if growthDelta < 0 {
		return ErrNegativeGrowth
	}

	a.CurrentPoints += points
	a.TotalGrowthValue += growthDelta
	a.UpdatedAt = time.Now()
	return nil
}

// Debit decreases the points balance, never below zero.
func (a *Account) Debit(points int64) error {
	if points <= 0 {
		return ErrInvalidAmount
	}
	if a.CurrentPoints < points {
		return ErrInsufficientPoints
	}

	a.CurrentPoints -= points
	a.UpdatedAt = time.Now()
	return nil
}

// CanDebit checks whether the balance covers a debit of the given size.
func (a *Account) CanDebit(points int64) bool {
	return a.CurrentPoints >= points
}

// AssignTier points the snapshot at a new tier. A nil id means the user
// qualifies for no tier.
func (a *Account) AssignTier(tierID *uuid.UUID) {
	a.CurrentTierID = tierID
	a.UpdatedAt = time.Now()
}

// TierChanged reports whether tierID differs from the currently assigned tier.
func (a *Account) TierChanged(tierID *uuid.UUID) bool {
	if a.CurrentTierID == nil || tierID == nil {
		return a.CurrentTierID != tierID
	}
	return *a.CurrentTierID != *tierID
}
