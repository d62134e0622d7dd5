package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/membership-loyalty-core/internal/domain/account"
	"github.com/membership-loyalty-core/internal/domain/ledger"
	"github.com/membership-loyalty-core/internal/domain/shared"
	"github.com/membership-loyalty-core/internal/domain/tier"
	"github.com/membership-loyalty-core/internal/order_processor/service"
)

// AccrualManagerImpl implements the AccrualManager interface
type AccrualManagerImpl struct {
	accountRepo account.Repository
	ledgerRepo  ledger.Repository
	tierRepo    tier.Repository
	logger      *slog.Logger
}

// NewAccrualManager creates a new AccrualManagerImpl
func NewAccrualManager(accountRepo account.Repository, ledgerRepo ledger.Repository, tierRepo tier.Repository, logger *slog.Logger) service.AccrualManager {
	return &AccrualManagerImpl{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		tierRepo:    tierRepo,
		logger:      logger,
	}
}

// AccrueInTx locks the account, writes the purchase ledger entry, credits
// points and growth, and re-evaluates the tier. The points ratio is read
// from the tier held BEFORE this credit; a tier reached by this very order
// only affects later orders.
func (m *AccrualManagerImpl) AccrueInTx(ctx context.Context, tx pgx.Tx, event *shared.OrderPaidEvent) (*service.AccrualOutcome, error) {
	logger := m.logger
	if event.CorrelationID != "" {
		logger = m.logger.With("correlation_id", event.CorrelationID)
	}

	accountRepoTx := m.accountRepo.WithTx(tx)
	ledgerRepoTx := m.ledgerRepo.WithTx(tx)
	tierRepoTx := m.tierRepo.WithTx(tx)

	// Lock the account for update
	lockedAccount, err := accountRepoTx.LockForUpdate(ctx, event.UserID)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound{UserID: event.UserID}) {
			logger.Warn("No loyalty account for order", "order_id", event.OrderID, "user_id", event.UserID.String())
			return nil, service.Permanent("loyalty account not found", err)
		}
		logger.Error("Failed to lock account", "order_id", event.OrderID, "user_id", event.UserID.String(), "error", err)
		return nil, fmt.Errorf("failed to lock account %s: %w", event.UserID.String(), err)
	}
	logger.Info("Account locked", "order_id", event.OrderID, "user_id", lockedAccount.UserID.String(), "points", lockedAccount.CurrentPoints, "ver", lockedAccount.Version)

	// Resolve the points ratio from the current tier
	ratio := tier.DefaultPointsRatio
	if lockedAccount.CurrentTierID != nil {
		currentTier, tierErr := tierRepoTx.GetByID(ctx, *lockedAccount.CurrentTierID)
		if tierErr != nil {
			logger.Error("Failed to load current tier", "order_id", event.OrderID, "tier_id", lockedAccount.CurrentTierID.String(), "error", tierErr)
			return nil, fmt.Errorf("failed to load tier %s: %w", lockedAccount.CurrentTierID.String(), tierErr)
		}
		ratio = currentTier.PointsRatio
	}

	points := shared.PointsEarned(event.PayAmount, ratio)
	growth := shared.GrowthDelta(event.PayAmount)
	tierBefore := lockedAccount.CurrentTierID

	// Record the entry first. The (type, source_id) barrier decides whether
	// this order was already credited, even when two deliveries race past
	// the pre-check.
	entry := ledger.NewEntry(event.UserID, points, ledger.EntryTypePurchase, event.OrderID, "order paid")
	inserted, err := ledgerRepoTx.Insert(ctx, entry)
	if err != nil {
		logger.Error("Failed to insert purchase ledger entry", "order_id", event.OrderID, "error", err)
		return nil, fmt.Errorf("failed to insert ledger entry for order %s: %w", event.OrderID, err)
	}
	if !inserted {
		priorEntry, getErr := ledgerRepoTx.GetBySource(ctx, ledger.EntryTypePurchase, event.OrderID)
		if getErr != nil {
			return nil, fmt.Errorf("failed to load prior entry for order %s: %w", event.OrderID, getErr)
		}
		logger.Info("Purchase entry already recorded, replay detected", "order_id", event.OrderID, "entry_id", priorEntry.ID.String())
		return &service.AccrualOutcome{
			Entry:      priorEntry,
			Account:    lockedAccount,
			TierBefore: tierBefore,
			Replayed:   true,
		}, nil
	}

	// Apply the credit to the account model
	if creditErr := lockedAccount.Credit(points, growth); creditErr != nil {
		logger.Error("Failed to apply credit to account model", "order_id", event.OrderID, "error", creditErr)
		return nil, service.Permanent("credit rejected by account model", creditErr)
	}

	// Re-evaluate the tier against the new growth value
	tiers, err := tierRepoTx.ListOrdered(ctx)
	if err != nil {
		logger.Error("Failed to list tiers for re-evaluation", "order_id", event.OrderID, "error", err)
		return nil, fmt.Errorf("failed to list tiers: %w", err)
	}
	var newTierID *uuid.UUID
	if matched := tier.ForGrowth(lockedAccount.TotalGrowthValue, tiers); matched != nil {
		id := matched.ID
		newTierID = &id
	}
	if lockedAccount.TierChanged(newTierID) {
		logger.Info("Tier changed", "order_id", event.OrderID, "user_id", lockedAccount.UserID.String(), "growth", lockedAccount.TotalGrowthValue)
		lockedAccount.AssignTier(newTierID)
	}

	// Persist account changes
	if err = accountRepoTx.Update(ctx, lockedAccount); err != nil {
		if errors.Is(err, account.ErrConcurrentModification{UserID: lockedAccount.UserID}) {
			logger.Warn("Concurrent modification on account update", "order_id", event.OrderID, "user_id", lockedAccount.UserID.String())
		} else {
			logger.Error("Failed to update account in DB", "order_id", event.OrderID, "user_id", lockedAccount.UserID.String(), "error", err)
		}
		return nil, err
	}
	logger.Info("Account credited", "order_id", event.OrderID, "user_id", lockedAccount.UserID.String(), "points_earned", points, "new_balance", lockedAccount.CurrentPoints)

	return &service.AccrualOutcome{
		Entry:        entry,
		Account:      lockedAccount,
		TierBefore:   tierBefore,
		PointsEarned: points,
		GrowthDelta:  growth,
	}, nil
}
