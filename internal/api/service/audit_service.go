package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/membership-loyalty-core/internal/domain/account"
	"github.com/membership-loyalty-core/internal/domain/coupon"
	"github.com/membership-loyalty-core/internal/domain/ledger"
)

// AuditServiceImpl implements the AuditService interface
type AuditServiceImpl struct {
	accountRepo account.Repository
	ledgerRepo  ledger.Repository
	couponRepo  coupon.Repository
}

// NewAuditService creates a new reconciliation service
func NewAuditService(accountRepo account.Repository, ledgerRepo ledger.Repository, couponRepo coupon.Repository) AuditService {
	return &AuditServiceImpl{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		couponRepo:  couponRepo,
	}
}

// ReconcileBalance checks the account snapshot against the ledger sum.
// The two are written in one transaction, so any drift means a bug or
// manual data intervention.
func (s *AuditServiceImpl) ReconcileBalance(ctx context.Context, userID uuid.UUID) (*BalanceAudit, error) {
	acc, err := s.accountRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	sum, err := s.ledgerRepo.SumByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &BalanceAudit{
		UserID:        userID,
		CurrentPoints: acc.CurrentPoints,
		LedgerSum:     sum,
		Consistent:    acc.CurrentPoints == sum,
	}, nil
}

// ReconcileCouponStock checks a coupon's remaining quantity against the
// number of claim rows. claims == total - remaining must hold.
func (s *AuditServiceImpl) ReconcileCouponStock(ctx context.Context, couponID uuid.UUID) (*CouponStockAudit, error) {
	c, err := s.couponRepo.GetByID(ctx, couponID)
	if err != nil {
		return nil, err
	}

	claims, err := s.couponRepo.CountClaims(ctx, couponID)
	if err != nil {
		return nil, err
	}

	return &CouponStockAudit{
		CouponID:          couponID,
		TotalQuantity:     c.TotalQuantity,
		RemainingQuantity: c.RemainingQuantity,
		ClaimCount:        claims,
		Consistent:        claims == c.TotalQuantity-c.RemainingQuantity,
	}, nil
}
