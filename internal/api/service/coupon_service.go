package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/membership-loyalty-core/internal/config"
	"github.com/membership-loyalty-core/internal/domain/account"
	"github.com/membership-loyalty-core/internal/domain/coupon"
)

// CouponServiceImpl implements the CouponService interface
type CouponServiceImpl struct {
	db          TxExecutor
	retryCfg    *config.RetryConfig
	couponRepo  coupon.Repository
	accountRepo account.Repository
	logger      *slog.Logger
}

// NewCouponService creates a new coupon service
func NewCouponService(logger *slog.Logger, db TxExecutor, retryCfg *config.RetryConfig, couponRepo coupon.Repository, accountRepo account.Repository) CouponService {
	return &CouponServiceImpl{
		db:          db,
		retryCfg:    retryCfg,
		couponRepo:  couponRepo,
		accountRepo: accountRepo,
		logger:      logger,
	}
}

// Claim takes one unit for the user. The conditional decrement and the claim
// insert are one transaction, so a crash between them rolls both back and the
// invariant claims == total - remaining survives. When the decrement matches
// no row a follow-up read in the same transaction tells the caller why.
func (s *CouponServiceImpl) Claim(ctx context.Context, userID, couponID uuid.UUID) (*coupon.UserCoupon, error) {
	// Unknown users get 404 before touching inventory.
	if _, err := s.accountRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	now := time.Now()
	var claim *coupon.UserCoupon
	err := s.db.ExecuteTxWithRetry(ctx, s.retryCfg, func(tx pgx.Tx) error {
		coupons := s.couponRepo.WithTx(tx)

		ok, err := coupons.DecrementStock(ctx, couponID, now)
		if err != nil {
			return err
		}
		if !ok {
			c, err := coupons.GetByID(ctx, couponID)
			if err != nil {
				return err
			}
			if !c.Claimable(now) {
				return coupon.ErrCouponInactive{CouponID: couponID}
			}
			return coupon.ErrOutOfStock{CouponID: couponID}
		}

		c, err := coupons.GetByID(ctx, couponID)
		if err != nil {
			return err
		}

		uc := coupon.NewClaim(userID, c)
		if err := coupons.InsertClaim(ctx, uc); err != nil {
			return err
		}

		claim = uc
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Coupon claimed",
		"coupon_id", couponID.String(),
		"user_id", userID.String(),
		"claim_id", claim.ID.String(),
	)
	return claim, nil
}

// ListActive retrieves campaigns currently accepting claims
func (s *CouponServiceImpl) ListActive(ctx context.Context) ([]*coupon.Coupon, error) {
	return s.couponRepo.ListActive(ctx, time.Now())
}

// ListByUser retrieves the user's claimed coupons, newest first
func (s *CouponServiceImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]*coupon.UserCoupon, error) {
	if _, err := s.accountRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.couponRepo.ListClaimsByUser(ctx, userID)
}

// Create registers a new campaign with the full pool unclaimed
func (s *CouponServiceImpl) Create(ctx context.Context, name string, couponType coupon.Type, value, minSpend decimal.Decimal, totalQuantity int64, startTime, endTime time.Time) (*coupon.Coupon, error) {
	c, err := coupon.NewCoupon(name, couponType, value, minSpend, totalQuantity, startTime, endTime)
	if err != nil {
		return nil, err
	}

	if err := s.couponRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("Coupon campaign created",
		"coupon_id", c.ID.String(),
		"name", c.Name,
		"total_quantity", c.TotalQuantity,
	)
	return c, nil
}
