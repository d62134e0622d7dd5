package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/membership-loyalty-core/internal/config"
	"github.com/membership-loyalty-core/internal/domain/account"
	"github.com/membership-loyalty-core/internal/domain/coupon"
	"github.com/membership-loyalty-core/internal/domain/ledger"
	"github.com/membership-loyalty-core/internal/domain/outbox"
	"github.com/membership-loyalty-core/internal/domain/shared"
	"github.com/membership-loyalty-core/internal/domain/tier"
)

// TxExecutor runs a function inside one database transaction, retrying
// transient conflicts. Satisfied by persistence.PostgresDB.
type TxExecutor interface {
	ExecuteTxWithRetry(ctx context.Context, cfg *config.RetryConfig, fn func(tx pgx.Tx) error) error
}

// AccountService defines the interface for loyalty account operations
type AccountService interface {
	// Register creates a loyalty account for the user
	// Returns ErrDuplicateAccount if the user already has one
	Register(ctx context.Context, userID uuid.UUID) (*account.Account, error)

	// GetBalance retrieves the account snapshot (points, growth, tier)
	// Returns ErrAccountNotFound if the account doesn't exist
	GetBalance(ctx context.Context, userID uuid.UUID) (*account.Account, error)
}

// DebitResult carries the outcome of a debit. Replayed is set when the
// (type, source_id) pair was already recorded; Entry then holds the prior
// entry and nothing was mutated.
type DebitResult struct {
	Entry    *ledger.Entry
	Replayed bool
}

// LedgerService defines the interface for point movement operations
type LedgerService interface {
	// Debit spends points atomically: entry insert and balance decrement in
	// one transaction. Returns account.ErrInsufficientPoints when the balance
	// doesn't cover the amount; no entry is written in that case.
	Debit(ctx context.Context, userID uuid.UUID, amount int64, entryType ledger.EntryType, sourceID, description string) (*DebitResult, error)

	// ListEntries retrieves a newest-first page of the user's ledger
	// Returns entries, total count within the range, and any error
	ListEntries(ctx context.Context, userID uuid.UUID, tr ledger.TimeRange, page, perPage int) ([]*ledger.Entry, int64, error)
}

// CouponService defines the interface for coupon campaign operations
type CouponService interface {
	// Claim takes one unit of the coupon for the user. Stock check, decrement
	// and claim insert are one transaction. Returns ErrOutOfStock,
	// ErrCouponInactive or ErrCouponNotFound without mutating anything.
	Claim(ctx context.Context, userID, couponID uuid.UUID) (*coupon.UserCoupon, error)

	// ListActive retrieves campaigns currently accepting claims
	ListActive(ctx context.Context) ([]*coupon.Coupon, error)

	// ListByUser retrieves the user's claimed coupons, newest first
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*coupon.UserCoupon, error)

	// Create registers a new campaign with the full pool unclaimed
	Create(ctx context.Context, name string, couponType coupon.Type, value, minSpend decimal.Decimal, totalQuantity int64, startTime, endTime time.Time) (*coupon.Coupon, error)
}

// TierService defines the interface for membership tier operations
type TierService interface {
	// List retrieves all tiers ordered by ascending level
	List(ctx context.Context) ([]*tier.Tier, error)

	// Create registers a new tier definition
	// Returns ErrDuplicateLevel if the level is taken
	Create(ctx context.Context, name string, level int, requiredGrowth int64, discountRate, pointsRatio decimal.Decimal) (*tier.Tier, error)
}

// HistoryService defines the interface for archived accrual reads
type HistoryService interface {
	// ListAccruals retrieves a newest-first page of the user's archived
	// accruals. The archive trails the ledger by the outbox poll interval.
	ListAccruals(ctx context.Context, userID uuid.UUID, page, perPage int) ([]*outbox.AccrualEvent, error)

	// GetAccrualByOrder retrieves the archived accrual for one order
	// Returns outbox.ErrEventNotFound if the order has not been archived
	GetAccrualByOrder(ctx context.Context, orderID string) (*outbox.AccrualEvent, error)
}

// BalanceAudit compares the account snapshot against the committed ledger
type BalanceAudit struct {
	UserID        uuid.UUID `json:"user_id"`
	CurrentPoints int64     `json:"current_points"`
	LedgerSum     int64     `json:"ledger_sum"`
	Consistent    bool      `json:"consistent"`
}

// CouponStockAudit compares the recorded claims against the consumed stock
type CouponStockAudit struct {
	CouponID          uuid.UUID `json:"coupon_id"`
	TotalQuantity     int64     `json:"total_quantity"`
	RemainingQuantity int64     `json:"remaining_quantity"`
	ClaimCount        int64     `json:"claim_count"`
	Consistent        bool      `json:"consistent"`
}

// AuditService verifies the accounting invariants on demand
type AuditService interface {
	// ReconcileBalance checks that the snapshot balance equals the sum of
	// committed ledger amounts for the user
	ReconcileBalance(ctx context.Context, userID uuid.UUID) (*BalanceAudit, error)

	// ReconcileCouponStock checks that recorded claims account for every
	// consumed unit of the coupon pool
	ReconcileCouponStock(ctx context.Context, couponID uuid.UUID) (*CouponStockAudit, error)
}

// EventService defines the interface for inbound order event operations
type EventService interface {
	// PublishOrderPaid validates and hands the event to the processing
	// pipeline. Accrual itself happens asynchronously in the processor.
	PublishOrderPaid(ctx context.Context, event *shared.OrderPaidEvent) error
}
