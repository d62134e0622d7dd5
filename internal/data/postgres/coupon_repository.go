package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/membership-loyalty-core/internal/domain/coupon"
	"github.com/membership-loyalty-core/internal/platform/persistence"
)

// CouponRepository implements the coupon.Repository interface for PostgreSQL
type CouponRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewCouponRepository creates a new PostgreSQL coupon repository
func NewCouponRepository(logger *slog.Logger, db *persistence.PostgresDB) coupon.Repository {
	return &CouponRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction so the stock decrement and
// the claim insert commit or roll back together.
func (r *CouponRepository) WithTx(tx pgx.Tx) coupon.Repository {
	return &CouponRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new coupon campaign
func (r *CouponRepository) Create(ctx context.Context, c *coupon.Coupon) error {
	query := `
		INSERT INTO coupons (id, name, type, value, min_spend, total_quantity, remaining_quantity, start_time, end_time, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.querier.Exec(ctx, query,
		c.ID,
		c.Name,
		c.Type,
		c.Value,
		c.MinSpend,
		c.TotalQuantity,
		c.RemainingQuantity,
		c.StartTime,
		c.EndTime,
		c.IsActive,
		c.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create coupon", "coupon_id", c.ID.String(), "error", err)
		return fmt.Errorf("failed to create coupon: %w", err)
	}

	return nil
}

const couponColumns = "id, name, type, value, min_spend, total_quantity, remaining_quantity, start_time, end_time, is_active, created_at"

// GetByID retrieves a coupon by its id
func (r *CouponRepository) GetByID(ctx context.Context, id uuid.UUID) (*coupon.Coupon, error) {
	query := `
		SELECT ` + couponColumns + `
		FROM coupons
		WHERE id = $1
	`

	var c coupon.Coupon
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.Name,
		&c.Type,
		&c.Value,
		&c.MinSpend,
		&c.TotalQuantity,
		&c.RemainingQuantity,
		&c.StartTime,
		&c.EndTime,
		&c.IsActive,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coupon.ErrCouponNotFound{CouponID: id}
		}
		r.logger.Error("Failed to get coupon", "coupon_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}

	return &c, nil
}

// ListActive returns campaigns that currently accept claims and still have
// stock, for the marketplace view
func (r *CouponRepository) ListActive(ctx context.Context, now time.Time) ([]*coupon.Coupon, error) {
	query := `
		SELECT ` + couponColumns + `
		FROM coupons
		WHERE is_active AND remaining_quantity > 0 AND start_time <= $1 AND end_time >= $1
		ORDER BY created_at DESC
	`

	rows, err := r.querier.Query(ctx, query, now)
	if err != nil {
		r.logger.Error("Failed to list active coupons", "error", err)
		return nil, fmt.Errorf("failed to list active coupons: %w", err)
	}
	defer rows.Close()

	var coupons []*coupon.Coupon
	for rows.Next() {
		var c coupon.Coupon
		err := rows.Scan(
			&c.ID,
			&c.Name,
			&c.Type,
			&c.Value,
			&c.MinSpend,
			&c.TotalQuantity,
			&c.RemainingQuantity,
			&c.StartTime,
			&c.EndTime,
			&c.IsActive,
			&c.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to scan coupon", "error", err)
			return nil, fmt.Errorf("failed to scan coupon: %w", err)
		}
		coupons = append(coupons, &c)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over coupons", "error", err)
		return nil, fmt.Errorf("error iterating over coupons: %w", err)
	}

	return coupons, nil
}

// DecrementStock performs the atomic conditional decrement: one unit is taken
// only when the campaign is active, inside its window and has stock left, all
// judged by the database in a single statement. Check, decrement and the
// concurrent-claim ordering collapse into this one operation; application code
// never reads the quantity first.
func (r *CouponRepository) DecrementStock(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	query := `
		UPDATE coupons
		SET remaining_quantity = remaining_quantity - 1
		WHERE id = $1 AND is_active AND start_time <= $2 AND end_time >= $2 AND remaining_quantity > 0
	`

	result, err := r.querier.Exec(ctx, query, id, now)
	if err != nil {
		r.logger.Error("Failed to decrement coupon stock", "coupon_id", id.String(), "error", err)
		return false, fmt.Errorf("failed to decrement coupon stock: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// InsertClaim records one successful claim
func (r *CouponRepository) InsertClaim(ctx context.Context, claim *coupon.UserCoupon) error {
	query := `
		INSERT INTO user_coupons (id, user_id, coupon_id, status, obtained_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.querier.Exec(ctx, query,
		claim.ID,
		claim.UserID,
		claim.CouponID,
		claim.Status,
		claim.ObtainedAt,
		claim.ExpiresAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert coupon claim",
			"coupon_id", claim.CouponID.String(),
			"user_id", claim.UserID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to insert coupon claim: %w", err)
	}

	return nil
}

// ListClaimsByUser returns the user's claims newest first, for the wallet view
func (r *CouponRepository) ListClaimsByUser(ctx context.Context, userID uuid.UUID) ([]*coupon.UserCoupon, error) {
	query := `
		SELECT id, user_id, coupon_id, status, obtained_at, expires_at
		FROM user_coupons
		WHERE user_id = $1
		ORDER BY obtained_at DESC
	`

	rows, err := r.querier.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to list coupon claims", "user_id", userID.String(), "error", err)
		return nil, fmt.Errorf("failed to list coupon claims: %w", err)
	}
	defer rows.Close()

	var claims []*coupon.UserCoupon
	for rows.Next() {
		var claim coupon.UserCoupon
		err := rows.Scan(
			&claim.ID,
			&claim.UserID,
			&claim.CouponID,
			&claim.Status,
			&claim.ObtainedAt,
			&claim.ExpiresAt,
		)
		if err != nil {
			r.logger.Error("Failed to scan coupon claim", "error", err)
			return nil, fmt.Errorf("failed to scan coupon claim: %w", err)
		}
		claims = append(claims, &claim)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over coupon claims", "error", err)
		return nil, fmt.Errorf("error iterating over coupon claims: %w", err)
	}

	return claims, nil
}

// CountClaims counts claims recorded for a coupon, used to audit the
// inventory invariant count == total - remaining
func (r *CouponRepository) CountClaims(ctx context.Context, couponID uuid.UUID) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM user_coupons
		WHERE coupon_id = $1
	`

	var count int64
	err := r.querier.QueryRow(ctx, query, couponID).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count coupon claims", "coupon_id", couponID.String(), "error", err)
		return 0, fmt.Errorf("failed to count coupon claims: %w", err)
	}

	return count, nil
}
