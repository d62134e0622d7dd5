package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/membership-loyalty-core/internal/domain/tier"
	"github.com/membership-loyalty-core/internal/platform/persistence"
)

// TierRepository implements the tier.Repository interface for PostgreSQL
type TierRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewTierRepository creates a new PostgreSQL tier repository
func NewTierRepository(logger *slog.Logger, db *persistence.PostgresDB) tier.Repository {
	return &TierRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository bound to the given transaction
func (r *TierRepository) WithTx(tx pgx.Tx) tier.Repository {
	return &TierRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new membership tier definition
func (r *TierRepository) Create(ctx context.Context, t *tier.Tier) error {
	query := `
		INSERT INTO membership_tiers (id, name, level, required_growth_value, discount_rate, points_ratio, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.querier.Exec(ctx, query,
		t.ID,
		t.Name,
		t.Level,
		t.RequiredGrowthValue,
		t.DiscountRate,
		t.PointsRatio,
		t.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return tier.ErrDuplicateLevel{Level: t.Level}
		}
		r.logger.Error("Failed to create tier", "tier_id", t.ID.String(), "error", err)
		return fmt.Errorf("failed to create tier: %w", err)
	}

	return nil
}

// GetByID retrieves a tier by its id
func (r *TierRepository) GetByID(ctx context.Context, id uuid.UUID) (*tier.Tier, error) {
	query := `
		SELECT id, name, level, required_growth_value, discount_rate, points_ratio, created_at
		FROM membership_tiers
		WHERE id = $1
	`

	var t tier.Tier
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&t.ID,
		&t.Name,
		&t.Level,
		&t.RequiredGrowthValue,
		&t.DiscountRate,
		&t.PointsRatio,
		&t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tier.ErrTierNotFound{TierID: id}
		}
		r.logger.Error("Failed to get tier", "tier_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get tier: %w", err)
	}

	return &t, nil
}

// ListOrdered returns all tiers ordered by ascending level
func (r *TierRepository) ListOrdered(ctx context.Context) ([]*tier.Tier, error) {
	query := `
		SELECT id, name, level, required_growth_value, discount_rate, points_ratio, created_at
		FROM membership_tiers
		ORDER BY level ASC
	`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list tiers", "error", err)
		return nil, fmt.Errorf("failed to list tiers: %w", err)
	}
	defer rows.Close()

	var tiers []*tier.Tier
	for rows.Next() {
		var t tier.Tier
		err := rows.Scan(
			&t.ID,
			&t.Name,
			&t.Level,
			&t.RequiredGrowthValue,
			&t.DiscountRate,
			&t.PointsRatio,
			&t.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to scan tier", "error", err)
			return nil, fmt.Errorf("failed to scan tier: %w", err)
		}
		tiers = append(tiers, &t)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over tiers", "error", err)
		return nil, fmt.Errorf("error iterating over tiers: %w", err)
	}

	return tiers, nil
}
