package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/membership-loyalty-core/internal/domain/tier"
)

func TestTierRepository_Create(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &TierRepository{querier: mock, logger: logger}

	tr := &tier.Tier{
		ID:                  uuid.New(),
		Name:                "Silver",
		Level:               2,
		RequiredGrowthValue: 500,
		DiscountRate:        decimal.NewFromFloat(0.05),
		PointsRatio:         decimal.NewFromFloat(1.5),
		CreatedAt:           time.Now(),
	}

	query := `
		INSERT INTO membership_tiers \(id, name, level, required_growth_value, discount_rate, points_ratio, created_at\)
		VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7\)
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(tr.ID, tr.Name, tr.Level, tr.RequiredGrowthValue, tr.DiscountRate, tr.PointsRatio, tr.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.Create(ctx, tr)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate level", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "23505"}
		mock.ExpectExec(query).
			WithArgs(tr.ID, tr.Name, tr.Level, tr.RequiredGrowthValue, tr.DiscountRate, tr.PointsRatio, tr.CreatedAt).
			WillReturnError(pgErr)

		err := repo.Create(ctx, tr)
		assert.Error(t, err)
		var dupErr tier.ErrDuplicateLevel
		assert.ErrorAs(t, err, &dupErr)
		assert.Equal(t, tr.Level, dupErr.Level)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure", func(t *testing.T) {
		expectedErr := errors.New("db error")
		mock.ExpectExec(query).
			WithArgs(tr.ID, tr.Name, tr.Level, tr.RequiredGrowthValue, tr.DiscountRate, tr.PointsRatio, tr.CreatedAt).
			WillReturnError(expectedErr)

		err := repo.Create(ctx, tr)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create tier")
		assert.ErrorIs(t, err, expectedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTierRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &TierRepository{querier: mock, logger: logger}
	tierID := uuid.New()
	now := time.Now()

	expected := &tier.Tier{
		ID:                  tierID,
		Name:                "Gold",
		Level:               3,
		RequiredGrowthValue: 2000,
		DiscountRate:        decimal.NewFromFloat(0.1),
		PointsRatio:         decimal.NewFromInt(2),
		CreatedAt:           now,
	}

	query := `
		SELECT id, name, level, required_growth_value, discount_rate, points_ratio, created_at
		FROM membership_tiers
		WHERE id = \$1
	`
	rows := pgxmock.NewRows([]string{"id", "name", "level", "required_growth_value", "discount_rate", "points_ratio", "created_at"}).
		AddRow(expected.ID, expected.Name, expected.Level, expected.RequiredGrowthValue, expected.DiscountRate, expected.PointsRatio, expected.CreatedAt)

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(tierID).WillReturnRows(rows)

		got, err := repo.GetByID(ctx, tierID)
		assert.NoError(t, err)
		assert.Equal(t, expected, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(tierID).WillReturnError(pgx.ErrNoRows)

		got, err := repo.GetByID(ctx, tierID)
		assert.Error(t, err)
		assert.Nil(t, got)
		var notFoundErr tier.ErrTierNotFound
		assert.ErrorAs(t, err, &notFoundErr)
		assert.Equal(t, tierID, notFoundErr.TierID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTierRepository_ListOrdered(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &TierRepository{querier: mock, logger: logger}
	now := time.Now()

	query := `
		SELECT id, name, level, required_growth_value, discount_rate, points_ratio, created_at
		FROM membership_tiers
		ORDER BY level ASC
	`

	t.Run("success", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"id", "name", "level", "required_growth_value", "discount_rate", "points_ratio", "created_at"}).
			AddRow(uuid.New(), "Bronze", 1, int64(0), decimal.Zero, decimal.NewFromInt(1), now).
			AddRow(uuid.New(), "Silver", 2, int64(500), decimal.NewFromFloat(0.05), decimal.NewFromFloat(1.5), now)

		mock.ExpectQuery(query).WillReturnRows(rows)

		tiers, err := repo.ListOrdered(ctx)
		assert.NoError(t, err)
		assert.Len(t, tiers, 2)
		assert.Equal(t, 1, tiers[0].Level)
		assert.Equal(t, 2, tiers[1].Level)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		dbErr := errors.New("list db error")
		mock.ExpectQuery(query).WillReturnError(dbErr)

		tiers, err := repo.ListOrdered(ctx)
		assert.Error(t, err)
		assert.Nil(t, tiers)
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
