// Package postgres provides PostgreSQL implementations of the domain
// repositories. Every mutation that the loyalty invariants depend on runs
// through these repositories inside a caller-owned transaction.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/membership-loyalty-core/internal/domain/account"
	"github.com/membership-loyalty-core/internal/platform/persistence"
)

// AccountRepository implements the account.Repository interface for PostgreSQL
type AccountRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewAccountRepository creates a new PostgreSQL account repository.
func NewAccountRepository(logger *slog.Logger, db *persistence.PostgresDB) account.Repository {
	return &AccountRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing for atomic
// operations across multiple repository calls.
func (r *AccountRepository) WithTx(tx pgx.Tx) account.Repository {
	return &AccountRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new loyalty account. A second account for the same user
// violates the primary key and maps to ErrDuplicateAccount.
func (r *AccountRepository) Create(ctx context.Context, acc *account.Account) error {
	query := `
		INSERT INTO user_accounts (user_id, current_points, total_growth_value, current_tier_id, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.querier.Exec(ctx, query,
		acc.UserID,
		acc.CurrentPoints,
		acc.TotalGrowthValue,
		acc.CurrentTierID,
		acc.Version,
		acc.CreatedAt,
		acc.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return account.ErrDuplicateAccount{UserID: acc.UserID}
		}
		r.logger.Error("Failed to create loyalty account", "user_id", acc.UserID.String(), "error", err)
		return fmt.Errorf("failed to create loyalty account: %w", err)
	}

	return nil
}

// GetByID retrieves a loyalty account by user id
func (r *AccountRepository) GetByID(ctx context.Context, userID uuid.UUID) (*account.Account, error) {
	query := `
		SELECT user_id, current_points, total_growth_value, current_tier_id, version, created_at, updated_at
		FROM user_accounts
		WHERE user_id = $1
	`

	return r.scanOne(ctx, query, userID)
}

// LockForUpdate obtains a pessimistic lock on the account row for the duration
// of the enclosing transaction. Concurrent credits and debits to the same user
// serialize here.
func (r *AccountRepository) LockForUpdate(ctx context.Context, userID uuid.UUID) (*account.Account, error) {
	query := `
		SELECT user_id, current_points, total_growth_value, current_tier_id, version, created_at, updated_at
		FROM user_accounts
		WHERE user_id = $1
		FOR UPDATE
	`

	return r.scanOne(ctx, query, userID)
}

func (r *AccountRepository) scanOne(ctx context.Context, query string, userID uuid.UUID) (*account.Account, error) {
	var acc account.Account
	err := r.querier.QueryRow(ctx, query, userID).Scan(
		&acc.UserID,
		&acc.CurrentPoints,
		&acc.TotalGrowthValue,
		&acc.CurrentTierID,
		&acc.Version,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{UserID: userID}
		}
		r.logger.Error("Failed to get loyalty account", "user_id", userID.String(), "error", err)
		return nil, fmt.Errorf("failed to get loyalty account: %w", err)
	}

	return &acc, nil
}

// Update persists the snapshot using optimistic locking on Version. The row
// must still carry the version the snapshot was loaded with; the update
// itself increments it, so a credit, debit and tier change applied to one
// loaded snapshot commit as a single version step. The balance CHECK
// constraint rejects any update that would drive points negative, which can
// only happen if an invariant was already broken.
func (r *AccountRepository) Update(ctx context.Context, acc *account.Account) error {
	query := `
		UPDATE user_accounts
		SET current_points = $1, total_growth_value = $2, current_tier_id = $3, version = version + 1, updated_at = $4
		WHERE user_id = $5 AND version = $6
	`

	result, err := r.querier.Exec(ctx, query,
		acc.CurrentPoints,
		acc.TotalGrowthValue,
		acc.CurrentTierID,
		acc.UpdatedAt,
		acc.UserID,
		acc.Version, // Version as loaded; the row must not have moved since
	)
	if err != nil {
		r.logger.Error("Failed to update loyalty account", "user_id", acc.UserID.String(), "error", err)
		return fmt.Errorf("failed to update loyalty account: %w", err)
	}

	if result.RowsAffected() == 0 {
		return account.ErrConcurrentModification{UserID: acc.UserID}
	}

	acc.Version++
	return nil
}
