package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/membership-loyalty-core/internal/domain/ledger"
	"github.com/membership-loyalty-core/internal/platform/persistence"
)

// LedgerRepository implements the ledger.Repository interface for PostgreSQL
type LedgerRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewLedgerRepository creates a new PostgreSQL ledger repository
func NewLedgerRepository(logger *slog.Logger, db *persistence.PostgresDB) ledger.Repository {
	return &LedgerRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction so the entry insert commits
// atomically with the balance update it justifies.
func (r *LedgerRepository) WithTx(tx pgx.Tx) ledger.Repository {
	return &LedgerRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Insert appends the entry. The (type, source_id) uniqueness is judged by
// the insert itself via ON CONFLICT DO NOTHING: a duplicate reports zero rows
// affected and leaves the ledger untouched. There is deliberately no prior
// existence check; a separate read-then-write would race with concurrent
// deliveries of the same trigger.
func (r *LedgerRepository) Insert(ctx context.Context, entry *ledger.Entry) (bool, error) {
	query := `
		INSERT INTO points_ledger (id, user_id, amount, type, source_id, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT ON CONSTRAINT points_ledger_type_source_key DO NOTHING
	`

	result, err := r.querier.Exec(ctx, query,
		entry.ID,
		entry.UserID,
		entry.Amount,
		entry.Type,
		entry.SourceID,
		entry.Description,
		entry.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert ledger entry",
			"type", string(entry.Type),
			"source_id", entry.SourceID,
			"error", err,
		)
		return false, fmt.Errorf("failed to insert ledger entry: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

const entryColumns = "id, user_id, amount, type, source_id, description, created_at"

// GetBySource retrieves the entry recorded for an external trigger
func (r *LedgerRepository) GetBySource(ctx context.Context, entryType ledger.EntryType, sourceID string) (*ledger.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM points_ledger
		WHERE type = $1 AND source_id = $2
	`

	var entry ledger.Entry
	err := r.querier.QueryRow(ctx, query, entryType, sourceID).Scan(
		&entry.ID,
		&entry.UserID,
		&entry.Amount,
		&entry.Type,
		&entry.SourceID,
		&entry.Description,
		&entry.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ledger.ErrEntryNotFound{Type: entryType, SourceID: sourceID}
		}
		r.logger.Error("Failed to get ledger entry by source", "type", string(entryType), "source_id", sourceID, "error", err)
		return nil, fmt.Errorf("failed to get ledger entry by source: %w", err)
	}

	return &entry, nil
}

// GetByID retrieves an entry by its id
func (r *LedgerRepository) GetByID(ctx context.Context, id uuid.UUID) (*ledger.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM points_ledger
		WHERE id = $1
	`

	var entry ledger.Entry
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&entry.ID,
		&entry.UserID,
		&entry.Amount,
		&entry.Type,
		&entry.SourceID,
		&entry.Description,
		&entry.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ledger.ErrEntryNotFound{}
		}
		r.logger.Error("Failed to get ledger entry", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}

	return &entry, nil
}

// ListByUser returns the user's entries newest first, optionally bounded by tr
func (r *LedgerRepository) ListByUser(ctx context.Context, userID uuid.UUID, tr ledger.TimeRange, limit, offset int) ([]*ledger.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM points_ledger
		WHERE user_id = $1
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
		  AND ($3::timestamptz IS NULL OR created_at <= $3)
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5
	`

	rows, err := r.querier.Query(ctx, query, userID, nullableTime(tr.From), nullableTime(tr.To), limit, offset)
	if err != nil {
		r.logger.Error("Failed to list ledger entries", "user_id", userID.String(), "error", err)
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []*ledger.Entry
	for rows.Next() {
		var entry ledger.Entry
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Amount,
			&entry.Type,
			&entry.SourceID,
			&entry.Description,
			&entry.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to scan ledger entry", "error", err)
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over ledger entries", "error", err)
		return nil, fmt.Errorf("error iterating over ledger entries: %w", err)
	}

	return entries, nil
}

// CountByUser counts the user's entries inside the optional time range
func (r *LedgerRepository) CountByUser(ctx context.Context, userID uuid.UUID, tr ledger.TimeRange) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM points_ledger
		WHERE user_id = $1
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
		  AND ($3::timestamptz IS NULL OR created_at <= $3)
	`

	var count int64
	err := r.querier.QueryRow(ctx, query, userID, nullableTime(tr.From), nullableTime(tr.To)).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count ledger entries", "user_id", userID.String(), "error", err)
		return 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}

	return count, nil
}

// SumByUser sums all committed entry amounts for the user
func (r *LedgerRepository) SumByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM points_ledger
		WHERE user_id = $1
	`

	var sum int64
	err := r.querier.QueryRow(ctx, query, userID).Scan(&sum)
	if err != nil {
		r.logger.Error("Failed to sum ledger entries", "user_id", userID.String(), "error", err)
		return 0, fmt.Errorf("failed to sum ledger entries: %w", err)
	}

	return sum, nil
}
