package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TimeRange optionally bounds a ledger listing. Zero values mean unbounded.
type TimeRange struct {
	From time.Time
	To   time.Time
}

// Repository manages append-only ledger entry persistence.
//
// Insert must evaluate the (type, source_id) uniqueness as part of the insert
// itself (conflict no-op), never as a separate read-then-write.
type Repository interface {
	// Insert appends the entry. It returns false with a nil error when an
	// entry with the same (type, source_id) already exists, leaving the
	// store untouched.
	Insert(ctx context.Context, entry *Entry) (bool, error)
	GetBySource(ctx context.Context, entryType EntryType, sourceID string) (*Entry, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Entry, error)

	// ListByUser returns entries newest first
	ListByUser(ctx context.Context, userID uuid.UUID, tr TimeRange, limit, offset int) ([]*Entry, error)
	CountByUser(ctx context.Context, userID uuid.UUID, tr TimeRange) (int64, error)

	// SumByUser returns the sum of all committed entry amounts for the user,
	// used to verify the balance reconciliation invariant
	SumByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrEntryNotFound indicates missing ledger entry
type ErrEntryNotFound struct {
	Type     EntryType
	SourceID string
}

func (e ErrEntryNotFound) Error() string {
	return "ledger entry not found: (" + string(e.Type) + ", " + e.SourceID + ")"
}

// Is matches any ErrEntryNotFound when the target carries no source
func (e ErrEntryNotFound) Is(target error) bool {
	t, ok := target.(ErrEntryNotFound)
	if !ok {
		return false
	}
	if t.SourceID == "" {
		return true
	}
	return e.Type == t.Type && e.SourceID == t.SourceID
}
