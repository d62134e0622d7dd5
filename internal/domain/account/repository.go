package account

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines loyalty account persistence operations
type Repository interface {
	Create(ctx context.Context, acc *Account) error
	GetByID(ctx context.Context, userID uuid.UUID) (*Account, error)

	// Update persists the snapshot using optimistic locking on Version
	Update(ctx context.Context, acc *Account) error

	// LockForUpdate acquires a pessimistic lock for the duration of the
	// enclosing transaction; credits and debits to the same user serialize here
	LockForUpdate(ctx context.Context, userID uuid.UUID) (*Account, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrConcurrentModification indicates optimistic lock failure
type ErrConcurrentModification struct {
	UserID uuid.UUID
}

func (e ErrConcurrentModification) Error() string {
	return "concurrent modification detected for account: " + e.UserID.String()
}

// ErrAccountNotFound indicates missing loyalty account
type ErrAccountNotFound struct {
	UserID uuid.UUID
}

func (e ErrAccountNotFound) Error() string {
	return "loyalty account not found: " + e.UserID.String()
}

// Is matches any ErrAccountNotFound when the target carries a nil UserID
func (e ErrAccountNotFound) Is(target error) bool {
	t, ok := target.(ErrAccountNotFound)
	if !ok {
		return false
	}
	if t.UserID == uuid.Nil {
		return true
	}
	return e.UserID == t.UserID
}

// ErrDuplicateAccount indicates the user already has a loyalty account
type ErrDuplicateAccount struct {
	UserID uuid.UUID
}

func (e ErrDuplicateAccount) Error() string {
	return "loyalty account already exists: " + e.UserID.String()
}
