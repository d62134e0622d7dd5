package ledger

import (
	"time"

	"github.com/google/uuid"
)

// EntryType categorizes a point movement
type EntryType string

const (
	EntryTypePurchase     EntryType = "purchase"
	EntryTypeActivity     EntryType = "activity"
	EntryTypeRefund       EntryType = "refund"
	EntryTypeManualAdjust EntryType = "manual_adjust"
	EntryTypeExchange     EntryType = "exchange"
	EntryTypeExpire       EntryType = "expire"
)

// Valid reports whether t is a known entry type
func (t EntryType) Valid() bool {
	switch t {
	case EntryTypePurchase, EntryTypeActivity, EntryTypeRefund,
		EntryTypeManualAdjust, EntryTypeExchange, EntryTypeExpire:
		return true
	}
	return false
}

// Entry is an immutable point movement. Entries are appended, never updated or
// deleted. The (Type, SourceID) pair is unique: a replayed external trigger
// collides with the original entry instead of producing a second credit.
type Entry struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Amount      int64     `json:"amount"` // Signed; negative for debits
	Type        EntryType `json:"type"`
	SourceID    string    `json:"source_id"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewEntry builds a ledger entry fact. Amount carries the sign; callers pass
// negative amounts for debits.
func NewEntry(userID uuid.UUID, amount int64, entryType EntryType, sourceID, description string) *Entry {
	return &Entry{
		ID:          uuid.New(),
		UserID:      userID,
		Amount:      amount,
		Type:        entryType,
		SourceID:    sourceID,
		Description: description,
		CreatedAt:   time.Now(),
	}
}
