package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/membership-loyalty-core/internal/domain/account"
	"github.com/membership-loyalty-core/internal/domain/ledger"
	"github.com/membership-loyalty-core/internal/domain/shared"
)

// AccrualService defines the interface for processing order-paid events.
type AccrualService interface {
	ProcessOrderPaid(ctx context.Context, event *shared.OrderPaidEvent) error
}

// EventValidator validates order-paid events before accrual
type EventValidator interface {
	Validate(ctx context.Context, event *shared.OrderPaidEvent) error
	CheckIdempotency(ctx context.Context, event *shared.OrderPaidEvent) (bool, error)
}

// AccrualOutcome carries the state produced by one accrual. Replayed is set
// when the order was already credited; the other fields then describe the
// original accrual and nothing was mutated.
type AccrualOutcome struct {
	Entry        *ledger.Entry
	Account      *account.Account
	TierBefore   *uuid.UUID
	PointsEarned int64
	GrowthDelta  int64
	Replayed     bool
}

// AccrualManager applies one accrual to the locked account inside a transaction
type AccrualManager interface {
	AccrueInTx(ctx context.Context, tx pgx.Tx, event *shared.OrderPaidEvent) (*AccrualOutcome, error)
}

// OutboxManager stages the archive record in the same transaction as the accrual
type OutboxManager interface {
	CreateOutboxEntry(ctx context.Context, tx pgx.Tx, event *shared.OrderPaidEvent, outcome *AccrualOutcome) error
}

// PermanentError marks a failure that redelivery cannot fix. The consumer
// routes these to the DLQ and commits the offset instead of retrying.
type PermanentError struct {
	Reason string
	Err    error
}

func (e *PermanentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// Permanent wraps err as unretryable with the given reason
func Permanent(reason string, err error) error {
	return &PermanentError{Reason: reason, Err: err}
}
