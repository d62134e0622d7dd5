// Package mongo stores the accrual event archive. Postgres remains the system
// of record for balances and the ledger; this archive is the queryable history
// fed from the transactional outbox.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/membership-loyalty-core/internal/domain/outbox"
)

const (
	// AccrualCollectionName is the name of the accrual event collection in MongoDB
	AccrualCollectionName = "accrual_events"
)

// AccrualArchive implements the outbox.Archive interface for MongoDB
type AccrualArchive struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewAccrualArchive creates a new MongoDB accrual archive
func NewAccrualArchive(logger *slog.Logger, db *mongo.Database) outbox.Archive {
	return &AccrualArchive{
		db:     db,
		logger: logger,
	}
}

// Store persists the accrual event keyed by order id. An upsert keeps the
// operation idempotent when the poller retries after a crash between publish
// and marking the outbox row processed.
func (a *AccrualArchive) Store(ctx context.Context, event *outbox.AccrualEvent) error {
	collection := a.db.Collection(AccrualCollectionName)

	filter := bson.M{"order_id": event.OrderID}
	opts := options.Replace().SetUpsert(true)

	_, err := collection.ReplaceOne(ctx, filter, event, opts)
	if err != nil {
		a.logger.Error("Failed to store accrual event",
			"order_id", event.OrderID,
			"error", err)
		return fmt.Errorf("failed to store accrual event: %w", err)
	}

	return nil
}

// GetByOrderID retrieves the archived accrual event for an order.
// Returns outbox.ErrEventNotFound if the order has not been archived.
func (a *AccrualArchive) GetByOrderID(ctx context.Context, orderID string) (*outbox.AccrualEvent, error) {
	collection := a.db.Collection(AccrualCollectionName)

	filter := bson.M{"order_id": orderID}
	var event outbox.AccrualEvent
	err := collection.FindOne(ctx, filter).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, outbox.ErrEventNotFound{OrderID: orderID}
		}
		a.logger.Error("Failed to get accrual event",
			"order_id", orderID,
			"error", err)
		return nil, fmt.Errorf("failed to get accrual event: %w", err)
	}

	return &event, nil
}

// ListByUser retrieves paginated accrual events for a user.
// Results are sorted by processing time in descending order (newest first).
func (a *AccrualArchive) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*outbox.AccrualEvent, error) {
	collection := a.db.Collection(AccrualCollectionName)

	filter := bson.M{"user_id": userID}
	opts := options.Find().
		SetSort(bson.M{"processed_at": -1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		a.logger.Error("Failed to list accrual events",
			"user_id", userID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to list accrual events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []*outbox.AccrualEvent
	if err := cursor.All(ctx, &events); err != nil {
		a.logger.Error("Failed to decode accrual events",
			"user_id", userID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to decode accrual events: %w", err)
	}

	return events, nil
}
