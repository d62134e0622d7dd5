package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/membership-loyalty-core/internal/domain/outbox"
)

// ArchivePublisher ships outbox messages to the accrual archive
type ArchivePublisher interface {
	PublishToArchive(ctx context.Context, message *outbox.Message) error
}

// ArchivePublisherImpl implements ArchivePublisher
type ArchivePublisherImpl struct {
	outboxRepo outbox.Repository
	archive    outbox.Archive
	logger     *slog.Logger
}

// NewArchivePublisher creates a new publisher
func NewArchivePublisher(
	outboxRepo outbox.Repository,
	archive outbox.Archive,
	logger *slog.Logger,
) ArchivePublisher {
	return &ArchivePublisherImpl{
		outboxRepo: outboxRepo,
		archive:    archive,
		logger:     logger,
	}
}

// PublishToArchive stores one accrual record in the archive and marks the
// outbox message processed. The archive upserts by order id, so a crash
// between the two steps converges on one record after redelivery.
func (p *ArchivePublisherImpl) PublishToArchive(ctx context.Context, message *outbox.Message) error {
	event, err := message.GetAccrualEvent()
	if err != nil {
		p.logger.Error("Failed to unmarshal accrual event from outbox payload",
			"outbox_id", message.ID, "order_id", message.OrderID, "error", err,
		)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, outbox.StatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to update outbox status after unmarshal error", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("unmarshal payload for outbox %d failed: %w", message.ID, err)
	}

	// Add correlation ID to logger
	logger := p.logger
	if event.CorrelationID != "" {
		logger = p.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Publishing outbox message to accrual archive", "outbox_id", message.ID, "order_id", message.OrderID)

	if event.ProcessedAt == nil {
		now := time.Now().UTC()
		event.ProcessedAt = &now
	}

	if err := p.archive.Store(ctx, event); err != nil {
		logger.Error("Failed to store accrual event in archive", "order_id", event.OrderID, "error", err)
		return fmt.Errorf("failed to store accrual event for order %s: %w", event.OrderID, err)
	}

	// Mark outbox message as processed
	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, outbox.StatusProcessed); err != nil {
		logger.Error("Failed to update outbox message status to PROCESSED",
			"outbox_id", message.ID, "order_id", message.OrderID, "error", err,
		)
		return fmt.Errorf("archive write for %s OK, but failed to mark outbox %d as PROCESSED: %w", message.OrderID, message.ID, err)
	}

	logger.Info("Outbox message archived and marked as PROCESSED", "outbox_id", message.ID, "order_id", message.OrderID)
	return nil
}
