package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/membership-loyalty-core/internal/domain/outbox"
)

// HistoryServiceImpl implements the HistoryService interface
type HistoryServiceImpl struct {
	archive outbox.Archive
}

// NewHistoryService creates a new accrual history service
func NewHistoryService(archive outbox.Archive) HistoryService {
	return &HistoryServiceImpl{
		archive: archive,
	}
}

// ListAccruals retrieves a newest-first page of the user's archived accruals
func (s *HistoryServiceImpl) ListAccruals(ctx context.Context, userID uuid.UUID, page, perPage int) ([]*outbox.AccrualEvent, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	offset := (page - 1) * perPage

	return s.archive.ListByUser(ctx, userID, perPage, offset)
}

// GetAccrualByOrder retrieves the archived accrual for one order
func (s *HistoryServiceImpl) GetAccrualByOrder(ctx context.Context, orderID string) (*outbox.AccrualEvent, error) {
	return s.archive.GetByOrderID(ctx, orderID)
}
