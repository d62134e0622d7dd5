package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/membership-loyalty-core/internal/api/service"
	"github.com/membership-loyalty-core/internal/domain/outbox"
)

// HistoryHandler handles HTTP requests for the archived accrual history
type HistoryHandler struct {
	historyService service.HistoryService
	logger         *slog.Logger
}

// NewHistoryHandler creates a new accrual history handler
func NewHistoryHandler(logger *slog.Logger, historyService service.HistoryService) *HistoryHandler {
	return &HistoryHandler{
		historyService: historyService,
		logger:         logger,
	}
}

// ListAccruals retrieves a newest-first page of the user's archived accruals
func (h *HistoryHandler) ListAccruals(c *gin.Context) {
	idParam := c.Param("id")
	userID, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid user ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid user ID")
		return
	}

	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.logger.Error("Invalid query parameters", "error", err)
		RespondBadRequest(c, "Invalid query parameters")
		return
	}

	events, err := h.historyService.ListAccruals(c.Request.Context(), userID, params.Page, params.PerPage)
	if err != nil {
		h.logger.Error("Failed to list accrual history", "user_id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]AccrualEventResponse, 0, len(events))
	for _, event := range events {
		responses = append(responses, mapAccrualEventToResponse(event))
	}

	RespondOK(c, responses)
}

// GetAccrualByOrder retrieves the archived accrual for one order
func (h *HistoryHandler) GetAccrualByOrder(c *gin.Context) {
	orderID := c.Param("id")
	if orderID == "" {
		RespondBadRequest(c, "Invalid order ID")
		return
	}

	event, err := h.historyService.GetAccrualByOrder(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, outbox.ErrEventNotFound{}) {
			RespondNotFound(c, "Accrual event not found")
			return
		}
		h.logger.Error("Failed to get accrual event", "order_id", orderID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapAccrualEventToResponse(event))
}

// mapAccrualEventToResponse maps an archived accrual event to a response DTO
func mapAccrualEventToResponse(event *outbox.AccrualEvent) AccrualEventResponse {
	response := AccrualEventResponse{
		OrderID:       event.OrderID,
		UserID:        event.UserID.String(),
		EntryID:       event.EntryID.String(),
		PointsEarned:  event.PointsEarned,
		GrowthDelta:   event.GrowthDelta,
		BalanceAfter:  event.BalanceAfter,
		GrowthAfter:   event.GrowthAfter,
		CorrelationID: event.CorrelationID,
	}
	if event.TierBefore != nil {
		response.TierBefore = event.TierBefore.String()
	}
	if event.TierAfter != nil {
		response.TierAfter = event.TierAfter.String()
	}
	if event.ProcessedAt != nil {
		response.ProcessedAt = event.ProcessedAt.Format(time.RFC3339)
	}
	return response
}
