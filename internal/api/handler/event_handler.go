package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/membership-loyalty-core/internal/api/middleware"
	"github.com/membership-loyalty-core/internal/api/service"
	"github.com/membership-loyalty-core/internal/domain/shared"
)

// EventHandler handles inbound order lifecycle events
type EventHandler struct {
	eventService service.EventService
	logger       *slog.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler(logger *slog.Logger, eventService service.EventService) *EventHandler {
	return &EventHandler{
		eventService: eventService,
		logger:       logger,
	}
}

// OrderPaid accepts an order-paid notification and queues it for accrual.
// The response is 202; points appear on the account once the processor
// consumes the event.
func (h *EventHandler) OrderPaid(c *gin.Context) {
	var req OrderPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		RespondBadRequest(c, "Invalid user ID")
		return
	}
	payAmount, err := decimal.NewFromString(req.PayAmount)
	if err != nil {
		RespondBadRequest(c, "Invalid pay amount")
		return
	}

	event := &shared.OrderPaidEvent{
		OrderID:       req.OrderID,
		UserID:        userID,
		PayAmount:     payAmount,
		CorrelationID: middleware.GetCorrelationID(c),
		Timestamp:     time.Now(),
	}

	if err := h.eventService.PublishOrderPaid(c.Request.Context(), event); err != nil {
		switch {
		case errors.Is(err, shared.ErrMissingOrderID),
			errors.Is(err, shared.ErrMissingUserID),
			errors.Is(err, shared.ErrInvalidPayAmount):
			RespondBadRequest(c, err.Error())
		default:
			h.logger.Error("Failed to publish order paid event", "order_id", req.OrderID, "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondAccepted(c, gin.H{"order_id": req.OrderID, "status": "queued"})
}
