package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/membership-loyalty-core/internal/api/service"
	"github.com/membership-loyalty-core/internal/domain/account"
	"github.com/membership-loyalty-core/internal/domain/ledger"
	"github.com/membership-loyalty-core/internal/platform/persistence"
)

// LedgerHandler handles HTTP requests for point movement operations
type LedgerHandler struct {
	ledgerService service.LedgerService
	logger        *slog.Logger
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(logger *slog.Logger, ledgerService service.LedgerService) *LedgerHandler {
	return &LedgerHandler{
		ledgerService: ledgerService,
		logger:        logger,
	}
}

// CreateDebit spends points on behalf of the user. A repeated source_id
// returns the original entry rather than double-charging.
func (h *LedgerHandler) CreateDebit(c *gin.Context) {
	idParam := c.Param("id")
	userID, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid user ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid user ID")
		return
	}

	var req CreateDebitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.ledgerService.Debit(c.Request.Context(), userID, req.Amount, ledger.EntryType(req.Type), req.SourceID, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrInsufficientPoints):
			RespondUnprocessable(c, "INSUFFICIENT_POINTS", "Points balance does not cover this debit")
		case errors.Is(err, account.ErrAccountNotFound{}):
			RespondNotFound(c, "Loyalty account not found")
		case errors.Is(err, persistence.ErrRetryBudgetExhausted):
			RespondServiceUnavailable(c, "Storage conflict persisted, please retry")
		default:
			h.logger.Error("Failed to debit points", "user_id", idParam, "error", err)
			RespondInternalError(c)
		}
		return
	}

	response := mapEntryToResponse(result.Entry)
	response.Replayed = result.Replayed
	if result.Replayed {
		RespondOK(c, response)
		return
	}
	RespondCreated(c, response)
}

// ListEntries retrieves a paginated, optionally time-bounded ledger history
func (h *LedgerHandler) ListEntries(c *gin.Context) {
	idParam := c.Param("id")
	userID, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid user ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid user ID")
		return
	}

	var params LedgerQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.logger.Error("Invalid query parameters", "error", err)
		RespondBadRequest(c, "Invalid query parameters")
		return
	}

	tr, err := parseTimeRange(params.From, params.To)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	entries, total, err := h.ledgerService.ListEntries(c.Request.Context(), userID, tr, params.Page, params.PerPage)
	if err != nil {
		h.logger.Error("Failed to list ledger entries", "user_id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	var responses []LedgerEntryResponse
	for _, entry := range entries {
		responses = append(responses, mapEntryToResponse(entry))
	}

	RespondWithPaginatedData(c, http.StatusOK, responses, params.Page, params.PerPage, int(total))
}

// parseTimeRange builds a ledger.TimeRange from optional RFC3339 bounds
func parseTimeRange(from, to string) (ledger.TimeRange, error) {
	var tr ledger.TimeRange
	if from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return tr, errors.New("invalid 'from' timestamp, expected RFC3339")
		}
		tr.From = t
	}
	if to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return tr, errors.New("invalid 'to' timestamp, expected RFC3339")
		}
		tr.To = t
	}
	return tr, nil
}

// mapEntryToResponse maps a ledger entry to a response DTO
func mapEntryToResponse(entry *ledger.Entry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:          entry.ID.String(),
		UserID:      entry.UserID.String(),
		Amount:      entry.Amount,
		Type:        string(entry.Type),
		SourceID:    entry.SourceID,
		Description: entry.Description,
		CreatedAt:   entry.CreatedAt.Format(time.RFC3339),
	}
}
