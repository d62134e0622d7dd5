package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/membership-loyalty-core/internal/api/service"
	"github.com/membership-loyalty-core/internal/domain/account"
)

// AccountHandler handles HTTP requests for loyalty account operations
type AccountHandler struct {
	accountService service.AccountService
	logger         *slog.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(logger *slog.Logger, accountService service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		logger:         logger,
	}
}

// Register creates a loyalty account for a user, rejecting duplicates
func (h *AccountHandler) Register(c *gin.Context) {
	var req RegisterAccountRequest
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

	acc, err := h.accountService.Register(c.Request.Context(), userID)
	if err != nil {
		var dupErr account.ErrDuplicateAccount
		if errors.As(err, &dupErr) {
			h.logger.Warn("Attempt to register duplicate loyalty account", "user_id", req.UserID)
			RespondConflict(c, "DUPLICATE_ACCOUNT", "Loyalty account already exists for this user")
			return
		}
		h.logger.Error("Failed to register loyalty account", "user_id", req.UserID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapAccountToResponse(acc))
}

// GetBalance retrieves the account snapshot, returning 404 if not found
func (h *AccountHandler) GetBalance(c *gin.Context) {
	idParam := c.Param("id")
	userID, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid user ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid user ID")
		return
	}

	acc, err := h.accountService.GetBalance(c.Request.Context(), userID)
	if err != nil {
		var notFound account.ErrAccountNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Loyalty account not found")
			return
		}
		h.logger.Error("Failed to get balance", "user_id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapAccountToResponse(acc))
}

// mapAccountToResponse maps an account entity to a balance response DTO
func mapAccountToResponse(acc *account.Account) BalanceResponse {
	response := BalanceResponse{
		UserID:           acc.UserID.String(),
		CurrentPoints:    acc.CurrentPoints,
		TotalGrowthValue: acc.TotalGrowthValue,
		CreatedAt:        acc.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        acc.UpdatedAt.Format(time.RFC3339),
	}
	if acc.CurrentTierID != nil {
		response.CurrentTierID = acc.CurrentTierID.String()
	}
	return response
}
