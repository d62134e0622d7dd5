package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/membership-loyalty-core/internal/api/service"
	"github.com/membership-loyalty-core/internal/domain/account"
	"github.com/membership-loyalty-core/internal/domain/coupon"
	"github.com/membership-loyalty-core/internal/platform/persistence"
)

// CouponHandler handles HTTP requests for coupon campaign operations
type CouponHandler struct {
	couponService service.CouponService
	logger        *slog.Logger
}

// NewCouponHandler creates a new coupon handler
func NewCouponHandler(logger *slog.Logger, couponService service.CouponService) *CouponHandler {
	return &CouponHandler{
		couponService: couponService,
		logger:        logger,
	}
}

// Create registers a new coupon campaign
func (h *CouponHandler) Create(c *gin.Context) {
	var req CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	value, err := decimal.NewFromString(req.Value)
	if err != nil {
		RespondBadRequest(c, "Invalid coupon value")
		return
	}
	minSpend := decimal.Zero
	if req.MinSpend != "" {
		minSpend, err = decimal.NewFromString(req.MinSpend)
		if err != nil {
			RespondBadRequest(c, "Invalid minimum spend")
			return
		}
	}
	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		RespondBadRequest(c, "Invalid start time, expected RFC3339")
		return
	}
	endTime, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		RespondBadRequest(c, "Invalid end time, expected RFC3339")
		return
	}

	created, err := h.couponService.Create(c.Request.Context(), req.Name, coupon.Type(req.Type), value, minSpend, req.TotalQuantity, startTime, endTime)
	if err != nil {
		switch {
		case errors.Is(err, coupon.ErrInvalidWindow),
			errors.Is(err, coupon.ErrInvalidQuantity),
			errors.Is(err, coupon.ErrInvalidType),
			errors.Is(err, coupon.ErrEmptyName):
			RespondBadRequest(c, err.Error())
		default:
			h.logger.Error("Failed to create coupon", "name", req.Name, "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondCreated(c, mapCouponToResponse(created))
}

// ListActive retrieves campaigns currently accepting claims
func (h *CouponHandler) ListActive(c *gin.Context) {
	coupons, err := h.couponService.ListActive(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list active coupons", "error", err)
		RespondInternalError(c)
		return
	}

	var responses []CouponResponse
	for _, cp := range coupons {
		responses = append(responses, mapCouponToResponse(cp))
	}

	RespondOK(c, responses)
}

// Claim takes one unit of a coupon for a user. Losing a stock race yields
// 409 with code OUT_OF_STOCK, never a 500.
func (h *CouponHandler) Claim(c *gin.Context) {
	idParam := c.Param("id")
	couponID, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid coupon ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid coupon ID")
		return
	}

	var req ClaimRequest
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

	claim, err := h.couponService.Claim(c.Request.Context(), userID, couponID)
	if err != nil {
		switch {
		case errors.Is(err, coupon.ErrOutOfStock{}):
			RespondConflict(c, "OUT_OF_STOCK", "Coupon has no remaining stock")
		case errors.Is(err, coupon.ErrCouponInactive{}):
			RespondUnprocessable(c, "COUPON_INACTIVE", "Coupon is inactive or outside its validity window")
		case errors.Is(err, coupon.ErrCouponNotFound{}):
			RespondNotFound(c, "Coupon not found")
		case errors.Is(err, account.ErrAccountNotFound{}):
			RespondNotFound(c, "Loyalty account not found")
		case errors.Is(err, persistence.ErrRetryBudgetExhausted):
			RespondServiceUnavailable(c, "Storage conflict persisted, please retry")
		default:
			h.logger.Error("Failed to claim coupon", "coupon_id", idParam, "user_id", req.UserID, "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondCreated(c, mapClaimToResponse(claim))
}

// ListByUser retrieves the user's claimed coupons
func (h *CouponHandler) ListByUser(c *gin.Context) {
	idParam := c.Param("id")
	userID, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid user ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid user ID")
		return
	}

	claims, err := h.couponService.ListByUser(c.Request.Context(), userID)
	if err != nil {
		var notFound account.ErrAccountNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Loyalty account not found")
			return
		}
		h.logger.Error("Failed to list user coupons", "user_id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	var responses []ClaimResponse
	for _, claim := range claims {
		responses = append(responses, mapClaimToResponse(claim))
	}

	RespondOK(c, responses)
}

// mapCouponToResponse maps a coupon entity to a response DTO
func mapCouponToResponse(cp *coupon.Coupon) CouponResponse {
	return CouponResponse{
		ID:                cp.ID.String(),
		Name:              cp.Name,
		Type:              string(cp.Type),
		Value:             cp.Value.String(),
		MinSpend:          cp.MinSpend.String(),
		TotalQuantity:     cp.TotalQuantity,
		RemainingQuantity: cp.RemainingQuantity,
		StartTime:         cp.StartTime.Format(time.RFC3339),
		EndTime:           cp.EndTime.Format(time.RFC3339),
		IsActive:          cp.IsActive,
	}
}

// mapClaimToResponse maps a claim entity to a response DTO
func mapClaimToResponse(claim *coupon.UserCoupon) ClaimResponse {
	return ClaimResponse{
		ClaimID:    claim.ID.String(),
		UserID:     claim.UserID.String(),
		CouponID:   claim.CouponID.String(),
		Status:     string(claim.Status),
		ObtainedAt: claim.ObtainedAt.Format(time.RFC3339),
		ExpiresAt:  claim.ExpiresAt.Format(time.RFC3339),
	}
}
