package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/membership-loyalty-core/internal/api/service"
	"github.com/membership-loyalty-core/internal/domain/account"
	"github.com/membership-loyalty-core/internal/domain/coupon"
)

// AuditHandler handles HTTP requests for reconciliation checks
type AuditHandler struct {
	auditService service.AuditService
	logger       *slog.Logger
}

// NewAuditHandler creates a new reconciliation handler
func NewAuditHandler(logger *slog.Logger, auditService service.AuditService) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
		logger:       logger,
	}
}

// ReconcileBalance compares the account snapshot against the ledger sum
func (h *AuditHandler) ReconcileBalance(c *gin.Context) {
	idParam := c.Param("id")
	userID, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid user ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid user ID")
		return
	}

	audit, err := h.auditService.ReconcileBalance(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound{}) {
			RespondNotFound(c, "Loyalty account not found")
			return
		}
		h.logger.Error("Failed to reconcile balance", "user_id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	if !audit.Consistent {
		h.logger.Warn("Balance drift detected",
			"user_id", idParam,
			"current_points", audit.CurrentPoints,
			"ledger_sum", audit.LedgerSum)
	}

	RespondOK(c, BalanceAuditResponse{
		UserID:        audit.UserID.String(),
		CurrentPoints: audit.CurrentPoints,
		LedgerSum:     audit.LedgerSum,
		Consistent:    audit.Consistent,
	})
}

// ReconcileCouponStock compares a coupon's remaining stock against claim rows
func (h *AuditHandler) ReconcileCouponStock(c *gin.Context) {
	idParam := c.Param("id")
	couponID, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid coupon ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid coupon ID")
		return
	}

	audit, err := h.auditService.ReconcileCouponStock(c.Request.Context(), couponID)
	if err != nil {
		if errors.Is(err, coupon.ErrCouponNotFound{}) {
			RespondNotFound(c, "Coupon not found")
			return
		}
		h.logger.Error("Failed to reconcile coupon stock", "coupon_id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	if !audit.Consistent {
		h.logger.Warn("Coupon stock drift detected",
			"coupon_id", idParam,
			"claim_count", audit.ClaimCount,
			"remaining_quantity", audit.RemainingQuantity)
	}

	RespondOK(c, CouponStockAuditResponse{
		CouponID:          audit.CouponID.String(),
		TotalQuantity:     audit.TotalQuantity,
		RemainingQuantity: audit.RemainingQuantity,
		ClaimCount:        audit.ClaimCount,
		Consistent:        audit.Consistent,
	})
}
