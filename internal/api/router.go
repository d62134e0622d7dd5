package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/membership-loyalty-core/internal/api/handler"
	"github.com/membership-loyalty-core/internal/api/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	accountHandler *handler.AccountHandler,
	ledgerHandler *handler.LedgerHandler,
	couponHandler *handler.CouponHandler,
	tierHandler *handler.TierHandler,
	eventHandler *handler.EventHandler,
	historyHandler *handler.HistoryHandler,
	auditHandler *handler.AuditHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Loyalty account operations
		users := v1.Group("/users")
		{
			users.POST("", accountHandler.Register)
			users.GET("/:id/balance", accountHandler.GetBalance)
			users.GET("/:id/ledger", ledgerHandler.ListEntries)
			users.POST("/:id/debits", ledgerHandler.CreateDebit)
			users.GET("/:id/coupons", couponHandler.ListByUser)
			users.GET("/:id/accruals", historyHandler.ListAccruals)
			users.GET("/:id/reconciliation", auditHandler.ReconcileBalance)
		}

		// Coupon campaign operations
		coupons := v1.Group("/coupons")
		{
			coupons.GET("", couponHandler.ListActive)
			coupons.POST("", couponHandler.Create)
			coupons.POST("/:id/claims", couponHandler.Claim)
			coupons.GET("/:id/reconciliation", auditHandler.ReconcileCouponStock)
		}

		// Membership tier operations
		tiers := v1.Group("/tiers")
		{
			tiers.GET("", tierHandler.List)
			tiers.POST("", tierHandler.Create)
		}

		// Inbound order lifecycle events
		v1.POST("/events/order-paid", eventHandler.OrderPaid)

		// Archived accrual lookup by order
		v1.GET("/orders/:id/accrual", historyHandler.GetAccrualByOrder)
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
