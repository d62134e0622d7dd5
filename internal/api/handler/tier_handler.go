package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/membership-loyalty-core/internal/api/service"
	"github.com/membership-loyalty-core/internal/domain/tier"
)

// TierHandler handles HTTP requests for membership tier operations
type TierHandler struct {
	tierService service.TierService
	logger      *slog.Logger
}

// NewTierHandler creates a new tier handler
func NewTierHandler(logger *slog.Logger, tierService service.TierService) *TierHandler {
	return &TierHandler{
		tierService: tierService,
		logger:      logger,
	}
}

// Create registers a new membership tier
func (h *TierHandler) Create(c *gin.Context) {
	var req CreateTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	discountRate := decimal.Zero
	if req.DiscountRate != "" {
		var err error
		discountRate, err = decimal.NewFromString(req.DiscountRate)
		if err != nil {
			RespondBadRequest(c, "Invalid discount rate")
			return
		}
	}
	pointsRatio, err := decimal.NewFromString(req.PointsRatio)
	if err != nil {
		RespondBadRequest(c, "Invalid points ratio")
		return
	}

	created, err := h.tierService.Create(c.Request.Context(), req.Name, req.Level, req.RequiredGrowthValue, discountRate, pointsRatio)
	if err != nil {
		var dupErr tier.ErrDuplicateLevel
		switch {
		case errors.As(err, &dupErr):
			h.logger.Warn("Attempt to create duplicate tier level", "level", req.Level)
			RespondConflict(c, "DUPLICATE_LEVEL", "A tier with this level already exists")
		case errors.Is(err, tier.ErrEmptyName),
			errors.Is(err, tier.ErrInvalidLevel),
			errors.Is(err, tier.ErrNegativeThreshold),
			errors.Is(err, tier.ErrInvalidPointsRatio):
			RespondBadRequest(c, err.Error())
		default:
			h.logger.Error("Failed to create tier", "name", req.Name, "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondCreated(c, mapTierToResponse(created))
}

// List retrieves all tiers ordered by ascending level
func (h *TierHandler) List(c *gin.Context) {
	tiers, err := h.tierService.List(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list tiers", "error", err)
		RespondInternalError(c)
		return
	}

	var responses []TierResponse
	for _, t := range tiers {
		responses = append(responses, mapTierToResponse(t))
	}

	RespondOK(c, responses)
}

// mapTierToResponse maps a tier entity to a response DTO
func mapTierToResponse(t *tier.Tier) TierResponse {
	return TierResponse{
		ID:                  t.ID.String(),
		Name:                t.Name,
		Level:               t.Level,
		RequiredGrowthValue: t.RequiredGrowthValue,
		DiscountRate:        t.DiscountRate.String(),
		PointsRatio:         t.PointsRatio.String(),
	}
}
