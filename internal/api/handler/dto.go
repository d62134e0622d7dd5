package handler

// RegisterAccountRequest represents a request to create a loyalty account
type RegisterAccountRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}

// BalanceResponse represents the account snapshot in API responses
type BalanceResponse struct {
	UserID           string `json:"user_id"`
	CurrentPoints    int64  `json:"current_points"`
	TotalGrowthValue int64  `json:"total_growth_value"`
	CurrentTierID    string `json:"current_tier_id,omitempty"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
}

// CreateDebitRequest represents a request to spend points
type CreateDebitRequest struct {
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	Type        string `json:"type" binding:"required,oneof=exchange manual_adjust expire"`
	SourceID    string `json:"source_id" binding:"required"`
	Description string `json:"description,omitempty"`
}

// LedgerEntryResponse represents a ledger entry in API responses
type LedgerEntryResponse struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Amount      int64  `json:"amount"`
	Type        string `json:"type"`
	SourceID    string `json:"source_id"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
	Replayed    bool   `json:"replayed,omitempty"`
}

// LedgerQueryParams represents filters for the ledger listing endpoint
type LedgerQueryParams struct {
	From    string `form:"from"`
	To      string `form:"to"`
	Page    int    `form:"page,default=1" binding:"min=1"`
	PerPage int    `form:"per_page,default=20" binding:"min=1,max=100"`
}

// CreateCouponRequest represents an admin request to create a campaign
type CreateCouponRequest struct {
	Name          string `json:"name" binding:"required"`
	Type          string `json:"type" binding:"required,oneof=amount_off discount"`
	Value         string `json:"value" binding:"required"`
	MinSpend      string `json:"min_spend,omitempty"`
	TotalQuantity int64  `json:"total_quantity" binding:"required,gt=0"`
	StartTime     string `json:"start_time" binding:"required"`
	EndTime       string `json:"end_time" binding:"required"`
}

// CouponResponse represents a coupon campaign in API responses
type CouponResponse struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Type              string `json:"type"`
	Value             string `json:"value"`
	MinSpend          string `json:"min_spend"`
	TotalQuantity     int64  `json:"total_quantity"`
	RemainingQuantity int64  `json:"remaining_quantity"`
	StartTime         string `json:"start_time"`
	EndTime           string `json:"end_time"`
	IsActive          bool   `json:"is_active"`
}

// ClaimRequest represents a request to claim one unit of a coupon
type ClaimRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}

// ClaimResponse represents a successful claim in API responses
type ClaimResponse struct {
	ClaimID    string `json:"claim_id"`
	UserID     string `json:"user_id"`
	CouponID   string `json:"coupon_id"`
	Status     string `json:"status"`
	ObtainedAt string `json:"obtained_at"`
	ExpiresAt  string `json:"expires_at"`
}

// CreateTierRequest represents an admin request to create a membership tier
type CreateTierRequest struct {
	Name                string `json:"name" binding:"required"`
	Level               int    `json:"level" binding:"required,gt=0"`
	RequiredGrowthValue int64  `json:"required_growth_value" binding:"min=0"`
	DiscountRate        string `json:"discount_rate,omitempty"`
	PointsRatio         string `json:"points_ratio" binding:"required"`
}

// TierResponse represents a membership tier in API responses
type TierResponse struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Level               int    `json:"level"`
	RequiredGrowthValue int64  `json:"required_growth_value"`
	DiscountRate        string `json:"discount_rate"`
	PointsRatio         string `json:"points_ratio"`
}

// OrderPaidRequest represents the order-paid webhook payload
type OrderPaidRequest struct {
	OrderID   string `json:"order_id" binding:"required"`
	UserID    string `json:"user_id" binding:"required,uuid"`
	PayAmount string `json:"pay_amount" binding:"required"`
}

// AccrualEventResponse represents an archived accrual in API responses
type AccrualEventResponse struct {
	OrderID       string `json:"order_id"`
	UserID        string `json:"user_id"`
	EntryID       string `json:"entry_id"`
	PointsEarned  int64  `json:"points_earned"`
	GrowthDelta   int64  `json:"growth_delta"`
	BalanceAfter  int64  `json:"balance_after"`
	GrowthAfter   int64  `json:"growth_after"`
	TierBefore    string `json:"tier_before,omitempty"`
	TierAfter     string `json:"tier_after,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
	ProcessedAt   string `json:"processed_at,omitempty"`
}

// BalanceAuditResponse represents a snapshot-vs-ledger reconciliation result
type BalanceAuditResponse struct {
	UserID        string `json:"user_id"`
	CurrentPoints int64  `json:"current_points"`
	LedgerSum     int64  `json:"ledger_sum"`
	Consistent    bool   `json:"consistent"`
}

// CouponStockAuditResponse represents a stock-vs-claims reconciliation result
type CouponStockAuditResponse struct {
	CouponID          string `json:"coupon_id"`
	TotalQuantity     int64  `json:"total_quantity"`
	RemainingQuantity int64  `json:"remaining_quantity"`
	ClaimCount        int64  `json:"claim_count"`
	Consistent        bool   `json:"consistent"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}
