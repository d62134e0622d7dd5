package shared

import "github.com/shopspring/decimal"

// PointsEarned computes floor(payAmount * ratio). Fractional points are never
// awarded.
func PointsEarned(payAmount, ratio decimal.Decimal) int64 {
	return payAmount.Mul(ratio).Floor().IntPart()
}

// GrowthDelta computes floor(payAmount): one growth value per whole currency
// unit paid.
func GrowthDelta(payAmount decimal.Decimal) int64 {
	return payAmount.Floor().IntPart()
}
