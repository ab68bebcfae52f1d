package domain

import "github.com/shopspring/decimal"

// Coupon is a resolved discount code. It is never stored locally.
type Coupon struct {
	Code               string          `json:"code"`
	Valid              bool            `json:"valid"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
}
