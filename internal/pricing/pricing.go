// Package pricing turns line items and a discount percentage into totals.
// Amounts are exact decimals; rounding happens only at display time.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// LineTotal is unit price times quantity.
func LineTotal(item domain.LineItem) decimal.Decimal {
	return item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
}

// Subtotal sums LineTotal over items without rounding any term. An empty
// sequence yields zero.
func Subtotal(items []domain.LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(LineTotal(it))
	}
	return sum
}

// ApplyDiscount returns max(0, amount × (1 − percentage/100)). percentage is
// not validated: a negative value raises the amount, and anything above 100
// floors the result at zero.
func ApplyDiscount(amount, percentage decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(percentage.Div(hundred))
	total := amount.Mul(factor)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

// Round rounds half away from zero to cents for display.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Quote is a priced cart.
type Quote struct {
	Subtotal           decimal.Decimal `json:"subtotal"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	DiscountAmount     decimal.Decimal `json:"discount_amount"`
	Total              decimal.Decimal `json:"total"`
}

// NewQuote prices items with the given discount percentage.
func NewQuote(items []domain.LineItem, percentage decimal.Decimal) Quote {
	sub := Subtotal(items)
	total := ApplyDiscount(sub, percentage)
	return Quote{
		Subtotal:           sub,
		DiscountPercentage: percentage,
		DiscountAmount:     sub.Sub(total),
		Total:              total,
	}
}

// Rounded returns q with every amount rounded for display.
func (q Quote) Rounded() Quote {
	return Quote{
		Subtotal:           Round(q.Subtotal),
		DiscountPercentage: q.DiscountPercentage,
		DiscountAmount:     Round(q.DiscountAmount),
		Total:              Round(q.Total),
	}
}
