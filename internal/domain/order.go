package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Order status values.
const (
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// PaymentMethodCard is recorded on every order; the card fields themselves
// are never stored.
const PaymentMethodCard = "Credit Card"

// Address is a postal shipping address.
type Address struct {
	Street     string `json:"address" validate:"notblank,max=200"`
	City       string `json:"city" validate:"notblank,max=100"`
	State      string `json:"state" validate:"max=100"`
	Country    string `json:"country" validate:"notblank,max=100"`
	PostalCode string `json:"postal_code" validate:"notblank,max=20"`
}

// String formats the address on one line.
func (a Address) String() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{a.Street, a.City, a.State, a.Country, a.PostalCode} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Order is an immutable snapshot of a cart taken at checkout.
type Order struct {
	ID                 int64           `json:"id"`
	OrderNumber        string          `json:"order_number"`
	UserID             string          `json:"user_id"`
	CustomerName       string          `json:"customer_name"`
	Email              string          `json:"email"`
	Items              []LineItem      `json:"items"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	CouponCode         string          `json:"coupon_code,omitempty"`
	DiscountPercentage decimal.Decimal `json:"applied_discount"`
	Total              decimal.Decimal `json:"total_amount"`
	ShippingAddress    Address         `json:"shipping_address"`
	PaymentMethod      string          `json:"payment_method"`
	Status             string          `json:"status"`
	CreatedAt          time.Time       `json:"created_at"`
}

// Summary renders the confirmation text logged in place of an email.
func (o *Order) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order Confirmation #%s\n\n", o.OrderNumber)
	fmt.Fprintf(&b, "Dear %s,\n\n", o.CustomerName)
	fmt.Fprintf(&b, "Order Number: %s\n", o.OrderNumber)
	fmt.Fprintf(&b, "Subtotal: $%s\n", o.Subtotal.StringFixed(2))
	if o.DiscountPercentage.IsPositive() {
		fmt.Fprintf(&b, "Discount: %s%%\n", o.DiscountPercentage.String())
	}
	fmt.Fprintf(&b, "Total: $%s\n\nItems:\n", o.Total.StringFixed(2))
	for _, it := range o.Items {
		line := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		fmt.Fprintf(&b, "%s x %d - $%s\n", it.Name, it.Quantity, line.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nShipping Address:\n%s\n\n", o.ShippingAddress.String())
	b.WriteString("Estimated Delivery: 3-5 business days\n")
	return b.String()
}

// ReturnRequest asks for an order to be returned.
type ReturnRequest struct {
	ID        int64     `json:"id"`
	OrderID   int64     `json:"order_id"`
	UserID    string    `json:"user_id"`
	Reason    string    `json:"reason"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// RefundRequest asks for money back on an order.
type RefundRequest struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"order_id"`
	UserID    string          `json:"user_id"`
	Reason    string          `json:"reason"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

// RequestStatusPending is the initial status of return and refund requests.
const RequestStatusPending = "pending"
