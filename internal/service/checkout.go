// Package service holds the storefront's use cases on top of the state
// store, the coupon resolver and the repositories.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/coupon"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/notice"
	"github.com/utafrali/storefront/internal/pricing"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/internal/store"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
)

// Checkout notices.
const (
	msgSignInCheckout = "Please sign in to checkout"
	msgCartEmpty      = "Your cart is empty"
	msgOrderFailed    = "Failed to create order"
	msgOrderPlaced    = "Order placed successfully"
	msgCouponInvalid  = "Invalid or expired coupon"
)

// OrderPublisher is told about every persisted order.
type OrderPublisher interface {
	PublishOrderPlaced(ctx context.Context, o *domain.Order) error
}

// PaymentInput carries the card fields from the checkout form. They are
// checked for presence only and never stored.
type PaymentInput struct {
	CardNumber string `json:"card_number" validate:"notblank"`
	CardExpiry string `json:"card_expiry" validate:"notblank"`
	CardCVC    string `json:"card_cvc" validate:"notblank"`
}

// PlaceOrderInput is the checkout form.
type PlaceOrderInput struct {
	Name       string         `json:"name" validate:"notblank,max=200"`
	Email      string         `json:"email" validate:"required,email"`
	Address    domain.Address `json:"shipping_address"`
	Payment    PaymentInput   `json:"payment"`
	CouponCode string         `json:"coupon_code" validate:"max=64"`
}

// CheckoutQuote prices the current cart with a coupon applied.
type CheckoutQuote struct {
	Items  []domain.LineItem `json:"items"`
	Coupon domain.Coupon     `json:"coupon"`
	pricing.Quote
}

// CheckoutService turns a cart into an order.
type CheckoutService struct {
	orders      repository.OrderRepository
	coupons     *coupon.Resolver
	publisher   OrderPublisher
	notifier    notice.Notifier
	logger      *slog.Logger
	orderNumber func() string
}

// NewCheckoutService creates a CheckoutService. publisher may be nil.
func NewCheckoutService(
	orders repository.OrderRepository,
	coupons *coupon.Resolver,
	publisher OrderPublisher,
	notifier notice.Notifier,
	logger *slog.Logger,
) *CheckoutService {
	if notifier == nil {
		notifier = notice.ContextNotifier{}
	}
	return &CheckoutService{
		orders:      orders,
		coupons:     coupons,
		publisher:   publisher,
		notifier:    notifier,
		logger:      logger,
		orderNumber: randomOrderNumber,
	}
}

// randomOrderNumber returns a display number in [100000, 999999].
func randomOrderNumber() string {
	return strconv.Itoa(100000 + rand.IntN(900000))
}

func (s *CheckoutService) log(ctx context.Context) *slog.Logger {
	return logger.WithContext(ctx, s.logger)
}

// ValidateCoupon resolves code and notifies the outcome.
func (s *CheckoutService) ValidateCoupon(ctx context.Context, code string) domain.Coupon {
	c := s.coupons.Resolve(ctx, code)
	if c.Valid {
		s.notifier.Notify(ctx, notice.Success(fmt.Sprintf("Coupon applied! %s%% discount", c.DiscountPercentage.String())))
	} else {
		s.notifier.Notify(ctx, notice.Error(msgCouponInvalid))
	}
	return c
}

// Quote prices the cart's cached items. The coupon is re-validated on every
// call; an invalid or unreachable coupon prices at 0%.
func (s *CheckoutService) Quote(ctx context.Context, cart *store.Cart, code string) (*CheckoutQuote, error) {
	if cart.UserID() == "" {
		s.notifier.Notify(ctx, notice.Error(msgSignInCheckout))
		return nil, apperrors.Unauthenticated(msgSignInCheckout)
	}

	items := cart.Items()
	c := s.coupons.Resolve(ctx, code)
	if strings.TrimSpace(code) != "" && !c.Valid {
		s.notifier.Notify(ctx, notice.Error(msgCouponInvalid))
	}
	return &CheckoutQuote{
		Items:  items,
		Coupon: c,
		Quote:  pricing.NewQuote(items, c.DiscountPercentage).Rounded(),
	}, nil
}

// PlaceOrder snapshots the cart into an order, persists it, logs the
// confirmation and clears the cart. A failure to clear the cart does not
// undo the order.
func (s *CheckoutService) PlaceOrder(ctx context.Context, cart *store.Cart, in PlaceOrderInput) (*domain.Order, error) {
	uid := cart.UserID()
	if uid == "" {
		s.notifier.Notify(ctx, notice.Error(msgSignInCheckout))
		return nil, apperrors.Unauthenticated(msgSignInCheckout)
	}

	items := cart.Items()
	if len(items) == 0 {
		s.notifier.Notify(ctx, notice.Error(msgCartEmpty))
		return nil, apperrors.ValidationFailed(msgCartEmpty)
	}

	c := s.coupons.Resolve(ctx, in.CouponCode)
	subtotal := pricing.Subtotal(items)
	order := &domain.Order{
		OrderNumber:        s.orderNumber(),
		UserID:             uid,
		CustomerName:       strings.TrimSpace(in.Name),
		Email:              strings.TrimSpace(in.Email),
		Items:              items,
		Subtotal:           subtotal,
		DiscountPercentage: c.DiscountPercentage,
		Total:              pricing.Round(pricing.ApplyDiscount(subtotal, c.DiscountPercentage)),
		ShippingAddress:    in.Address,
		PaymentMethod:      domain.PaymentMethodCard,
		Status:             domain.OrderStatusProcessing,
	}
	if c.Valid {
		order.CouponCode = c.Code
	} else {
		order.DiscountPercentage = decimal.Zero
	}

	if err := s.orders.Create(ctx, order); err != nil {
		s.log(ctx).ErrorContext(ctx, "order insertion failed",
			slog.String("user_id", uid),
			slog.String("order_number", order.OrderNumber),
			slog.String("error", err.Error()),
		)
		s.notifier.Notify(ctx, notice.Error(msgOrderFailed))
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, err
		}
		return nil, apperrors.RemoteCallFailed(msgOrderFailed, err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishOrderPlaced(ctx, order); err != nil {
			s.log(ctx).ErrorContext(ctx, "failed to publish order.placed event",
				slog.Int64("order_id", order.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.log(ctx).InfoContext(ctx, "order confirmation email",
		slog.String("order_number", order.OrderNumber),
		slog.String("body", order.Summary()),
	)
	s.log(ctx).InfoContext(ctx, "Email sent to: "+order.Email, slog.String("order_number", order.OrderNumber))

	if err := cart.Clear(ctx); err != nil {
		s.log(ctx).WarnContext(ctx, "cart not cleared after checkout",
			slog.String("order_number", order.OrderNumber),
			slog.String("error", err.Error()),
		)
	}

	s.notifier.Notify(ctx, notice.Success(msgOrderPlaced))
	return order, nil
}
