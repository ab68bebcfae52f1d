// Package coupon resolves discount codes against an external authority.
// Resolution fails closed: any authority error reads as "invalid" and
// "no discount", and nothing is cached between calls.
package coupon

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/logger"
)

// Authority owns coupon rules.
type Authority interface {
	IsCouponValid(ctx context.Context, code string) (bool, error)
	CouponDiscount(ctx context.Context, code string) (decimal.Decimal, error)
}

// Resolver wraps an Authority with fail-closed semantics.
type Resolver struct {
	authority Authority
	logger    *slog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(authority Authority, logger *slog.Logger) *Resolver {
	return &Resolver{authority: authority, logger: logger}
}

func normalize(code string) string {
	return strings.TrimSpace(code)
}

func (r *Resolver) log(ctx context.Context) *slog.Logger {
	if l := logger.FromContext(ctx); l != slog.Default() {
		return l
	}
	return r.logger
}

// IsValid reports whether code is currently valid. Authority errors are
// logged and reported as false. An empty code is invalid without a call.
func (r *Resolver) IsValid(ctx context.Context, code string) bool {
	code = normalize(code)
	if code == "" {
		return false
	}
	ok, err := r.authority.IsCouponValid(ctx, code)
	if err != nil {
		r.log(ctx).ErrorContext(ctx, "coupon validation failed",
			slog.String("code", code),
			slog.String("error", err.Error()),
		)
		return false
	}
	return ok
}

// DiscountPercentage returns the percentage for code, or zero when the
// authority fails.
func (r *Resolver) DiscountPercentage(ctx context.Context, code string) decimal.Decimal {
	code = normalize(code)
	if code == "" {
		return decimal.Zero
	}
	pct, err := r.authority.CouponDiscount(ctx, code)
	if err != nil {
		r.log(ctx).ErrorContext(ctx, "coupon discount lookup failed",
			slog.String("code", code),
			slog.String("error", err.Error()),
		)
		return decimal.Zero
	}
	return pct
}

// Resolve validates code and, when valid, looks up its discount. Invalid
// codes resolve to a zero discount.
func (r *Resolver) Resolve(ctx context.Context, code string) domain.Coupon {
	code = normalize(code)
	c := domain.Coupon{Code: code, DiscountPercentage: decimal.Zero}
	if !r.IsValid(ctx, code) {
		return c
	}
	c.Valid = true
	c.DiscountPercentage = r.DiscountPercentage(ctx, code)
	return c
}
