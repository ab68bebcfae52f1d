package coupon

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/pkg/database"
)

// PostgresAuthority calls the is_coupon_valid and get_coupon_discount
// stored functions.
type PostgresAuthority struct {
	db database.DBTX
}

// NewPostgresAuthority creates a PostgresAuthority.
func NewPostgresAuthority(db database.DBTX) *PostgresAuthority {
	return &PostgresAuthority{db: db}
}

// IsCouponValid implements Authority.
func (a *PostgresAuthority) IsCouponValid(ctx context.Context, code string) (bool, error) {
	var valid bool
	if err := a.db.QueryRow(ctx, `SELECT is_coupon_valid($1)`, code).Scan(&valid); err != nil {
		return false, fmt.Errorf("is_coupon_valid: %w", err)
	}
	return valid, nil
}

// CouponDiscount implements Authority. Unknown codes yield zero.
func (a *PostgresAuthority) CouponDiscount(ctx context.Context, code string) (decimal.Decimal, error) {
	var pct decimal.NullDecimal
	if err := a.db.QueryRow(ctx, `SELECT get_coupon_discount($1)`, code).Scan(&pct); err != nil {
		return decimal.Zero, fmt.Errorf("get_coupon_discount: %w", err)
	}
	if !pct.Valid {
		return decimal.Zero, nil
	}
	return pct.Decimal, nil
}
