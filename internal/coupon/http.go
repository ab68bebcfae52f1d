package coupon

import (
	"context"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/pkg/httpclient"
)

const rulesEngine = "coupon-rules"

// HTTPAuthority asks a remote rules engine about coupons.
//
//	GET {base}/coupons/{code}/validity  -> {"valid": bool}
//	GET {base}/coupons/{code}/discount  -> {"discount_percentage": number}
type HTTPAuthority struct {
	client  httpclient.Doer
	baseURL string
}

// NewHTTPAuthority creates an HTTPAuthority. client is normally a
// circuit-breaker client.
func NewHTTPAuthority(client httpclient.Doer, baseURL string) *HTTPAuthority {
	return &HTTPAuthority{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

func (a *HTTPAuthority) url(code, leaf string) string {
	return a.baseURL + "/coupons/" + url.PathEscape(code) + "/" + leaf
}

// IsCouponValid implements Authority.
func (a *HTTPAuthority) IsCouponValid(ctx context.Context, code string) (bool, error) {
	var body struct {
		Valid bool `json:"valid"`
	}
	if err := httpclient.GetJSON(ctx, a.client, a.url(code, "validity"), rulesEngine, &body); err != nil {
		return false, err
	}
	return body.Valid, nil
}

// CouponDiscount implements Authority.
func (a *HTTPAuthority) CouponDiscount(ctx context.Context, code string) (decimal.Decimal, error) {
	var body struct {
		DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	}
	if err := httpclient.GetJSON(ctx, a.client, a.url(code, "discount"), rulesEngine, &body); err != nil {
		return decimal.Zero, err
	}
	return body.DiscountPercentage, nil
}
