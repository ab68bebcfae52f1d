package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/internal/session"
)

// ValidateCouponRequest is the body of POST /api/v1/coupons/validate.
type ValidateCouponRequest struct {
	Code string `json:"code" validate:"notblank,max=50"`
}

// CheckoutHandler serves coupons, quotes and order placement.
type CheckoutHandler struct {
	checkout *service.CheckoutService
	sessions *session.Manager
	logger   *slog.Logger
}

// NewCheckoutHandler creates a CheckoutHandler.
func NewCheckoutHandler(checkout *service.CheckoutService, sessions *session.Manager, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, sessions: sessions, logger: logger}
}

// ValidateCoupon handles POST /api/v1/coupons/validate. An unknown or
// unreachable coupon is a normal answer with valid=false.
func (h *CheckoutHandler) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	var req ValidateCouponRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeData(w, r, http.StatusOK, h.checkout.ValidateCoupon(r.Context(), req.Code))
}

// Quote handles GET /api/v1/checkout/quote
func (h *CheckoutHandler) Quote(w http.ResponseWriter, r *http.Request) {
	s, err := current(r, h.sessions)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	q, err := h.checkout.Quote(r.Context(), s.Cart, r.URL.Query().Get("coupon"))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeData(w, r, http.StatusOK, q)
}

// PlaceOrder handles POST /api/v1/checkout
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var in service.PlaceOrderInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	s, err := current(r, h.sessions)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	order, err := h.checkout.PlaceOrder(r.Context(), s.Cart, in)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeData(w, r, http.StatusCreated, order)
}
