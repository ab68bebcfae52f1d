package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/session"
	"github.com/utafrali/storefront/pkg/httputil"
)

// AddItemRequest is the body for adding a product to the cart or wishlist.
type AddItemRequest struct {
	ProductID int64           `json:"product_id" validate:"gt=0"`
	Name      string          `json:"name" validate:"notblank,max=500"`
	Price     decimal.Decimal `json:"price" validate:"gte=0"`
}

// UpdateQuantityRequest is the body for changing a cart line's quantity.
// Zero or less removes the line.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartHandler serves the signed-in user's cart.
type CartHandler struct {
	sessions *session.Manager
	logger   *slog.Logger
}

// NewCartHandler creates a CartHandler.
func NewCartHandler(sessions *session.Manager, logger *slog.Logger) *CartHandler {
	return &CartHandler{sessions: sessions, logger: logger}
}

// run resolves the caller's session, applies op to it and answers with the
// resulting cart.
func (h *CartHandler) run(w http.ResponseWriter, r *http.Request, status int, op func(s *session.Session) error) {
	s, err := current(r, h.sessions)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if err := op(s); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeData(w, r, status, cartResponse(s.Cart))
}

// GetCart handles GET /api/v1/cart. Signed-in carts are re-read so a cache
// left stale by a failed reload catches up.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, http.StatusOK, func(s *session.Session) error {
		if s.Cart.UserID() == "" {
			return nil
		}
		return s.Cart.Reload(r.Context())
	})
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	h.run(w, r, http.StatusOK, func(s *session.Session) error {
		return s.Cart.AddItem(r.Context(), req.ProductID, req.Name, req.Price)
	})
}

// UpdateQuantity handles PUT /api/v1/cart/items/{productId}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}
	var req UpdateQuantityRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	h.run(w, r, http.StatusOK, func(s *session.Session) error {
		return s.Cart.UpdateQuantity(r.Context(), productID, req.Quantity)
	})
}

// RemoveItem handles DELETE /api/v1/cart/items/{productId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}
	h.run(w, r, http.StatusOK, func(s *session.Session) error {
		return s.Cart.RemoveItem(r.Context(), productID)
	})
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, http.StatusOK, func(s *session.Session) error {
		return s.Cart.Clear(r.Context())
	})
}
