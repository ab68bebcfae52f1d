package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/session"
	"github.com/utafrali/storefront/pkg/httputil"
)

// WishlistHandler serves the signed-in user's wishlist.
type WishlistHandler struct {
	sessions *session.Manager
	logger   *slog.Logger
}

// NewWishlistHandler creates a WishlistHandler.
func NewWishlistHandler(sessions *session.Manager, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{sessions: sessions, logger: logger}
}

func (h *WishlistHandler) run(w http.ResponseWriter, r *http.Request, op func(s *session.Session) error) {
	s, err := current(r, h.sessions)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if err := op(s); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeData(w, r, http.StatusOK, wishlistResponse(s.Wishlist))
}

// GetWishlist handles GET /api/v1/wishlist
func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, func(s *session.Session) error {
		if s.Wishlist.UserID() == "" {
			return nil
		}
		return s.Wishlist.Reload(r.Context())
	})
}

// AddItem handles POST /api/v1/wishlist/items
func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	h.run(w, r, func(s *session.Session) error {
		return s.Wishlist.AddItem(r.Context(), req.ProductID, req.Name, req.Price)
	})
}

// RemoveItem handles DELETE /api/v1/wishlist/items/{productId}
func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}
	h.run(w, r, func(s *session.Session) error {
		return s.Wishlist.RemoveItem(r.Context(), productID)
	})
}

// ClearWishlist handles DELETE /api/v1/wishlist
func (h *WishlistHandler) ClearWishlist(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, func(s *session.Session) error {
		return s.Wishlist.Clear(r.Context())
	})
}
