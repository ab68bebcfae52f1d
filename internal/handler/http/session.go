package http

import (
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/session"
	"github.com/utafrali/storefront/internal/store"
	"github.com/utafrali/storefront/pkg/middleware"
)

// ListResponse is the body of cart and wishlist responses.
type ListResponse struct {
	State     store.State       `json:"state"`
	Items     []domain.LineItem `json:"items"`
	ItemCount int               `json:"item_count"`
	Subtotal  *decimal.Decimal  `json:"subtotal,omitempty"`
}

func cartResponse(c *store.Cart) ListResponse {
	items := c.Items()
	subtotal := c.Subtotal()
	return ListResponse{State: c.State(), Items: items, ItemCount: domain.ItemCount(items), Subtotal: &subtotal}
}

func wishlistResponse(wl *store.Wishlist) ListResponse {
	items := wl.Items()
	return ListResponse{State: wl.State(), Items: items, ItemCount: domain.ItemCount(items)}
}

// SessionResponse is the body returned on sign-in.
type SessionResponse struct {
	UserID   string       `json:"user_id"`
	Cart     ListResponse `json:"cart"`
	Wishlist ListResponse `json:"wishlist"`
}

// SessionHandler signs users in and out.
type SessionHandler struct {
	sessions *session.Manager
	logger   *slog.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(sessions *session.Manager, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, logger: logger}
}

// current returns the caller's session, or a guest session for anonymous
// callers. Anonymous list operations fail with the list's sign-in prompt.
func current(r *http.Request, sessions *session.Manager) (*session.Session, error) {
	uid := middleware.UserIDFromContext(r.Context())
	if uid == "" {
		return sessions.Guest(), nil
	}
	return sessions.Get(r.Context(), uid)
}

// SignIn handles POST /api/v1/session
func (h *SessionHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.SignIn(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeData(w, r, http.StatusOK, SessionResponse{
		UserID:   s.UserID,
		Cart:     cartResponse(s.Cart),
		Wishlist: wishlistResponse(s.Wishlist),
	})
}

// SignOut handles DELETE /api/v1/session
func (h *SessionHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	h.sessions.SignOut(r.Context(), middleware.UserIDFromContext(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}
