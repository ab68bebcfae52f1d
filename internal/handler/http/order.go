package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/pkg/pagination"
)

// OrderHandler serves order history, returns and refunds.
type OrderHandler struct {
	orders  *service.OrderService
	returns *service.ReturnService
	logger  *slog.Logger
}

// NewOrderHandler creates an OrderHandler.
func NewOrderHandler(orders *service.OrderService, returns *service.ReturnService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, returns: returns, logger: logger}
}

// ListOrders handles GET /api/v1/orders
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	page := pagination.FromRequest(r)
	orders, total, err := h.orders.ListOrders(r.Context(), middleware.UserIDFromContext(r.Context()), page)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeData(w, r, http.StatusOK, httputil.NewPaginatedResponse(orders, total, page.Page, page.PerPage))
}

// GetOrder handles GET /api/v1/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	order, err := h.orders.GetOrder(r.Context(), middleware.UserIDFromContext(r.Context()), id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeData(w, r, http.StatusOK, order)
}

// RequestReturn handles POST /api/v1/orders/{id}/returns
func (h *OrderHandler) RequestReturn(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var in service.ReturnInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	req, err := h.returns.RequestReturn(r.Context(), middleware.UserIDFromContext(r.Context()), id, in)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeData(w, r, http.StatusCreated, req)
}

// RequestRefund handles POST /api/v1/orders/{id}/refunds
func (h *OrderHandler) RequestRefund(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var in service.ReturnInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	req, err := h.returns.RequestRefund(r.Context(), middleware.UserIDFromContext(r.Context()), id, in)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeData(w, r, http.StatusCreated, req)
}
