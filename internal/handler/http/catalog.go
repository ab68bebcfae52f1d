package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/service"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/middleware"
)

// CatalogHandler serves products, reviews and search.
type CatalogHandler struct {
	catalog *service.CatalogService
	search  *service.SearchService
	logger  *slog.Logger
}

// NewCatalogHandler creates a CatalogHandler.
func NewCatalogHandler(catalog *service.CatalogService, search *service.SearchService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, search: search, logger: logger}
}

// ListProducts handles GET /api/v1/products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter, err := parseProductFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	products, err := h.catalog.ListProducts(r.Context(), filter)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeData(w, r, http.StatusOK, products)
}

// GetProduct handles GET /api/v1/products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	detail, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeData(w, r, http.StatusOK, detail)
}

// SubmitReview handles POST /api/v1/products/{id}/reviews
func (h *CatalogHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var in service.ReviewInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	review, err := h.catalog.SubmitReview(r.Context(), middleware.UserIDFromContext(r.Context()), id, in)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeData(w, r, http.StatusCreated, review)
}

// Search handles GET /api/v1/search
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	products, err := h.search.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeData(w, r, http.StatusOK, products)
}

func parseProductFilter(q url.Values) (domain.ProductFilter, error) {
	var f domain.ProductFilter
	var err error
	if f.MinPrice, err = decimalParam(q, "min_price"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = decimalParam(q, "max_price"); err != nil {
		return f, err
	}
	if f.MinRating, err = floatParam(q, "min_rating"); err != nil {
		return f, err
	}
	if f.MaxRating, err = floatParam(q, "max_rating"); err != nil {
		return f, err
	}
	return f, nil
}

func decimalParam(q url.Values, name string) (*decimal.Decimal, error) {
	raw := q.Get(name)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return nil, apperrors.ValidationFailed(name + " must be a non-negative number")
	}
	return &d, nil
}

func floatParam(q url.Values, name string) (*float64, error) {
	raw := q.Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || v > 5 {
		return nil, apperrors.ValidationFailed(name + " must be between 0 and 5")
	}
	return &v, nil
}
