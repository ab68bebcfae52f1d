package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/coupon"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/identity"
	redisrepo "github.com/utafrali/storefront/internal/repository/redis"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/internal/session"
	"github.com/utafrali/storefront/internal/store"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/pkg/pagination"
)

// ============================================================================
// Fakes
// ============================================================================

type stubProducts struct {
	products []domain.Product
	err      error
}

func (s *stubProducts) List(_ context.Context, _ domain.ProductFilter) ([]domain.Product, error) {
	return s.products, s.err
}

func (s *stubProducts) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	for i := range s.products {
		if s.products[i].ID == id {
			p := s.products[i]
			return &p, nil
		}
	}
	return nil, apperrors.NotFound("product", "x")
}

func (s *stubProducts) Search(_ context.Context, _ string, _ int) ([]domain.Product, error) {
	return s.products, s.err
}

type stubReviews struct{}

func (stubReviews) ListByProduct(_ context.Context, _ int64) ([]domain.Review, error) {
	return []domain.Review{}, nil
}

func (stubReviews) Upsert(_ context.Context, r *domain.Review) error {
	r.ID = 9
	return nil
}

type memOrders struct {
	mu     sync.Mutex
	orders []domain.Order
}

func (m *memOrders) Create(_ context.Context, o *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.ID = int64(len(m.orders) + 1)
	o.CreatedAt = time.Now()
	m.orders = append(m.orders, *o)
	return nil
}

func (m *memOrders) ListByUser(_ context.Context, userID string, _ pagination.Params) ([]domain.Order, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Order{}
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, len(out), nil
}

func (m *memOrders) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.ID == id {
			return &o, nil
		}
	}
	return nil, apperrors.NotFound("order", "x")
}

type stubReturns struct{ eligible bool }

func (s stubReturns) IsEligible(_ context.Context, _ int64) (bool, error) { return s.eligible, nil }

func (stubReturns) CreateReturn(_ context.Context, r *domain.ReturnRequest) error {
	r.ID = 1
	r.Status = domain.RequestStatusPending
	return nil
}

func (stubReturns) CreateRefund(_ context.Context, r *domain.RefundRequest) error {
	r.ID = 2
	r.Status = domain.RequestStatusPending
	return nil
}

type stubAuthority struct{}

func (stubAuthority) IsCouponValid(_ context.Context, code string) (bool, error) {
	return code == "SAVE10", nil
}

func (stubAuthority) CouponDiscount(_ context.Context, _ string) (decimal.Decimal, error) {
	return decimal.NewFromInt(10), nil
}

// ============================================================================
// Test helpers
// ============================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testServer struct {
	handler http.Handler
	tokens  *identity.Provider
	orders  *memOrders
	carts   *redisrepo.ItemRepository
}

func newTestServer(t *testing.T, limiter *middleware.RateLimiter) *testServer {
	t.Helper()
	logger := testLogger()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	carts := redisrepo.NewCartRepository(client, time.Hour)
	sessions := session.NewManager(
		carts,
		redisrepo.NewWishlistRepository(client, time.Hour),
		store.Deps{Logger: logger},
		session.Config{IdleTTL: time.Hour},
		logger,
	)
	products := &stubProducts{products: []domain.Product{
		{ID: 1, Name: "Coffee Mug", Price: decimal.RequireFromString("12.50")},
	}}
	orders := &memOrders{}
	orderSvc := service.NewOrderService(orders, logger)
	tokens := identity.NewProvider("test-secret", "storefront", time.Hour)

	reg := prometheus.NewRegistry()
	h := NewRouter(RouterDeps{
		Sessions:    sessions,
		Catalog:     service.NewCatalogService(products, stubReviews{}, nil, logger),
		Search:      service.NewSearchService(searchByRepo{products}, logger),
		Checkout:    service.NewCheckoutService(orders, coupon.NewResolver(stubAuthority{}, logger), nil, nil, logger),
		Orders:      orderSvc,
		Returns:     service.NewReturnService(orderSvc, stubReturns{eligible: true}, nil, logger),
		Health:      health.NewHandler(),
		Tokens:      tokens.Validate,
		RateLimiter: limiter,
		Metrics:     middleware.NewHTTPMetrics(reg, "storefront"),
		Gatherer:    reg,
	}, logger)

	return &testServer{handler: h, tokens: tokens, orders: orders, carts: carts}
}

type searchByRepo struct{ products *stubProducts }

func (s searchByRepo) Search(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	return s.products.Search(ctx, query, limit)
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
	Notices []struct {
		Level   string `json:"level"`
		Message string `json:"message"`
	} `json:"notices"`
}

func (e envelope) messages() []string {
	out := make([]string, 0, len(e.Notices))
	for _, n := range e.Notices {
		out = append(out, n.Message)
	}
	return out
}

func (s *testServer) token(t *testing.T, userID string) string {
	t.Helper()
	tok, err := s.tokens.Issue(userID, userID+"@example.com", "customer")
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

func decodeData(t *testing.T, env envelope, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

type listBody struct {
	State     string `json:"state"`
	ItemCount int    `json:"item_count"`
	Subtotal  string `json:"subtotal"`
	Items     []struct {
		ProductID int64  `json:"product_id"`
		Quantity  int    `json:"quantity"`
		UnitPrice string `json:"price"`
	} `json:"items"`
}

// ============================================================================
// Tests
// ============================================================================

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestCart_AnonymousGetsSignInPrompt(t *testing.T) {
	s := newTestServer(t, nil)

	status, env := s.do(t, http.MethodPost, "/api/v1/cart/items", "", AddItemRequest{
		ProductID: 1, Name: "Coffee Mug", Price: decimal.RequireFromString("12.50"),
	})

	assert.Equal(t, http.StatusUnauthorized, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNAUTHENTICATED", env.Error.Code)
	assert.Equal(t, []string{"Please sign in to add items to your cart"}, env.messages())
}

func TestCart_AnonymousViewIsEmpty(t *testing.T) {
	s := newTestServer(t, nil)

	status, env := s.do(t, http.MethodGet, "/api/v1/cart", "", nil)

	require.Equal(t, http.StatusOK, status)
	var body listBody
	decodeData(t, env, &body)
	assert.Equal(t, "empty", body.State)
	assert.Empty(t, body.Items)
}

func TestCart_GetPicksUpRemoteChanges(t *testing.T) {
	s := newTestServer(t, nil)
	tok := s.token(t, "user-1")
	status, _ := s.do(t, http.MethodPost, "/api/v1/session", tok, nil)
	require.Equal(t, http.StatusOK, status)

	require.NoError(t, s.carts.Insert(context.Background(), "user-1", domain.LineItem{
		ProductID: 4, Name: "Tea", UnitPrice: decimal.RequireFromString("3.00"), Quantity: 1,
	}))

	status, env := s.do(t, http.MethodGet, "/api/v1/cart", tok, nil)
	require.Equal(t, http.StatusOK, status)
	var body listBody
	decodeData(t, env, &body)
	require.Len(t, body.Items, 1)
	assert.Equal(t, int64(4), body.Items[0].ProductID)
	assert.Equal(t, "ready", body.State)
}

func TestCart_UpdateAbsentItemIsNotFound(t *testing.T) {
	s := newTestServer(t, nil)
	tok := s.token(t, "user-1")

	status, env := s.do(t, http.MethodPut, "/api/v1/cart/items/99", tok, UpdateQuantityRequest{Quantity: 3})

	assert.Equal(t, http.StatusNotFound, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
	assert.Equal(t, []string{"Failed to update cart"}, env.messages())
}

func TestSession_RequiresToken(t *testing.T) {
	s := newTestServer(t, nil)

	status, env := s.do(t, http.MethodPost, "/api/v1/session", "", nil)

	assert.Equal(t, http.StatusUnauthorized, status)
	require.NotNil(t, env.Error)
}

func TestCart_Lifecycle(t *testing.T) {
	s := newTestServer(t, nil)
	tok := s.token(t, "user-1")

	status, env := s.do(t, http.MethodPost, "/api/v1/session", tok, nil)
	require.Equal(t, http.StatusOK, status)
	var sess struct {
		UserID string   `json:"user_id"`
		Cart   listBody `json:"cart"`
	}
	decodeData(t, env, &sess)
	assert.Equal(t, "user-1", sess.UserID)
	assert.Equal(t, "ready", sess.Cart.State)

	add := AddItemRequest{ProductID: 1, Name: "Coffee Mug", Price: decimal.RequireFromString("12.50")}
	status, env = s.do(t, http.MethodPost, "/api/v1/cart/items", tok, add)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"Added to cart"}, env.messages())

	status, env = s.do(t, http.MethodPost, "/api/v1/cart/items", tok, add)
	require.Equal(t, http.StatusOK, status)

	var cart listBody
	decodeData(t, env, &cart)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, 2, cart.ItemCount)
	assert.Equal(t, "25", cart.Subtotal)

	status, env = s.do(t, http.MethodPut, "/api/v1/cart/items/1", tok, UpdateQuantityRequest{Quantity: 0})
	require.Equal(t, http.StatusOK, status)
	decodeData(t, env, &cart)
	assert.Empty(t, cart.Items)

	status, _ = s.do(t, http.MethodDelete, "/api/v1/session", tok, nil)
	assert.Equal(t, http.StatusNoContent, status)
}

func TestCart_MalformedBody(t *testing.T) {
	s := newTestServer(t, nil)

	status, env := s.do(t, http.MethodPost, "/api/v1/cart/items", s.token(t, "user-1"), "{not json")

	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
}

func TestCart_InvalidFields(t *testing.T) {
	s := newTestServer(t, nil)

	status, env := s.do(t, http.MethodPost, "/api/v1/cart/items", s.token(t, "user-1"),
		map[string]any{"product_id": 1, "name": " ", "price": "-1"})

	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Fields, "name")
	assert.Contains(t, env.Error.Fields, "price")
}

func TestCart_InvalidProductIDParam(t *testing.T) {
	s := newTestServer(t, nil)

	status, _ := s.do(t, http.MethodDelete, "/api/v1/cart/items/abc", s.token(t, "user-1"), nil)

	assert.Equal(t, http.StatusBadRequest, status)
}

func TestWishlist_DuplicateAddIsNoOp(t *testing.T) {
	s := newTestServer(t, nil)
	tok := s.token(t, "user-2")
	add := AddItemRequest{ProductID: 1, Name: "Coffee Mug", Price: decimal.RequireFromString("12.50")}

	status, _ := s.do(t, http.MethodPost, "/api/v1/wishlist/items", tok, add)
	require.Equal(t, http.StatusOK, status)

	status, env := s.do(t, http.MethodPost, "/api/v1/wishlist/items", tok, add)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"Item is already in your wishlist"}, env.messages())

	var wl listBody
	decodeData(t, env, &wl)
	assert.Len(t, wl.Items, 1)
	assert.Empty(t, wl.Subtotal)
}

func TestCoupons_Validate(t *testing.T) {
	s := newTestServer(t, nil)

	status, env := s.do(t, http.MethodPost, "/api/v1/coupons/validate", "", ValidateCouponRequest{Code: " SAVE10 "})
	require.Equal(t, http.StatusOK, status)
	var c struct {
		Code  string `json:"code"`
		Valid bool   `json:"valid"`
	}
	decodeData(t, env, &c)
	assert.True(t, c.Valid)
	assert.Equal(t, "SAVE10", c.Code)
	assert.Equal(t, []string{"Coupon applied! 10% discount"}, env.messages())

	status, env = s.do(t, http.MethodPost, "/api/v1/coupons/validate", "", ValidateCouponRequest{Code: "NOPE"})
	require.Equal(t, http.StatusOK, status)
	decodeData(t, env, &c)
	assert.False(t, c.Valid)
	assert.Equal(t, []string{"Invalid or expired coupon"}, env.messages())
}

func TestCoupons_RateLimited(t *testing.T) {
	s := newTestServer(t, middleware.NewRateLimiter(0.001, 1, testLogger()))
	body := ValidateCouponRequest{Code: "SAVE10"}

	status, _ := s.do(t, http.MethodPost, "/api/v1/coupons/validate", "", body)
	assert.Equal(t, http.StatusOK, status)

	status, _ = s.do(t, http.MethodPost, "/api/v1/coupons/validate", "", body)
	assert.Equal(t, http.StatusTooManyRequests, status)
}

func checkoutForm(coupon string) map[string]any {
	return map[string]any{
		"name":  "Ada Lovelace",
		"email": "ada@example.com",
		"shipping_address": map[string]any{
			"address": "1 Main St", "city": "London", "country": "UK", "postal_code": "N1",
		},
		"payment": map[string]any{
			"card_number": "4242424242424242", "card_expiry": "12/30", "card_cvc": "123",
		},
		"coupon_code": coupon,
	}
}

func TestCheckout_PlacesOrderAndClearsCart(t *testing.T) {
	s := newTestServer(t, nil)
	tok := s.token(t, "user-3")

	status, _ := s.do(t, http.MethodPost, "/api/v1/cart/items", tok,
		AddItemRequest{ProductID: 1, Name: "Coffee Mug", Price: decimal.RequireFromString("12.50")})
	require.Equal(t, http.StatusOK, status)

	status, env := s.do(t, http.MethodGet, "/api/v1/checkout/quote?coupon=SAVE10", tok, nil)
	require.Equal(t, http.StatusOK, status)
	var quote struct {
		Subtotal string `json:"subtotal"`
		Total    string `json:"total"`
	}
	decodeData(t, env, &quote)
	assert.Equal(t, "12.5", quote.Subtotal)
	assert.Equal(t, "11.25", quote.Total)

	status, env = s.do(t, http.MethodPost, "/api/v1/checkout", tok, checkoutForm("SAVE10"))
	require.Equal(t, http.StatusCreated, status)
	var order struct {
		ID         int64  `json:"id"`
		Total      string `json:"total_amount"`
		CouponCode string `json:"coupon_code"`
	}
	decodeData(t, env, &order)
	assert.Equal(t, int64(1), order.ID)
	assert.Equal(t, "11.25", order.Total)
	assert.Equal(t, "SAVE10", order.CouponCode)
	assert.Contains(t, env.messages(), "Order placed successfully")

	status, env = s.do(t, http.MethodGet, "/api/v1/cart", tok, nil)
	require.Equal(t, http.StatusOK, status)
	var cart listBody
	decodeData(t, env, &cart)
	assert.Empty(t, cart.Items)

	status, env = s.do(t, http.MethodGet, "/api/v1/orders", tok, nil)
	require.Equal(t, http.StatusOK, status)
	var page struct {
		Data       []json.RawMessage `json:"data"`
		TotalCount int               `json:"total_count"`
	}
	decodeData(t, env, &page)
	assert.Equal(t, 1, page.TotalCount)
	assert.Len(t, page.Data, 1)
}

func TestCheckout_EmptyCart(t *testing.T) {
	s := newTestServer(t, nil)

	status, env := s.do(t, http.MethodPost, "/api/v1/checkout", s.token(t, "user-4"), checkoutForm(""))

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, []string{"Your cart is empty"}, env.messages())
	assert.Empty(t, s.orders.orders)
}

func TestCheckout_AnonymousQuote(t *testing.T) {
	s := newTestServer(t, nil)

	status, env := s.do(t, http.MethodGet, "/api/v1/checkout/quote", "", nil)

	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, []string{"Please sign in to checkout"}, env.messages())
}

func TestOrders_OtherUsersOrderIsNotFound(t *testing.T) {
	s := newTestServer(t, nil)
	require.NoError(t, s.orders.Create(context.Background(), &domain.Order{UserID: "someone-else"}))

	status, _ := s.do(t, http.MethodGet, "/api/v1/orders/1", s.token(t, "user-5"), nil)

	assert.Equal(t, http.StatusNotFound, status)
}

func TestOrders_RequestReturn(t *testing.T) {
	s := newTestServer(t, nil)
	require.NoError(t, s.orders.Create(context.Background(), &domain.Order{
		UserID: "user-6", Total: decimal.RequireFromString("20"),
	}))
	tok := s.token(t, "user-6")

	status, env := s.do(t, http.MethodPost, "/api/v1/orders/1/returns", tok, map[string]any{"reason": "broken"})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, []string{"Return request submitted"}, env.messages())

	status, _ = s.do(t, http.MethodPost, "/api/v1/orders/1/refunds", tok, map[string]any{"reason": "broken", "amount": "25"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestProducts_ListAndFilterValidation(t *testing.T) {
	s := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products?min_price=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=60", rec.Header().Get("Cache-Control"))

	status, env := s.do(t, http.MethodGet, "/api/v1/products?min_price=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "min_price must be a non-negative number", env.Error.Message)

	status, _ = s.do(t, http.MethodGet, "/api/v1/products?min_rating=4&max_rating=2", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestProducts_GetAndReview(t *testing.T) {
	s := newTestServer(t, nil)

	status, env := s.do(t, http.MethodGet, "/api/v1/products/1", "", nil)
	require.Equal(t, http.StatusOK, status)
	var detail struct {
		Name    string            `json:"name"`
		Reviews []json.RawMessage `json:"reviews"`
	}
	decodeData(t, env, &detail)
	assert.Equal(t, "Coffee Mug", detail.Name)

	status, env = s.do(t, http.MethodPost, "/api/v1/products/1/reviews", "", service.ReviewInput{Rating: 5})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, []string{"Please sign in to submit a review"}, env.messages())

	status, env = s.do(t, http.MethodPost, "/api/v1/products/1/reviews", s.token(t, "user-7"), service.ReviewInput{Rating: 5})
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, []string{"Review submitted successfully"}, env.messages())
}

func TestSearch(t *testing.T) {
	s := newTestServer(t, nil)

	status, env := s.do(t, http.MethodGet, "/api/v1/search?q=mug", "", nil)
	require.Equal(t, http.StatusOK, status)
	var products []domain.Product
	decodeData(t, env, &products)
	assert.Len(t, products, 1)

	status, env = s.do(t, http.MethodGet, "/api/v1/search?q=%20%20", "", nil)
	require.Equal(t, http.StatusOK, status)
	decodeData(t, env, &products)
	assert.Empty(t, products)
}
