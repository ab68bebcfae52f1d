package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/internal/session"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/middleware"
)

// RouterDeps groups everything the router mounts.
type RouterDeps struct {
	Sessions *session.Manager
	Catalog  *service.CatalogService
	Search   *service.SearchService
	Checkout *service.CheckoutService
	Orders   *service.OrderService
	Returns  *service.ReturnService

	Health      *health.Handler
	Tokens      middleware.TokenValidator
	RateLimiter *middleware.RateLimiter
	CORS        middleware.CORSConfig
	Metrics     *middleware.HTTPMetrics
	Gatherer    prometheus.Gatherer

	RequestTimeout time.Duration
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(deps RouterDeps, logger *slog.Logger) http.Handler {
	if deps.RequestTimeout <= 0 {
		deps.RequestTimeout = 30 * time.Second
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(deps.CORS))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(deps.RequestTimeout))
	r.Use(middleware.RequestLogging(logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", deps.Health.LivenessHandler())
	r.Get("/health/ready", deps.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))

	sessionHandler := NewSessionHandler(deps.Sessions, logger)
	cartHandler := NewCartHandler(deps.Sessions, logger)
	wishlistHandler := NewWishlistHandler(deps.Sessions, logger)
	catalogHandler := NewCatalogHandler(deps.Catalog, deps.Search, logger)
	checkoutHandler := NewCheckoutHandler(deps.Checkout, deps.Sessions, logger)
	orderHandler := NewOrderHandler(deps.Orders, deps.Returns, logger)

	limited := func(h http.HandlerFunc) http.Handler {
		if deps.RateLimiter == nil {
			return h
		}
		return deps.RateLimiter.Middleware(h)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(Notices)

		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(60))
			r.Get("/products", catalogHandler.ListProducts)
			r.Get("/products/{id}", catalogHandler.GetProduct)
			r.Get("/search", catalogHandler.Search)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(deps.Tokens))
			r.Use(middleware.NoStore)
			r.Post("/session", sessionHandler.SignIn)
			r.Delete("/session", sessionHandler.SignOut)
		})

		// Anonymous callers reach these and get the operation's sign-in
		// prompt back.
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(deps.Tokens))
			r.Use(middleware.NoStore)

			r.Post("/products/{id}/reviews", catalogHandler.SubmitReview)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Delete("/", cartHandler.ClearCart)
				r.Post("/items", cartHandler.AddItem)
				r.Put("/items/{productId}", cartHandler.UpdateQuantity)
				r.Delete("/items/{productId}", cartHandler.RemoveItem)
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", wishlistHandler.GetWishlist)
				r.Delete("/", wishlistHandler.ClearWishlist)
				r.Post("/items", wishlistHandler.AddItem)
				r.Delete("/items/{productId}", wishlistHandler.RemoveItem)
			})

			r.Method(http.MethodPost, "/coupons/validate", limited(checkoutHandler.ValidateCoupon))
			r.Get("/checkout/quote", checkoutHandler.Quote)
			r.Method(http.MethodPost, "/checkout", limited(checkoutHandler.PlaceOrder))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", orderHandler.ListOrders)
				r.Get("/{id}", orderHandler.GetOrder)
				r.Post("/{id}/returns", orderHandler.RequestReturn)
				r.Post("/{id}/refunds", orderHandler.RequestRefund)
			})
		})
	})

	return r
}
