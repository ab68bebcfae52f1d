// Package app wires the storefront's dependencies and runs its HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/coupon"
	"github.com/utafrali/storefront/internal/event"
	handler "github.com/utafrali/storefront/internal/handler/http"
	"github.com/utafrali/storefront/internal/identity"
	"github.com/utafrali/storefront/internal/notice"
	"github.com/utafrali/storefront/internal/repository"
	pgrepo "github.com/utafrali/storefront/internal/repository/postgres"
	redisrepo "github.com/utafrali/storefront/internal/repository/redis"
	"github.com/utafrali/storefront/internal/search"
	"github.com/utafrali/storefront/internal/search/elasticsearch"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/internal/session"
	"github.com/utafrali/storefront/internal/store"
	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/httpclient"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/pkg/tracing"
)

const serviceName = "storefront"

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	sessions       *session.Manager
	limiter        *middleware.RateLimiter
	httpServer     *http.Server
	shutdownTracer func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}
	ok := false
	defer func() {
		if !ok {
			a.closeClients()
		}
	}()

	// Tracing.
	tcfg := tracing.DefaultConfig(serviceName)
	tcfg.Environment = cfg.Environment
	tcfg.OTLPEndpoint = cfg.OTELEndpoint
	tcfg.SampleRate = cfg.OTELSampleRate
	tcfg.Enabled = cfg.OTELEnabled
	shutdownTracer, err := tracing.InitTracer(ctx, tcfg)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.shutdownTracer = shutdownTracer

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// PostgreSQL holds the catalog, orders and coupons in every configuration.
	pool, err := database.NewPostgresPool(ctx, cfg.Postgres(), logger)
	if err != nil {
		return nil, err
	}
	a.pool = pool
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.String("database", cfg.PostgresDB),
	)
	if err := database.RunMigrations(ctx, pool, pgrepo.Migrations(), logger); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	if err := database.RegisterPoolMetrics(reg, pool, serviceName); err != nil {
		return nil, fmt.Errorf("register pool metrics: %w", err)
	}

	// Kafka producer.
	if err := pkgkafka.RegisterMetrics(reg); err != nil {
		return nil, fmt.Errorf("register kafka metrics: %w", err)
	}
	a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	events := event.NewProducer(a.producer, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", pool.Ping)
	healthHandler.RegisterOptional("kafka", a.producer.Ping)

	// Cart and wishlist rows.
	var carts, wishlists repository.ItemRepository
	switch cfg.ItemStore {
	case config.BackendRedis:
		rdb, err := database.NewRedisClient(ctx, cfg.Redis(), logger)
		if err != nil {
			return nil, err
		}
		a.rdb = rdb
		carts = redisrepo.NewCartRepository(rdb, cfg.ItemTTL)
		wishlists = redisrepo.NewWishlistRepository(rdb, cfg.ItemTTL)
		healthHandler.Register("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	default:
		carts = pgrepo.NewCartRepository(pool)
		wishlists = pgrepo.NewWishlistRepository(pool)
	}
	logger.Info("item store selected", slog.String("backend", cfg.ItemStore))

	// Coupon authority.
	var authority coupon.Authority
	switch cfg.CouponAuthority {
	case config.BackendHTTP:
		if err := httpclient.RegisterMetrics(reg); err != nil {
			return nil, fmt.Errorf("register circuit breaker metrics: %w", err)
		}
		hc := httpclient.DefaultConfig()
		hc.Timeout = cfg.CouponTimeout
		breaker := httpclient.NewCircuitBreakerClient(
			httpclient.New(hc),
			httpclient.DefaultCircuitBreakerConfig("coupon-service"),
			logger,
		)
		authority = coupon.NewHTTPAuthority(breaker, cfg.CouponServiceURL)
	default:
		authority = coupon.NewPostgresAuthority(pool)
	}
	resolver := coupon.NewResolver(authority, logger)

	// Search.
	products := pgrepo.NewProductRepository(pool)
	var engine search.Engine = search.NewPostgresEngine(products)
	if cfg.SearchEngine == config.BackendElasticsearch {
		es, err := elasticsearch.New(ctx, cfg.ElasticsearchURL, cfg.ElasticsearchIndex, logger)
		if err != nil {
			return nil, err
		}
		if cfg.ReindexOnStart {
			if err := search.Reindex(ctx, products, es, logger); err != nil {
				logger.Warn("initial search reindex failed", slog.String("error", err.Error()))
			}
		}
		engine = es
		healthHandler.RegisterOptional("elasticsearch", es.Ping)
	}
	logger.Info("search engine selected", slog.String("engine", cfg.SearchEngine))

	// Services.
	notifier := notice.ContextNotifier{}
	orderRepo := pgrepo.NewOrderRepository(pool)
	orders := service.NewOrderService(orderRepo, logger)

	a.sessions = session.NewManager(carts, wishlists,
		store.Deps{Notifier: notifier, Publisher: events, Logger: logger},
		session.Config{IdleTTL: cfg.SessionIdleTTL, SweepInterval: cfg.SessionSweepInterval},
		logger,
	)

	secret := cfg.JWTSecret
	if secret == "" {
		logger.Warn("JWT_SECRET not set; using the development signing key")
		secret = identity.DevSecret
	}
	tokens := identity.NewProvider(secret, cfg.JWTIssuer, time.Hour)

	a.limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSAllowedOrigins
	cors.Environment = cfg.Environment

	router := handler.NewRouter(handler.RouterDeps{
		Sessions:       a.sessions,
		Catalog:        service.NewCatalogService(products, pgrepo.NewReviewRepository(pool), notifier, logger),
		Search:         service.NewSearchService(engine, logger),
		Checkout:       service.NewCheckoutService(orderRepo, resolver, events, notifier, logger),
		Orders:         orders,
		Returns:        service.NewReturnService(orders, pgrepo.NewReturnRepository(pool), notifier, logger),
		Health:         healthHandler,
		Tokens:         tokens.Validate,
		RateLimiter:    a.limiter,
		CORS:           cors,
		Metrics:        middleware.NewHTTPMetrics(reg, serviceName),
		Gatherer:       reg,
		RequestTimeout: cfg.RequestTimeout,
	}, logger)

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ok = true
	return a, nil
}

// Run starts the HTTP server and background loops, and blocks until the
// context is canceled or the server fails.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.sessions.Run(gctx)
		return nil
	})
	g.Go(func() error {
		a.limiter.Run(gctx)
		return nil
	})
	g.Go(func() error {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutdown signal received")
		return a.Shutdown()
	})

	return g.Wait()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	a.sessions.Close()
	a.closeClients()

	if a.shutdownTracer != nil {
		if err := a.shutdownTracer(shutdownCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
	}

	a.logger.Info("application shutdown complete")
	return nil
}

func (a *App) closeClients() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
