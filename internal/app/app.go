// Package app wires together all dependencies and runs the storefront.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/gatemesh/storefront/internal/cart"
	cartredis "github.com/gatemesh/storefront/internal/cart/redis"
	"github.com/gatemesh/storefront/internal/catalog"
	catalogpg "github.com/gatemesh/storefront/internal/catalog/postgres"
	"github.com/gatemesh/storefront/internal/checkout"
	"github.com/gatemesh/storefront/internal/checkout/stripe"
	"github.com/gatemesh/storefront/internal/config"
	"github.com/gatemesh/storefront/internal/event"
	handler "github.com/gatemesh/storefront/internal/handler/http"
	"github.com/gatemesh/storefront/internal/telemetry"
	"github.com/gatemesh/storefront/pkg/health"
	"github.com/gatemesh/storefront/pkg/httpclient"
	pkgkafka "github.com/gatemesh/storefront/pkg/kafka"
	"github.com/gatemesh/storefront/pkg/middleware"
	"github.com/gatemesh/storefront/pkg/tracing"
)

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg             *config.Config
	logger          *slog.Logger
	rdb             *redis.Client
	pool            *pgxpool.Pool
	producer        *pkgkafka.Producer
	httpServer      *http.Server
	tracingShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tracingShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:  "storefront",
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.TracingEndpoint,
		SampleRate:   cfg.TracingSampleRate,
		Enabled:      cfg.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	healthHandler := health.NewHandler()

	// Cart mirror. An empty Redis address keeps carts in memory only.
	var (
		rdb      *redis.Client
		cartRepo cart.Repository
	)
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("connected to Redis",
			slog.String("addr", cfg.RedisAddr),
			slog.Int("db", cfg.RedisDB),
		)
		cartRepo = cartredis.NewCartRepository(rdb, time.Duration(cfg.CartTTL)*time.Hour)
		healthHandler.Register("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	} else {
		logger.Warn("no Redis address configured, carts will not survive restarts")
	}

	// Catalog source.
	var (
		pool *pgxpool.Pool
		cat  catalog.Catalog
	)
	switch cfg.CatalogSource {
	case config.CatalogSourcePostgres:
		pool, err = pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		logger.Info("connected to PostgreSQL")

		pgCatalog := catalogpg.NewCatalog(pool)
		for _, p := range catalog.SeedProducts() {
			if err := pgCatalog.Upsert(ctx, &p); err != nil {
				return nil, fmt.Errorf("seed catalog: %w", err)
			}
		}
		cat = pgCatalog
		healthHandler.Register("postgres", func(ctx context.Context) error {
			return pool.Ping(ctx)
		})
	default:
		cat = catalog.NewSeeded()
	}

	// Kafka producer for domain events.
	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	eventProducer := event.NewProducer(producer, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Payment gateway behind retries and a circuit breaker.
	baseClient := httpclient.New(httpclient.DefaultConfig())
	breakerClient := httpclient.NewCircuitBreakerClient(
		baseClient,
		httpclient.DefaultCircuitBreakerConfig("stripe"),
		logger,
	)
	gateway := stripe.NewClient(breakerClient, cfg.StripeSecretKey, cfg.StripeBaseURL)

	cartStore := cart.NewStore(cartRepo, cat, eventProducer, logger)
	checkoutService := checkout.NewService(
		cartStore, cat, gateway, eventProducer, logger, cfg.BaseURL, cfg.CheckoutTimeout,
	)
	telemetryBuffer := telemetry.NewBuffer(cfg.TelemetryCapacity)

	rateCfg := middleware.DefaultRateLimitConfig()
	rateCfg.RequestsPerSecond = cfg.RateLimitRPS
	rateCfg.Burst = cfg.RateLimitBurst

	router := handler.NewRouter(handler.RouterConfig{
		CartStore:       cartStore,
		Catalog:         cat,
		CheckoutService: checkoutService,
		Telemetry:       telemetryBuffer,
		Health:          healthHandler,
		WebhookSecret:   cfg.StripeWebhookSecret,
		RateLimit:       rateCfg,
		Logger:          logger,
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:             cfg,
		logger:          logger,
		rdb:             rdb,
		pool:            pool,
		producer:        producer,
		httpServer:      httpServer,
		tracingShutdown: tracingShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}

	if a.pool != nil {
		a.pool.Close()
	}

	if err := a.tracingShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracing shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
