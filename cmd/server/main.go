package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avsoarsa/global-gourmet/internal"
	"github.com/avsoarsa/global-gourmet/internal/address"
	"github.com/avsoarsa/global-gourmet/internal/billing"
	"github.com/avsoarsa/global-gourmet/internal/discount"
	"github.com/avsoarsa/global-gourmet/internal/events"
	"github.com/avsoarsa/global-gourmet/internal/middleware"
	"github.com/avsoarsa/global-gourmet/internal/repository"
	"github.com/avsoarsa/global-gourmet/internal/router"
	"github.com/avsoarsa/global-gourmet/internal/routes"
	"github.com/avsoarsa/global-gourmet/internal/service"
	"github.com/avsoarsa/global-gourmet/internal/shipping"
	"github.com/avsoarsa/global-gourmet/internal/tax"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database/sql connection for migrations
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// Run migrations
	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	// Initialize pgx connection pool for the application
	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	store := repository.New(pool)

	// Initialize Stripe billing provider
	billingProvider, err := billing.NewStripeProvider(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret)
	if err != nil {
		return fmt.Errorf("failed to initialize Stripe provider: %w", err)
	}
	logger.Info("Stripe billing provider initialized", "test_mode", billingProvider.IsTestMode())

	// Initialize shipping provider
	shippingProvider := shipping.NewFlatRateProvider(
		shipping.DefaultRates(cfg.Shipping.StandardCents, cfg.Shipping.ExpressCents),
	)

	// Initialize tax engine: US table rates, India GST, flat-rate fallback
	taxCalculator := tax.NewFallbackCalculator(
		tax.NewTableCalculator(),
		tax.NewGSTCalculator(),
		logger,
	)

	// Initialize event publisher
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.Nats.URL != "" {
		publisher, err = events.NewNATSPublisher(cfg.Nats.URL, cfg.Nats.SubjectPrefix, logger)
		if err != nil {
			return fmt.Errorf("failed to connect event publisher: %w", err)
		}
		logger.Info("NATS event publisher connected", "url", cfg.Nats.URL)
	}
	defer publisher.Close()

	// Initialize services
	sessions := service.NewSessionManager(cfg.Checkout.SessionTTL)
	go sessions.Sweep(ctx, time.Minute)

	cartService := service.NewCartService(store)
	couponValidator := discount.NewValidator(store, logger)
	checkoutService := service.NewCheckoutService(
		sessions,
		cartService,
		taxCalculator,
		couponValidator,
		shippingProvider,
		billingProvider,
		address.NewBasicValidator(),
		logger,
	)
	orderService := service.NewOrderService(store, sessions, billingProvider, publisher, logger)
	couponService := service.NewCouponService(store)

	// Initialize middleware and router
	metrics := middleware.NewMetrics("gourmet")

	r := router.New(
		router.Recovery(logger),
		middleware.RequestID,
		metrics.Middleware,
		middleware.WithRequestLogger(logger),
		router.Logger(logger),
		router.CORS([]string{cfg.BaseURL}),
	)

	routes.Register(r, routes.Deps{
		Logger:   logger,
		Metrics:  metrics,
		DB:       pool,
		Carts:    cartService,
		Checkout: checkoutService,
		Orders:   orderService,
		Coupons:  couponService,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
