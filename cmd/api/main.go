package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"farmstand/internal/config"
	"farmstand/internal/database"
	"farmstand/internal/handler"
	"farmstand/internal/payment"
	"farmstand/internal/repository"
	"farmstand/internal/router"
	"farmstand/internal/service"
	"farmstand/internal/shipping"
	"farmstand/internal/tax"
	"farmstand/internal/validation"
	"farmstand/internal/woo"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting farmstand API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize repositories
	orderRepo := repository.NewOrderRepository(pool, logger)
	intentRepo := repository.NewIntentRepository(pool, logger)
	pickupRepo := repository.NewPickupLocationRepository(pool, logger)

	// Initialize commerce backend client
	wooClient := woo.NewClient(cfg.Woo, logger)

	// Load the jurisdiction tax rate table, S3 first with local fallback
	rateTable := loadRateTable(ctx, cfg.Tax, logger)
	taxCalc := tax.NewCalculator(rateTable, logger)

	// Initialize shipping resolver backed by the commerce backend zones
	shippingResolver := shipping.NewResolver(wooClient, logger)

	// Initialize order validator
	validator := validation.NewValidator(wooClient, shippingResolver, taxCalc, logger)

	// Initialize payment gateway
	gateway, err := payment.NewStripeGateway(payment.StripeGatewayConfig{
		APIKey: cfg.Stripe.SecretKey,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize payment gateway: %w", err)
	}

	// Initialize services
	intentTTL := time.Duration(cfg.Intent.TTLMinutes) * time.Minute
	checkoutService := service.NewCheckoutService(validator, shippingResolver, taxCalc, gateway, intentRepo, intentTTL, logger)
	orderService := service.NewOrderService(orderRepo, intentRepo, pickupRepo, gateway, wooClient, intentTTL, logger)
	reconcileService := service.NewReconcileService(orderRepo, wooClient, logger)

	// Initialize HTTP handlers
	checkoutHandler := handler.NewCheckoutHandler(checkoutService, logger)
	orderHandler := handler.NewOrderHandler(orderService, reconcileService, logger)
	webhookHandler := handler.NewWebhookHandler(reconcileService, cfg.Stripe.WebhookSecret, logger)
	cronHandler := handler.NewCronHandler(orderService, cfg.Cron.Secret, logger)

	// Initialize router
	mux := router.New(checkoutHandler, orderHandler, webhookHandler, cronHandler, cfg.Auth.APIKey, logger)

	// Background sweep of expired validated snapshots
	go sweepExpiredIntents(ctx, orderService, time.Duration(cfg.Intent.SweepMinutes)*time.Minute, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// loadRateTable resolves the jurisdiction tax rates at startup. S3 is
// preferred when enabled, then the local rates file, then the built-in
// defaults. A bad rates file never prevents startup.
func loadRateTable(ctx context.Context, cfg config.TaxConfig, logger zerolog.Logger) tax.RateTable {
	if cfg.S3Enabled {
		loader, err := tax.NewS3Loader(ctx, cfg.S3Bucket, cfg.S3Region, logger)
		if err == nil {
			table, loadErr := loader.Load(ctx, cfg.S3Key)
			if loadErr == nil {
				return table
			}
			logger.Warn().Err(loadErr).Msg("failed to load tax rates from S3, falling back to local file")
		} else {
			logger.Warn().Err(err).Msg("failed to initialise S3 tax rate loader, falling back to local file")
		}
	}

	if cfg.RatesFile != "" {
		table, err := tax.NewFileLoader(logger).Load(ctx, cfg.RatesFile)
		if err == nil {
			return table
		}
		logger.Warn().Err(err).Str("path", cfg.RatesFile).Msg("failed to load tax rates file, using built-in defaults")
	}

	return tax.DefaultRateTable()
}

// sweepExpiredIntents periodically deletes validated snapshots past
// their expiry, covering deployments without an external scheduler.
func sweepExpiredIntents(ctx context.Context, orders service.OrderService, interval time.Duration, logger zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := orders.CleanupExpiredIntents(ctx); err != nil {
				logger.Error().Err(err).Msg("expired intent sweep failed")
			}
		}
	}
}
