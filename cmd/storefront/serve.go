package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nuxtz/storefront/internal/app"
	"github.com/nuxtz/storefront/internal/assets"
	"github.com/nuxtz/storefront/internal/clock"
	"github.com/nuxtz/storefront/internal/config"
	"github.com/nuxtz/storefront/internal/events"
	"github.com/nuxtz/storefront/internal/notify"
	"github.com/nuxtz/storefront/internal/payment"
	"github.com/nuxtz/storefront/internal/storage/postgres"
	transporthttp "github.com/nuxtz/storefront/internal/transport/http"
	"github.com/nuxtz/storefront/migrations"
)

const (
	startupTimeout    = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
)

func serveCmd(envFile *string) *cobra.Command {
	var skipMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*envFile, bootstrapLogger())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return serve(cmd.Context(), cfg, skipMigrations)
		},
	}
	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply migrations on startup")
	return cmd
}

func serve(ctx context.Context, cfg config.Config, skipMigrations bool) error {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat)

	startupCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	pool, err := openPool(startupCtx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if !skipMigrations {
		if err := migrations.Apply(startupCtx, pool, logger); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}

	publisher, closePublisher := newPublisher(cfg, logger)
	defer closePublisher()

	handler := buildHandler(cfg, pool, publisher, logger)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	logger.Info().Str("addr", server.Addr).Msg("api listening")

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var runErr error
	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("server error: %w", err)
		}
	case <-stopCtx.Done():
		logger.Info().Msg("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("server shutdown error")
	}
	logger.Info().Msg("server stopped")
	return runErr
}

// buildHandler constructs every external client once and injects it into
// the services behind the router.
func buildHandler(cfg config.Config, pool *pgxpool.Pool, publisher events.Publisher, logger zerolog.Logger) http.Handler {
	clk := clock.NewSystem()

	var verifier app.PaymentVerifier = payment.Unconfigured{}
	if cfg.StripeSecretKey != "" {
		verifier = payment.NewStripeVerifier(cfg.StripeSecretKey)
	}

	notifier := notify.NewSendGridNotifier(notify.Config{
		APIKey:   cfg.SendGridAPIKey,
		FromAddr: cfg.EmailFrom,
		FromName: cfg.EmailFromName,
	}, logger.With().Str("component", "notify").Logger())

	customerRepo := postgres.NewCustomerRepository(pool)
	linkRepo := postgres.NewDownloadLinkRepository(pool)
	waitlistRepo := postgres.NewWaitlistRepository(pool)

	fulfillment := app.NewFulfillmentService(app.FulfillmentDeps{
		Customers: customerRepo,
		Links:     linkRepo,
		Verifier:  verifier,
		Notifier:  notifier,
		Assets:    assets.NewStore(cfg.DownloadsDir),
		Clock:     clk,
		BaseURL:   cfg.PublicBaseURL,
	},
		app.WithLinkTTL(cfg.DownloadLinkTTL),
		app.WithStrictSingleUse(cfg.StrictSingleUse),
		app.WithEmailWithoutLink(cfg.EmailWithoutLink),
		app.WithPublisher(publisher),
		app.WithLogger(logger.With().Str("component", "fulfillment").Logger()),
	)

	return transporthttp.NewRouter(transporthttp.Services{
		Waitlist:    app.NewWaitlistService(waitlistRepo, notifier, clk, logger.With().Str("component", "waitlist").Logger()),
		Customers:   app.NewCustomerService(customerRepo, logger.With().Str("component", "customers").Logger()),
		Fulfillment: fulfillment,
		Health:      app.NewHealthService(waitlistRepo),
	}, transporthttp.RouterConfig{
		CORSOrigins: cfg.CORSOrigins,
		Logger:      logger.With().Str("component", "http").Logger(),
		Metrics:     promhttp.Handler(),
	})
}

// newPublisher dials the broker when AMQP_URL is set. A broker that cannot
// be reached disables events instead of failing startup.
func newPublisher(cfg config.Config, logger zerolog.Logger) (events.Publisher, func()) {
	if cfg.AMQPURL == "" {
		return events.Nop{}, func() {}
	}
	pub, err := events.NewRabbitMQPublisher(cfg.AMQPURL, cfg.EventsQueue, logger.With().Str("component", "events").Logger())
	if err != nil {
		logger.Warn().Err(err).Msg("connect to broker, purchase events disabled")
		return events.Nop{}, func() {}
	}
	return pub, pub.Close
}

func openPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return pool, nil
}
