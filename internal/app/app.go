// Package app wires the application together and runs the HTTP server.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/alengo/customer-discount/internal/api"
	"github.com/alengo/customer-discount/internal/checkout"
	"github.com/alengo/customer-discount/internal/checkout/delivery"
	"github.com/alengo/customer-discount/internal/checkout/discount"
	"github.com/alengo/customer-discount/internal/checkout/pricing"
	"github.com/alengo/customer-discount/internal/customfields"
	"github.com/alengo/customer-discount/internal/order"
	"github.com/alengo/customer-discount/internal/promotion"
	"github.com/alengo/customer-discount/internal/storage/postgres"
	"github.com/alengo/customer-discount/pkg/health"
	"github.com/alengo/customer-discount/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Custom-field schema provisioning, idempotent on every start.
	installer := customfields.NewInstaller(postgres.NewFieldSetRepository(pool))
	if err := installer.Install(ctx); err != nil {
		return errors.Wrap(err, "install custom fields")
	}
	if err := installer.AddRelations(ctx); err != nil {
		return errors.Wrap(err, "relate custom fields")
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthSvc.SetReady(true)

	// Repositories.
	customerRepo := postgres.NewCustomerRepository(pool, lg)
	promotionRepo := postgres.NewPromotionRepository(pool)

	// Checkout pipeline. The discount processor reads shipping costs the
	// delivery processor collected, so it registers after it.
	calculator := checkout.NewCalculator()
	deliveryProcessor := delivery.NewProcessor()
	calculator.Register(deliveryProcessor)
	calculator.Register(discount.NewProcessor(pricing.NewAbsolutePriceCalculator(), deliveryProcessor))

	// Domain services.
	materializer := promotion.NewMaterializer(promotionRepo, lg)
	settler := order.NewSettler(customerRepo, lg)

	// HTTP surface.
	handler := api.NewHandler(calculator, customerRepo, materializer, settler, lg)

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", http.StripPrefix("/api", handler.Routes()))

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: otelhttp.NewHandler(
			httpmiddleware.Wrap(mux,
				httpmiddleware.Recovery(lg),
				httpmiddleware.RequestID(),
				httpmiddleware.LogRequests(lg),
			),
			"customer-discount",
			otelhttp.WithTracerProvider(m.TracerProvider()),
			otelhttp.WithMeterProvider(m.MeterProvider()),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
