package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/splitright/internal/auth"
	"github.com/mmynk/splitright/internal/backend"
	"github.com/mmynk/splitright/internal/config"
	"github.com/mmynk/splitright/internal/httpapi"
	"github.com/mmynk/splitright/internal/metrics"
	"github.com/mmynk/splitright/internal/middleware"
	"github.com/mmynk/splitright/internal/rpc"
	"github.com/mmynk/splitright/internal/service"
	"github.com/mmynk/splitright/pkg/logging"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logging.Setup(cfg.LogLevel)

	// Amounts are JSON numbers on every wire format and in the JSON store.
	decimal.MarshalJSONWithoutQuotes = true

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	opened, err := backend.NewFactory(slog.Default(), m).Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := opened.Cleanup(); err != nil {
			slog.Error("Failed to close storage", "error", err)
		}
	}()

	svc := service.NewLedgerService(opened.Store, service.WithMetrics(m))

	var admin *auth.JWTManager
	if cfg.ResetEnabled() {
		admin = auth.NewJWTManager(cfg.AdminSecret, cfg.AdminTokenTTL)
	} else {
		slog.Info("ADMIN_SECRET not set, /api/reset is disabled")
	}

	mux := http.NewServeMux()

	// Register Connect services
	interceptors := connect.WithInterceptors(middleware.LoggingInterceptor(slog.Default()))
	groupPath, groupHandler := rpc.NewGroupServiceHandler(rpc.NewGroupServer(svc), interceptors)
	mux.Handle(groupPath, groupHandler)
	expensePath, expenseHandler := rpc.NewExpenseServiceHandler(rpc.NewExpenseServer(svc), interceptors)
	mux.Handle(expensePath, expenseHandler)

	// REST API and metrics
	mux.Handle("/api/", httpapi.NewRouter(svc, httpapi.Options{Admin: admin, Metrics: m}))
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	handler := h2c.NewHandler(middleware.Logging(middleware.CORS(mux)), &http2.Server{})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Server starting",
			"address", srv.Addr,
			"url", fmt.Sprintf("http://localhost%s", srv.Addr),
			"storage", cfg.StorageBackend,
		)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down", "timeout", cfg.ShutdownTimeout)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
