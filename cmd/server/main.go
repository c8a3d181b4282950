// Command server runs the dartwatch HTTP API.
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

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"dartwatch/internal/config"
	"dartwatch/internal/dart"
	"dartwatch/internal/docparse"
	"dartwatch/internal/exporter"
	"dartwatch/internal/infrastructure"
	"dartwatch/internal/metrics"
	"dartwatch/internal/middleware"
	"dartwatch/internal/report"
	transport "dartwatch/internal/transport/http"
)

const version = "1.0.0"

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}

	m := metrics.New()

	client := dart.NewClient(cfg.Dart, logger)
	client.SetObserver(m)

	service := report.NewService(client, docparse.NewExtractor(),
		cfg.Dart.CapitalLookbackMonths, cfg.Dart.RegistrationLookbackMonths, logger)

	writer, err := exporter.NewWorkbookWriter(cfg.Export.Timezone, logger)
	if err != nil {
		return fmt.Errorf("create workbook writer: %w", err)
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.Recoverer(logger))
	router.Use(middleware.RateLimit(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst))

	router.Method(http.MethodGet, "/healthz", transport.NewHealthHandler(version))
	router.Method(http.MethodGet, "/metrics", m.Handler())
	router.Mount("/api/reports", transport.NewReportHandler(service, writer, m, logger).Routes())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", slog.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
