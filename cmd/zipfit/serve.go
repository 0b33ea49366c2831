package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/Zipfit/internal/api"
	"github.com/MikeSquared-Agency/Zipfit/internal/catalog"
	"github.com/MikeSquared-Agency/Zipfit/internal/config"
	"github.com/MikeSquared-Agency/Zipfit/internal/hermes"
	"github.com/MikeSquared-Agency/Zipfit/internal/metrics"
	"github.com/MikeSquared-Agency/Zipfit/internal/narrator"
	"github.com/MikeSquared-Agency/Zipfit/internal/scoring"
	"github.com/MikeSquared-Agency/Zipfit/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the ranking HTTP service",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func openStore(ctx context.Context, cfg config.DatabaseConfig) (store.Store, error) {
	switch cfg.Driver {
	case "postgres":
		return store.NewPostgresStore(ctx, cfg.URL)
	case "sqlite":
		return store.NewSQLiteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Database
	db, err := openStore(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer db.Close()
	logger.Info("store ready", "driver", cfg.Database.Driver)

	// Hermes (optional)
	var hermesClient hermes.Client = hermes.NopClient{}
	if cfg.Hermes.URL != "" {
		hc, err := hermes.NewNATSClient(ctx, cfg.Hermes.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to hermes, running without events", "error", err)
		} else {
			hermesClient = hc
			defer hc.Close()
			logger.Info("connected to hermes")
		}
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	// Catalog
	cat := catalog.New(db, hermesClient, m, cfg.RefreshInterval(), logger)
	if err := cat.Refresh(ctx); err != nil {
		return fmt.Errorf("initial catalog load: %w", err)
	}
	cat.Start(ctx)
	defer cat.Stop()
	logger.Info("catalog loaded", "localities", cat.Size(), "refresh_interval", cfg.RefreshInterval())

	engine := scoring.NewEngine(engineConfig(cfg.Scoring), logger)

	// Narrator (optional)
	var narr narrator.Narrator = narrator.Nop{}
	if cfg.Narrator.URL != "" {
		narr = narrator.NewHTTPClient(cfg.Narrator.URL, cfg.NarratorTimeout(), cfg.Narrator.RPS, cfg.Narrator.Burst, m)
	}

	// API server
	router := api.NewRouter(db, hermesClient, cat, engine, narr, m, cfg.Server, logger)
	apiServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Metrics server
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler: api.NewMetricsRouter(cat),
	}

	go func() {
		logger.Info("API server starting", "port", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("API server error", "error", err)
			cancel()
		}
	}()

	go func() {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer shutdownCancel()

	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
	return nil
}
