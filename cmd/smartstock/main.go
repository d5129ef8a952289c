package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/smartstock/smartstock/config"
	"github.com/smartstock/smartstock/internal/alerts"
	"github.com/smartstock/smartstock/internal/api"
	"github.com/smartstock/smartstock/internal/cache"
	"github.com/smartstock/smartstock/internal/database"
	"github.com/smartstock/smartstock/internal/forecast"
	"github.com/smartstock/smartstock/internal/ingest"
	"github.com/smartstock/smartstock/internal/logger"
	"github.com/smartstock/smartstock/internal/metrics"
	middlewares "github.com/smartstock/smartstock/internal/middleware"
	"github.com/smartstock/smartstock/internal/notifier"
	"github.com/smartstock/smartstock/internal/pipeline"
	"github.com/smartstock/smartstock/internal/ratelimit"
	"github.com/smartstock/smartstock/internal/reconciler"
	"github.com/smartstock/smartstock/internal/store"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Starting SmartStock application",
		"version", Version,
		"build_time", BuildTime,
		"git_commit", GitCommit,
	)

	// Initialize metrics
	if cfg.Metrics.Enabled {
		metrics.Init()
		logger.Info("Metrics enabled", "port", cfg.Metrics.Port)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database
	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database", "error", err)
	}
	defer db.Close(ctx)

	// Initialize store
	inventoryStore := store.New(db)

	// Forecast provider and adapter
	provider := forecast.NewHTTPProvider(cfg.Forecast)
	adapter := forecast.NewAdapter(provider)

	// Forecast cache (optional, requires Redis)
	forecastCache, err := cache.New(cfg.Redis.URL, cfg.Forecast.CacheTTL)
	if err != nil {
		logger.Warn("Forecast cache unavailable", "error", err)
	}
	defer forecastCache.Close()

	// Alert settings and notification channels
	settings := alerts.NewSettings(cfg.Alerts.EmailEnabled, cfg.Alerts.SMSEnabled)

	var emailCh, smsCh notifier.Notifier
	if n := notifier.NewEmailNotifier(cfg.Alerts); n != nil {
		emailCh = n
	}
	if n := notifier.NewSMSNotifier(cfg.Alerts); n != nil {
		smsCh = n
	}
	dispatcher := notifier.NewDispatcher(settings, emailCh, smsCh)

	// Reconciliation engine
	engine := reconciler.New(inventoryStore, adapter, forecastCache, dispatcher)

	// Dataset loader
	var loader *ingest.Loader
	if cfg.Ingest.DatasetURL != "" {
		loader = ingest.New(inventoryStore, cfg.Ingest.DatasetURL, cfg.Ingest.RowLimit)
	}

	// Background alert sweep
	sweepPipeline := pipeline.New(engine, cfg.Pipeline)
	go func() {
		if err := sweepPipeline.Run(ctx); err != nil && err != context.Canceled {
			logger.Error("Pipeline error", "error", err)
		}
	}()

	// Setup HTTP server
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewares.Logging)
	r.Use(middlewares.Metrics)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.ReadTimeout))
	r.Use(middlewares.Security)

	// Rate limiting: Redis-backed when available, in-memory otherwise
	limiter, err := ratelimit.NewManager(cfg.Redis.URL)
	if err != nil {
		logger.Warn("Redis rate limiter unavailable, using in-memory fallback", "error", err)
	}
	if limiter != nil {
		defer limiter.Close()
		r.Use(middlewares.RedisRateLimit(limiter, cfg.Server.RateLimitPerMinute))
	} else {
		r.Use(middlewares.RateLimit(cfg.Server.RateLimitPerMinute))
	}

	// Initialize API handlers
	apiHandler := api.NewHandler(inventoryStore, db, engine, adapter, settings, loader, Version, BuildTime, GitCommit)
	apiHandler.RegisterRoutes(r)

	// Metrics endpoint
	if cfg.Metrics.Enabled {
		go startMetricsServer(cfg.Metrics.Port, cfg.Metrics.Path)
	}

	// HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting HTTP server", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}

func startMetricsServer(port int, path string) {
	mux := http.NewServeMux()
	mux.Handle(path, metrics.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info("Starting metrics server", "address", addr, "path", path)

	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("Metrics server failed", "error", err)
	}
}
