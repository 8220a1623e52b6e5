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

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.etcd.io/bbolt"

	"github.com/alorle/playlist-manager/internal/adapter/driven"
	"github.com/alorle/playlist-manager/internal/adapter/driver"
	"github.com/alorle/playlist-manager/internal/application"
	"github.com/alorle/playlist-manager/internal/config"
)

// probeCleanupInterval is how often expired probe log entries are purged.
const probeCleanupInterval = time.Hour

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}
}

// app holds the wired services behind the HTTP server.
type app struct {
	handler http.Handler
	prober  *application.ProbeService
}

// newApp creates the driven adapters, application services and HTTP routes.
func newApp(cfg *config.Config, db *bbolt.DB, logger *slog.Logger) (*app, error) {
	// Create driven adapters (repositories and external services)
	sourceCache, err := driven.NewSourceCacheBoltDB(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create source cache: %w", err)
	}

	probeRepo, err := driven.NewProbeBoltDBRepository(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create probe repository: %w", err)
	}

	fileSource := driven.NewFileSource()
	httpSource := driven.NewHTTPSource(cfg.Fetch.Timeout, sourceCache, cfg.Fetch.StaleFallback, cfg.Fetch.UserAgent, logger)
	checker := driven.NewReachabilityHTTPChecker(cfg.Fetch.UserAgent)

	// Create application services
	workspaceService := application.NewWorkspaceService(fileSource, httpSource, cfg.History.Size, logger)
	probeService := application.NewProbeService(workspaceService, checker, probeRepo, logger, cfg.Probe.Timeout, cfg.Probe.BatchSize)
	healthService := application.NewHealthService(sourceCache, workspaceService)

	// Create HTTP handlers
	playlistHandler := driver.NewPlaylistHTTPHandler(workspaceService, logger)
	probeHandler := driver.NewProbeHTTPHandler(probeService, cfg.Probe.SecureContext)
	healthHandler := driver.NewHealthHTTPHandler(healthService)

	// Register routes
	mux := http.NewServeMux()
	mux.Handle("/playlist", playlistHandler)
	mux.Handle("/playlist/", playlistHandler)
	mux.Handle("/playlist/check", probeHandler)
	mux.Handle("/playlist/probes", probeHandler)
	mux.Handle("/health", healthHandler)
	mux.Handle("/metrics", promhttp.Handler())

	return &app{handler: mux, prober: probeService}, nil
}

func runServe(ctx context.Context, cfg *config.Config) error {
	// Create structured logger
	logger := newLogger(os.Stdout, cfg.SlogLevel())
	slog.SetDefault(logger)

	logger.Info("starting playlist-manager",
		"port", cfg.HTTP.Port,
		"db_path", cfg.Cache.DBPath,
		"log_level", cfg.SlogLevel().String(),
		"fetch_timeout", cfg.Fetch.Timeout,
		"fetch_stale_fallback", cfg.Fetch.StaleFallback,
		"probe_timeout", cfg.Probe.Timeout,
		"probe_batch_size", cfg.Probe.BatchSize,
		"probe_secure_context", cfg.Probe.SecureContext,
		"history_size", cfg.History.Size,
	)

	// Open BoltDB
	db, err := bbolt.Open(cfg.Cache.DBPath, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("error closing database", "error", err)
		}
	}()

	a, err := newApp(cfg, db, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go purgeProbeLog(ctx, a.prober, cfg.Probe.LogRetention, logger)

	// Create HTTP server. A check answers only once every batch is done,
	// so responses have no write timeout.
	server := &http.Server{
		Addr:        ":" + cfg.HTTP.Port,
		Handler:     a.handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Start server in a goroutine
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-sigChan:
		logger.Info("shutdown signal received, shutting down gracefully")
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down gracefully")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
	return nil
}

// purgeProbeLog drops probe results older than retention, once at start and
// then every probeCleanupInterval until ctx is done.
func purgeProbeLog(ctx context.Context, prober *application.ProbeService, retention time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(probeCleanupInterval)
	defer ticker.Stop()

	for {
		if err := prober.Cleanup(ctx, retention); err != nil && ctx.Err() == nil {
			logger.Warn("failed to purge probe log", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
