package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/holoboard/holoboard/internal/adapters/connector"
	"github.com/holoboard/holoboard/internal/adapters/connector/mmostats"
	"github.com/holoboard/holoboard/internal/adapters/connector/sqlconn"
	"github.com/holoboard/holoboard/internal/adapters/http/api"
	"github.com/holoboard/holoboard/internal/adapters/offline"
	app "github.com/holoboard/holoboard/internal/app"
	"github.com/holoboard/holoboard/internal/config"
	"github.com/holoboard/holoboard/pkg/logger"
)

// Connector registry names.
const (
	genericConnectorName  = "genericsql"
	mmoStatsConnectorName = "mmostats"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	queryTimeout := time.Duration(cfg.QueryTimeoutSeconds) * time.Second

	// Build connectors from configuration and initialize the registry.
	connectors := []connector.Connector{
		sqlconn.New(genericConnectorName, cfg.GenericSQL,
			sqlconn.WithLogger(logger.Named("sqlconn")),
			sqlconn.WithQueryTimeout(queryTimeout),
		),
		mmostats.New(mmoStatsConnectorName, cfg.MMOStats,
			mmostats.WithLogger(logger.Named("mmostats")),
			mmostats.WithQueryTimeout(queryTimeout),
		),
	}
	registry := connector.NewRegistry(logger.Named("registry"), connectors...)
	registry.Initialize(ctx)
	defer registry.CloseAll(ctx)

	// Offline store: load persisted records before the first refresh.
	var store *offline.Store
	if cfg.OfflineEnabled {
		store, err = offline.New(
			offline.WithLogger(logger.Named("offline")),
			offline.WithDataDir(cfg.OfflineDataDir),
			offline.WithExpiry(time.Duration(cfg.OfflineExpiryDays)*24*time.Hour),
			offline.WithQueueSize(cfg.PersistQueueSize),
		)
		if err != nil {
			os.Stderr.WriteString("failed to open offline store: " + err.Error() + "\n")
			return
		}
		defer func() {
			_ = store.Close()
		}()
		if err := store.Load(ctx, time.Now()); err != nil {
			log.Warn(ctx, "loading offline records failed", logger.Error(err))
		}
	}

	specs := make(map[string]app.BoardSpec, len(cfg.Leaderboards))
	for id, lb := range cfg.Leaderboards {
		specs[id] = app.BoardSpec{
			DataSource: lb.DataSource,
			Title:      lb.Title,
			LineFormat: lb.LineFormat,
			TopN:       lb.TopN,
			Ascending:  lb.Ascending,
		}
	}

	svc := app.New(
		app.WithLogger(log),
		app.WithRegistry(registry),
		app.WithOfflineStore(store),
		app.WithBoards(specs),
		app.WithRefreshInterval(time.Duration(cfg.RefreshSeconds)*time.Second),
		app.WithSweepInterval(time.Duration(cfg.SweepHours)*time.Hour),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = svc.Stop(context.Background())
	}()

	// HTTP mux and routes.
	mux := http.NewServeMux()
	apiServer := api.NewServer(svc)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}
