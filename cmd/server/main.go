/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the charge engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load configuration (file, then CHARGES_* environment)
  3. Build the logger
  4. Initialize SQLite catalog and seed presets
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Path to a config file (yaml, toml or json); optional
  -port    HTTP server port, overrides server.port

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  ./server -config=./charges.yaml
  CHARGES_DATABASE_PATH=":memory:" ./server -port=3000

SEE ALSO:
  - config/config.go: Configuration keys and defaults
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Catalog storage
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/warp/charge-engine/api"
	"github.com/warp/charge-engine/config"
	"github.com/warp/charge-engine/store/sqlite"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Flags
	configPath := flag.String("config", "", "Path to config file")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *port != 0 {
		cfg.Server.Port = *port
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger, err := cfg.Log.NewLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	// Initialize store
	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	handler := api.NewHandler(store, logger, cfg.Calc.DefaultPrecision)
	if cfg.Catalog.SeedPresets {
		added, err := handler.SeedPresets(context.Background())
		if err != nil {
			return fmt.Errorf("failed to seed presets: %w", err)
		}
		logger.Info("catalog seeded", zap.Int("added", added))
	}

	router := api.NewRouter(handler, cfg.CORS.AllowedOrigins)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.Int("port", cfg.Server.Port),
			zap.String("database", cfg.Database.Path),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
