/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the day book HTTP host: one session over a
  persistent store, served to a local UI.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (defaults, config file, .env, DAYBOOK_* env, flags)
  2. Build the logger
  3. Open the store: PostgreSQL when database_url is set, SQLite otherwise
  4. Create the session and resume the last logged-in user
  5. Start the notification scheduler
  6. Configure the HTTP router and start the server

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides DAYBOOK_PORT)
  -db      SQLite database path (overrides DAYBOOK_DB)
           Use ":memory:" for an in-memory database
  -mode    "debug" or "release" (overrides DAYBOOK_MODE)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close the store
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/daybook.db"

  # Run against PostgreSQL
  DAYBOOK_DATABASE_URL=postgres://localhost/daybook ./server

  # Run with in-memory database and verbose logs
  ./server -db=":memory:" -mode=debug

SEE ALSO:
  - config/config.go: configuration keys
  - api/server.go: Router configuration
  - session/session.go: dispatch and persistence
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/warp/daybook/api"
	"github.com/warp/daybook/config"
	"github.com/warp/daybook/ledger"
	"github.com/warp/daybook/logging"
	"github.com/warp/daybook/session"
	"github.com/warp/daybook/store/postgres"
	"github.com/warp/daybook/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Flags override the environment
	port := flag.Int("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	mode := flag.String("mode", cfg.Mode, "debug or release")
	flag.Parse()
	cfg.Port, cfg.DBPath, cfg.Mode = *port, *dbPath, *mode
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := logging.New(cfg.Mode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize store
	store, closeStore, err := openStore(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer closeStore()

	// Initialize session
	sess := session.New(store, logger)
	resumed, err := sess.Resume(context.Background())
	if err != nil {
		logger.Warn("Failed to resume session", zap.Error(err))
	} else if resumed {
		logger.Info("Resumed session", zap.String("email", sess.User().Email))
	}

	scheduler := api.NewNotificationScheduler(sess, logger)
	scheduler.CheckInterval = cfg.ScanInterval
	scheduler.Start()

	handler := api.NewHandler(sess, logger)
	router := api.NewRouter(handler, cfg.AllowedOrigins)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Server starting",
			zap.String("url", fmt.Sprintf("http://localhost:%d", cfg.Port)),
			zap.String("mode", cfg.Mode),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}

// openStore picks PostgreSQL when a database URL is configured and SQLite
// otherwise.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (ledger.Store, func(), error) {
	if cfg.UsePostgres() {
		pg, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using PostgreSQL store")
		return pg, pg.Close, nil
	}

	db, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Using SQLite store", zap.String("path", cfg.DBPath))
	return db, func() {
		if err := db.Close(); err != nil {
			logger.Warn("Failed to close database", zap.Error(err))
		}
	}, nil
}
