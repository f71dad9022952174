// Package app initializes and runs the service: it loads configuration,
// sets up logging, picks a storage backend, wires the auth and business
// layers into the router, and handles graceful shutdown.
package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akarasev/shurl/internal/auth"
	"github.com/akarasev/shurl/internal/config"
	"github.com/akarasev/shurl/internal/db/jsondb"
	"github.com/akarasev/shurl/internal/db/memorystorage"
	"github.com/akarasev/shurl/internal/db/postgresdb"
	"github.com/akarasev/shurl/internal/db/storage"
	"github.com/akarasev/shurl/internal/logger"
	"github.com/akarasev/shurl/internal/router"
	"github.com/akarasev/shurl/internal/service"
)

// App encapsulates the configuration, storage backend and HTTP handler
// needed to run the shortener service.
type App struct {
	cfg         *config.Config
	db          storage.Storage
	httpHandler http.Handler
}

// New builds the application: configuration, logger, storage selection,
// auth, service and router.
func New() (*App, error) {
	var err error
	app := &App{}

	app.cfg, err = config.New()
	if err != nil {
		return nil, err
	}

	err = logger.Init(app.cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	app.db, err = getStorageByType(app.cfg)
	if err != nil {
		return nil, err
	}

	theAuth := auth.New([]byte(app.cfg.JWTSecret), app.cfg.TokenTTL)

	app.httpHandler = router.New(
		service.New(app.db, theAuth, app.cfg.ShortURLBase),
		theAuth,
	)

	return app, nil
}

// Run starts the HTTP server with graceful shutdown support.
// It listens for system signals and cleans up resources upon termination.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Log.Infow("server running", "RunAddr", a.cfg.RunAddr)

	server := &http.Server{
		Addr:    a.cfg.RunAddr,
		Handler: a.httpHandler,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Log.Infoln("Received shutdown signal. Saving database and exiting...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		return a.db.Close()

	case err := <-serverErrCh:
		return fmt.Errorf("server error: %w", err)
	}
}

// Close finalizes resources used by App such as logging.
func (a *App) Close() {
	if err := logger.Sync(); err != nil {
		fmt.Println("Logger sync error:", err)
	}
}

func getStorageByType(cfg *config.Config) (storage.Storage, error) {
	switch {
	case cfg.DatabaseDSN != "":
		return postgresdb.New(
			context.Background(),
			cfg.DatabaseDSN,
			cfg.DBConnectionTimeout,
			cfg.MigrationsDir,
		)

	case cfg.DBFileName != "":
		return jsondb.New(cfg.DBFileName)
	}

	return memorystorage.New()
}
