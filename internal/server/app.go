// Package server wires the vault, sessions and the attempt ledger into an
// HTTP server and runs it until the context is canceled.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/iudanet/cvvault/internal/server/config"
	"github.com/iudanet/cvvault/internal/server/handlers"
	"github.com/iudanet/cvvault/internal/server/lockout"
	"github.com/iudanet/cvvault/internal/server/session"
	"github.com/iudanet/cvvault/internal/server/storage"
	"github.com/iudanet/cvvault/internal/server/storage/boltdb"
	"github.com/iudanet/cvvault/internal/vault"
)

// App holds the server dependencies
type App struct {
	config   *config.Config
	logger   *slog.Logger
	store    *vault.Store
	sessions *session.Store
	ledger   storage.AttemptStorage
	guard    *lockout.Guard
	handler  http.Handler
	stopRL   func()
}

// NewApp creates the vault root, opens the attempt ledger and builds the router
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, version string) (*App, error) {
	if err := os.MkdirAll(cfg.VaultDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create vault dir: %w", err)
	}

	secret, err := cfg.SecretBytes()
	if err != nil {
		return nil, err
	}
	if cfg.SessionSecret == "" {
		logger.Warn("session secret not set, using a random one; sessions will not survive restart")
	}

	ledger, err := boltdb.New(ctx, cfg.LedgerPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open attempt ledger: %w", err)
	}

	app := &App{
		config:   cfg,
		logger:   logger,
		store:    vault.NewStore(cfg.VaultDir, logger),
		sessions: session.NewStore(cfg.SessionTTL, logger),
		ledger:   ledger,
		guard:    lockout.NewGuard(ledger, cfg.MaxFailedAttempts, cfg.LockoutWindow, logger),
	}
	app.handler, app.stopRL = app.routes(handlers.JWTConfig{Secret: secret}, version)

	return app, nil
}

// Handler returns the fully wrapped HTTP handler
func (app *App) Handler() http.Handler {
	return app.handler
}

// Run serves HTTP until ctx is canceled, then shuts down gracefully
func (app *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              app.config.Addr,
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       2 * time.Minute,
		ErrorLog:          slog.NewLogLogger(app.logger.Handler(), slog.LevelWarn),
	}

	bgCtx, cancelBg := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		app.guard.Run(bgCtx)
	}()

	errC := make(chan error, 1)
	go func() {
		app.logger.Info("server listening", slog.String("addr", app.config.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errC <- err
		}
		close(errC)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		app.logger.Info("shutting down server")
	case err := <-errC:
		runErr = fmt.Errorf("server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("graceful shutdown failed", slog.Any("error", err))
	}

	cancelBg()
	wg.Wait()

	return runErr
}

// Close releases background workers and the ledger
func (app *App) Close() error {
	app.stopRL()
	app.sessions.Stop()
	return app.ledger.Close()
}
