// Package server initializes and runs the sync server. It opens the
// database, applies migrations, serves the JSON API and the gRPC health
// endpoint, and shuts both down on SIGINT/SIGTERM/SIGQUIT.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SWE-Jahidul/amar-hisab-back/internal/dbx"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/logging"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/server/config"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/server/httpapi"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/server/repositories/repomanager"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/server/services"
	"golang.org/x/sync/errgroup"

	gs "github.com/SWE-Jahidul/amar-hisab-back/internal/server/grpc"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	logCloser io.Closer
	repos     repomanager.RepositoryManager
}

func NewApp(c *config.Config) (*App, error) {
	if c == nil {
		return nil, errors.New("nil config")
	}

	logger, closer := logging.New(logging.Options{
		Level:      c.LogLevel,
		File:       c.LogFile,
		MaxSizeMB:  c.LogMaxSizeMB,
		MaxBackups: c.LogMaxBackups,
		MaxAgeDays: c.LogMaxAgeDays,
	})

	return &App{
		config:    c,
		logger:    logger,
		logCloser: closer,
		repos:     repomanager.NewPostgresRepositoryManager(),
	}, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case sig := <-sigs:
			app.logger.Info(ctx, "Received signal", "signal", sig.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) handler(runner dbx.Runner) http.Handler {
	return httpapi.NewRouter(httpapi.Services{
		Sync:     services.NewSyncService(runner, app.repos, app.logger),
		Stats:    services.NewStatsService(runner, app.repos),
		Users:    app.repos.Users(runner.Conn()),
		Incomes:  services.NewIncomeService(runner, app.repos, app.logger),
		Expenses: services.NewExpenseService(runner, app.repos, app.logger),
		Notes:    services.NewNoteService(runner, app.repos, app.logger),
		Bazar:    services.NewBazarService(runner, app.repos, app.logger),
	}, app.logger, app.config.SecretKey, app.config.MaxRequestBytes)
}

// Run blocks until a signal arrives, ctx is cancelled, or a listener fails.
func (app *App) Run(ctx context.Context) error {
	defer func() { _ = app.logCloser.Close() }()

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(ctx, cancelFunc)

	db, err := repomanager.Open(ctx, app.config.DatabaseDSN)
	if err != nil {
		app.logger.Error(ctx, "db init error", "error", err)
		return fmt.Errorf("db init error: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := app.repos.RunMigrations(ctx, db); err != nil {
		app.logger.Error(ctx, "migrations failed", "error", err)
		return fmt.Errorf("migrations: %w", err)
	}

	httpSrv := &http.Server{
		Addr:              app.config.EndpointAddrHTTP,
		Handler:           app.handler(dbx.NewSQLRunner(db)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	grpcSrv := gs.NewServer(app.config.EndpointAddrGRPC, app.logger)
	grpcSrv.SetServing(true)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return grpcSrv.Run(gctx)
	})

	g.Go(func() error {
		app.logger.Info(gctx, "Starting HTTP server", "address", app.config.EndpointAddrHTTP)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		grpcSrv.SetServing(false)
		app.logger.Info(gctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	if err != nil {
		app.logger.Error(ctx, "server stopped with error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
	return err
}
