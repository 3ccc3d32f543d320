// Package server wires the API server together: database and migrations,
// object storage, the optional Redis-backed rate limiter, the domain services
// and the HTTP transport, and runs it until SIGINT or SIGTERM.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/vidtube/internal/filex"
	"github.com/dmitrijs2005/vidtube/internal/logging"
	"github.com/dmitrijs2005/vidtube/internal/server/blobstore"
	"github.com/dmitrijs2005/vidtube/internal/server/config"
	"github.com/dmitrijs2005/vidtube/internal/server/httpapi"
	"github.com/dmitrijs2005/vidtube/internal/server/metrics"
	"github.com/dmitrijs2005/vidtube/internal/server/ratelimit"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/vidtube/internal/server/services"
)

// openDB is a seam for tests.
var openDB = repomanager.OpenPostgres

// newBlobStore is a seam for tests.
var newBlobStore = func(ctx context.Context, cfg *config.Config, logger logging.Logger) (services.BlobStore, error) {
	return blobstore.NewS3Store(ctx, cfg, logger)
}

type App struct {
	config *config.Config
	logger logging.Logger
}

func NewApp(c *config.Config) (*App, error) {
	if c == nil {
		return nil, errors.New("config is required")
	}
	logger := logging.New(c.LogLevel, c.LogFormat, os.Stdout)
	return &App{config: c, logger: logger.With("module", "app")}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// buildHandler assembles the services and the HTTP handler chain on top of
// an open database. The returned cleanup releases the Redis client, if any.
func (app *App) buildHandler(ctx context.Context, db *sql.DB, rm repomanager.RepositoryManager) (http.Handler, func(), error) {
	cfg := app.config

	if _, err := filex.EnsureDir(cfg.UploadDir); err != nil {
		return nil, nil, fmt.Errorf("upload dir: %w", err)
	}

	blobs, err := newBlobStore(ctx, cfg, app.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("blob store init error: %w", err)
	}

	checks := map[string]httpapi.Check{"db": db.PingContext}
	cleanup := func() {}

	var counter ratelimit.Counter
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		counter = rdb
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		cleanup = func() {
			if err := rdb.Close(); err != nil {
				app.logger.Warn(ctx, "redis close failed", "error", err)
			}
		}
		app.logger.Info(ctx, "login rate limiter uses redis", "address", cfg.RedisAddr)
	}

	sessions := services.NewSessionService(db, rm, cfg)
	svc := httpapi.Services{
		Sessions:      sessions,
		Users:         services.NewUserService(db, rm, sessions, blobs, app.logger),
		Videos:        services.NewVideoService(db, rm, blobs, app.logger),
		Comments:      services.NewCommentService(db, rm),
		Likes:         services.NewLikeService(db, rm),
		Tweets:        services.NewTweetService(db, rm),
		Subscriptions: services.NewSubscriptionService(db, rm),
		Playlists:     services.NewPlaylistService(db, rm),
		Dashboard:     services.NewDashboardService(db, rm),
	}

	h, err := httpapi.NewHandler(svc, httpapi.Options{
		Config:  cfg,
		Limiter: ratelimit.New(cfg, counter),
		Metrics: metrics.New(),
		Logger:  app.logger,
		Checks:  checks,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("http handler init error: %w", err)
	}
	return h.Routes(), cleanup, nil
}

func (app *App) newHTTPServer(h http.Handler) *http.Server {
	return &http.Server{
		Addr:              app.config.HTTPAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc, srv *http.Server) {
	app.logger.Info(ctx, "Starting HTTP server", "address", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, "http server failed", "error", err)
		cancelFunc()
	}
}

// Run starts the server and blocks until ctx is cancelled or a signal
// arrives, then drains in-flight requests within ShutdownTimeout.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	db, err := openDB(ctx, app.config.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return err
	}

	h, cleanup, err := app.buildHandler(ctx, db, rm)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := app.newHTTPServer(h)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc, srv)
	}()

	<-ctx.Done()
	app.logger.Info(ctx, "Stopping HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "graceful shutdown failed", "error", err)
	}

	wg.Wait()
	app.logger.Info(shutdownCtx, "Stopped")
	return nil
}
