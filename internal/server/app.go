// Package server wires configuration, storage, the retrieval service and its
// HTTP and gRPC endpoints, and runs them until a shutdown signal arrives.
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

	"github.com/dmitrijs2005/filedo/internal/cryptox"
	"github.com/dmitrijs2005/filedo/internal/dbx"
	"github.com/dmitrijs2005/filedo/internal/logging"
	"github.com/dmitrijs2005/filedo/internal/server/config"
	"github.com/dmitrijs2005/filedo/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/filedo/internal/server/rest"
	"github.com/dmitrijs2005/filedo/internal/server/services"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/filedo/internal/server/grpc"
)

var ErrMissingSecretKey = errors.New("secret key is not configured")

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	redis   *redis.Client
	service *services.RetrievalService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	if c.SecretKey == "" {
		return nil, ErrMissingSecretKey
	}
	codec, err := cryptox.NewManifestCodec(c.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("secret key: %w", err)
	}

	rm, err := repomanager.New(c.DatabaseDriver)
	if err != nil {
		return nil, err
	}

	db, err := dbx.Open(ctx, c.DatabaseDriver, c.DatabaseDSN, dbx.DefaultRetry)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migrations: %w", err)
	}

	app := &App{config: c, logger: logger, db: db}

	if c.CacheEnabled() {
		app.redis = redis.NewClient(&redis.Options{Addr: c.RedisAddr})
		rm = repomanager.WithCache(rm, app.redis, c.CacheTTL, logger)
		logger.Info(ctx, "Record cache enabled", "address", c.RedisAddr, "ttl", c.CacheTTL)
	}

	opts := []services.Option{services.WithLogger(logger)}
	if c.S3Enabled() {
		opts = append(opts, services.WithPublisher(services.NewS3Publisher(c, &http.Client{Timeout: 5 * time.Minute})))
		logger.Info(ctx, "Archive publishing enabled", "bucket", c.S3Bucket)
	}

	app.service = services.NewRetrievalService(db, rm, codec, c, opts...)

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := rest.NewServer(app.config.EndpointAddrHTTP, app.service, app.logger, app.config.MaxUploadBytes)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewHealthServer(app.config.EndpointAddrGRPC, app.logger, app.db, gs.DefaultCheckInterval)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is canceled, a shutdown signal arrives or a server
// fails, then releases the database and cache connections.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.config.EndpointAddrGRPC != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startGRPCServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	app.close(ctx)
}

func (app *App) close(ctx context.Context) {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Warn(ctx, "redis close", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "db close", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
