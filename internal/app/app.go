package app

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/godilite/survey-form/internal/config"
	"github.com/godilite/survey-form/internal/predict"
	"github.com/godilite/survey-form/internal/repository"
	"github.com/godilite/survey-form/internal/submit"
	"github.com/godilite/survey-form/internal/web"
	"github.com/godilite/survey-form/pkg/cache"
	dbbuilder "github.com/godilite/survey-form/pkg/database"
	grpcsrv "github.com/godilite/survey-form/pkg/grpc/server"
	"github.com/godilite/survey-form/pkg/httpserver"

	"go.uber.org/zap"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = 10 * time.Minute
)

type App struct {
	logger     *zap.Logger
	dbPool     *sql.DB
	cache      *cache.Cache
	grpcServer *grpcsrv.Server
	httpServer *httpserver.Server
	handlers   *web.Handlers
	stopSweep  context.CancelFunc
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	dbPool, err := dbbuilder.New(
		dbbuilder.WithDriver(cfg.DBDriver),
		dbbuilder.WithDataSource(cfg.DBPath),
	)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	logger.Info("Database pool initialized", zap.String("path", cfg.DBPath))

	history := repository.NewPredictionRepository(dbPool)
	if err := history.EnsureSchema(ctx); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("database schema failed: %w", err)
	}

	var predictor submit.Predictor = predict.NewClient(cfg.PredictBaseURL,
		predict.WithTimeout(cfg.PredictTimeout),
		predict.WithLogger(logger),
	)
	logger.Info("Prediction endpoint configured", zap.String("url", cfg.PredictBaseURL))

	var cacheClient *cache.Cache
	if cfg.CacheEnabled() {
		cacheClient, err = cache.New(ctx, cache.WithAddress(cfg.RedisAddr))
		if err != nil {
			dbPool.Close()
			return nil, fmt.Errorf("cache init failed: %w", err)
		}
		predictor = predict.NewCachedPredictor(predictor, cacheClient, cfg.CacheTTL, logger)
		logger.Info("Cache client initialized", zap.String("addr", cfg.RedisAddr))
	}

	grpcServer, err := grpcsrv.New(
		grpcsrv.WithPort(cfg.GRPCPort),
		grpcsrv.WithLogger(logger),
		grpcsrv.WithReflection(cfg.GRPCReflectionEnabled),
		grpcsrv.WithLogging(true),
		grpcsrv.WithHealthServices(submit.ServiceName, submit.UpstreamServiceName),
	)
	if err != nil {
		closeAll(logger, cacheClient, dbPool)
		return nil, fmt.Errorf("failed to create gRPC server: %w", err)
	}

	submitter := submit.NewFormSubmitter(predictor, logger,
		submit.WithHistory(history),
		submit.WithHealthReporter(upstreamHealth{server: grpcServer, service: submit.UpstreamServiceName}),
	)

	handlers := web.NewHandlers(submitter, history, logger)

	httpServer, err := httpserver.New(handlers.Routes(),
		httpserver.WithPort(cfg.HTTPPort),
		httpserver.WithLogger(logger),
		httpserver.WithAccessLog(true),
	)
	if err != nil {
		_ = grpcServer.Shutdown(ctx)
		closeAll(logger, cacheClient, dbPool)
		return nil, fmt.Errorf("failed to create HTTP server: %w", err)
	}

	return &App{
		logger:     logger,
		dbPool:     dbPool,
		cache:      cacheClient,
		grpcServer: grpcServer,
		httpServer: httpServer,
		handlers:   handlers,
	}, nil
}

// Start serves both endpoints in the background.
func (a *App) Start() {
	a.logger.Info("application starting")

	sweepCtx, cancel := context.WithCancel(context.Background())
	a.stopSweep = cancel
	go a.handlers.RunSweeper(sweepCtx, sweepInterval)

	a.grpcServer.Start()
	a.httpServer.Start()
}

// Run starts the application and blocks until a shutdown signal is received.
func (a *App) Run() error {
	a.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	a.logger.Info("application shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return a.Shutdown(ctx)
}

// Shutdown stops both servers and releases the cache and database.
func (a *App) Shutdown(ctx context.Context) error {
	if a.stopSweep != nil {
		a.stopSweep()
	}

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("HTTP server shutdown error", zap.Error(err))
	}
	if err := a.grpcServer.Shutdown(ctx); err != nil {
		a.logger.Error("gRPC server shutdown error", zap.Error(err))
	}

	closeAll(a.logger, a.cache, a.dbPool)

	if ctx.Err() == context.DeadlineExceeded {
		a.logger.Warn("shutdown completed but deadline exceeded")
	} else {
		a.logger.Info("graceful shutdown completed successfully")
	}

	_ = a.logger.Sync()
	return nil
}

// HTTPAddr is the address the page is served on.
func (a *App) HTTPAddr() string {
	return a.httpServer.Addr().String()
}

// GRPCAddr is the address of the ops health endpoint.
func (a *App) GRPCAddr() string {
	return a.grpcServer.Addr().String()
}

func closeAll(logger *zap.Logger, cacheClient *cache.Cache, dbPool *sql.DB) {
	if cacheClient != nil {
		if err := cacheClient.Close(); err != nil {
			logger.Error("cache shutdown error", zap.Error(err))
		}
	}
	if err := dbPool.Close(); err != nil {
		logger.Error("database shutdown error", zap.Error(err))
	}
}
