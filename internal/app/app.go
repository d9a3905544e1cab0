package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	swaggerfiles "github.com/swaggo/files"
	swagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/Nazarious-ucu/smart-environment-dashboard/docs"
	"github.com/Nazarious-ucu/smart-environment-dashboard/internal/config"
	httpHandlers "github.com/Nazarious-ucu/smart-environment-dashboard/internal/handlers/http"
	"github.com/Nazarious-ucu/smart-environment-dashboard/internal/handlers/middleware"
	"github.com/Nazarious-ucu/smart-environment-dashboard/internal/mockdata"
	"github.com/Nazarious-ucu/smart-environment-dashboard/internal/models"
	"github.com/Nazarious-ucu/smart-environment-dashboard/internal/refresher"
	"github.com/Nazarious-ucu/smart-environment-dashboard/internal/repository/sqlite"
	"github.com/Nazarious-ucu/smart-environment-dashboard/internal/services/airquality"
	"github.com/Nazarious-ucu/smart-environment-dashboard/internal/services/cache"
	"github.com/Nazarious-ucu/smart-environment-dashboard/internal/services/environment"
	"github.com/Nazarious-ucu/smart-environment-dashboard/internal/services/environment/decorators"
	loggerT "github.com/Nazarious-ucu/smart-environment-dashboard/internal/services/logger"
	metricsSvc "github.com/Nazarious-ucu/smart-environment-dashboard/internal/services/metrics"
	"github.com/Nazarious-ucu/smart-environment-dashboard/internal/web"
	fLogger "github.com/Nazarious-ucu/smart-environment-dashboard/pkg/logger"
)

const pingTimeout = 2 * time.Second

type environmentService interface {
	FetchAll(ctx context.Context, city string) (models.EnvironmentData, error)
	DefaultCity() string
}

// ServiceContainer holds initialized dependencies for the server.
type ServiceContainer struct {
	EnvironmentService environmentService
	Breaker            *airquality.BreakerClient
	Dataset            *mockdata.Dataset
	Snapshots          *sqlite.SnapshotRepository
	Refresher          *refresher.Refresher

	Router *gin.Engine
	Srv    *http.Server
	Db     *sql.DB
	Redis  *redis.Client

	fileLogger *zap.Logger
}

// App ties together config, logger, and metrics for startup/shutdown.
type App struct {
	cfg config.Config
	l   zerolog.Logger
	m   *metricsSvc.Metrics
}

// New prepares a new App with given config, zerolog logger, and metrics.
func New(cfg config.Config, logger zerolog.Logger, met *metricsSvc.Metrics) *App {
	return &App{
		cfg: cfg,
		l:   logger.Hook(middleware.RequestIDHook{}),
		m:   met,
	}
}

// Start initializes services, serves HTTP and waits for ctx to be cancelled.
func (a *App) Start(ctx context.Context) error {
	srvContainer, err := a.Init(ctx)
	if err != nil {
		return err
	}

	if srvContainer.Refresher != nil {
		if err := srvContainer.Refresher.Start(ctx); err != nil {
			a.l.Error().Err(err).Msg("failed to start refresher")
		}
	}

	serveErr := make(chan error, 1)
	go func() {
		a.l.Info().Str("address", srvContainer.Srv.Addr).Msg("HTTP server running")
		if err := srvContainer.Srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		a.l.Info().Msg("shutdown signal received, stopping dashboard")
	case err = <-serveErr:
		if err != nil {
			a.l.Error().Err(err).Msg("HTTP server failed")
		}
	}

	if shutdownErr := a.Shutdown(srvContainer); shutdownErr != nil {
		a.l.Error().Err(shutdownErr).Msg("failed to shutdown application")
		return errors.Join(err, shutdownErr)
	}
	a.l.Info().Msg("application shutdown successfully")
	return err
}

// Shutdown stops the refresher and HTTP server, then releases storage and loggers.
func (a *App) Shutdown(srvContainer ServiceContainer) error {
	a.l.Info().Msg("stopping dashboard…")

	var errs []error

	if srvContainer.Refresher != nil {
		srvContainer.Refresher.Stop()
		a.l.Info().Msg("refresher stopped")
	}

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(a.cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if srvContainer.Srv != nil {
		if err := srvContainer.Srv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		} else {
			a.l.Info().Msg("HTTP server stopped")
		}
	}

	if srvContainer.Db != nil {
		if err := srvContainer.Db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("db close: %w", err))
		} else {
			a.l.Info().Msg("database closed")
		}
	}

	if srvContainer.Redis != nil {
		if err := srvContainer.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}

	if srvContainer.fileLogger != nil {
		if err := srvContainer.fileLogger.Sync(); err != nil {
			a.l.Error().Err(err).Msg("failed to sync file logger")
		} else {
			a.l.Info().Msg("file logger synced successfully")
		}
	}

	a.l.Info().Msg("shutdown complete")
	return errors.Join(errs...)
}

// Init wires services, storage and routes without starting any of them. On
// failure everything opened so far is released before returning.
func (a *App) Init(ctx context.Context) (srvContainer ServiceContainer, err error) {
	a.l.Info().Msgf("initializing dashboard with config: %+v", a.cfg.Redacted())

	defer func() {
		if err == nil {
			return
		}
		if shutdownErr := a.Shutdown(srvContainer); shutdownErr != nil {
			a.l.Error().Err(shutdownErr).Msg("failed to release resources after init error")
		}
	}()

	fileLogger, err := fLogger.NewFileLogger(a.cfg.HTTPLogsPath)
	if err != nil {
		return srvContainer, fmt.Errorf("create file logger: %w", err)
	}
	srvContainer.fileLogger = fileLogger

	// HTTP client logging
	httpLogClient := &http.Client{
		Transport: loggerT.NewRoundTripper(fileLogger),
		Timeout:   time.Duration(a.cfg.AirQuality.Timeout) * time.Second,
	}

	breakerCfg := airquality.BreakerConfig{
		TimeInterval: time.Duration(a.cfg.Breaker.TimeInterval) * time.Second,
		TimeTimeOut:  time.Duration(a.cfg.Breaker.TimeTimeOut) * time.Second,
		RepeatNumber: a.cfg.Breaker.RepeatNumber,
	}
	openAQ := airquality.NewBreakerClient("OpenAQ", breakerCfg,
		airquality.NewClientOpenAQ(a.cfg.AirQuality.APIKey, a.cfg.AirQuality.URL, httpLogClient, a.l),
	)
	srvContainer.Breaker = openAQ

	var service environmentService = environment.NewAggregator(
		openAQ,
		environment.NewWaterUsageProvider(),
		environment.NewFoodSustainabilityProvider(),
		a.cfg.DefaultCity,
		a.l,
	)

	// the refresher archives what it fetches, so it must not read from the cache
	refreshSource := service

	// Redis cache client + metrics decorator
	if a.cfg.Redis.Enabled {
		redisClient := newRedisConnection(a.cfg.Redis.Address(), a.cfg.Redis.DbType)
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			a.l.Warn().Err(err).Str("address", a.cfg.Redis.Address()).Msg("redis is not reachable, serving uncached")
		}
		cancel()

		cacheMetrics := cache.NewMetricsDecorator[models.EnvironmentData](
			cache.NewRedisClient[models.EnvironmentData](redisClient, a.l,
				time.Duration(a.cfg.Redis.LiveTime)*time.Minute),
			metricsSvc.NewPromCollector(a.m.Registry, a.cfg.ServiceName),
		)
		cached := decorators.NewCachedAggregator(service, cacheMetrics, a.l)
		service = cached
		refreshSource = cached.WriteThrough()
		srvContainer.Redis = redisClient
	}
	srvContainer.EnvironmentService = service

	if a.cfg.DB.Enabled {
		db, err := sqlite.CreateSqliteDb(a.cfg.DB.Dialect, a.cfg.DB.Source)
		if err != nil {
			return srvContainer, fmt.Errorf("open snapshot database: %w", err)
		}
		srvContainer.Db = db

		if err := sqlite.Migrate(db); err != nil {
			return srvContainer, fmt.Errorf("migrate snapshot database: %w", err)
		}
		srvContainer.Snapshots = sqlite.NewSnapshotRepository(db, a.l)
	}

	if a.cfg.FileMode() {
		ds, err := mockdata.Load(a.cfg.DataSource.MockDataPath)
		if err != nil {
			return srvContainer, err
		}
		a.l.Info().Str("path", ds.Path()).Msg("serving mock data file")
		srvContainer.Dataset = ds
	}

	if a.cfg.Refresh.Enabled {
		if srvContainer.Snapshots != nil {
			srvContainer.Refresher = refresher.New(refreshSource, srvContainer.Snapshots, a.m,
				a.cfg.Refresh.Cities, a.cfg.Refresh.Schedule, a.l)
		} else {
			srvContainer.Refresher = refresher.New(refreshSource, nil, a.m,
				a.cfg.Refresh.Cities, a.cfg.Refresh.Schedule, a.l)
		}
	}

	router, routerErr := a.newRouter(srvContainer)
	if routerErr != nil {
		return srvContainer, routerErr
	}
	srvContainer.Router = router

	srvContainer.Srv = &http.Server{
		Addr:        a.cfg.ServerAddress(),
		Handler:     router,
		ReadTimeout: time.Duration(a.cfg.Server.ReadTimeout) * time.Second,
	}

	return srvContainer, nil
}

func (a *App) newRouter(srvContainer ServiceContainer) (*gin.Engine, error) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID(a.l))
	router.Use(a.m.HTTPMiddleware())

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)
	router.StaticFS("/static", web.StaticFS())

	handler := httpHandlers.NewHandler(srvContainer.EnvironmentService)
	if srvContainer.Breaker != nil {
		handler.WithBreaker(srvContainer.Breaker)
	}
	if srvContainer.Dataset != nil {
		handler.WithDataset(srvContainer.Dataset)
	}
	if srvContainer.Snapshots != nil {
		handler.WithHistory(srvContainer.Snapshots)
	}

	router.GET("/", handler.Index)
	router.GET("/healthz", handler.Health)

	api := router.Group("/api")
	{
		api.GET("/data", handler.GetData)
		api.GET("/data/:city", handler.GetByCity)
		api.GET("/history/:city", handler.GetHistory)
		api.GET("/history/:city/latest", handler.GetLatest)
	}

	router.GET("/metrics", gin.WrapH(a.m.Handler()))
	router.GET("/swagger/*any", swagger.WrapHandler(swaggerfiles.Handler))

	return router, nil
}

func newRedisConnection(connString string, dbType int) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: connString, DB: dbType})
}
