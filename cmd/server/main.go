package main

import (
	"alcyxob/fittracker/internal/api"
	"alcyxob/fittracker/internal/auth"
	"alcyxob/fittracker/internal/config"
	"alcyxob/fittracker/internal/logging"
	"alcyxob/fittracker/internal/metrics"
	"alcyxob/fittracker/internal/repository"
	"alcyxob/fittracker/internal/repository/memstore"
	"alcyxob/fittracker/internal/repository/mongo"
	"alcyxob/fittracker/internal/repository/postgres"
	"alcyxob/fittracker/internal/service"
	"alcyxob/fittracker/internal/storage"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// @title FitTracker API
// @version 1.0
// @description Personal fitness tracking: exercises, workout templates, executions and goals.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	configDir := flag.String("config", ".", "directory holding config.yaml and .env")
	flag.Parse()

	// --- Configuration ---
	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogFileName:   cfg.Log.File,
		LogToStdout:   cfg.Log.Stdout,
		LogLevel:      cfg.Log.Level,
		LogFormatJSON: cfg.Log.JSON,
	})
	if logging.GetLevel(cfg.Log.Level) < log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	log.Infof("starting fittracker, db driver: %s", cfg.Database.Driver)

	if err := run(cfg); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
	log.Info("server exiting")
}

func run(cfg config.Config) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// --- Storage backend ---
	store, collectors, err := openStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		err = multierr.Append(err, store.Close(closeCtx))
	}()

	// --- Metrics ---
	registry := metrics.NewRegistry(collectors...)
	metricsManager := metrics.NewManager("fittracker", "server", registry)
	metricsManager.GaugeLifeSignal.Set(1)

	// --- Rate limiting ---
	var rateLimiter api.RequestRateLimiter
	if cfg.RateLimitEnabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() {
			err = multierr.Append(err, rdb.Close())
		}()
		if pingErr := rdb.Ping(ctx).Err(); pingErr != nil {
			return fmt.Errorf("ping redis: %w", pingErr)
		}
		rateLimiter = redis_rate.NewLimiter(rdb)
		log.Infof("auth rate limit: %d requests per minute", cfg.Redis.AuthPerMinute)
	} else {
		log.Warn("redis not configured, auth routes are not rate limited")
	}

	// --- Photo storage ---
	var photos storage.FileStorage
	if cfg.PhotosEnabled() {
		photos, err = storage.NewS3Storage(ctx, cfg.S3)
		if err != nil {
			return fmt.Errorf("init photo storage: %w", err)
		}
	} else {
		log.Warn("s3 bucket not configured, photo endpoints will answer 503")
	}

	// --- Services ---
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Expiration)
	router := api.NewRouter(api.RouterParams{
		Services: api.Services{
			Auth:       service.NewAuthService(store, tokens),
			Users:      service.NewUserService(store, photos, cfg.S3.PresignExpiry),
			Exercises:  service.NewExerciseService(store),
			Workouts:   service.NewWorkoutService(store),
			Executions: service.NewExecutionService(store),
			Goals:      service.NewGoalService(store),
			Stats:      service.NewStatsService(store),
		},
		Metrics:       metricsManager,
		Gatherer:      registry,
		RateLimiter:   rateLimiter,
		AuthPerMinute: cfg.Redis.AuthPerMinute,
		CORSOrigins:   cfg.Server.CORSOrigins,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infof("server listening on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Infof("received %s, shutting down", sig)
	case err := <-serverErr:
		return fmt.Errorf("listen: %w", err)
	}

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// openStore connects the configured backend and prepares its schema.
// The returned collectors expose backend pool stats.
func openStore(ctx context.Context, cfg config.DatabaseConfig) (repository.Store, []prometheus.Collector, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, postgres.NewPoolParams{URL: cfg.URL, MaxConns: cfg.MaxConns})
		if err != nil {
			return nil, nil, err
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		collector := pgxpoolprometheus.NewCollector(pool, map[string]string{"db_name": pool.Config().ConnConfig.Database})
		log.Info("postgres connection established")
		return postgres.NewStore(pool), []prometheus.Collector{collector}, nil

	case config.DriverMongo:
		client, err := mongo.ConnectDB(ctx, cfg.URL)
		if err != nil {
			return nil, nil, err
		}
		store := mongo.NewStore(client, cfg.Name)
		if err := mongo.EnsureIndexes(ctx, store.Database()); err != nil {
			return nil, nil, multierr.Append(err, store.Close(ctx))
		}
		log.Info("mongodb connection established")
		return store, nil, nil

	case config.DriverMemory:
		log.Warn("using the in-memory store, data is lost on restart")
		return memstore.New(), nil, nil
	}
	return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}
