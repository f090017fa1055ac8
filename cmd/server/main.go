package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/deskline/billing/internal/adapter/http"
	"github.com/deskline/billing/internal/adapter/http/handler"
	postgresRepo "github.com/deskline/billing/internal/adapter/repository/postgres"
	redisRepo "github.com/deskline/billing/internal/adapter/repository/redis"
	"github.com/deskline/billing/internal/domain"
	"github.com/deskline/billing/internal/infrastructure/config"
	"github.com/deskline/billing/internal/infrastructure/logger"
	"github.com/deskline/billing/internal/infrastructure/metrics"
	"github.com/deskline/billing/internal/infrastructure/postgres"
	"github.com/deskline/billing/internal/infrastructure/redis"
	"github.com/deskline/billing/internal/usecase"
	goredis "github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLogger
	zerolog.DefaultContextLogger = &appLogger

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Run migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to Redis; the summary cache is optional
	var redisClient *goredis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		log.Info().Msg("connected to redis")
	}

	// Initialize repositories
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	alertRepo := postgresRepo.NewAlertRepository(pool)
	dunningRepo := postgresRepo.NewDunningRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()

	var cache usecase.Cache
	if redisClient != nil {
		cache = redisRepo.NewCache(redisClient)
	}

	appMetrics := metrics.New()

	// Initialize use cases
	recorderUC := usecase.NewRecorderUseCase(ledgerRepo, cache, idGen, appLogger, appMetrics)
	summaryUC := usecase.NewSummaryUseCase(ledgerRepo, cache, appLogger, appMetrics)
	alertUC := usecase.NewAlertUseCase(alertRepo, idGen, appLogger, appMetrics)
	dunningUC := usecase.NewDunningUseCase(dunningRepo, idGen, domain.DefaultDunningSchedule, appLogger, appMetrics)
	reconciliationUC := usecase.NewReconciliationUseCase(alertUC, dunningUC, appLogger)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		LedgerHandler:  handler.NewLedgerHandler(recorderUC, summaryUC),
		AlertHandler:   handler.NewAlertHandler(alertUC, reconciliationUC),
		DunningHandler: handler.NewDunningHandler(dunningUC),
		HealthHandler:  handler.NewHealthHandler(pool, redisClient),
		Logger:         appLogger,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
