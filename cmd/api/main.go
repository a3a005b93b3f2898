package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/discovery-microservice/internal/config"
	httpDelivery "github.com/discovery-microservice/internal/delivery/http"
	"github.com/discovery-microservice/internal/delivery/http/handler"
	"github.com/discovery-microservice/internal/infrastructure/nominatim"
	"github.com/discovery-microservice/internal/infrastructure/overpass"
	"github.com/discovery-microservice/internal/infrastructure/reporting"
	"github.com/discovery-microservice/internal/infrastructure/scoring"
	"github.com/discovery-microservice/internal/pkg/logger"
	"github.com/discovery-microservice/internal/pkg/metrics"
	"github.com/discovery-microservice/internal/pkg/ratelimit"
	"github.com/discovery-microservice/internal/repository/cache"
	"github.com/discovery-microservice/internal/usecase"
	"github.com/discovery-microservice/internal/worker"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Discovery Microservice")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
	)

	// 3. Connect to Redis
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()

	// 4. Health check
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Health(ctx); err != nil {
		log.Fatal("Redis health check failed", zap.Error(err))
	}
	log.Info("All connections healthy")

	// 5. Initialize Repositories and provider clients
	m := metrics.NewMetrics()

	cacheRepo := cache.NewCacheRepository(redisClient)
	store := cache.NewTTLStore(cacheRepo, nil, log)

	// Лимитер один на процесс: все запросы к геокодеру проходят через него
	nominatimLimiter := ratelimit.New(cfg.Nominatim.MinRequestInter, nil)

	geocodingRepo := nominatim.NewClient(&cfg.Nominatim, nominatimLimiter, m, log)
	attractionRepo := overpass.NewClient(&cfg.Overpass, m, log)
	scoringRepo := scoring.NewClient(&cfg.Scoring, m, log)
	reporter := reporting.NewZapReporter(log)

	if !scoringRepo.Enabled() {
		log.Warn("Scoring API key is not configured, interest ranking disabled")
	}

	log.Info("Repositories initialized")

	// 6. Initialize Use Cases
	background := worker.NewBackground(log)

	ranker := usecase.NewInterestRanker(
		scoringRepo,
		store,
		reporter,
		background,
		m,
		log,
		cfg.Cache.RankedTTL,
	)

	discoveryUC := usecase.NewDiscoveryUseCase(
		attractionRepo,
		store,
		ranker,
		usecase.NewMovementFilter(cfg.Discovery.MovementThreshold),
		reporter,
		m,
		log,
		cfg.Discovery.DefaultRadius,
		cfg.Discovery.MaxResults,
		cfg.Cache.RawTTL,
	)

	searchUC := usecase.NewSearchUseCase(
		geocodingRepo,
		store,
		reporter,
		m,
		log,
		cfg.Cache.SearchTTL,
		cfg.Cache.CityTTL,
	)

	log.Info("Use cases initialized")

	// 7. Initialize HTTP Handlers
	searchHandler := handler.NewSearchHandler(searchUC, log)
	typeaheadHandler := handler.NewTypeaheadHandler(searchUC, cfg.Discovery.DebounceDelay, nil, log)
	discoveryHandler := handler.NewDiscoveryHandler(discoveryUC, log)

	// 8. Initialize HTTP Server
	server := httpDelivery.NewServer(
		cfg,
		log,
		searchHandler,
		typeaheadHandler,
		discoveryHandler,
	)

	// 9. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 10. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	// Фоновые задачи ранжирования дорабатывают до таймаута
	if err := background.Stop(); err != nil {
		log.Error("Background tasks shutdown error", zap.Error(err))
	}

	log.Info("Server stopped")
}
