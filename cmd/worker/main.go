package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/brightcart/storefront-backend/internal/config"
	"github.com/brightcart/storefront-backend/internal/database"
	"github.com/brightcart/storefront-backend/internal/jobs"
	"github.com/brightcart/storefront-backend/internal/observability"
	"github.com/brightcart/storefront-backend/internal/repository"
	"github.com/brightcart/storefront-backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	bootstrapLogger := observability.NewBootstrapLogger(cfg)
	runtime, err := observability.InitRuntime(context.Background(), cfg, bootstrapLogger)
	if err != nil {
		log.Fatal(err)
	}
	logger := observability.InitLogger(cfg, runtime.LoggerProvider)

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal(err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	observability.InstrumentRedisClient(redisClient, logger)

	redisOpts := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	queueClient := jobs.NewClient(redisOpts)

	orderRepo := repository.NewOrderRepository(db)
	productRepo := repository.NewProductRepository(db)
	orders := service.NewOrderService(orderRepo, productRepo, queueClient)
	reports := service.NewReportService(orderRepo, redisClient, cfg.ReportCacheTTL)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   redisOpts,
		Concurrency: cfg.WorkerConcurrency,
		Logger:      logger,
		Orders:      orders,
		Reports:     reports,
	})
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("worker starting", "concurrency", cfg.WorkerConcurrency)
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()
	if err := runtime.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown observability", "error", err)
	}
	if err := queueClient.Close(); err != nil {
		logger.Error("failed to close job queue client", "error", err)
	}
	if err := redisClient.Close(); err != nil {
		logger.Error("failed to close redis client", "error", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
