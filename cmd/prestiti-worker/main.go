package main

import (
	"context"
	"os"
	"time"

	"prestiti/internal/amqp"
	"prestiti/internal/backend"
	"prestiti/internal/cache"
	"prestiti/internal/cli"
	applog "prestiti/internal/log"
	"prestiti/internal/services"
	"prestiti/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	logger.Info("Starting prestiti-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	writerCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid export backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.Logger).CreateWriter(context.Background(), writerCfg)
	if err != nil {
		logger.Error("Failed to initialize summary writer", applog.FieldError, err)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer result.Cleanup()
	}

	var shared *cache.RedisCache
	if cfg.RedisAddr != "" {
		shared = cache.NewRedisCache(cfg.RedisAddr, cfg.ScheduleCacheTTL)
		defer shared.Close()
	}

	svc := services.NewScheduleService(repo, nil, nil, shared, cfg.RecalcBatchSize)
	recalcWorker := worker.NewRecalcWorker(svc, repo, result.Writer, cfg.RecalcInterval)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		if err := amqpClient.Close(); err != nil {
			logger.Warn("AMQP close failed", applog.FieldError, err)
		}
	})

	// Recompute everything once at startup to recover from missed messages.
	if err := recalcWorker.SweepAll(ctx); err != nil {
		logger.Error("Startup sweep failed", applog.FieldError, err)
	}

	go func() {
		handler := func(msg *amqp.LoanRecalcMessage) error {
			return recalcWorker.HandleRecalcMessage(ctx, msg)
		}
		if err := amqpClient.RunConsumer(ctx, handler); err != nil && err != context.Canceled {
			logger.Error("Message consumption failed", applog.FieldError, err)
		}
	}()

	go func() {
		if err := recalcWorker.RunPeriodicSweep(ctx); err != nil && err != context.Canceled {
			logger.Error("Periodic sweep stopped", applog.FieldError, err)
		}
	}()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
