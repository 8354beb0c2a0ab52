package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"prestiti/internal/amqp"
	"prestiti/internal/cache"
	"prestiti/internal/cli"
	apphttp "prestiti/internal/http"
	applog "prestiti/internal/log"
	"prestiti/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// AMQP is optional: without it loans still save, the worker just never
	// hears about them until its periodic sweep.
	var publisher services.RecalcPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, recalc messages disabled", applog.FieldError, err)
		} else {
			publisher = amqpClient
			defer amqpClient.Close()
		}
	}

	var shared *cache.RedisCache
	if cfg.RedisAddr != "" {
		shared = cache.NewRedisCache(cfg.RedisAddr, cfg.ScheduleCacheTTL)
		defer shared.Close()
		logger.Info("Redis schedule cache enabled", "addr", cfg.RedisAddr)
	}

	memo := cache.NewLRU[services.ScheduleView](cfg.ScheduleCacheSize, cfg.ScheduleCacheTTL)
	svc := services.NewScheduleService(repo, publisher, memo, shared, cfg.RecalcBatchSize)

	srv := apphttp.NewServer(":"+cfg.Port, svc)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
	})

	logger.Info("Starting prestiti server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
