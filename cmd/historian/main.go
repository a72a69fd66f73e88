// cmd/historian/main.go drains the room activity queue from Redis into Postgres.
package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/tabletop/internal/cache"
	"github.com/jason-s-yu/tabletop/internal/config"
	"github.com/jason-s-yu/tabletop/internal/database"
	"github.com/jason-s-yu/tabletop/internal/historian"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	if cfg.RedisAddr == "" || cfg.DatabaseURL == "" {
		logger.Fatal("historian needs both REDIS_ADDR and a database url")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	queue, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.RedisChannelPrefix)
	if err != nil {
		logger.Fatalf("redis: %v", err)
	}
	defer queue.Close()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	store := database.NewActivityStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Fatalf("schema: %v", err)
	}

	svc := historian.New(queue, store, cfg.HistorianBatchSize, time.Duration(cfg.HistorianFlushMs)*time.Millisecond, logger)
	logger.Info("historian started")
	svc.Run(ctx)
}
