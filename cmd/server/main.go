// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/tabletop/internal/auth"
	"github.com/jason-s-yu/tabletop/internal/cache"
	"github.com/jason-s-yu/tabletop/internal/config"
	"github.com/jason-s-yu/tabletop/internal/database"
	"github.com/jason-s-yu/tabletop/internal/game/uno"
	"github.com/jason-s-yu/tabletop/internal/handlers"
	"github.com/jason-s-yu/tabletop/internal/match"
	"github.com/jason-s-yu/tabletop/internal/middleware"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus/promhttp"
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
	} else {
		logger.Warnf("unknown LOG_LEVEL %q, using info", cfg.LogLevel)
	}

	if err := auth.Init(cfg.TokenExpire); err != nil {
		logger.Fatalf("auth: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := []match.Option{
		match.WithLogger(logger),
		match.WithEngine(uno.Engine{MaxHand: cfg.UnoMaxHand}),
		match.WithSettings(match.Settings{
			BotThinkMin:    cfg.BotThinkMin,
			BotThinkMax:    cfg.BotThinkMax,
			BotBudget:      cfg.BotBudget,
			RematchTimeout: cfg.RematchTimeout,
			ReconnectGrace: cfg.ReconnectGrace,
			LastCallWindow: cfg.LastCallWindow,
		}),
	}

	if cfg.RedisAddr != "" {
		pub, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.RedisChannelPrefix)
		if err != nil {
			logger.Warnf("redis unavailable, lobby fan-out disabled: %v", err)
		} else {
			defer pub.Close()
			opts = append(opts, match.WithPublisher(pub))
			logger.Infof("publishing lobby and activity to redis at %s", cfg.RedisAddr)
		}
	}

	var names handlers.NameLookup
	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Warnf("postgres unavailable, using token names only: %v", err)
		} else {
			defer pool.Close()
			names = database.NewUserStore(pool)
		}
	}

	reg := match.NewRegistry(opts...)
	logged := middleware.LogMiddleware(logger)

	mux := http.NewServeMux()
	mux.Handle("/ws", logged(handlers.MatchWSHandler(logger, reg, names)))
	mux.Handle("/lobby/list", logged(handlers.ListLobbiesHandler(reg)))
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Infof("Running on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("server exited: %v", err)
	}
	logger.Info("server stopped")
}
