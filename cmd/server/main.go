package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"plantid_backend/internal/app/config"
	"plantid_backend/internal/app/di"
	"plantid_backend/internal/app/router"
	"plantid_backend/internal/platform/http/handler"
	infraredis "plantid_backend/internal/platform/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis（レート制限カウンタの共有用、なければプロセス内で代替）
	var rdb *redisv9.Client
	checks := map[string]handler.Check{}
	if cfg.Redis.Addr != "" {
		tmp, err := infraredis.NewRedisClient(ctx, infraredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			slog.Warn("Redis unavailable. Using in-memory rate limiter.", "error", err)
		} else {
			rdb = tmp
			checks["redis"] = infraredis.Ping(rdb)
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("failed to close Redis client", "error", err)
				}
			}()
		}
	}

	// JWT_SECRETチェック（開発中の注意喚起）
	if cfg.JWTSecret == "" {
		slog.Warn("JWT_SECRET is not set. /v1 endpoints are open to any client.")
	}

	// Handler
	identifyH := di.NewIdentifyHandler(cfg)
	notesH := di.NewSpeciesNotesHandler(ctx, cfg.Gemini)

	// ルータ生成
	r := router.NewRouter(router.Options{
		CORSOrigins:  cfg.CORSOrigins,
		JWTSecret:    cfg.JWTSecret,
		Limiter:      di.NewRateLimiter(rdb, cfg.RateLimit),
		HealthChecks: checks,
		Logger:       logger,
	}, identifyH, notesH)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr, "plantnet_project", cfg.PlantNet.Project)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
	slog.Info("server stopped")
}
