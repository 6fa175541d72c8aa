package main

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"vocalstudio.app/backend/internal/bootstrap"
	"vocalstudio.app/backend/internal/config"
	"vocalstudio.app/backend/internal/server"
	"vocalstudio.app/backend/pkg/database"
	"vocalstudio.app/backend/pkg/logger"
	"vocalstudio.app/backend/pkg/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.AppEnv)
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	db, err := database.Connect(cfg.DSN(), cfg.IsDevelopment())
	if err != nil {
		log.Fatal("failed to connect database", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	if cfg.IsDevelopment() {
		if err := bootstrap.SeedAdmin(ctx, db, log); err != nil {
			log.Fatal("failed to seed admin user", zap.Error(err))
		}
	}

	if err := validator.RegisterCustomValidations(); err != nil {
		log.Fatal("failed to register validations", zap.Error(err))
	}

	redisClient := connectRedis(ctx, cfg.RedisURL, log)

	srv := server.NewServer(cfg, db, redisClient, log)
	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Fatal("server exited with error", zap.Error(err))
	}
}

// connectRedis returns nil when REDIS_URL is unset or unreachable; the
// server then runs without rate limiting and realtime pushes.
func connectRedis(ctx context.Context, url string, log *zap.Logger) *redis.Client {
	if url == "" {
		log.Warn("REDIS_URL not set, running without redis")
		return nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		log.Warn("invalid REDIS_URL, running without redis", zap.Error(err))
		return nil
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("redis unreachable, running without redis", zap.Error(err))
		_ = client.Close()
		return nil
	}

	log.Info("connected to redis")
	return client
}
