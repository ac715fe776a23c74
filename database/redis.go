package database

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisClient backs the fixed-window rate limiter on the public tracking endpoints.
type RedisClient struct {
	Client *redis.Client
	logger *zap.Logger
}

func NewRedisDB(logger *zap.Logger) (*RedisClient, error) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	var opt *redis.Options
	if parsed, err := redis.ParseURL(fmt.Sprintf("redis://%s", addr)); err == nil {
		opt = parsed
	} else {
		opt = &redis.Options{Addr: addr}
	}
	opt.PoolSize = 10
	opt.MinIdleConns = 5

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("connected to Redis", zap.String("addr", addr))
	return &RedisClient{Client: client, logger: logger}, nil
}

func (r *RedisClient) Close() {
	if err := r.Client.Close(); err != nil {
		r.logger.Error("error closing Redis connection", zap.Error(err))
		return
	}
	r.logger.Info("Redis connection closed")
}

// Incr bumps a counter and stamps the window TTL on first use.
func (r *RedisClient) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	val, err := r.Client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment key: %w", err)
	}
	if val == 1 {
		r.Client.Expire(ctx, key, window)
	}
	return val, nil
}
