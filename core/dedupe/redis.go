package dedupe

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	coreconfig "github.com/m3rciful/folio/core/config"
	"github.com/m3rciful/folio/core/logger"
)

// RedisClient is the part of *redis.Client the store needs.
type RedisClient interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Close() error
}

// Redis shares claimed keys between bot replicas through SET NX EX.
type Redis struct {
	client RedisClient
	prefix string
	ttl    time.Duration
}

// NewRedis wraps an already connected client.
func NewRedis(client RedisClient, prefix string, ttl time.Duration) *Redis {
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

// Claim implements Store.
func (r *Redis) Claim(ctx context.Context, key string) (bool, error) {
	return r.client.SetNX(ctx, r.prefix+key, 1, r.ttl).Result()
}

// Close implements Store.
func (r *Redis) Close() error {
	return r.client.Close()
}

// ConnectRedis dials Redis and pings it with exponential backoff until
// cfg.ConnectTimeoutSeconds runs out.
func ConnectRedis(cfg coreconfig.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	total := time.Duration(cfg.ConnectTimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), total)
	defer cancel()

	wait := 500 * time.Millisecond
	const maxWait = 8 * time.Second
	for attempt := 1; ; attempt++ {
		pingCtx, pingCancel := context.WithTimeout(ctx, 2*time.Second)
		err := client.Ping(pingCtx).Err()
		pingCancel()
		if err == nil {
			logger.Dedupe.Info("connected to redis",
				slog.String("event", "redis.connect"),
				slog.String("host", cfg.Addr),
				slog.Int("attempts", attempt),
			)
			return client, nil
		}

		logger.Dedupe.Warn("redis connection failed, retrying",
			slog.String("event", "redis.connect"),
			slog.String("status", "retry"),
			slog.String("host", cfg.Addr),
			slog.Int("attempts", attempt),
			slog.Duration("backoff", wait),
			slog.String("err", err.Error()),
		)
		select {
		case <-ctx.Done():
			_ = client.Close()
			return nil, fmt.Errorf("redis %s unavailable after %d attempts: %w", cfg.Addr, attempt, err)
		case <-time.After(wait):
		}
		wait = min(wait*2, maxWait)
	}
}
