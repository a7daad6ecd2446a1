package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"

	"github.com/preston-bernstein/ntrp-rating-service/internal/logging"
)

const (
	defaultKeyPrefix      = "ntrp"
	defaultConnectTimeout = 30 * time.Second
)

// RedisConfig controls the redis-backed session store.
type RedisConfig struct {
	Addr           string
	Password       string
	DB             int
	KeyPrefix      string
	SessionTTL     time.Duration
	ConnectTimeout time.Duration
}

// RedisBackend keeps each store in one redis hash. Every write refreshes the
// hash TTL, so a store disappears once the session has been idle for SessionTTL.
type RedisBackend struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisBackend wraps an existing client.
func NewRedisBackend(client *redis.Client, prefix string, ttl time.Duration) *RedisBackend {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisBackend{client: client, prefix: prefix, ttl: ttl}
}

// DialRedis connects to redis, retrying the initial ping with exponential backoff
// until ConnectTimeout elapses.
func DialRedis(ctx context.Context, cfg RedisConfig, logger *slog.Logger) (*RedisBackend, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = timeout

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		pingErr := client.Ping(ctx).Err()
		if pingErr != nil {
			logging.Warn(logger, "redis ping failed", slog.Int("attempt", attempt), slog.String("addr", cfg.Addr), "error", pingErr)
		}
		return pingErr
	}, backoff.WithContext(policy, ctx))
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
	}

	logging.Info(logger, "redis session store connected", slog.String("addr", cfg.Addr), slog.Int("attempts", attempt))
	return NewRedisBackend(client, cfg.KeyPrefix, cfg.SessionTTL), nil
}

func (r *RedisBackend) key(store string) string {
	return r.prefix + ":" + store
}

// Get reads one field of the store hash.
func (r *RedisBackend) Get(ctx context.Context, store, key string) ([]byte, bool, error) {
	val, err := r.client.HGet(ctx, r.key(store), key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return val, true, nil
}

// Set writes one field of the store hash and refreshes the session TTL.
func (r *RedisBackend) Set(ctx context.Context, store, key string, value []byte) error {
	hash := r.key(store)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, hash, key, value)
		if r.ttl > 0 {
			pipe.Expire(ctx, hash, r.ttl)
		}
		return nil
	})
	return err
}

// Ping checks connectivity.
func (r *RedisBackend) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the client.
func (r *RedisBackend) Close() error {
	return r.client.Close()
}
