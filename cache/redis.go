package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hupe1980/voicemesh/logging"
)

// Redis is the shared remote cache tier backed by a Redis server. It
// implements core.Cache best-effort semantics: backend errors are logged and
// reported to the health callback but never surfaced to callers. Intended to
// be wrapped by Tiered rather than used directly.
type Redis struct {
	client *redis.Client
	logger logging.Logger
	// onError is invoked on any backend failure so the tiered store can flip
	// to its fallback.
	onError func(err error)
}

// RedisOptions configure the Redis cache tier.
type RedisOptions struct {
	// Logger receives backend error diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// NewRedis wraps an existing go-redis client.
func NewRedis(client *redis.Client, optFns ...func(o *RedisOptions)) *Redis {
	opts := RedisOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Redis{client: client, logger: opts.Logger, onError: func(error) {}}
}

// NewRedisFromURL dials a Redis server from a redis:// URL and verifies
// connectivity with a bounded ping. Returns an error when the URL is invalid
// or the server is unreachable, so the caller can fall back to a local tier.
func NewRedisFromURL(ctx context.Context, url string, optFns ...func(o *RedisOptions)) (*Redis, error) {
	cfg, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(cfg)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return NewRedis(client, optFns...), nil
}

// Get returns the value for key, or a miss on absence, expiry or backend
// failure.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		r.logger.Warn("redis get failed", "key", key, "error", err)
		r.onError(err)
		return nil, false
	}
	return val, true
}

// Set stores the value under key with the given TTL.
func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		r.logger.Warn("redis set failed", "key", key, "error", err)
		r.onError(err)
	}
}

// Delete removes the key.
func (r *Redis) Delete(ctx context.Context, key string) {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Warn("redis delete failed", "key", key, "error", err)
		r.onError(err)
	}
}

// Ping checks backend connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (r *Redis) Close() error { return r.client.Close() }
