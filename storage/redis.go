package storage

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kamilio/ai-studio/config"
)

// RedisConfig configures the Redis-backed store backend.
type RedisConfig struct {
	Addr     string // e.g. localhost:6379
	Password string
	DB       int
	// Prefix namespaces collection keys; defaults to config.StorageKeyPrefix.
	Prefix string
}

// RedisBackend persists each collection as one JSON value under a prefixed
// key. Useful when several studio processes want to share one library.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

// NewRedisBackendFromEnv creates a RedisBackend using environment variables
// REDIS_ADDR, REDIS_PASS, REDIS_DB (optional).
func NewRedisBackendFromEnv() (*RedisBackend, error) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			db = n
		}
	}
	return NewRedisBackend(RedisConfig{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASS"),
		DB:       db,
	})
}

// NewRedisBackend creates a RedisBackend and verifies connectivity.
func NewRedisBackend(cfg RedisConfig) (*RedisBackend, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Ping to verify
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = config.StorageKeyPrefix
	}
	return &RedisBackend{client: client, prefix: prefix}, nil
}

func (r *RedisBackend) Load(key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis backend: get %s: %w", key, err)
	}
	return data, nil
}

func (r *RedisBackend) Save(key string, data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.client.Set(ctx, r.prefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis backend: set %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying Redis client.
func (r *RedisBackend) Close() error {
	return r.client.Close()
}
