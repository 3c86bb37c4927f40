package redis

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"

	"Atlas_KB/internal/config"
)

var (
	client  *redis.Client
	once    sync.Once
	initErr error
)

// GetClient initializes and returns the process-wide Redis client. The
// connection is established once.
func GetClient(cfg *config.RedisConfig) (*redis.Client, error) {
	once.Do(func() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		})

		ctx := context.Background()
		if err := rdb.Ping(ctx).Err(); err != nil {
			initErr = fmt.Errorf("unable to connect to Redis: %w", err)
			return
		}
		client = rdb
	})
	return client, initErr
}

// Close safely closes the singleton Redis connection.
func Close() error {
	if client != nil {
		return client.Close()
	}
	return nil
}

// HealthCheck checks the health of the Redis connection.
func HealthCheck(ctx context.Context) error {
	if client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	return client.Ping(ctx).Err()
}
