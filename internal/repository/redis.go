package repository

import (
	"context"
	"errors"
	"fmt"

	"northline/internal/config"
	"northline/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisBlob keeps the JSON collection under a single key.
type RedisBlob struct {
	client *redis.Client
	key    string
}

// NewRedisClient builds a client from the redis config section.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}

	return redis.NewClient(options)
}

func NewRedisBlob(client *redis.Client, key string) *RedisBlob {
	if key == "" {
		key = models.StorageKey
	}
	return &RedisBlob{client: client, key: key}
}

func NewRedisStore(client *redis.Client, key string, logger *zerolog.Logger, opts ...BlobOption) *BlobStore {
	return NewBlobStore(NewRedisBlob(client, key), logger, opts...)
}

func (b *RedisBlob) Read(ctx context.Context) ([]byte, bool, error) {
	if b.client == nil {
		return nil, false, fmt.Errorf("redis client is nil")
	}
	val, err := b.client.Get(ctx, b.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get bookings from redis: %w", err)
	}
	return val, true, nil
}

func (b *RedisBlob) Write(ctx context.Context, data []byte) error {
	if b.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := b.client.Set(ctx, b.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set bookings in redis: %w", err)
	}
	return nil
}

// Ping checks the connection.
func Ping(ctx context.Context, client *redis.Client) error {
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close tolerates a nil client.
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
