// Package cache кэширует скачанные документы портала в Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "openelex:doc:"

// Cache обёртка над клиентом go-redis.
// Все методы безопасны для nil: кэш просто выключен.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New подключается к Redis по URL. Пустой URL означает, что кэш не настроен,
// тогда возвращается nil без ошибки.
func New(ctx context.Context, url string, ttl time.Duration) (*Cache, error) {
	if url == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewWithClient(client, ttl), nil
}

// NewWithClient оборачивает готовый клиент
func NewWithClient(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Get возвращает значение по ключу. Промах не считается ошибкой.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	val, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, true, nil
}

// Set сохраняет значение с TTL кэша
func (c *Cache) Set(ctx context.Context, key string, val []byte) error {
	if c == nil {
		return nil
	}
	if err := c.client.Set(ctx, keyPrefix+key, val, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Health проверяет соединение с Redis
func (c *Cache) Health(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Close закрывает соединение с Redis
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
