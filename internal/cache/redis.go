// Package cache оборачивает клиент Redis, на котором хранятся сессии портала.
// Каждая сессия — отдельный хэш, поля которого соответствуют ключам сессии.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/licence-portal/internal/config"
)

// Cache держит подключение к Redis.
type Cache struct {
	Db *redis.Client
}

// InitServer подключается к Redis и проверяет соединение.
func InitServer(ctx context.Context, cfg config.RedisConnection) (*Cache, error) {
	const op = "cache.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		Username:     cfg.RedisUser,
		MaxRetries:   cfg.RedisMaxRetries,
		DialTimeout:  cfg.RedisDialTimeout,
		ReadTimeout:  cfg.RedisTimeoutRedis,
		WriteTimeout: cfg.RedisTimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Cache{Db: db}, nil
}

// HGet возвращает поле хэша. Второе значение false, если поля или хэша нет.
func (c *Cache) HGet(ctx context.Context, key, field string) (string, bool, error) {
	const op = "cache.HGet"
	val, err := c.Db.HGet(ctx, key, field).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	return val, true, nil
}

// HSet записывает поле хэша и продлевает TTL всего хэша. ttl <= 0 означает без срока.
func (c *Cache) HSet(ctx context.Context, key, field, value string, ttl time.Duration) error {
	const op = "cache.HSet"
	_, err := c.Db.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, field, value)
		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// HDel удаляет поля хэша.
func (c *Cache) HDel(ctx context.Context, key string, fields ...string) error {
	const op = "cache.HDel"
	if err := c.Db.HDel(ctx, key, fields...).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Exists сообщает, есть ли ключ.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	const op = "cache.Exists"
	n, err := c.Db.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n > 0, nil
}

// Close закрывает подключение.
func (c *Cache) Close() error {
	return c.Db.Close()
}
