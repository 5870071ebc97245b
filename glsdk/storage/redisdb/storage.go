// Package redisdb provides a Redis-backed local key-value storage
package redisdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glasslab/go-glsdk/glsdk/conf"
	"github.com/redis/go-redis/v9"
	"github.com/splitio/go-toolkit/v5/logging"
)

const operationTimeout = 5 * time.Second

// RedisLocalStorage redis implementation of the LocalStorage interface. Every key is stored as a plain
// string under "<prefix>.<key>".
type RedisLocalStorage struct {
	client *redis.Client
	prefix string
	logger logging.LoggerInterface
}

// NewRedisLocalStorage connects to redis and returns an instance of RedisLocalStorage
func NewRedisLocalStorage(config conf.RedisConfig, logger logging.LoggerInterface) (*RedisLocalStorage, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password: config.Password,
		DB:       config.Database,
	})

	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &RedisLocalStorage{client: client, prefix: config.Prefix, logger: logger}, nil
}

func (r *RedisLocalStorage) key(key string) string {
	if r.prefix == "" {
		return key
	}
	return r.prefix + "." + key
}

// Get returns the value stored under key
func (r *RedisLocalStorage) Get(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()
	value, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		r.logger.Error("Error reading key from redis", key, err.Error())
		return "", false, err
	}
	return value, true, nil
}

// Set stores value under key, without expiration
func (r *RedisLocalStorage) Set(key string, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		r.logger.Error("Error writing key to redis", key, err.Error())
		return err
	}
	return nil
}

// Append concatenates value to the string stored under key using APPEND
func (r *RedisLocalStorage) Append(key string, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()
	if err := r.client.Append(ctx, r.key(key), value).Err(); err != nil {
		r.logger.Error("Error appending to redis key", key, err.Error())
		return err
	}
	return nil
}

// Delete removes key
func (r *RedisLocalStorage) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()
	return r.client.Del(ctx, r.key(key)).Err()
}

// Close releases the redis connection pool
func (r *RedisLocalStorage) Close() error {
	return r.client.Close()
}
