package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"fitbuds/config"
)

// NewSessionCache connects the Redis client that backs wizard sessions.
func NewSessionCache(cfg config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisSessionDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis (sessions): %w", err)
	}
	return client, nil
}
