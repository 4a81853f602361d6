package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/railzwaylabs/billinghub/internal/config"
	"github.com/redis/go-redis/v9"
)

// NewClient connects to the shared Redis instance and verifies it answers.
func NewClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}
