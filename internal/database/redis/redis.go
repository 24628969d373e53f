package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/PrathushaR/ithotlist-api/internal/config"
	"github.com/redis/go-redis/v9"
)

// Connect returns nil without error when no address is configured, which
// leaves the search cache disabled.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Address == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping Redis at %s: %w", cfg.Address, err)
	}
	return client, nil
}
