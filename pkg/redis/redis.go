package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/richxcame/claimguard/pkg/config"
)

// Client wraps the Redis client used for pipeline run markers
type Client struct {
	*redis.Client
}

// NewRedisClient connects and pings within ctx
func NewRedisClient(ctx context.Context, cfg *config.RedisConfig) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.RedisAddr(),
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    cfg.PoolSize,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("unable to connect to redis at %s: %w", cfg.RedisAddr(), err)
	}

	return &Client{Client: client}, nil
}

// AcquireOnce sets key only if it is absent. It reports true for the first
// caller; later callers get false until the key expires
func (c *Client) AcquireOnce(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	return c.SetNX(ctx, key, value, ttl).Result()
}

// Holder returns the value stored under key, or "" when the key is absent
func (c *Client) Holder(ctx context.Context, key string) (string, error) {
	value, err := c.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return value, err
}
