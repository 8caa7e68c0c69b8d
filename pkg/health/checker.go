package health

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Checker reports the health of one dependency
type Checker func() error

// CheckerConfig holds configuration for health checkers
type CheckerConfig struct {
	Timeout time.Duration
}

// DefaultCheckerConfig returns the default checker configuration
func DefaultCheckerConfig() CheckerConfig {
	return CheckerConfig{Timeout: 2 * time.Second}
}

// Pinger is anything that can be probed with a context, such as the image
// bucket
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingChecker wraps ping in a Checker bounded by the configured timeout
func PingChecker(ping func(ctx context.Context) error, config CheckerConfig) Checker {
	return func() error {
		ctx := context.Background()
		if config.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, config.Timeout)
			defer cancel()
		}
		return ping(ctx)
	}
}

// PostgresChecker returns a health check function for the connection pool
func PostgresChecker(pool *pgxpool.Pool) Checker {
	if pool == nil {
		return func() error { return errors.New("database connection is nil") }
	}
	return PingChecker(pool.Ping, DefaultCheckerConfig())
}

// RedisChecker returns a health check function for Redis
func RedisChecker(client *redis.Client) Checker {
	if client == nil {
		return func() error { return errors.New("redis client is nil") }
	}
	return PingChecker(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}, DefaultCheckerConfig())
}

// PingerChecker returns a health check function for a Pinger
func PingerChecker(p Pinger, config CheckerConfig) Checker {
	return PingChecker(p.Ping, config)
}
