package claims

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/claimguard/pkg/logger"
	"github.com/richxcame/claimguard/pkg/redis"
	"go.uber.org/zap"
)

const guardKeyPrefix = "claims:pipeline:"

// RedisGuard claims a pipeline run in Redis with SET NX so that repeated
// triggers for the same claim are ignored until the key expires
type RedisGuard struct {
	client *redis.Client
	ttl    time.Duration
	owner  string
}

// NewRedisGuard creates a run guard. owner is stored as the key value to
// show which instance took the run
func NewRedisGuard(client *redis.Client, ttl time.Duration, owner string) *RedisGuard {
	return &RedisGuard{client: client, ttl: ttl, owner: owner}
}

// Acquire reports whether this caller may run the pipeline for claimID
func (g *RedisGuard) Acquire(ctx context.Context, claimID uuid.UUID) (bool, error) {
	key := GuardKey(claimID)
	acquired, err := g.client.AcquireOnce(ctx, key, g.owner, g.ttl)
	if err != nil || acquired {
		return acquired, err
	}

	if holder, herr := g.client.Holder(ctx, key); herr == nil && holder != "" {
		logger.WithContext(ctx).Debug("Claim pipeline held by another run", zap.String("holder", holder))
	}
	return false, nil
}

// GuardKey is the Redis key holding the run marker of a claim
func GuardKey(claimID uuid.UUID) string {
	return guardKeyPrefix + claimID.String()
}
