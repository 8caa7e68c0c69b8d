package resilience

import (
	"context"

	"github.com/richxcame/claimguard/pkg/logger"
	"go.uber.org/zap"
)

// FallbackFunc decides the result of a call the breaker refused to run
type FallbackFunc func(ctx context.Context, err error) (interface{}, error)

// GracefulDegradation logs the refusal against the dependency name and
// reports ErrCircuitOpen, leaving the degraded result to the caller
func GracefulDegradation(dependency string) FallbackFunc {
	return func(ctx context.Context, err error) (interface{}, error) {
		logger.WithContext(ctx).Warn("Dependency unavailable, breaker open",
			zap.String("dependency", dependency),
			zap.Error(err),
		)
		return nil, ErrCircuitOpen
	}
}
