package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryConfig controls exponential backoff retries
type RetryConfig struct {
	MaxAttempts       int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
	EnableJitter      bool
	// RetryableErrors restricts retries to these errors when non-empty
	RetryableErrors []error
	// RetryableChecker overrides RetryableErrors when set
	RetryableChecker func(error) bool
}

// DefaultRetryConfig returns the standard retry policy
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
		EnableJitter:      true,
	}
}

// Retry runs operation until it succeeds, returns a non-retryable error, the
// attempts are exhausted or ctx is done. The last error is returned
func Retry(ctx context.Context, config RetryConfig, operation func(context.Context) (interface{}, error)) (interface{}, error) {
	attempts := config.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	result, err := backoff.Retry(ctx, func() (interface{}, error) {
		res, opErr := operation(ctx)
		if opErr == nil {
			return res, nil
		}
		if !shouldRetry(opErr, config) {
			return nil, backoff.Permanent(opErr)
		}
		return nil, opErr
	},
		backoff.WithBackOff(newBackOff(config)),
		backoff.WithMaxTries(uint(attempts)),
	)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RetryWithBreaker retries operation with every attempt passing through the
// breaker. An open breaker ends the retries immediately
func RetryWithBreaker(ctx context.Context, config RetryConfig, breaker *CircuitBreaker, operation func(context.Context) (interface{}, error)) (interface{}, error) {
	return Retry(ctx, config, func(ctx context.Context) (interface{}, error) {
		return breaker.Execute(ctx, operation)
	})
}

func newBackOff(config RetryConfig) *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	if config.InitialBackoff > 0 {
		bo.InitialInterval = config.InitialBackoff
	}
	if config.MaxBackoff > 0 {
		bo.MaxInterval = config.MaxBackoff
	}
	if config.BackoffMultiplier > 0 {
		bo.Multiplier = config.BackoffMultiplier
	}
	if !config.EnableJitter {
		bo.RandomizationFactor = 0
	}
	return bo
}

func shouldRetry(err error, config RetryConfig) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrCircuitOpen) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if config.RetryableChecker != nil {
		return config.RetryableChecker(err)
	}
	if len(config.RetryableErrors) > 0 {
		for _, retryable := range config.RetryableErrors {
			if errors.Is(err, retryable) {
				return true
			}
		}
		return false
	}
	return true
}
