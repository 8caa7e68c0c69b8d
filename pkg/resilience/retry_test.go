package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testError         = errors.New("test error")
	retryableError    = errors.New("retryable error")
	nonRetryableError = errors.New("non-retryable error")
)

func fastRetryConfig() RetryConfig {
	config := DefaultRetryConfig()
	config.InitialBackoff = 1 * time.Millisecond
	config.MaxBackoff = 5 * time.Millisecond
	config.EnableJitter = false
	return config
}

func TestRetry_SuccessOnFirstAttempt(t *testing.T) {
	attemptCount := 0

	result, err := Retry(context.Background(), fastRetryConfig(), func(ctx context.Context) (interface{}, error) {
		attemptCount++
		return "success", nil
	})

	assert.NoError(t, err)
	assert.Equal(t, "success", result)
	assert.Equal(t, 1, attemptCount, "should only attempt once on success")
}

func TestRetry_SuccessAfterRetries(t *testing.T) {
	attemptCount := 0

	result, err := Retry(context.Background(), fastRetryConfig(), func(ctx context.Context) (interface{}, error) {
		attemptCount++
		if attemptCount < 3 {
			return nil, testError
		}
		return "success", nil
	})

	assert.NoError(t, err)
	assert.Equal(t, "success", result)
	assert.Equal(t, 3, attemptCount)
}

func TestRetry_FailureAfterMaxAttempts(t *testing.T) {
	config := fastRetryConfig()
	config.MaxAttempts = 3
	attemptCount := 0

	result, err := Retry(context.Background(), config, func(ctx context.Context) (interface{}, error) {
		attemptCount++
		return nil, testError
	})

	assert.ErrorIs(t, err, testError)
	assert.Nil(t, result)
	assert.Equal(t, 3, attemptCount, "should attempt max times")
}

func TestRetry_NonRetryableError(t *testing.T) {
	config := fastRetryConfig()
	config.RetryableErrors = []error{retryableError}
	attemptCount := 0

	_, err := Retry(context.Background(), config, func(ctx context.Context) (interface{}, error) {
		attemptCount++
		return nil, nonRetryableError
	})

	assert.ErrorIs(t, err, nonRetryableError)
	assert.Equal(t, 1, attemptCount, "should not retry non-retryable error")
}

func TestRetry_CustomRetryableChecker(t *testing.T) {
	config := fastRetryConfig()
	config.MaxAttempts = 3
	config.RetryableChecker = func(err error) bool {
		return errors.Is(err, testError)
	}
	attemptCount := 0

	_, err := Retry(context.Background(), config, func(ctx context.Context) (interface{}, error) {
		attemptCount++
		return nil, testError
	})

	assert.Error(t, err)
	assert.Equal(t, 3, attemptCount, "should retry based on custom checker")
}

func TestRetry_CircuitOpenNotRetried(t *testing.T) {
	attemptCount := 0

	_, err := Retry(context.Background(), fastRetryConfig(), func(ctx context.Context) (interface{}, error) {
		attemptCount++
		return nil, ErrCircuitOpen
	})

	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 1, attemptCount)
}

func TestRetry_DeadlineExceededNotRetried(t *testing.T) {
	attemptCount := 0

	_, err := Retry(context.Background(), fastRetryConfig(), func(ctx context.Context) (interface{}, error) {
		attemptCount++
		return nil, context.DeadlineExceeded
	})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, attemptCount)
}

func TestRetry_ZeroMaxAttempts(t *testing.T) {
	config := fastRetryConfig()
	config.MaxAttempts = 0
	attemptCount := 0

	result, err := Retry(context.Background(), config, func(ctx context.Context) (interface{}, error) {
		attemptCount++
		return "success", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "success", result)
	assert.Equal(t, 1, attemptCount, "should attempt at least once even with MaxAttempts=0")
}

func TestShouldRetry_NilError(t *testing.T) {
	assert.False(t, shouldRetry(nil, DefaultRetryConfig()))
}

func TestRetryWithBreaker_Integration(t *testing.T) {
	config := fastRetryConfig()
	breaker := NewCircuitBreaker(Settings{
		Name:             "test-retry-breaker",
		Interval:         100 * time.Millisecond,
		Timeout:          time.Second,
		FailureThreshold: 5,
	}, nil)

	attemptCount := 0
	result, err := RetryWithBreaker(context.Background(), config, breaker, func(ctx context.Context) (interface{}, error) {
		attemptCount++
		if attemptCount < 2 {
			return nil, testError
		}
		return "success", nil
	})

	assert.NoError(t, err)
	assert.Equal(t, "success", result)
	assert.Equal(t, 2, attemptCount)
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	breaker := NewCircuitBreaker(Settings{
		Name:             "test-open-breaker",
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 2,
	}, nil)

	failing := func(ctx context.Context) (interface{}, error) { return nil, testError }

	for i := 0; i < 2; i++ {
		_, err := breaker.Execute(context.Background(), failing)
		assert.ErrorIs(t, err, testError)
	}
	assert.Equal(t, gobreaker.StateOpen, breaker.State())

	called := false
	_, err := breaker.Execute(context.Background(), func(ctx context.Context) (interface{}, error) {
		called = true
		return "ok", nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called, "open breaker must not invoke the operation")
}

func TestCircuitBreaker_FallbackDecidesRejectedCalls(t *testing.T) {
	breaker := NewCircuitBreaker(Settings{
		Name:             "test-fallback-breaker",
		Timeout:          time.Minute,
		FailureThreshold: 1,
	}, func(ctx context.Context, err error) (interface{}, error) {
		return "cached", nil
	})

	_, err := breaker.Execute(context.Background(), func(ctx context.Context) (interface{}, error) {
		return nil, testError
	})
	require.ErrorIs(t, err, testError)

	result, err := breaker.Execute(context.Background(), func(ctx context.Context) (interface{}, error) {
		return "fresh", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "cached", result)
}

func TestCircuitBreaker_CanceledCallsDoNotTrip(t *testing.T) {
	breaker := NewCircuitBreaker(Settings{
		Name:             "test-cancel-breaker",
		Timeout:          time.Minute,
		FailureThreshold: 1,
	}, nil)

	_, err := breaker.Execute(context.Background(), func(ctx context.Context) (interface{}, error) {
		return nil, context.Canceled
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, gobreaker.StateClosed, breaker.State())
}

func TestCircuitBreaker_GracefulDegradationReportsOpen(t *testing.T) {
	breaker := NewCircuitBreaker(Settings{
		Name:             "test-degraded-breaker",
		Timeout:          time.Minute,
		FailureThreshold: 1,
	}, GracefulDegradation("vision"))

	_, _ = breaker.Execute(context.Background(), func(ctx context.Context) (interface{}, error) {
		return nil, testError
	})
	_, err := breaker.Execute(context.Background(), func(ctx context.Context) (interface{}, error) {
		return "fresh", nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestNewCircuitBreaker_DefaultName(t *testing.T) {
	breaker := NewCircuitBreaker(Settings{}, nil)
	assert.Equal(t, "breaker", breaker.Name())
}

func TestSecondsSettings_Negative(t *testing.T) {
	settings := SecondsSettings("vision-openai", -1, -1, -3, -1)

	assert.Equal(t, time.Minute, settings.Interval)
	assert.Equal(t, 30*time.Second, settings.Timeout)
	assert.Equal(t, uint32(5), settings.FailureThreshold)
	assert.Equal(t, uint32(1), settings.SuccessThreshold)
}

func TestSecondsSettings_Defaults(t *testing.T) {
	settings := SecondsSettings("vision", 0, 0, 0, 0)

	assert.Equal(t, "vision", settings.Name)
	assert.Equal(t, time.Minute, settings.Interval)
	assert.Equal(t, 30*time.Second, settings.Timeout)
	assert.Equal(t, uint32(5), settings.FailureThreshold)
	assert.Equal(t, uint32(1), settings.SuccessThreshold)
}
