package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/richxcame/claimguard/pkg/logger"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ErrCircuitOpen is returned when a call is short-circuited by an open breaker
var ErrCircuitOpen = errors.New("circuit breaker open")

// Settings tunes a circuit breaker
type Settings struct {
	Name string
	// Interval is the cyclic period in the closed state after which counts reset
	Interval time.Duration
	// Timeout is how long the breaker stays open before probing again
	Timeout          time.Duration
	FailureThreshold uint32
	SuccessThreshold uint32
}

// CircuitBreaker wraps gobreaker with metrics and a fallback hook
type CircuitBreaker struct {
	name     string
	breaker  *gobreaker.CircuitBreaker
	fallback FallbackFunc
}

// NewCircuitBreaker builds a breaker that trips after FailureThreshold
// consecutive failures. Unset settings take package defaults
func NewCircuitBreaker(settings Settings, fallback FallbackFunc) *CircuitBreaker {
	settings = settings.withDefaults()
	name := settings.Name

	cb := &CircuitBreaker{
		name:     name,
		fallback: fallback,
	}

	cb.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: settings.SuccessThreshold,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.FailureThreshold
		},
		OnStateChange: func(breakerName string, from, to gobreaker.State) {
			observeTransition(breakerName, from, to)
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", breakerName),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			// A caller giving up is not a fault of the downstream service
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	observeState(name, gobreaker.StateClosed)

	return cb
}

// Name returns the breaker name used in metrics
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// State returns the current breaker state
func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.breaker.State()
}

// Execute runs operation through the breaker. When the breaker rejects the
// call the fallback decides the result
func (cb *CircuitBreaker) Execute(ctx context.Context, operation func(context.Context) (interface{}, error)) (interface{}, error) {
	result, err := cb.breaker.Execute(func() (interface{}, error) {
		return operation(ctx)
	})
	if err == nil {
		observeCall(cb.name, callSucceeded)
		return result, nil
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		observeCall(cb.name, callRejected)
		if cb.fallback == nil {
			return nil, ErrCircuitOpen
		}
		return cb.fallback(ctx, err)
	}

	observeCall(cb.name, callFailed)
	return nil, err
}
