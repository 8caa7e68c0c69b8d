package claims

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/claimguard/pkg/logger"
	"go.uber.org/zap"
)

// Dispatcher runs pipelines in the background, one goroutine per claim
type Dispatcher struct {
	processor ClaimProcessor
	guard     RunGuard
	timeout   time.Duration

	mu      sync.Mutex
	closed  bool
	running sync.WaitGroup
}

// NewDispatcher creates a dispatcher. guard may be nil, in which case every
// submission runs
func NewDispatcher(processor ClaimProcessor, guard RunGuard, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		processor: processor,
		guard:     guard,
		timeout:   timeout,
	}
}

// Submit starts the pipeline for claimID and returns without waiting. The run
// keeps the logging fields of ctx but not its cancellation
func (d *Dispatcher) Submit(ctx context.Context, claimID uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrShuttingDown
	}

	d.running.Add(1)
	go d.run(context.WithoutCancel(ctx), claimID)
	return nil
}

// Shutdown stops accepting claims and waits for in-flight pipelines or ctx
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.running.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run(ctx context.Context, claimID uuid.UUID) {
	defer d.running.Done()

	ctx = logger.ContextWithFields(ctx, zap.String("claim_id", claimID.String()))
	log := logger.WithContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			log.Error("Pipeline panicked", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	if d.guard != nil {
		acquired, err := d.guard.Acquire(ctx, claimID)
		if err != nil {
			pipelineAbandonedTotal.WithLabelValues(abandonGuardError).Inc()
			log.Error("Run guard unavailable, claim left pending", zap.Error(err))
			return
		}
		if !acquired {
			pipelineAbandonedTotal.WithLabelValues(abandonDuplicate).Inc()
			log.Info("Pipeline already triggered for claim, skipping")
			return
		}
	}

	if err := d.processor.ProcessClaim(ctx, claimID); err != nil && !errors.Is(err, ErrAlreadyDecided) {
		log.Warn("Pipeline finished with error", zap.Error(err))
	}
}
