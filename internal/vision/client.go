package vision

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/richxcame/claimguard/pkg/config"
	"github.com/richxcame/claimguard/pkg/logger"
	"github.com/richxcame/claimguard/pkg/resilience"
	"go.uber.org/zap"
)

// ErrEmptyReply is returned when the model answers with no text
var ErrEmptyReply = errors.New("vision model returned an empty reply")

const defaultMaxTokens = 1024

// Client sends damage photos to a Provider through a circuit breaker with
// retries. It satisfies damage.VisionService
type Client struct {
	provider  Provider
	breaker   *resilience.CircuitBreaker
	retry     resilience.RetryConfig
	model     string
	maxTokens int
}

// NewClient wraps provider with the breaker and retry policy from cfg
func NewClient(provider Provider, cfg config.VisionConfig) *Client {
	settings := resilience.SecondsSettings(
		"vision-"+provider.Name(),
		cfg.BreakerIntervalSeconds,
		cfg.BreakerTimeoutSeconds,
		cfg.BreakerFailureThreshold,
		cfg.BreakerSuccessThreshold,
	)

	retry := resilience.DefaultRetryConfig()
	retry.InitialBackoff = 500 * time.Millisecond
	retry.MaxBackoff = 5 * time.Second
	if cfg.RetryMaxAttempts > 0 {
		retry.MaxAttempts = cfg.RetryMaxAttempts
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &Client{
		provider:  provider,
		breaker:   resilience.NewCircuitBreaker(settings, resilience.GracefulDegradation("vision")),
		retry:     retry,
		model:     cfg.Model,
		maxTokens: maxTokens,
	}
}

// Analyze asks the model to follow instruction for image and returns its
// raw text reply
func (c *Client) Analyze(ctx context.Context, image []byte, instruction string) (string, error) {
	req := Request{
		Model:       c.model,
		Instruction: instruction,
		Image:       image,
		MediaType:   DetectMediaType(image),
		MaxTokens:   c.maxTokens,
	}

	start := time.Now()
	result, err := resilience.RetryWithBreaker(ctx, c.retry, c.breaker, func(ctx context.Context) (interface{}, error) {
		reply, err := c.provider.Generate(ctx, req)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(reply) == "" {
			return nil, ErrEmptyReply
		}
		return reply, nil
	})
	if err != nil {
		logger.WithContext(ctx).Warn("Vision request failed",
			zap.String("provider", c.provider.Name()),
			zap.String("model", c.model),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return "", fmt.Errorf("%s vision request: %w", c.provider.Name(), err)
	}

	reply, _ := result.(string)
	return reply, nil
}
