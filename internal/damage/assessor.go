package damage

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/richxcame/claimguard/pkg/logger"
	"github.com/richxcame/claimguard/pkg/models"
	"go.uber.org/zap"
)

var fallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "damage_assessment_fallbacks_total",
	Help: "Damage assessments that fell back to the default estimate",
}, []string{"reason"})

// ErrEmptyImage is reported when there is no image to assess
var ErrEmptyImage = errors.New("empty image")

// VisionService answers an instruction about an image with free text
type VisionService interface {
	Analyze(ctx context.Context, image []byte, instruction string) (string, error)
}

// Assessor estimates damage from a claim photo
type Assessor struct {
	vision  VisionService
	timeout time.Duration
}

// NewAssessor creates a damage assessor. A non-positive timeout leaves the
// vision call bounded only by ctx
func NewAssessor(vision VisionService, timeout time.Duration) *Assessor {
	return &Assessor{vision: vision, timeout: timeout}
}

// Assess never fails. Vision errors and unusable replies produce a fallback
// assessment marked with IsFallback
func (a *Assessor) Assess(ctx context.Context, image []byte, claimType models.ClaimType) Assessment {
	log := logger.WithContext(ctx)

	if len(image) == 0 {
		fallbacksTotal.WithLabelValues(FallbackVisionCall).Inc()
		return callFallback(ErrEmptyImage)
	}

	callCtx := ctx
	if a.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	raw, err := a.vision.Analyze(callCtx, image, Instruction(claimType))
	if err != nil {
		log.Warn("Vision analysis failed, using fallback estimate",
			zap.String("claim_type", string(claimType)),
			zap.Error(err),
		)
		fallbacksTotal.WithLabelValues(FallbackVisionCall).Inc()
		return callFallback(err)
	}

	assessment, err := ParseReply(raw)
	if err != nil {
		log.Warn("Unusable vision reply, using fallback estimate",
			zap.String("claim_type", string(claimType)),
			zap.Error(err),
		)
		fallbacksTotal.WithLabelValues(FallbackParse).Inc()
		return parseFallback(err, stripFence(raw))
	}

	log.Debug("Damage assessed",
		zap.String("severity", string(assessment.Severity)),
		zap.Int64("estimated_cost", assessment.EstimatedCost),
		zap.Float64("confidence", assessment.Confidence),
	)
	return assessment
}
