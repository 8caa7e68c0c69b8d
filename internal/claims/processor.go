package claims

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/claimguard/internal/damage"
	"github.com/richxcame/claimguard/internal/decision"
	"github.com/richxcame/claimguard/internal/fraud"
	"github.com/richxcame/claimguard/pkg/logger"
	"github.com/richxcame/claimguard/pkg/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("github.com/richxcame/claimguard/internal/claims")

const (
	processingErrorPrefix = "Processing error: "
	// reviewWriteTimeout bounds the review write-back after a failed run,
	// which may happen after the pipeline context has expired
	reviewWriteTimeout = 5 * time.Second
)

// Processor runs the adjudication pipeline: load, assess, score, decide,
// persist
type Processor struct {
	repo     RepositoryInterface
	images   ImageFetcher
	assessor DamageAssessor
	scorer   FraudScorer
	engine   *decision.Engine
	now      func() time.Time
}

// NewProcessor creates a new claim processor
func NewProcessor(repo RepositoryInterface, images ImageFetcher, assessor DamageAssessor, scorer FraudScorer, engine *decision.Engine) *Processor {
	return &Processor{
		repo:     repo,
		images:   images,
		assessor: assessor,
		scorer:   scorer,
		engine:   engine,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ProcessClaim adjudicates a pending claim. Missing records and claims
// without images are left untouched. Any failure after the inputs are
// loaded sends the claim to manual review and is returned
func (p *Processor) ProcessClaim(ctx context.Context, claimID uuid.UUID) (err error) {
	ctx, span := tracer.Start(ctx, "claims.process")
	span.SetAttributes(attribute.String("claim.id", claimID.String()))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	ctx = logger.ContextWithFields(ctx, zap.String("claim_id", claimID.String()))
	log := logger.WithContext(ctx)
	start := p.now()

	claim, policy, err := p.load(ctx, claimID)
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.String("claim.type", string(claim.ClaimType)))

	log.Info("Processing claim", zap.String("claim_type", string(claim.ClaimType)))

	outcome, err := p.adjudicate(ctx, claim, policy, start)
	pipelineDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, ErrAlreadyDecided) {
			pipelineAbandonedTotal.WithLabelValues(abandonAlreadyDecided).Inc()
			log.Warn("Claim decided by another run, outcome discarded")
			return err
		}
		claimsProcessedTotal.WithLabelValues("error").Inc()
		p.markUnderReview(ctx, claimID, err)
		return err
	}

	claimsProcessedTotal.WithLabelValues(string(outcome.Status)).Inc()
	fraudScoreHistogram.Observe(float64(outcome.FraudScore))
	span.SetAttributes(
		attribute.String("claim.status", string(outcome.Status)),
		attribute.Int("claim.fraud_score", outcome.FraudScore),
	)

	fields := []zap.Field{
		zap.String("status", string(outcome.Status)),
		zap.Int("fraud_score", outcome.FraudScore),
		zap.Int64("estimated_amount", outcome.EstimatedAmount),
	}
	if outcome.ApprovedAmount != nil {
		fields = append(fields, zap.Int64("approved_amount", *outcome.ApprovedAmount))
	}
	log.Info("Claim processed", fields...)

	return nil
}

func (p *Processor) load(ctx context.Context, claimID uuid.UUID) (*models.Claim, *models.PolicyContext, error) {
	log := logger.WithContext(ctx)

	claim, err := p.repo.GetClaim(ctx, claimID)
	if err != nil {
		if errors.Is(err, ErrClaimNotFound) {
			pipelineAbandonedTotal.WithLabelValues(abandonClaimNotFound).Inc()
			log.Error("Claim not found, nothing processed")
			return nil, nil, err
		}
		pipelineAbandonedTotal.WithLabelValues(abandonLoadFailed).Inc()
		log.Error("Failed to load claim", zap.Error(err))
		return nil, nil, err
	}

	if claim.Status != models.ClaimStatusPending {
		pipelineAbandonedTotal.WithLabelValues(abandonAlreadyDecided).Inc()
		log.Info("Claim already decided, skipping", zap.String("status", string(claim.Status)))
		return nil, nil, ErrAlreadyDecided
	}

	if claim.CustomerID == uuid.Nil {
		pipelineAbandonedTotal.WithLabelValues(abandonPolicyNotFound).Inc()
		log.Error("Claim has no customer, claim left pending")
		return nil, nil, ErrPolicyNotFound
	}

	policy, err := p.repo.GetPolicyContext(ctx, claim.CustomerID)
	if err != nil {
		if errors.Is(err, ErrPolicyNotFound) {
			pipelineAbandonedTotal.WithLabelValues(abandonPolicyNotFound).Inc()
			log.Error("Policy not found for claim, claim left pending",
				zap.String("customer_id", claim.CustomerID.String()),
			)
			return nil, nil, err
		}
		pipelineAbandonedTotal.WithLabelValues(abandonLoadFailed).Inc()
		log.Error("Failed to load policy", zap.Error(err))
		return nil, nil, err
	}

	if len(claim.ImageURLs) == 0 {
		pipelineAbandonedTotal.WithLabelValues(abandonNoImages).Inc()
		log.Error("Claim has no images, claim left pending")
		return nil, nil, ErrNoImages
	}

	return claim, policy, nil
}

func (p *Processor) adjudicate(ctx context.Context, claim *models.Claim, policy *models.PolicyContext, start time.Time) (outcome *models.ClaimOutcome, err error) {
	defer recoverAsError(&err)

	image, err := p.images.FetchURL(ctx, claim.ImageURLs[0])
	if err != nil {
		return nil, fmt.Errorf("failed to fetch claim image: %w", err)
	}

	var assessment damage.Assessment
	var score fraud.Score
	var g errgroup.Group

	g.Go(func() (err error) {
		defer recoverAsError(&err)
		ctx, span := tracer.Start(ctx, "claims.assess_damage")
		defer span.End()
		assessment = p.assessor.Assess(ctx, image, claim.ClaimType)
		span.SetAttributes(attribute.Bool("damage.fallback", assessment.IsFallback))
		return nil
	})
	g.Go(func() (err error) {
		defer recoverAsError(&err)
		ctx, span := tracer.Start(ctx, "claims.score_fraud")
		defer span.End()
		score = p.scorer.Score(ctx, fraud.Input{
			Image:        image,
			PolicyNumber: claim.PolicyNumber,
			IncidentDate: claim.IncidentDate,
			PolicyStart:  policy.PolicyStartDate,
			PolicyEnd:    policy.PolicyEndDate,
			AsOf:         start,
		})
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d := p.engine.Decide(assessment, score, policy.PolicyLimit)

	assessmentJSON, err := json.Marshal(assessment)
	if err != nil {
		return nil, fmt.Errorf("failed to encode damage assessment: %w", err)
	}

	outcome = &models.ClaimOutcome{
		DamageAssessment:  assessmentJSON,
		EstimatedAmount:   d.EstimatedAmount,
		FraudScore:        score.Score,
		FraudFlags:        score.Flags,
		Status:            d.Outcome,
		ApprovedAmount:    d.ApprovedAmount,
		DecisionReason:    d.Reason,
		DecisionTimestamp: p.now(),
	}

	if err := p.repo.SaveOutcome(ctx, claim.ID, outcome); err != nil {
		return nil, err
	}

	return outcome, nil
}

func (p *Processor) markUnderReview(ctx context.Context, claimID uuid.UUID, cause error) {
	log := logger.WithContext(ctx)
	log.Error("Claim processing failed, routing to manual review", zap.Error(cause))

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reviewWriteTimeout)
	defer cancel()

	if err := p.repo.MarkUnderReview(writeCtx, claimID, processingErrorPrefix+cause.Error(), p.now()); err != nil {
		log.Error("Failed to route claim to manual review", zap.Error(err))
	}
}

func recoverAsError(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("panic: %v", r)
	}
}
