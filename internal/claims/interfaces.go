package claims

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/claimguard/internal/damage"
	"github.com/richxcame/claimguard/internal/fraud"
	"github.com/richxcame/claimguard/pkg/models"
)

// RepositoryInterface is the claim record store the pipeline reads and
// writes back to
type RepositoryInterface interface {
	GetClaim(ctx context.Context, claimID uuid.UUID) (*models.Claim, error)
	GetPolicyContext(ctx context.Context, customerID uuid.UUID) (*models.PolicyContext, error)
	SaveOutcome(ctx context.Context, claimID uuid.UUID, outcome *models.ClaimOutcome) error
	MarkUnderReview(ctx context.Context, claimID uuid.UUID, reason string, decidedAt time.Time) error
}

// ImageFetcher retrieves the bytes behind an issued image URL
type ImageFetcher interface {
	FetchURL(ctx context.Context, imageURL string) ([]byte, error)
}

// DamageAssessor estimates damage from a photo. It never fails
type DamageAssessor interface {
	Assess(ctx context.Context, image []byte, claimType models.ClaimType) damage.Assessment
}

// FraudScorer combines the fraud signals for a claim. It never fails
type FraudScorer interface {
	Score(ctx context.Context, in fraud.Input) fraud.Score
}

// ClaimProcessor runs the adjudication pipeline for one claim
type ClaimProcessor interface {
	ProcessClaim(ctx context.Context, claimID uuid.UUID) error
}

// RunGuard makes pipeline runs at-most-once per claim
type RunGuard interface {
	Acquire(ctx context.Context, claimID uuid.UUID) (bool, error)
}

// Submitter accepts claims for background processing
type Submitter interface {
	Submit(ctx context.Context, claimID uuid.UUID) error
}

// Ensure implementations satisfy their interfaces
var (
	_ RepositoryInterface = (*Repository)(nil)
	_ fraud.HistoryStore  = (*Repository)(nil)
	_ ClaimProcessor      = (*Processor)(nil)
	_ RunGuard            = (*RedisGuard)(nil)
	_ Submitter           = (*Dispatcher)(nil)
	_ DamageAssessor      = (*damage.Assessor)(nil)
	_ FraudScorer         = (*fraud.Aggregator)(nil)
)
