package claims

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/richxcame/claimguard/pkg/database"
	"github.com/richxcame/claimguard/pkg/models"
)

// Repository handles database operations for claims and the policies they
// are filed against
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new claims repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetClaim retrieves a claim by ID
func (r *Repository) GetClaim(ctx context.Context, claimID uuid.UUID) (*models.Claim, error) {
	query := `
		SELECT id, customer_id, policy_number, claim_type, incident_date,
		       incident_description, images, status, created_at
		FROM claims
		WHERE id = $1
	`

	claim := &models.Claim{}
	var customerID *uuid.UUID
	var images []byte
	var claimType, status string
	err := r.db.QueryRow(ctx, query, claimID).Scan(
		&claim.ID, &customerID, &claim.PolicyNumber, &claimType, &claim.IncidentDate,
		&claim.Description, &images, &status, &claim.CreatedAt,
	)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrClaimNotFound
		}
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}

	claim.ClaimType = models.ClaimType(fromDBEnum(claimType))
	claim.Status = models.ClaimStatus(fromDBEnum(status))
	if customerID != nil {
		claim.CustomerID = *customerID
	}
	claim.ImageURLs, err = decodeImageURLs(images)
	if err != nil {
		return nil, fmt.Errorf("failed to decode claim images: %w", err)
	}

	return claim, nil
}

// GetPolicyContext retrieves the policy terms of a customer
func (r *Repository) GetPolicyContext(ctx context.Context, customerID uuid.UUID) (*models.PolicyContext, error) {
	query := `
		SELECT policy_number, policy_start_date, policy_end_date, policy_limit
		FROM customers
		WHERE id = $1
	`

	policy := &models.PolicyContext{}
	err := r.db.QueryRow(ctx, query, customerID).Scan(
		&policy.PolicyNumber, &policy.PolicyStartDate, &policy.PolicyEndDate, &policy.PolicyLimit,
	)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrPolicyNotFound
		}
		return nil, fmt.Errorf("failed to get policy: %w", err)
	}

	return policy, nil
}

// CountClaims counts claims filed against a policy since the given time,
// including any claim currently being processed
func (r *Repository) CountClaims(ctx context.Context, policyNumber string, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM claims
		WHERE policy_number = $1 AND created_at >= $2
	`

	var count int
	if err := r.db.QueryRow(ctx, query, policyNumber, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count claims: %w", err)
	}

	return count, nil
}

// SaveOutcome writes the full adjudication result in one statement. Only a
// pending claim is updated; otherwise ErrAlreadyDecided is returned
func (r *Repository) SaveOutcome(ctx context.Context, claimID uuid.UUID, outcome *models.ClaimOutcome) error {
	flags, err := json.Marshal(nonNil(outcome.FraudFlags))
	if err != nil {
		return fmt.Errorf("failed to encode fraud flags: %w", err)
	}

	query := `
		UPDATE claims
		SET damage_assessment = $2,
		    estimated_amount = $3,
		    fraud_score = $4,
		    fraud_flags = $5,
		    status = $6,
		    approved_amount = $7,
		    decision_reason = $8,
		    decision_timestamp = $9,
		    updated_at = NOW()
		WHERE id = $1 AND status = $10
	`

	tag, err := r.db.Exec(ctx, query,
		claimID,
		[]byte(outcome.DamageAssessment),
		outcome.EstimatedAmount,
		outcome.FraudScore,
		flags,
		toDBEnum(string(outcome.Status)),
		outcome.ApprovedAmount,
		outcome.DecisionReason,
		outcome.DecisionTimestamp,
		toDBEnum(string(models.ClaimStatusPending)),
	)
	if err != nil {
		return fmt.Errorf("failed to save claim outcome: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyDecided
	}

	return nil
}

// MarkUnderReview routes a pending claim to manual review
func (r *Repository) MarkUnderReview(ctx context.Context, claimID uuid.UUID, reason string, decidedAt time.Time) error {
	query := `
		UPDATE claims
		SET status = $2,
		    decision_reason = $3,
		    decision_timestamp = $4,
		    updated_at = NOW()
		WHERE id = $1 AND status = $5
	`

	tag, err := r.db.Exec(ctx, query,
		claimID,
		toDBEnum(string(models.ClaimStatusUnderReview)),
		reason,
		decidedAt,
		toDBEnum(string(models.ClaimStatusPending)),
	)
	if err != nil {
		return fmt.Errorf("failed to mark claim for review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyDecided
	}

	return nil
}

// The claims table stores status and claim_type as enum member names
// (PENDING, UNDER_REVIEW, MOTOR)
func toDBEnum(value string) string {
	return strings.ToUpper(value)
}

func fromDBEnum(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

func decodeImageURLs(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return []string{}, nil
	}
	var urls []string
	if err := json.Unmarshal(raw, &urls); err != nil {
		return nil, err
	}
	if urls == nil {
		urls = []string{}
	}
	return urls, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
