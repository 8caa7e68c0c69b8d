package decision

import (
	"github.com/richxcame/claimguard/internal/damage"
	"github.com/richxcame/claimguard/internal/fraud"
	"github.com/richxcame/claimguard/pkg/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// RejectFraudScore and ReviewFraudScore are exclusive lower bounds
	RejectFraudScore = 70
	ReviewFraudScore = 30

	// MinConfidence is the lowest assessment confidence approved automatically
	MinConfidence = 0.6
)

const (
	reasonHighFraud     = "High fraud indicators detected"
	reasonVerification  = "Additional verification required"
	reasonImageQuality  = "Image quality requires manual review"
	reasonApproved      = "Claim meets all approval criteria"
	nextStepsFraudTeam  = "Please contact our fraud investigation team at fraud@claimguard.ai"
	nextStepsFourHours  = "Our team will review your claim within 4 hours"
	nextStepsHighValue  = "Manual assessment required for high-value claims"
	nextStepsTwoHours   = "Our team will review within 2 hours"
	nextStepsPaymentSMS = "You'll receive an SMS when payment is processed"
	paymentTimeline     = "Within 24 hours"
)

var amountPrinter = message.NewPrinter(language.English)

// Decision is the adjudication outcome. Every branch fills the same shape
type Decision struct {
	Outcome         models.ClaimStatus `json:"decision"`
	ApprovedAmount  *int64             `json:"approved_amount,omitempty"`
	EstimatedAmount int64              `json:"estimated_amount"`
	Reason          string             `json:"reason"`
	NextSteps       string             `json:"next_steps"`
	Flags           []string           `json:"flags"`
	PaymentTimeline string             `json:"payment_timeline,omitempty"`
}

// Engine applies the approval rules in order, first match wins
type Engine struct{}

// NewEngine creates a decision engine
func NewEngine() *Engine {
	return &Engine{}
}

// Decide is pure: the same inputs always give the same Decision
func (e *Engine) Decide(assessment damage.Assessment, score fraud.Score, policyLimit int64) Decision {
	d := Decision{
		EstimatedAmount: assessment.EstimatedCost,
		Flags:           []string{},
	}

	switch {
	case score.Score > RejectFraudScore:
		d.Outcome = models.ClaimStatusRejected
		d.Reason = reasonHighFraud
		d.NextSteps = nextStepsFraudTeam
		d.Flags = copyFlags(score.Flags)

	case score.Score > ReviewFraudScore:
		d.Outcome = models.ClaimStatusUnderReview
		d.Reason = reasonVerification
		d.NextSteps = nextStepsFourHours
		d.Flags = copyFlags(score.Flags)

	case assessment.EstimatedCost > policyLimit:
		d.Outcome = models.ClaimStatusUnderReview
		d.Reason = "Claim exceeds policy limit (₦" + FormatAmount(policyLimit) + ")"
		d.NextSteps = nextStepsHighValue

	case assessment.Confidence < MinConfidence:
		d.Outcome = models.ClaimStatusUnderReview
		d.Reason = reasonImageQuality
		d.NextSteps = nextStepsTwoHours

	default:
		approved := assessment.EstimatedCost
		d.Outcome = models.ClaimStatusApproved
		d.ApprovedAmount = &approved
		d.Reason = reasonApproved
		d.NextSteps = nextStepsPaymentSMS
		d.PaymentTimeline = paymentTimeline
	}

	return d
}

// FormatAmount renders a whole-currency amount with thousands separators
func FormatAmount(amount int64) string {
	return amountPrinter.Sprintf("%d", amount)
}

func copyFlags(flags []string) []string {
	out := make([]string, len(flags))
	copy(out, flags)
	return out
}
