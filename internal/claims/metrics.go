package claims

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	claimsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "claims_processed_total",
		Help: "Pipeline runs by resulting claim status",
	}, []string{"status"})

	pipelineDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "claims_pipeline_duration_seconds",
		Help:    "Duration of adjudication pipeline runs",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
	})

	pipelineAbandonedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "claims_pipeline_abandoned_total",
		Help: "Pipeline runs that left the claim untouched",
	}, []string{"reason"})

	fraudScoreHistogram = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "claims_fraud_score",
		Help:    "Distribution of aggregate fraud scores",
		Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
	})
)

// Abandon reasons
const (
	abandonClaimNotFound  = "claim_not_found"
	abandonPolicyNotFound = "policy_not_found"
	abandonNoImages       = "no_images"
	abandonAlreadyDecided = "already_decided"
	abandonLoadFailed     = "load_failed"
	abandonGuardError     = "guard_error"
	abandonDuplicate      = "duplicate_trigger"
)
