package fraud

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/richxcame/claimguard/pkg/logger"
	"go.uber.org/zap"
)

const (
	// HistoryWindowDays is the trailing window claim frequency is measured over
	HistoryWindowDays = 90

	frequencyThreshold   = 2
	pointsPerRecentClaim = 8
)

// HistoryStore counts claims filed against a policy
type HistoryStore interface {
	CountClaims(ctx context.Context, policyNumber string, since time.Time) (int, error)
}

// FrequencyAnalyzer scores how often a policy has claimed recently
type FrequencyAnalyzer struct {
	store   HistoryStore
	timeout time.Duration
}

// NewFrequencyAnalyzer creates a frequency analyzer. A non-positive timeout
// leaves the history query bounded only by ctx
func NewFrequencyAnalyzer(store HistoryStore, timeout time.Duration) *FrequencyAnalyzer {
	return &FrequencyAnalyzer{store: store, timeout: timeout}
}

// Analyze counts the policy's claims in the window ending at asOf. A failed or
// timed out lookup yields a degraded zero-score result
func (a *FrequencyAnalyzer) Analyze(ctx context.Context, policyNumber string, asOf time.Time) SignalResult {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	since := asOf.Add(-HistoryWindowDays * day)
	count, err := a.store.CountClaims(ctx, policyNumber, since)
	if err != nil {
		reason := fmt.Sprintf("claim history unavailable: %v", err)
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "claim history query timed out"
		}
		logger.WithContext(ctx).Warn("Frequency check degraded",
			zap.String("policy_number", policyNumber),
			zap.Error(err),
		)
		return degradedResult(reason)
	}

	return EvaluateFrequency(count)
}

// EvaluateFrequency scores a recent-claims count
func EvaluateFrequency(recentClaims int) SignalResult {
	result := SignalResult{
		Flags:        []string{},
		RecentClaims: recentClaims,
	}

	if recentClaims > frequencyThreshold {
		result.IsSuspicious = true
		result.Flags = append(result.Flags, fmt.Sprintf("%d claims in last %d days", recentClaims, HistoryWindowDays))
		result.Score = min(FrequencyScoreCap, recentClaims*pointsPerRecentClaim)
	}

	return result
}
