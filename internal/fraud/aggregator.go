package fraud

import (
	"context"
	"fmt"
	"time"

	"github.com/richxcame/claimguard/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Input is everything the fraud checks need for one claim
type Input struct {
	Image        []byte
	PolicyNumber string
	IncidentDate time.Time
	PolicyStart  time.Time
	PolicyEnd    time.Time
	// AsOf pins the claim-history snapshot, normally the pipeline start time
	AsOf time.Time
}

// Aggregator combines the metadata, frequency and timing analyzers
type Aggregator struct {
	metadata  *MetadataAnalyzer
	frequency *FrequencyAnalyzer
	timing    *TimingAnalyzer
}

// NewAggregator creates a fraud aggregator
func NewAggregator(metadata *MetadataAnalyzer, frequency *FrequencyAnalyzer, timing *TimingAnalyzer) *Aggregator {
	return &Aggregator{
		metadata:  metadata,
		frequency: frequency,
		timing:    timing,
	}
}

// Score runs the analyzers concurrently and combines their results. It never
// fails: an analyzer that panics contributes a degraded zero result
func (a *Aggregator) Score(ctx context.Context, in Input) Score {
	asOf := in.AsOf
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}

	var metadata, frequency, timing SignalResult
	var g errgroup.Group

	g.Go(func() error {
		metadata = runGuarded(ctx, "metadata", func() SignalResult {
			return a.metadata.Analyze(in.Image, in.IncidentDate)
		})
		return nil
	})
	g.Go(func() error {
		frequency = runGuarded(ctx, "frequency", func() SignalResult {
			return a.frequency.Analyze(ctx, in.PolicyNumber, asOf)
		})
		return nil
	})
	g.Go(func() error {
		timing = runGuarded(ctx, "timing", func() SignalResult {
			return a.timing.Analyze(in.IncidentDate, in.PolicyStart, in.PolicyEnd)
		})
		return nil
	})
	_ = g.Wait()

	score := Combine(metadata, frequency, timing)

	logger.WithContext(ctx).Debug("Fraud score computed",
		zap.Int("fraud_score", score.Score),
		zap.String("risk_level", string(score.RiskLevel)),
		zap.Strings("flags", score.Flags),
	)

	return score
}

// Combine sums analyzer scores, caps the total and concatenates flags in
// metadata, frequency, timing order
func Combine(metadata, frequency, timing SignalResult) Score {
	total := metadata.Score + frequency.Score + timing.Score
	capped := min(total, MaxFraudScore)

	flags := make([]string, 0, len(metadata.Flags)+len(frequency.Flags)+len(timing.Flags))
	flags = append(flags, metadata.Flags...)
	flags = append(flags, frequency.Flags...)
	flags = append(flags, timing.Flags...)

	return Score{
		Score:     capped,
		RiskLevel: RiskLevelFor(capped),
		Flags:     flags,
		Details: Details{
			Metadata:  metadata,
			Frequency: frequency,
			Timing:    timing,
		},
	}
}

func runGuarded(ctx context.Context, analyzer string, fn func() SignalResult) (result SignalResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithContext(ctx).Error("Fraud analyzer panicked",
				zap.String("analyzer", analyzer),
				zap.Any("panic", r),
			)
			result = degradedResult(fmt.Sprintf("%s analyzer failed: %v", analyzer, r))
		}
	}()
	return fn()
}
