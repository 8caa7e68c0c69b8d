package fraud

import (
	"fmt"
	"time"
)

const (
	nearPolicyStartScore = 10
	nearPolicyEndScore   = 15
	boundaryWindowDays   = 7
)

// TimingAnalyzer flags incidents close to the policy boundaries
type TimingAnalyzer struct{}

// NewTimingAnalyzer creates a timing analyzer
func NewTimingAnalyzer() *TimingAnalyzer {
	return &TimingAnalyzer{}
}

// Analyze scores the incident against the policy period. Any zero date means
// the dates could not be established and the claim is not scored
func (a *TimingAnalyzer) Analyze(incident, policyStart, policyEnd time.Time) SignalResult {
	result := SignalResult{Flags: []string{}}
	if incident.IsZero() || policyStart.IsZero() || policyEnd.IsZero() {
		return result
	}

	daysAfterStart := wholeDaysBetween(policyStart, incident)
	if daysAfterStart >= 0 && daysAfterStart <= boundaryWindowDays {
		result.Flags = append(result.Flags, fmt.Sprintf("Claim filed %d days after policy start", daysAfterStart))
		result.Score += nearPolicyStartScore
	}

	daysBeforeEnd := wholeDaysBetween(incident, policyEnd)
	if daysBeforeEnd >= 0 && daysBeforeEnd <= boundaryWindowDays {
		result.Flags = append(result.Flags, fmt.Sprintf("Claim filed %d days before policy expiry", daysBeforeEnd))
		result.Score += nearPolicyEndScore
	}

	result.IsSuspicious = result.Score > 0
	return result
}
