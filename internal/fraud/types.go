package fraud

// RiskLevel is the coarse tier derived from a fraud score
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
)

// Score caps. The timing analyzer has no cap of its own: an incident near
// both ends of a short policy scores both boundary signals
const (
	MetadataScoreCap  = 20
	FrequencyScoreCap = 25
	MaxFraudScore     = 100
)

// Upper bounds (inclusive) of the low and medium risk bands
const (
	lowRiskCeiling    = 30
	mediumRiskCeiling = 70
)

// SignalResult is the outcome of a single analyzer
type SignalResult struct {
	IsSuspicious bool     `json:"is_suspicious"`
	Flags        []string `json:"flags"`
	Score        int      `json:"score"`
	// Degraded marks a result produced because the analyzer could not run.
	// A degraded result always scores zero
	Degraded      bool   `json:"degraded,omitempty"`
	FailureReason string `json:"failure_reason,omitempty"`
	// RecentClaims is only populated by the frequency analyzer
	RecentClaims int `json:"recent_claims_count,omitempty"`
}

// Details keeps each analyzer's result for audit
type Details struct {
	Metadata  SignalResult `json:"metadata"`
	Frequency SignalResult `json:"frequency"`
	Timing    SignalResult `json:"timing"`
}

// Score is the aggregate fraud assessment of a claim
type Score struct {
	Score     int       `json:"fraud_score"`
	RiskLevel RiskLevel `json:"risk_level"`
	Flags     []string  `json:"flags"`
	Details   Details   `json:"details"`
}

// RiskLevelFor maps a fraud score onto its risk band
func RiskLevelFor(score int) RiskLevel {
	switch {
	case score <= lowRiskCeiling:
		return RiskLevelLow
	case score <= mediumRiskCeiling:
		return RiskLevelMedium
	default:
		return RiskLevelHigh
	}
}

func degradedResult(reason string) SignalResult {
	return SignalResult{
		Flags:         []string{},
		Degraded:      true,
		FailureReason: reason,
	}
}
