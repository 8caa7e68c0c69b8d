package damage

import "unicode/utf8"

// Severity is the vision model's damage grade
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// Fallback reasons recorded on assessments that did not come from a clean
// model reply
const (
	FallbackVisionCall = "vision_call"
	FallbackParse      = "parse"
)

// Assessment is the structured damage estimate for one claim photo
type Assessment struct {
	DamageType    string   `json:"damage_type"`
	Severity      Severity `json:"severity"`
	EstimatedCost int64    `json:"estimated_cost_ngn"`
	DamagedItems  []string `json:"damaged_items"`
	Confidence    float64  `json:"confidence"`
	Reasoning     string   `json:"reasoning"`

	IsFallback     bool   `json:"error,omitempty"`
	FallbackReason string `json:"fallback_reason,omitempty"`
	RawResponse    string `json:"raw_response,omitempty"`
}

const (
	undeterminedDamage    = "Unable to determine"
	fallbackEstimatedCost = 200000
	parseFallbackConf     = 0.5
	callFallbackConf      = 0.3
	rawResponseLimit      = 500
)

func parseFallback(err error, raw string) Assessment {
	return Assessment{
		DamageType:     undeterminedDamage,
		Severity:       SeverityModerate,
		EstimatedCost:  fallbackEstimatedCost,
		DamagedItems:   []string{},
		Confidence:     parseFallbackConf,
		Reasoning:      "Error parsing response: " + err.Error(),
		IsFallback:     true,
		FallbackReason: FallbackParse,
		RawResponse:    truncateRunes(raw, rawResponseLimit),
	}
}

func callFallback(err error) Assessment {
	return Assessment{
		DamageType:     undeterminedDamage,
		Severity:       SeverityModerate,
		EstimatedCost:  fallbackEstimatedCost,
		DamagedItems:   []string{},
		Confidence:     callFallbackConf,
		Reasoning:      "Error during analysis: " + err.Error(),
		IsFallback:     true,
		FallbackReason: FallbackVisionCall,
	}
}

// truncateRunes keeps at most limit bytes without splitting a UTF-8 sequence
func truncateRunes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
