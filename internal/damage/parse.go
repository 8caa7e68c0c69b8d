package damage

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/richxcame/claimguard/pkg/validation"
)

var validate = validation.New()

// maxEstimatedCost is the largest amount the claims table can store
// (a 32-bit integer column). Larger estimates are unusable replies
const maxEstimatedCost = math.MaxInt32

// reply mirrors the JSON the vision model is asked to produce. Pointers let
// the validator tell an omitted field from a zero value
type reply struct {
	DamageType       *string  `json:"damage_type" validate:"required"`
	Severity         *string  `json:"severity" validate:"required"`
	EstimatedCostNGN *float64 `json:"estimated_cost_ngn" validate:"omitempty,gte=0,lte=2147483647"`
	EstimatedCost    *float64 `json:"estimated_cost" validate:"omitempty,gte=0,lte=2147483647"`
	DamagedItems     []string `json:"damaged_items"`
	Confidence       *float64 `json:"confidence"`
	Reasoning        string   `json:"reasoning"`
}

// ParseReply turns a raw vision reply into an Assessment. It strips a
// markdown code fence before decoding
func ParseReply(raw string) (Assessment, error) {
	text := stripFence(raw)

	var r reply
	if err := json.Unmarshal([]byte(text), &r); err != nil {
		return Assessment{}, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := validate.Struct(r); err != nil {
		return Assessment{}, validation.FromError(err)
	}

	cost := r.EstimatedCostNGN
	if cost == nil {
		cost = r.EstimatedCost
	}
	if cost == nil {
		return Assessment{}, errors.New("estimated_cost_ngn is required")
	}

	severity := Severity(strings.ToLower(strings.TrimSpace(*r.Severity)))
	switch severity {
	case SeverityMinor, SeverityModerate, SeveritySevere:
	default:
		return Assessment{}, fmt.Errorf("severity must be one of: minor moderate severe, got %q", *r.Severity)
	}

	estimated := int64(math.Round(*cost))
	if estimated < 0 || estimated > maxEstimatedCost {
		return Assessment{}, fmt.Errorf("estimated cost %v out of range", *cost)
	}

	confidence := 1.0
	if r.Confidence != nil {
		confidence = clamp(*r.Confidence, 0, 1)
	}

	items := r.DamagedItems
	if items == nil {
		items = []string{}
	}

	return Assessment{
		DamageType:    *r.DamageType,
		Severity:      severity,
		EstimatedCost: estimated,
		DamagedItems:  items,
		Confidence:    confidence,
		Reasoning:     r.Reasoning,
	}, nil
}

func stripFence(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
