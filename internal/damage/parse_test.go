package damage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReply_Valid(t *testing.T) {
	raw := `{
		"damage_type": "Front bumper collision",
		"severity": "Moderate",
		"estimated_cost_ngn": 320000.6,
		"damaged_items": ["Bumper", "Headlight assembly"],
		"confidence": 0.85,
		"reasoning": "Visible dent across the bumper."
	}`

	a, err := ParseReply(raw)
	require.NoError(t, err)

	assert.Equal(t, "Front bumper collision", a.DamageType)
	assert.Equal(t, SeverityModerate, a.Severity)
	assert.Equal(t, int64(320001), a.EstimatedCost)
	assert.Equal(t, []string{"Bumper", "Headlight assembly"}, a.DamagedItems)
	assert.InDelta(t, 0.85, a.Confidence, 1e-9)
	assert.False(t, a.IsFallback)
}

func TestParseReply_StripsCodeFence(t *testing.T) {
	for name, raw := range map[string]string{
		"json fence":  "```json\n{\"damage_type\":\"Dent\",\"severity\":\"minor\",\"estimated_cost_ngn\":80000}\n```",
		"plain fence": "```\n{\"damage_type\":\"Dent\",\"severity\":\"minor\",\"estimated_cost_ngn\":80000}\n```",
		"padded":      "  \n{\"damage_type\":\"Dent\",\"severity\":\"minor\",\"estimated_cost_ngn\":80000}\n ",
	} {
		t.Run(name, func(t *testing.T) {
			a, err := ParseReply(raw)
			require.NoError(t, err)
			assert.Equal(t, "Dent", a.DamageType)
			assert.Equal(t, int64(80000), a.EstimatedCost)
		})
	}
}

func TestParseReply_Defaults(t *testing.T) {
	a, err := ParseReply(`{"damage_type":"Dent","severity":"minor","estimated_cost":50000}`)
	require.NoError(t, err)

	assert.Equal(t, int64(50000), a.EstimatedCost)
	assert.Equal(t, 1.0, a.Confidence)
	assert.NotNil(t, a.DamagedItems)
	assert.Empty(t, a.DamagedItems)
}

func TestParseReply_ClampsConfidence(t *testing.T) {
	a, err := ParseReply(`{"damage_type":"Dent","severity":"minor","estimated_cost_ngn":1,"confidence":1.7}`)
	require.NoError(t, err)
	assert.Equal(t, 1.0, a.Confidence)

	a, err = ParseReply(`{"damage_type":"Dent","severity":"minor","estimated_cost_ngn":1,"confidence":-0.2}`)
	require.NoError(t, err)
	assert.Equal(t, 0.0, a.Confidence)
}

func TestParseReply_Rejects(t *testing.T) {
	tests := map[string]string{
		"not json":         "I think the car is damaged",
		"missing type":     `{"severity":"minor","estimated_cost_ngn":1000}`,
		"missing severity": `{"damage_type":"Dent","estimated_cost_ngn":1000}`,
		"missing cost":     `{"damage_type":"Dent","severity":"minor"}`,
		"negative cost":    `{"damage_type":"Dent","severity":"minor","estimated_cost_ngn":-5}`,
		"bad severity":     `{"damage_type":"Dent","severity":"catastrophic","estimated_cost_ngn":1000}`,
		"string cost":      `{"damage_type":"Dent","severity":"minor","estimated_cost_ngn":"lots"}`,
		"huge cost":        `{"damage_type":"Dent","severity":"minor","estimated_cost_ngn":1e30}`,
		"cost past int32":  `{"damage_type":"Dent","severity":"minor","estimated_cost_ngn":2147483648}`,
		"huge legacy cost": `{"damage_type":"Dent","severity":"minor","estimated_cost":1e30}`,
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseReply(raw)
			assert.Error(t, err)
		})
	}
}

func TestParseFallback_TruncatesRawResponse(t *testing.T) {
	raw := strings.Repeat("₦", 400)

	a := parseFallback(assert.AnError, raw)

	assert.LessOrEqual(t, len(a.RawResponse), rawResponseLimit)
	assert.True(t, strings.HasPrefix(raw, a.RawResponse))
	assert.Equal(t, 0.5, a.Confidence)
	assert.Equal(t, FallbackParse, a.FallbackReason)
}

func TestParseReply_ValidationMessages(t *testing.T) {
	_, err := ParseReply(`{"severity":"minor","estimated_cost_ngn":1000}`)
	require.Error(t, err)
	assert.Equal(t, "damage_type is required", err.Error())

	_, err = ParseReply(`{"damage_type":"Dent","severity":"minor","estimated_cost_ngn":-5}`)
	require.Error(t, err)
	assert.Equal(t, "estimated_cost_ngn must be greater than or equal to 0", err.Error())
}

func TestParseReply_CostUpperBound(t *testing.T) {
	a, err := ParseReply(`{"damage_type":"Dent","severity":"minor","estimated_cost_ngn":2147483647}`)
	require.NoError(t, err)
	assert.Equal(t, int64(2147483647), a.EstimatedCost)

	_, err = ParseReply(`{"damage_type":"Dent","severity":"minor","estimated_cost_ngn":1e30}`)
	require.Error(t, err)
	assert.Equal(t, "estimated_cost_ngn must be less than or equal to 2147483647", err.Error())
}
