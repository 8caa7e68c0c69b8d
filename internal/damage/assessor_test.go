package damage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/richxcame/claimguard/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockVision struct {
	mock.Mock
}

func (m *mockVision) Analyze(ctx context.Context, image []byte, instruction string) (string, error) {
	args := m.Called(ctx, image, instruction)
	return args.String(0), args.Error(1)
}

var photo = []byte{0xff, 0xd8, 0xff, 0xe0}

func TestAssessor_Success(t *testing.T) {
	vision := new(mockVision)
	vision.On("Analyze", mock.Anything, photo, Instruction(models.ClaimTypeMotor)).
		Return(`{"damage_type":"Side panel dent","severity":"minor","estimated_cost_ngn":120000,"confidence":0.9}`, nil)

	a := NewAssessor(vision, time.Second).Assess(context.Background(), photo, models.ClaimTypeMotor)

	assert.False(t, a.IsFallback)
	assert.Equal(t, "Side panel dent", a.DamageType)
	assert.Equal(t, int64(120000), a.EstimatedCost)
	vision.AssertExpectations(t)
}

func TestAssessor_ParseFallback(t *testing.T) {
	vision := new(mockVision)
	vision.On("Analyze", mock.Anything, photo, mock.Anything).Return("Sorry, I cannot help with that.", nil)

	a := NewAssessor(vision, time.Second).Assess(context.Background(), photo, models.ClaimTypeProperty)

	assert.True(t, a.IsFallback)
	assert.Equal(t, FallbackParse, a.FallbackReason)
	assert.Equal(t, "Unable to determine", a.DamageType)
	assert.Equal(t, SeverityModerate, a.Severity)
	assert.Equal(t, int64(200000), a.EstimatedCost)
	assert.Equal(t, 0.5, a.Confidence)
	assert.True(t, strings.HasPrefix(a.Reasoning, "Error parsing response: "))
	assert.Equal(t, "Sorry, I cannot help with that.", a.RawResponse)
	assert.Empty(t, a.DamagedItems)
}

func TestAssessor_OversizedCostFallsBack(t *testing.T) {
	vision := new(mockVision)
	vision.On("Analyze", mock.Anything, photo, mock.Anything).
		Return(`{"damage_type":"Total loss","severity":"severe","estimated_cost_ngn":1e30,"confidence":0.95}`, nil)

	a := NewAssessor(vision, time.Second).Assess(context.Background(), photo, models.ClaimTypeMotor)

	assert.True(t, a.IsFallback)
	assert.Equal(t, FallbackParse, a.FallbackReason)
	assert.Equal(t, int64(200000), a.EstimatedCost)
	assert.Equal(t, 0.5, a.Confidence)
}

func TestAssessor_CallFallback(t *testing.T) {
	vision := new(mockVision)
	vision.On("Analyze", mock.Anything, photo, mock.Anything).Return("", errors.New("quota exceeded"))

	a := NewAssessor(vision, time.Second).Assess(context.Background(), photo, models.ClaimTypeHealth)

	assert.True(t, a.IsFallback)
	assert.Equal(t, FallbackVisionCall, a.FallbackReason)
	assert.Equal(t, 0.3, a.Confidence)
	assert.Equal(t, int64(200000), a.EstimatedCost)
	assert.Equal(t, "Error during analysis: quota exceeded", a.Reasoning)
}

func TestAssessor_Timeout(t *testing.T) {
	vision := new(mockVision)
	vision.On("Analyze", mock.Anything, photo, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return("", context.DeadlineExceeded)

	a := NewAssessor(vision, 20*time.Millisecond).Assess(context.Background(), photo, models.ClaimTypeMotor)

	assert.True(t, a.IsFallback)
	assert.Equal(t, 0.3, a.Confidence)
	assert.Contains(t, a.Reasoning, "deadline exceeded")
}

func TestAssessor_EmptyImage(t *testing.T) {
	vision := new(mockVision)

	a := NewAssessor(vision, time.Second).Assess(context.Background(), nil, models.ClaimTypeMotor)

	assert.True(t, a.IsFallback)
	assert.Equal(t, FallbackVisionCall, a.FallbackReason)
	vision.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything, mock.Anything)
}

func TestInstruction(t *testing.T) {
	motor := Instruction(models.ClaimTypeMotor)
	property := Instruction(models.ClaimTypeProperty)
	health := Instruction(models.ClaimTypeHealth)

	assert.Contains(t, motor, "Lagos")
	assert.Contains(t, property, "₦1,000,000+")
	assert.NotContains(t, health, "PRICING GUIDE")
	assert.Equal(t, health, Instruction(models.ClaimType("marine")))
	for _, text := range []string{motor, property, health} {
		assert.Contains(t, text, "Respond ONLY with valid JSON")
		assert.Contains(t, text, "estimated_cost_ngn")
	}
}
