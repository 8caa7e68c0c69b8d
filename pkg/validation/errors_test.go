package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  *string  `json:"name" validate:"required"`
	Cost  *float64 `json:"cost" validate:"omitempty,gte=0"`
	Level string   `json:"level" validate:"oneof=low high"`
}

func TestFromError_UsesJSONNames(t *testing.T) {
	cost := -3.0
	err := New().Struct(sample{Cost: &cost, Level: "mid"})
	require.Error(t, err)

	verr, ok := FromError(err).(*ValidationError)
	require.True(t, ok)
	assert.Equal(t, "name is required", verr.Errors["name"])
	assert.Equal(t, "cost must be greater than or equal to 0", verr.Errors["cost"])
	assert.Equal(t, "level must be one of: low high", verr.Errors["level"])
	assert.Equal(t,
		"cost must be greater than or equal to 0; level must be one of: low high; name is required",
		verr.Error(),
	)
}

func TestFromError_PassesThroughOtherErrors(t *testing.T) {
	plain := errors.New("boom")
	assert.Equal(t, plain, FromError(plain))
}

func TestValidationError_AddError(t *testing.T) {
	v := &ValidationError{}
	assert.False(t, v.HasErrors())

	v.AddError("severity", "severity must be one of: minor moderate severe")
	assert.True(t, v.HasErrors())
	assert.Equal(t, "severity must be one of: minor moderate severe", v.Error())
}
