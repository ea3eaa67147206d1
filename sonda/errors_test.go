package sonda

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackendError_Unwrap(t *testing.T) {
	err := newBackendError(MethodAgents, FailureTimeout, context.DeadlineExceeded)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), string(MethodAgents))
	assert.Contains(t, err.Error(), string(FailureTimeout))
}

func TestAggregateError_CarriesBothCauses(t *testing.T) {
	primary := newBackendError(MethodAgents, FailureStatus, errors.New("500 from agents"))
	fallback := newBackendError(MethodDeepResearch, FailurePermission, errors.New("403 from deep"))
	agg := &AggregateError{Primary: primary, Fallback: fallback}

	var backendErr *BackendError
	require.ErrorAs(t, agg, &backendErr)

	assert.ErrorIs(t, agg, primary.Cause)
	assert.ErrorIs(t, agg, fallback.Cause)
	assert.Contains(t, agg.Error(), "500 from agents")
	assert.Contains(t, agg.Error(), "403 from deep")
}

func TestConfigError_Unwrap(t *testing.T) {
	err := &ConfigError{Field: "APIKey", Cause: ErrMissingAPIKey}
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.Contains(t, err.Error(), "APIKey")
}

func TestValidationError_Unwrap(t *testing.T) {
	cause := errors.New("empty output")
	err := &ValidationError{Field: "output", Cause: cause}
	assert.ErrorIs(t, err, cause)
}
