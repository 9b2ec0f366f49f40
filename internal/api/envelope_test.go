package api

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEnvelope decodes enveloped API responses in tests.
type testEnvelope[T any] struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details"`
}

func TestEnvelopeTransformer_AlwaysIncludesVersion(t *testing.T) {
	tests := []struct {
		name   string
		status string
		input  any
	}{
		{
			name:   "success response",
			status: "200",
			input:  map[string]string{"key": "value"},
		},
		{
			name:   "created response",
			status: "201",
			input:  map[string]string{"id": "bookmark"},
		},
		{
			name:   "no content response",
			status: "204",
			input:  nil,
		},
		{
			name:   "bad request error",
			status: "400",
			input:  errors.New("invalid input"),
		},
		{
			name:   "conflict error with details",
			status: "409",
			input: &APIError{
				Code:    "ALREADY_EXISTS",
				Message: "Entity is already flagged",
				Details: map[string]string{"flagging_id": "flagging-123"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := EnvelopeTransformer(nil, tt.status, tt.input)
			require.NoError(t, err)

			jsonBytes, err := json.Marshal(result)
			require.NoError(t, err)

			var envelope map[string]any
			require.NoError(t, json.Unmarshal(jsonBytes, &envelope))

			require.Contains(t, envelope, "v", "Envelope must contain version field 'v'")
			assert.Equal(t, float64(EnvelopeVersion), envelope["v"])
			assert.NotContains(t, envelope, "version")
		})
	}
}

func TestEnvelopeTransformer_SuccessResponse(t *testing.T) {
	data := map[string]string{"id": "bookmark"}

	result, err := EnvelopeTransformer(nil, "200", data)
	require.NoError(t, err)

	envelope, ok := result.(APIEnvelope)
	require.True(t, ok, "Expected APIEnvelope type")

	assert.Equal(t, EnvelopeVersion, envelope.Version)
	assert.True(t, envelope.Success)
	assert.Equal(t, data, envelope.Data)
	assert.Empty(t, envelope.Error)
}

func TestEnvelopeTransformer_ErrorResponse(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "400", errors.New("validation failed"))
	require.NoError(t, err)

	envelope, ok := result.(APIEnvelope)
	require.True(t, ok, "Expected APIEnvelope type")

	assert.False(t, envelope.Success)
	assert.Nil(t, envelope.Data)
	assert.Equal(t, "validation failed", envelope.Error)
}

func TestEnvelopeTransformer_SimpleAPIError(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "404", &APIError{Message: "Resource not found"})
	require.NoError(t, err)

	envelope, ok := result.(APIEnvelope)
	require.True(t, ok, "Expected APIEnvelope type")
	assert.False(t, envelope.Success)
	assert.Equal(t, "Resource not found", envelope.Error)
}

func TestEnvelopeTransformer_ErrorWithDetails(t *testing.T) {
	apiErr := &APIError{
		Code:    "VALIDATION",
		Message: "validation failed",
		Details: map[string]string{"id": "must be a machine name"},
	}

	result, err := EnvelopeTransformer(nil, "400", apiErr)
	require.NoError(t, err)

	envelope, ok := result.(APIErrorEnvelope)
	require.True(t, ok, "Expected APIErrorEnvelope type")

	assert.Equal(t, EnvelopeVersion, envelope.Version)
	assert.False(t, envelope.Success)
	assert.Equal(t, "VALIDATION", envelope.Code)
	assert.Equal(t, "validation failed", envelope.Message)
	assert.Equal(t, "validation failed", envelope.Error)
	assert.Equal(t, map[string]string{"id": "must be a machine name"}, envelope.Details)
}
