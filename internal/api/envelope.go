package api

import (
	"strconv"

	"github.com/danielgtaylor/huma/v2"
)

// EnvelopeVersion is bumped whenever the envelope shape changes.
const EnvelopeVersion = 1

// APIEnvelope wraps every JSON API response.
type APIEnvelope struct { //nolint:revive // API prefix is intentional for clarity
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// APIErrorEnvelope is used for errors that carry a machine-readable code.
type APIErrorEnvelope struct { //nolint:revive // API prefix is intentional for clarity
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer is a huma transformer wrapping bodies in the envelope.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	code, _ := strconv.Atoi(status)

	switch body := v.(type) {
	case *APIError:
		if body.Code == "" {
			return APIEnvelope{Version: EnvelopeVersion, Error: body.Message}, nil
		}
		return APIErrorEnvelope{
			Version: EnvelopeVersion,
			Error:   body.Message,
			Code:    body.Code,
			Message: body.Message,
			Details: body.Details,
		}, nil
	case error:
		return APIEnvelope{Version: EnvelopeVersion, Error: body.Error()}, nil
	}

	if code >= 400 {
		return APIEnvelope{Version: EnvelopeVersion}, nil
	}
	return APIEnvelope{Version: EnvelopeVersion, Success: true, Data: v}, nil
}
