package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// Error type values used for failures synthesized locally rather than
// returned by a provider. Provider errors carry whatever type string the
// service reported (e.g. "authentication_error", "invalid_request_error").
const (
	ErrorTypeConfig = "configuration_error"
	ErrorTypeParse  = "json_parse_error"
)

// APIError is the uniform error payload for this module. Provider error
// envelopes decode into it verbatim; configuration and decode failures are
// synthesized into it with the local type constants above.
type APIError struct {
	Message string  `json:"message"`
	Type    string  `json:"type"`
	Param   *string `json:"param,omitempty"`
	Code    *string `json:"code,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// NewConfigError builds a configuration *APIError from a format string.
func NewConfigError(format string, args ...any) *APIError {
	return &APIError{
		Message: fmt.Sprintf(format, args...),
		Type:    ErrorTypeConfig,
	}
}

// newParseError wraps a JSON decoding failure, preserving the parser's
// message.
func newParseError(err error) *APIError {
	return &APIError{
		Message: err.Error(),
		Type:    ErrorTypeParse,
	}
}

// errorEnvelope is the wire shape of a provider error response:
// {"error": {"message": ..., "type": ..., "param": ..., "code": ...}}.
type errorEnvelope struct {
	Error APIError `json:"error"`
}

// DecodeEnvelope resolves a success-or-error response body structurally.
// A body whose top-level object contains an "error" key decodes to a
// non-nil *APIError; any other body is decoded as T. A body matching
// neither shape returns a decode error carrying the parser's message.
func DecodeEnvelope[T any](body []byte) (*T, error) {
	if gjson.GetBytes(body, "error").Exists() {
		var envelope errorEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, newParseError(err)
		}
		return nil, &envelope.Error
	}

	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, newParseError(err)
	}
	return &out, nil
}

// ErrorFromResponse turns a non-2xx response body into an error. When the
// body carries the standard error envelope the contained payload is returned
// intact; otherwise a generic *APIError is synthesized from the status code
// with the raw body as the message.
func ErrorFromResponse(statusCode int, body []byte) error {
	if gjson.GetBytes(body, "error").Exists() {
		var envelope errorEnvelope
		if err := json.Unmarshal(body, &envelope); err == nil {
			return &envelope.Error
		}
	}
	return &APIError{
		Message: fmt.Sprintf("%s: %s", http.StatusText(statusCode), body),
		Type:    fmt.Sprintf("http_%d", statusCode),
	}
}

// AsAPIError reports whether err is (or wraps) an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsConfigError reports whether err is a locally-synthesized configuration
// error (missing environment credentials, unrecognized base URL).
func IsConfigError(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Type == ErrorTypeConfig
}

// IsDecodeError reports whether err came from failing to decode a response
// body against both the success and error shapes.
func IsDecodeError(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Type == ErrorTypeParse
}

// IsProviderError reports whether err is an error envelope returned by the
// service itself, as opposed to one synthesized locally.
func IsProviderError(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Type != ErrorTypeConfig && apiErr.Type != ErrorTypeParse
}
