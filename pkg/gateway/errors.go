package gateway

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	// ErrNoAPIKey is returned when an API key is required but missing.
	ErrNoAPIKey = errors.New("gateway: API key required")

	// ErrEmptyResponse is returned when the model produced no content.
	ErrEmptyResponse = errors.New("gateway: empty model response")
)

// APIError represents an error response from the remote service.
type APIError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Message is the error message from the API.
	Message string

	// Model identifies which model the request targeted.
	Model string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("gateway [%s]: API error %d: %s", e.Model, e.StatusCode, e.Message)
}

// IsRateLimited returns true if this is a rate limit error (HTTP 429).
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == 429
}

// IsServerError returns true if this is a server-side error (HTTP 5xx).
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// IsRetryable returns true if a fallback model may recover the request.
func (e *APIError) IsRetryable() bool {
	return e.IsRateLimited() || e.IsServerError()
}

// Retryable classifies an error for the model fallback policy.
// API errors are retryable only for rate-limit and server-error status
// classes; transport-level failures (no HTTP response at all) are
// retryable as well. Anything else is a hard failure.
func Retryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsRetryable()
	}
	// No structured status: transport failure, worth one fallback try.
	return true
}
