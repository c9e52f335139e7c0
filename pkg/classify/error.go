package classify

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a classification request failure surfaced by a backend.
type Error struct {
	// Backend identifies the backend that failed ("gemini", "openai").
	Backend string

	// Model is the model the request targeted.
	Model string

	// Status is the HTTP status of the failed call, zero when the
	// failure never reached the service.
	Status int

	// Message is the backend's description of the failure.
	Message string

	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("classify: %s: %s (model=%s, status=%d)",
		e.Backend, e.Message, e.Model, e.Status)
}

// Unwrap returns the backend SDK error.
func (e *Error) Unwrap() error { return e.cause }

// IsAuthError reports whether the backend rejected the credentials.
func (e *Error) IsAuthError() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// IsInvalidParam reports whether the backend rejected the request shape.
func (e *Error) IsInvalidParam() bool {
	return e.Status == http.StatusBadRequest
}

// IsRateLimit reports whether the backend throttled the request.
func (e *Error) IsRateLimit() bool {
	return e.Status == http.StatusTooManyRequests
}

// IsServerError reports whether the backend failed internally.
func (e *Error) IsServerError() bool {
	return e.Status >= http.StatusInternalServerError
}

// Retryable reports whether the same request may succeed later.
func (e *Error) Retryable() bool {
	return e.IsRateLimit() || e.IsServerError()
}

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// backendError wraps a backend SDK failure, preserving the cause for
// errors.Is and errors.As.
func backendError(backend, model string, status int, cause error) *Error {
	return &Error{
		Backend: backend,
		Model:   model,
		Status:  status,
		Message: cause.Error(),
		cause:   cause,
	}
}
