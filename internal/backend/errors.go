package backend

import (
	"fmt"
	"strings"
)

// ErrorType categorizes backend call failures.
type ErrorType string

const (
	// ErrTypeTransport indicates the backend could not be reached or
	// its response could not be decoded.
	ErrTypeTransport ErrorType = "transport"

	// ErrTypeRemote indicates the backend was reached and reported a
	// failure (non-success status and/or an error body).
	ErrTypeRemote ErrorType = "remote"

	// ErrTypePrecondition indicates a client-side business
	// precondition failed before any network call was attempted.
	ErrTypePrecondition ErrorType = "precondition"

	// ErrTypeValidation indicates a response reached the client but
	// was missing fields the caller requires.
	ErrTypeValidation ErrorType = "validation"
)

// Error is the uniform failure shape produced by the gateway client
// and the accessors built on top of it.
type Error struct {
	// Type categorizes the error.
	Type ErrorType `json:"type"`

	// Message is the user-facing description. For remote errors the
	// server-supplied string is preferred verbatim over any generic
	// status-derived fallback.
	Message string `json:"message"`

	// Endpoint is the path of the failed call, when one was made.
	Endpoint string `json:"endpoint,omitempty"`

	// StatusCode is set for HTTP-level failures.
	StatusCode int `json:"status_code,omitempty"`

	// Cause is the underlying error, if any.
	Cause error `json:"-"`
}

// Error returns the user-facing message alone. Server strings and
// precondition hints must reach the console verbatim, so the
// diagnostic fields stay on the struct and in Unwrap rather than in
// the rendered string.
func (e *Error) Error() string {
	return e.Message
}

// Detail returns a diagnostic rendering with the type, endpoint and
// status included. Intended for logs, never for panel display.
func (e *Error) Detail() string {
	parts := []string{fmt.Sprintf("type=%s", e.Type)}
	if e.Endpoint != "" {
		parts = append(parts, fmt.Sprintf("endpoint=%s", e.Endpoint))
	}
	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}
	parts = append(parts, e.Message)
	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause=%s", e.Cause.Error()))
	}
	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors by type so callers can use errors.Is with a
// sentinel like &Error{Type: ErrTypeRemote}.
func (e *Error) Is(target error) bool {
	if te, ok := target.(*Error); ok {
		return e.Type == te.Type
	}
	return false
}

// NewTransportError creates a transport-level failure.
func NewTransportError(endpoint, message string, cause error) *Error {
	return &Error{
		Type:     ErrTypeTransport,
		Message:  message,
		Endpoint: endpoint,
		Cause:    cause,
	}
}

// NewRemoteError creates a backend-reported failure.
func NewRemoteError(endpoint, message string, status int) *Error {
	return &Error{
		Type:       ErrTypeRemote,
		Message:    message,
		Endpoint:   endpoint,
		StatusCode: status,
	}
}

// NewPreconditionError creates a client-side business failure. These
// never correspond to a network call.
func NewPreconditionError(message string) *Error {
	return &Error{
		Type:    ErrTypePrecondition,
		Message: message,
	}
}

// NewValidationError creates a response-shape failure.
func NewValidationError(endpoint, message string) *Error {
	return &Error{
		Type:     ErrTypeValidation,
		Message:  message,
		Endpoint: endpoint,
	}
}

// IsTransportError checks if an error is a transport failure.
func IsTransportError(err error) bool {
	if be, ok := err.(*Error); ok {
		return be.Type == ErrTypeTransport
	}
	return false
}

// IsRemoteError checks if an error is a backend-reported failure.
func IsRemoteError(err error) bool {
	if be, ok := err.(*Error); ok {
		return be.Type == ErrTypeRemote || be.Type == ErrTypeValidation
	}
	return false
}

// IsPreconditionError checks if an error is a client-side business
// precondition failure.
func IsPreconditionError(err error) bool {
	if be, ok := err.(*Error); ok {
		return be.Type == ErrTypePrecondition
	}
	return false
}
