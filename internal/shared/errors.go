package shared

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrForbidden        = fmt.Errorf("action not permitted for role")

	// Transport errors
	ErrNetwork            = fmt.Errorf("network error")
	ErrHTTPStatus         = fmt.Errorf("unexpected HTTP status")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Reconciliation errors
	ErrReconciliationAmbiguity = fmt.Errorf("response matched no expected shape")
	ErrInFlight                = fmt.Errorf("request already in flight")

	// Movie list errors
	ErrMovieNotFound   = fmt.Errorf("movie not found")
	ErrCommentNotFound = fmt.Errorf("comment not found")
	ErrCommentHasVotes = fmt.Errorf("cannot delete comment that has votes")
	ErrCancelled       = fmt.Errorf("cancelled by user")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// NetworkError reports a request that produced no response.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() []error { return []error{ErrNetwork, e.Err} }

// HTTPError reports a response with an error status (>= 400).
//
// Message holds the backend's "message" field when the body carried one.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Body       []byte
}

func (e *HTTPError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, msg)
}

func (e *HTTPError) Unwrap() error { return ErrHTTPStatus }

// ValidationError is a client-side input failure. It never reaches the network.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NewValidationError builds a [ValidationError] for field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// StatusCode extracts the status of an [HTTPError] in err's chain, or 0.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

// UserMessage returns the text shown to a person for err.
//
// Backend-provided messages win; everything else falls back to a generic retry hint.
func UserMessage(err error, fallback string) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.Message != "" {
		return httpErr.Message
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Error()
	}
	if fallback == "" {
		fallback = "An error occurred. Please try again."
	}
	return fallback
}
