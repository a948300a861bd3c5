package backend

import (
	"errors"
	"fmt"
)

// ErrorCategory is the normalized failure taxonomy for backend errors.
//
// The composition layer uses these categories to decide whether a failed
// write is worth retrying against the local backend, without inspecting raw
// error messages or coupling to a specific backend implementation.
type ErrorCategory string

const (
	// ErrorTimeout indicates the issuer took too long to respond
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorBadData indicates the issuer rejected the request payload
	ErrorBadData ErrorCategory = "bad_data"

	// ErrorAuthentication indicates API key or permission issues
	ErrorAuthentication ErrorCategory = "authentication"

	// ErrorOutage indicates the issuer is unavailable
	ErrorOutage ErrorCategory = "outage"

	// ErrorContractMismatch indicates the issuer API shape changed
	ErrorContractMismatch ErrorCategory = "contract_mismatch"

	// ErrorNotFound indicates the requested record doesn't exist
	ErrorNotFound ErrorCategory = "not_found"

	// ErrorRateLimited indicates too many requests
	ErrorRateLimited ErrorCategory = "rate_limited"

	// ErrorInternal indicates an unexpected internal error
	ErrorInternal ErrorCategory = "internal"
)

// BackendError wraps backend failures with normalized categorization.
type BackendError struct {
	Category   ErrorCategory
	Backend    string
	Message    string
	Underlying error
	Retryable  bool // Set from Category (timeout, outage, rate-limited)
}

// Error implements the error interface
func (e *BackendError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("credential backend %s [%s]: %s: %v", e.Backend, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("credential backend %s [%s]: %s", e.Backend, e.Category, e.Message)
}

// Unwrap supports error unwrapping
func (e *BackendError) Unwrap() error {
	return e.Underlying
}

// NewBackendError creates a normalized backend error with automatic retry
// classification: transient failures (timeout, outage, rate-limited) are
// retryable, the rest are not.
func NewBackendError(category ErrorCategory, backend, message string, underlying error) *BackendError {
	retryable := category == ErrorTimeout ||
		category == ErrorOutage ||
		category == ErrorRateLimited

	return &BackendError{
		Category:   category,
		Backend:    backend,
		Message:    message,
		Underlying: underlying,
		Retryable:  retryable,
	}
}

// IsRetryable checks if an error is worth retrying against the same backend.
func IsRetryable(err error) bool {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Retryable
	}
	return false
}

// GetCategory extracts the error category from an error.
func GetCategory(err error) ErrorCategory {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Category
	}
	return ErrorInternal
}
