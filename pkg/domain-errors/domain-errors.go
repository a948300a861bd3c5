package domainerrors

import "errors"

// Code represents a domain error category independent of transport layer.
// These codes describe what went wrong in business logic terms, not HTTP terms.
type Code string

const (
	CodeNotFound     Code = "not_found"
	CodeInvalidInput Code = "invalid_input"
	CodeInternal     Code = "internal_error"
	CodeTimeout      Code = "timeout"

	// CodeRemoteAPI marks a non-2xx or unparseable response from the
	// credential issuer API. The message carries the server-provided
	// explanation when one could be extracted from the body.
	CodeRemoteAPI Code = "remote_api"

	// Wallet connect failure classes. Each class produces a distinct
	// user-facing message; they are never collapsed into a generic error.
	CodeConnectionRejected Code = "connection_rejected"
	CodeConnectionTimeout  Code = "connection_timeout"
	CodeConnectionFailed   Code = "connection_failed"

	// CodeMissingPrerequisite marks an operation attempted without a
	// connected wallet or without an existing credential.
	CodeMissingPrerequisite Code = "missing_prerequisite"

	// Purchase pipeline failure classes.
	CodeTransferFailed             Code = "transfer_failed"
	CodeTransferVerificationFailed Code = "transfer_verification_failed"

	// CodeCacheParse marks a malformed cached credential record. Treated as
	// a hard failure surfaced to the user, never silently ignored.
	CodeCacheParse Code = "cache_parse"
)

// Error wraps domain or infrastructure failures with a stable code.
// It is transport-agnostic and can be used across service, store, and other layers.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

// Unwrap implements error unwrapping for error chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is enables errors.Is() to match errors by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new domain error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap creates a new domain error wrapping an existing error.
// If the wrapped error is already a domain error, the original code is preserved.
func Wrap(err error, code Code, msg string) error {
	var existing *Error
	if errors.As(err, &existing) {
		// Preserve the original domain code, update message
		return &Error{Code: existing.Code, Message: msg, Err: err}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode checks if an error is a domain error with the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
