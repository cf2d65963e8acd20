// Package apperrors defines the coded error type shared by the interaction engine.
package apperrors

import "errors"

// Code is a machine-readable error classification.
type Code string

const (
	// CodeDecode marks a malformed, legacy or unrecognized component token.
	CodeDecode Code = "DECODE"
	// CodeNotFound marks a click whose configuration or state cannot be resolved.
	CodeNotFound Code = "NOT_FOUND"
	// CodeValidation marks a configuration rejected before persistence.
	CodeValidation Code = "VALIDATION"
	// CodeTransientAdapter marks a failed call to the chat surface or the store.
	CodeTransientAdapter Code = "TRANSIENT_ADAPTER"
)

// Error is the domain error type with structured metadata.
type Error struct {
	Code     Code
	Message  string
	Metadata map[string]string
	Cause    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// Field returns the offending field recorded on a validation error.
func (e *Error) Field() string {
	return e.Metadata["field"]
}

// New creates a domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Validation creates a validation error naming the offending field.
func Validation(field, message string) *Error {
	return &Error{
		Code:     CodeValidation,
		Message:  message,
		Metadata: map[string]string{"field": field},
	}
}

// HasCode reports whether any error in err's chain carries code.
func HasCode(err error, code Code) bool {
	return errors.Is(err, &Error{Code: code})
}

// CodeOf returns the code of the first domain error in err's chain, or "".
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
