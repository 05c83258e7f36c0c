package errors

import "fmt"

// Error is a domain error carrying a stable machine-readable code.
//
// The Message field is developer-facing; user-facing text is produced by
// formatting the code through the i18n catalog at the transport boundary.
type Error struct {
	// Code identifies the failure so monitoring can disambiguate cause
	// without parsing messages.
	Code Code
	// Message is a developer-facing description of the failure.
	Message string
	// Metadata carries values interpolated into catalog messages.
	Metadata map[string]string

	cause error
}

// New creates a domain error with the given code and developer message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a domain error with a formatted developer message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithMetadata attaches metadata for catalog message interpolation.
func (e *Error) WithMetadata(metadata map[string]string) *Error {
	e.Metadata = metadata
	return e
}

// Wrap records the underlying cause for errors.Is/As chains.
func (e *Error) Wrap(cause error) *Error {
	e.cause = cause
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches errors by code so sentinel comparisons work across wrapping.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == other.Code
}
