// Package apperrors defines the error taxonomy surfaced to API clients.
// Infrastructure errors are not represented here; they are wrapped with
// fmt.Errorf and propagate unchanged.
package apperrors

import "fmt"

// Kind classifies a client-facing error
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
)

// Error carries a machine-readable kind, a technical message and an optional
// localized (Vietnamese) message for end users.
type Error struct {
	Kind             Kind   `json:"kind"`
	Message          string `json:"message"`
	LocalizedMessage string `json:"localizedMessage,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Validation builds a validation error.
func Validation(message, localized string) *Error {
	return &Error{Kind: KindValidation, Message: message, LocalizedMessage: localized}
}

// NotFound builds a not-found error.
func NotFound(message, localized string) *Error {
	return &Error{Kind: KindNotFound, Message: message, LocalizedMessage: localized}
}

// Conflict builds a conflict error.
func Conflict(message, localized string) *Error {
	return &Error{Kind: KindConflict, Message: message, LocalizedMessage: localized}
}

// Validationf builds a validation error without a localized message.
func Validationf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf builds a not-found error without a localized message.
func NotFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflictf builds a conflict error without a localized message.
func Conflictf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}
