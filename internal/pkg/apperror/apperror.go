package apperror

import "errors"

// Kind classifies an AppError so callers can react without parsing messages.
// The presentation layer decides which transport code each kind maps to.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindForbidden    Kind = "forbidden"
	KindUnauthorized Kind = "unauthorized"
	KindStore        Kind = "store"
)

// AppError is a custom error type that includes a machine-readable kind.
type AppError struct {
	Kind    Kind   // Error classification (e.g., validation, conflict)
	Message string // User-facing error message
	Err     error  // The underlying error, if any (not exposed to user)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with a kind and message.
func New(kind Kind, message string) *AppError {
	return &AppError{
		Kind:    kind,
		Message: message,
	}
}

// Wrap creates a new AppError wrapping an existing error.
func Wrap(err error, kind Kind, message string) *AppError {
	return &AppError{
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

func Validation(message string) *AppError { return New(KindValidation, message) }

func NotFound(message string) *AppError { return New(KindNotFound, message) }

func Conflict(message string) *AppError { return New(KindConflict, message) }

func Forbidden(message string) *AppError { return New(KindForbidden, message) }

// Store wraps a persistence failure. The cause is kept for logging only.
func Store(err error, message string) *AppError { return Wrap(err, KindStore, message) }

// KindOf returns the kind of the first AppError in err's chain.
// Errors that are not AppErrors are reported as store failures.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindStore
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// AsStore passes AppErrors through untouched and wraps anything else as a store failure.
func AsStore(err error, message string) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	return Store(err, message)
}
