package apperror

import "net/http"

// Kind classifies an AppError independently of its message.
type Kind string

const (
	KindValidation        Kind = "validation_error"
	KindNotFound          Kind = "not_found"
	KindInactive          Kind = "inactive_resource"
	KindAvailability      Kind = "availability_conflict"
	KindPersistence       Kind = "persistence_conflict"
	KindInvalidTransition Kind = "invalid_state_transition"
	KindUnauthorized      Kind = "unauthorized"
	KindForbidden         Kind = "forbidden"
)

// Kind-only targets for errors.Is. Any AppError of the same kind matches them.
var (
	ErrValidation             = &AppError{Kind: KindValidation}
	ErrNotFound               = &AppError{Kind: KindNotFound}
	ErrInactive               = &AppError{Kind: KindInactive}
	ErrAvailabilityConflict   = &AppError{Kind: KindAvailability}
	ErrPersistenceConflict    = &AppError{Kind: KindPersistence}
	ErrInvalidStateTransition = &AppError{Kind: KindInvalidTransition}
)

// AppError is a custom error type that includes an HTTP status code, a machine
// readable kind and an optional wrapped cause.
type AppError struct {
	Code    int    // HTTP Status Code (e.g., 400, 404)
	Kind    Kind   // Stable error class exposed to clients
	Message string // User-facing error message
	Err     error  // The underlying error, if any (not exposed to user)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a kind-only AppError of the same kind, or an
// AppError with the same kind and message.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok || t.Kind != e.Kind {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

// New creates a new AppError with a status code and message.
func New(code int, kind Kind, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
	}
}

// Wrap creates a new AppError wrapping an existing error.
func Wrap(err error, code int, kind Kind, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Validation is a shorthand for a 400 validation error.
func Validation(message string) *AppError {
	return New(http.StatusBadRequest, KindValidation, message)
}

// NotFound is a shorthand for a 404 error.
func NotFound(message string) *AppError {
	return New(http.StatusNotFound, KindNotFound, message)
}

// Inactive is a shorthand for a resource that exists but is disabled.
func Inactive(message string) *AppError {
	return New(http.StatusUnprocessableEntity, KindInactive, message)
}
