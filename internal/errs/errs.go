package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel values for the error taxonomy. Every ApiErr unwraps to one of them,
// so callers can use errors.Is regardless of the message.
var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrStorage         = errors.New("storage failure")
	ErrExternalService = errors.New("external service failure")
	ErrInternal        = errors.New("internal server error")
)

// ApiErr is an error that knows which HTTP status it maps to.
type ApiErr struct {
	StatusCode int
	kind       error
	Message    string // user-facing message
	Field      string // field that caused the error (for validation errors)
	Cause      error  // the underlying cause of the error
}

func (e *ApiErr) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes both the taxonomy sentinel and the cause to errors.Is/As.
func (e *ApiErr) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.kind, e.Cause}
	}
	return []error{e.kind}
}

// Unauthorized reports a missing or mismatched credential.
func Unauthorized(message string) *ApiErr {
	return &ApiErr{StatusCode: http.StatusUnauthorized, kind: ErrUnauthorized, Message: message}
}

// Forbidden reports an authenticated caller without permission.
func Forbidden(message string) *ApiErr {
	return &ApiErr{StatusCode: http.StatusForbidden, kind: ErrForbidden, Message: message}
}

// Validation reports a bad request payload.
func Validation(message string) *ApiErr {
	return &ApiErr{StatusCode: http.StatusBadRequest, kind: ErrValidation, Message: message}
}

// MissingField reports a required field that was empty.
func MissingField(field string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		kind:       ErrValidation,
		Message:    fmt.Sprintf("%s is required", field),
		Field:      field,
	}
}

// InvalidField reports a field whose value is not acceptable.
func InvalidField(field, reason string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		kind:       ErrValidation,
		Message:    fmt.Sprintf("invalid %s: %s", field, reason),
		Field:      field,
	}
}

// NotFound reports a missing document.
func NotFound(entity string, id int64) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusNotFound,
		kind:       ErrNotFound,
		Message:    fmt.Sprintf("%s %d not found", entity, id),
	}
}

// Storage wraps a file I/O failure.
func Storage(operation, collection string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		kind:       ErrStorage,
		Message:    fmt.Sprintf("failed to %s %s", operation, collection),
		Cause:      cause,
	}
}

// ExternalService wraps a failure of a third-party API.
func ExternalService(service string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadGateway,
		kind:       ErrExternalService,
		Message:    fmt.Sprintf("%s request failed", service),
		Cause:      cause,
	}
}

// Internal wraps anything else.
func Internal(message string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		kind:       ErrInternal,
		Message:    message,
		Cause:      cause,
	}
}

// From converts any error into an ApiErr, treating unknown errors as internal.
func From(err error) *ApiErr {
	var apiErr *ApiErr
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Internal("an unexpected error occurred", err)
}

// StatusCode returns the HTTP status an error maps to.
func StatusCode(err error) int {
	return From(err).StatusCode
}

func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsStorage(err error) bool {
	return errors.Is(err, ErrStorage)
}

func IsExternalService(err error) bool {
	return errors.Is(err, ErrExternalService)
}
