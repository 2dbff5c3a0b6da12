// Package errors defines the sentinel errors shared by the engine, the
// artifact layer and the HTTP handlers, and maps them to status codes.
// Import it as apperrors.
package errors

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnknownVariant  = errors.New("unknown variant")
	ErrArtifactMissing = errors.New("artifact missing")
	ErrShapeMismatch   = errors.New("vector shape mismatch")
	ErrUnavailable     = errors.New("dependency unavailable")
	ErrInternal        = errors.New("internal error")
	ErrTimeout         = errors.New("operation timed out")
)

// AppError pins an explicit status and a client-facing message on a
// sentinel.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{Err: sentinel, Message: message, StatusCode: statusCode}
}

func (e *AppError) Error() string {
	return e.Err.Error() + ": " + e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// statusBySentinel is checked in order; the first match in the chain wins.
var statusBySentinel = []struct {
	err  error
	code int
}{
	{ErrInvalidInput, http.StatusBadRequest},
	{ErrNotFound, http.StatusNotFound},
	{ErrShapeMismatch, http.StatusUnprocessableEntity},
	{ErrTimeout, http.StatusServiceUnavailable},
	{ErrUnavailable, http.StatusServiceUnavailable},
}

// HTTPStatusCode picks the response status for err: an AppError's own code,
// else its sentinel's, else 500. A missing artifact is a server fault.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			return s.code
		}
	}
	return http.StatusInternalServerError
}
