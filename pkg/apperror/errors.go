package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrBadRequest        = errors.New("bad request")
	ErrInvalidInput      = errors.New("invalid input")
	ErrAlreadyExists     = errors.New("already exists")
	ErrInternal          = errors.New("internal server error")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// AppError carries a client-facing message on top of one of the sentinels
// above. The message is what ends up in the {"error": ...} body.
type AppError struct {
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return ErrInternal.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New wraps kind with a message shown to the caller.
func New(kind error, message string) *AppError {
	return &AppError{Message: message, Err: kind}
}

func NotFound(format string, args ...any) error {
	return New(ErrNotFound, fmt.Sprintf(format, args...))
}

func Forbidden(format string, args ...any) error {
	return New(ErrForbidden, fmt.Sprintf(format, args...))
}

func BadRequest(format string, args ...any) error {
	return New(ErrBadRequest, fmt.Sprintf(format, args...))
}

func Unauthorized(format string, args ...any) error {
	return New(ErrUnauthorized, fmt.Sprintf(format, args...))
}

func AlreadyExists(format string, args ...any) error {
	return New(ErrAlreadyExists, fmt.Sprintf(format, args...))
}

// MapErrorToStatus maps common errors to HTTP status codes
func MapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrInvalidInput), errors.Is(err, ErrAlreadyExists):
		// duplicates are reported as plain validation failures
		return http.StatusBadRequest
	case errors.Is(err, ErrRateLimitExceeded):
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// PublicMessage returns the text safe to show to a client. Internal errors
// never leak their cause.
func PublicMessage(err error, fallback string) string {
	if MapErrorToStatus(err) == http.StatusInternalServerError {
		return fallback
	}
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return err.Error()
}
