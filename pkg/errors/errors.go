// Package errors defines the sentinel errors shared by the search engine
// and the HTTP service, plus a small AppError type that carries an HTTP
// status code across layer boundaries.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidArgument covers negative or duplicate document ids on add.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidWord is returned when a document token or stop word
	// contains a control byte below 0x20.
	ErrInvalidWord = errors.New("word contains invalid characters")
	// ErrInvalidQuery is returned for malformed query tokens: empty after
	// stripping '-', a double minus, or invalid bytes.
	ErrInvalidQuery = errors.New("invalid search query")
	// ErrOutOfRange is returned by Match for an unknown document id.
	ErrOutOfRange = errors.New("document id out of range")

	ErrRateLimited = errors.New("rate limit exceeded")
	ErrInternal    = errors.New("internal error")
)

type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// HTTPStatusCode maps an error to the HTTP status the service should
// respond with.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrInvalidArgument),
		errors.Is(err, ErrInvalidWord),
		errors.Is(err, ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, ErrOutOfRange):
		return http.StatusNotFound
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
