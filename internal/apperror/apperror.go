package apperror

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound        = errors.New("resource not found")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("already in use")
	ErrValidation      = errors.New("invalid input")
)

// Status maps the error taxonomy to HTTP status codes.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Message returns a short human-readable reason for the error without leaking
// internal detail. Unknown errors collapse to a generic message.
func Message(err error) string {
	for _, kind := range []error{ErrNotFound, ErrUnauthenticated, ErrForbidden, ErrConflict, ErrValidation} {
		if errors.Is(err, kind) {
			return err.Error()
		}
	}
	return "something went wrong"
}
