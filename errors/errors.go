package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// Domain signals. Handlers map these to HTTP statuses at the boundary;
	// everything below the transport layer wraps them with %w.
	ErrInvalidOperation = fmt.Errorf("invalid operation")
	ErrInvalidArgument  = fmt.Errorf("invalid argument")
	ErrNotFound         = fmt.Errorf("not found")
	ErrForbidden        = fmt.Errorf("forbidden")
	ErrConflict         = fmt.Errorf("conflict")
	ErrUnauthorized     = fmt.Errorf("unauthorized")

	// Auth specifics.
	ErrUserAlreadyExists  = fmt.Errorf("%w: username or email already exists", ErrConflict)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	ErrInvalidPassword    = fmt.Errorf("%w: password does not meet complexity requirements", ErrInvalidArgument)
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
)

// HTTPStatus converts a domain error into the status code exposed by the REST
// binding. Unknown errors are treated as internal so storage details never
// leak to clients.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidOperation), errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
