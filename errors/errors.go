package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrStoreUnavailable = fmt.Errorf("message store unavailable")
	ErrMalformedStore   = fmt.Errorf("message store is malformed")
	ErrInvalidRecord    = fmt.Errorf("invalid message record")
	ErrWriteFailed      = fmt.Errorf("attachment write failed")
	ErrUnknownKind      = fmt.Errorf("unknown attachment kind")
	ErrUnsupportedMedia = fmt.Errorf("unsupported attachment media type")

	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrUnauthorized       = fmt.Errorf("unauthorized")

	ErrEmptyWords  = fmt.Errorf("no words have been found")
	ErrWorkerPanic = fmt.Errorf("worker panic")
)

// Is forwards to the standard library so callers importing this package keep errors.Is at hand.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

// HTTPStatus maps a domain error onto the status code returned to HTTP clients.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidRecord),
		errors.Is(err, ErrUnknownKind):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnsupportedMedia):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrStoreUnavailable),
		errors.Is(err, ErrWriteFailed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
