package common

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is an error carrying the HTTP status and the client-facing message
// it should be rendered with. Err, when set, is the underlying cause and is
// never shown to the client.
type APIError struct {
	Status  int
	Message string
	Err     error
}

// Error appends the cause unless it is one of the taxonomy sentinels, which
// only restate the status.
func (e *APIError) Error() string {
	if e.Err != nil && !isKind(e.Err) {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func isKind(err error) bool {
	switch err {
	case ErrorValidation, ErrorUnauthorized, ErrorForbidden, ErrorNotFound, ErrorAlreadyExists, ErrorRateLimited:
		return true
	}
	return false
}

func (e *APIError) Unwrap() error { return e.Err }

// NewAPIError builds an APIError with the given status and message.
func NewAPIError(status int, message string, cause error) *APIError {
	return &APIError{Status: status, Message: message, Err: cause}
}

func BadRequest(message string) *APIError {
	return NewAPIError(http.StatusBadRequest, message, ErrorValidation)
}

func Unauthorized(message string) *APIError {
	return NewAPIError(http.StatusUnauthorized, message, ErrorUnauthorized)
}

func Forbidden(message string) *APIError {
	return NewAPIError(http.StatusForbidden, message, ErrorForbidden)
}

func NotFound(message string) *APIError {
	return NewAPIError(http.StatusNotFound, message, ErrorNotFound)
}

func Conflict(message string) *APIError {
	return NewAPIError(http.StatusConflict, message, ErrorAlreadyExists)
}

func TooManyRequests(message string) *APIError {
	return NewAPIError(http.StatusTooManyRequests, message, ErrorRateLimited)
}

func Internal(message string, cause error) *APIError {
	return NewAPIError(http.StatusInternalServerError, message, cause)
}

// StatusOf resolves the HTTP status and client message for err.
// Unknown errors collapse to 500 so internals never leak.
func StatusOf(err error) (int, string) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status, apiErr.Message
	}

	switch {
	case errors.Is(err, ErrorNotFound):
		return http.StatusNotFound, "resource not found"
	case errors.Is(err, ErrorAlreadyExists):
		return http.StatusConflict, "resource already exists"
	case errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrRefreshTokenRevoked),
		errors.Is(err, ErrorUnauthorized):
		return http.StatusUnauthorized, "unauthorized request"
	case errors.Is(err, ErrorForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, ErrorValidation):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, ErrorRateLimited):
		return http.StatusTooManyRequests, "too many requests"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
