// Package apperror defines the application's error taxonomy and its mapping
// onto HTTP status codes.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation error")
	ErrConflict        = errors.New("conflict")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrRateLimited     = errors.New("rate limited")
	ErrPaymentRequired = errors.New("payment required")
	ErrUpstream        = errors.New("upstream service error")
)

type AppError struct {
	Err     error  // sentinel
	Message string // human-readable
	Field   string // optional: offending input field
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, message string) *AppError {
	return &AppError{Err: ErrConflict, Message: message, Field: resource}
}

func Forbidden(message string) *AppError {
	return &AppError{Err: ErrForbidden, Message: message}
}

func Unauthorized(message string) *AppError {
	return &AppError{Err: ErrUnauthorized, Message: message}
}

// RateLimited is returned when the AI gateway throttles the caller.
func RateLimited() *AppError {
	return &AppError{
		Err:     ErrRateLimited,
		Message: "Rate limit exceeded. Please try again later.",
	}
}

// PaymentRequired is returned when the AI gateway has no credits left.
func PaymentRequired() *AppError {
	return &AppError{
		Err:     ErrPaymentRequired,
		Message: "AI credits depleted. Please add funds to your workspace.",
	}
}

func Upstream(service string, err error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %w", ErrUpstream, err),
		Message: fmt.Sprintf("%s request failed", service),
	}
}

// HTTPStatus maps an error chain onto a response status. Unknown errors are 500.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrPaymentRequired):
		return http.StatusPaymentRequired
	}
	return http.StatusInternalServerError
}
