package api

import (
	"errors"
	"net/http"

	"github.com/ssl2010/englishlearn-api/internal/domain"
	"github.com/ssl2010/englishlearn-api/internal/grading"
	"github.com/ssl2010/englishlearn-api/internal/service"
	"github.com/ssl2010/englishlearn-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status
// codes based on the error type. This prevents leaking internal error types
// or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case store.IsNotFoundError(err):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrDuplicate),
		errors.Is(err, service.ErrInsufficientItems),
		errors.Is(err, service.ErrSessionNotGradable),
		errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, service.ErrInvalidParams),
		errors.Is(err, grading.ErrNoExpectedItems):
		return http.StatusBadRequest

	// Upstream grading provider failures
	case errors.Is(err, grading.ErrUngradeableResponse),
		errors.Is(err, grading.ErrTruncatedResponse),
		errors.Is(err, grading.ErrProviderUnavailable):
		return http.StatusBadGateway

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	// Not found errors
	case errors.Is(err, store.ErrStudentNotFound):
		return "Student not found"
	case errors.Is(err, store.ErrSessionNotFound):
		return "Practice session not found"
	case errors.Is(err, store.ErrSubmissionNotFound):
		return "Submission not found"
	case errors.Is(err, store.ErrItemNotFound):
		return "Knowledge item not found"
	case errors.Is(err, store.ErrSettingNotFound):
		return "Setting not found"
	case store.IsNotFoundError(err):
		return "Resource not found"

	// Conflict errors
	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"
	case errors.Is(err, service.ErrInsufficientItems):
		return "Not enough eligible items to generate the worksheet"
	case errors.Is(err, service.ErrSessionNotGradable),
		errors.Is(err, domain.ErrInvalidTransition):
		return "Session state does not allow this operation"

	// Bad request errors
	case errors.Is(err, service.ErrInvalidParams):
		return "Invalid request parameters"
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"
	case errors.Is(err, grading.ErrNoExpectedItems):
		return "Session has no items to grade"

	// Upstream grading provider failures
	case errors.Is(err, grading.ErrUngradeableResponse),
		errors.Is(err, grading.ErrTruncatedResponse):
		return "Grading provider returned an unusable response"
	case errors.Is(err, grading.ErrProviderUnavailable):
		return "Grading provider is unavailable"

	default:
		return "An unexpected error occurred"
	}
}
