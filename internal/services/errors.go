package services

import (
	"errors"

	apperrors "github.com/prepdeck/examprep-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")

	// Test catalog errors
	ErrTestNotFound     = errors.New("test not found")
	ErrEmptyQuestionSet = errors.New("test has no questions")
	ErrTestNotPublished = errors.New("test is not published")

	// Attempt errors
	ErrAttemptNotFound         = errors.New("attempt not found")
	ErrAttemptAlreadySubmitted = errors.New("attempt already submitted")
	ErrAttemptInProgress       = errors.New("an attempt for this test is already in progress")
	ErrAttemptAccessDenied     = errors.New("access denied to attempt")

	// Result errors
	ErrResultNotFound     = errors.New("result not found")
	ErrResultAccessDenied = errors.New("access denied to result")
)

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrTestNotFound) ||
		errors.Is(err, ErrAttemptNotFound) ||
		errors.Is(err, ErrResultNotFound)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrAttemptAccessDenied) ||
		errors.Is(err, ErrResultAccessDenied)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrAttemptAlreadySubmitted) ||
		errors.Is(err, ErrAttemptInProgress)
}

// IsLoadFailure reports load-time failures that must block an attempt from
// ever starting.
func IsLoadFailure(err error) bool {
	return errors.Is(err, ErrTestNotFound) ||
		errors.Is(err, ErrEmptyQuestionSet) ||
		errors.Is(err, ErrTestNotPublished)
}
