package apperrors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// Precondition errors: the request is well formed but cannot be applied
	ErrPreconditionFailed = errors.New("precondition failed")
)

// Candidate errors
var (
	ErrCandidateNotFound    = errors.New("candidate not found")
	ErrCandidateNotEligible = errors.New("candidate is not accepted or already placed")
)

// Roster errors
var (
	ErrNISAlreadyExists = errors.New("student NIS already exists")
)

// Draft errors
var (
	ErrDraftNotFound  = errors.New("distribution draft not found")
	ErrDraftFinalized = errors.New("distribution draft is already finalized")
	ErrNothingToRetry = errors.New("distribution draft has no failed placements")
	ErrDraftStale     = errors.New("distribution draft is out of date")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewPreconditionError marks a domain error as a rejected precondition.
// Both ErrPreconditionFailed and the original error stay matchable with errors.Is.
func NewPreconditionError(err error) error {
	return fmt.Errorf("%w: %w", ErrPreconditionFailed, err)
}

// NewStaleDraftError reports draft candidates that were placed or changed status
// after the draft was generated
func NewStaleDraftError(candidateIDs []int64) error {
	return NewCustomError(ErrDraftStale,
		fmt.Sprintf("%d candidate(s) in the draft are no longer accepted and unassigned", len(candidateIDs))).
		WithDetails(map[string]interface{}{"candidateIds": candidateIDs})
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}
