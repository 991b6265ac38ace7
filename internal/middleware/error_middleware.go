package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/spmb/internal/app/distribution"
	"github.com/yigit/spmb/internal/app/models/dto"
	"github.com/yigit/spmb/internal/pkg/apperrors"
	"github.com/yigit/spmb/internal/pkg/logger"
)

type errorMapping struct {
	target  error
	status  int
	code    dto.ErrorCode
	message string
}

// Checked in order; the first match wins.
var errorMappings = []errorMapping{
	{apperrors.ErrCandidateNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Candidate not found"},
	{apperrors.ErrDraftNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Distribution draft not found"},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},

	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},

	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Bad request"},

	{distribution.ErrStaleReference, http.StatusConflict, dto.ErrorCodeConflict, "Candidate is no longer in the expected class"},
	{distribution.ErrCandidateNotPlaced, http.StatusConflict, dto.ErrorCodeConflict, "Candidate is not in the distribution"},
	{apperrors.ErrDraftFinalized, http.StatusConflict, dto.ErrorCodeConflict, "Distribution draft is already finalized"},
	{apperrors.ErrDraftStale, http.StatusConflict, dto.ErrorCodeConflict, "Distribution draft is out of date"},
	{apperrors.ErrNISAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Student NIS already exists"},
	{apperrors.ErrResourceAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists"},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeConflict, "Conflict"},

	{distribution.ErrEmptyRoster, http.StatusUnprocessableEntity, dto.ErrorCodePreconditionFailed, "No unassigned accepted candidates to distribute"},
	{distribution.ErrIdentifierSpaceExhausted, http.StatusUnprocessableEntity, dto.ErrorCodePreconditionFailed, "More than 999 candidates cannot be numbered in one run"},
	{distribution.ErrInvalidYearPair, http.StatusUnprocessableEntity, dto.ErrorCodePreconditionFailed, "Academic year must look like 2025/2026"},
	{distribution.ErrInvalidGradeMarker, http.StatusUnprocessableEntity, dto.ErrorCodePreconditionFailed, "Grade marker must be two digits"},
	{distribution.ErrUnknownClass, http.StatusUnprocessableEntity, dto.ErrorCodePreconditionFailed, "Class is not part of the distribution"},
	{distribution.ErrSameClass, http.StatusUnprocessableEntity, dto.ErrorCodePreconditionFailed, "Both candidates are in the same class"},
	{apperrors.ErrCandidateNotEligible, http.StatusUnprocessableEntity, dto.ErrorCodePreconditionFailed, "Candidate is not accepted or already placed"},
	{apperrors.ErrNothingToRetry, http.StatusUnprocessableEntity, dto.ErrorCodePreconditionFailed, "There are no failed placements to retry"},
	{apperrors.ErrPreconditionFailed, http.StatusUnprocessableEntity, dto.ErrorCodePreconditionFailed, "Precondition failed"},
}

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	status, detail := ResolveError(err)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		if gin.IsDebugging() {
			detail = detail.WithDebugInfo("%v", err)
		}
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

// ResolveError maps err onto an HTTP status and error body
func ResolveError(err error) (int, *dto.ErrorDetail) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		detail := dto.NewErrorDetail(m.code, m.message)

		var custom *apperrors.CustomError
		if errors.As(err, &custom) && custom.Message != "" {
			detail.Message = custom.Message
			if custom.Details != nil {
				detail = detail.WithDetails(custom.Details)
			}
		} else if err.Error() != m.target.Error() {
			detail = detail.WithDetails(err.Error())
		}
		return m.status, detail
	}

	return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error").
		WithSeverity(dto.ErrorSeverityCritical)
}
