package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yigit/spmb/internal/app/distribution"
	"github.com/yigit/spmb/internal/app/models/dto"
	"github.com/yigit/spmb/internal/pkg/apperrors"
)

func TestResolveError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   dto.ErrorCode
	}{
		{"candidate not found", fmt.Errorf("get: %w", apperrors.ErrCandidateNotFound), http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"draft not found", apperrors.ErrDraftNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"stale reference", distribution.ErrStaleReference, http.StatusConflict, dto.ErrorCodeConflict},
		{"finalized", apperrors.ErrDraftFinalized, http.StatusConflict, dto.ErrorCodeConflict},
		{"empty roster", apperrors.NewPreconditionError(distribution.ErrEmptyRoster), http.StatusUnprocessableEntity, dto.ErrorCodePreconditionFailed},
		{"exhausted", distribution.ErrIdentifierSpaceExhausted, http.StatusUnprocessableEntity, dto.ErrorCodePreconditionFailed},
		{"same class", distribution.ErrSameClass, http.StatusUnprocessableEntity, dto.ErrorCodePreconditionFailed},
		{"bad request", apperrors.NewBadRequestError("missing file"), http.StatusBadRequest, dto.ErrorCodeBadRequest},
		{"expired token", apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken},
		{"stale draft", apperrors.NewStaleDraftError([]int64{4}), http.StatusConflict, dto.ErrorCodeConflict},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, detail := ResolveError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, detail.Code)
		})
	}
}

func TestResolveErrorMessages(t *testing.T) {
	_, detail := ResolveError(apperrors.NewBadRequestError("missing file"))
	assert.Equal(t, "missing file", detail.Message)

	_, detail = ResolveError(fmt.Errorf("candidate 7: %w", distribution.ErrStaleReference))
	assert.Equal(t, "candidate 7: candidate is no longer in the expected class", detail.Details)

	_, detail = ResolveError(apperrors.NewStaleDraftError([]int64{1, 4}))
	assert.Equal(t, "2 candidate(s) in the draft are no longer accepted and unassigned", detail.Message)
	assert.Equal(t, map[string]interface{}{"candidateIds": []int64{1, 4}}, detail.Details)

	_, detail = ResolveError(errors.New("pq: password authentication failed"))
	assert.Nil(t, detail.Details)
}
