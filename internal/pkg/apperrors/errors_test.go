package apperrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPreconditionError(t *testing.T) {
	cause := errors.New("no candidates")

	err := NewPreconditionError(cause)

	require.ErrorIs(t, err, ErrPreconditionFailed)
	require.ErrorIs(t, err, cause)
	assert.Equal(t, "precondition failed: no candidates", err.Error())
}

func TestCustomError(t *testing.T) {
	err := NewCustomError(ErrCandidateNotFound, "candidate 7 not found").
		WithDetails(map[string]interface{}{"id": 7})

	require.ErrorIs(t, err, ErrCandidateNotFound)
	assert.Equal(t, "candidate 7 not found", err.Error())
	assert.Equal(t, 7, err.Details["id"])

	assert.Equal(t, "resource not found", (&CustomError{Err: ErrResourceNotFound}).Error())
	assert.Equal(t, "unknown error", (&CustomError{}).Error())
}

func TestNewStaleDraftError(t *testing.T) {
	err := NewStaleDraftError([]int64{3, 9})

	require.ErrorIs(t, err, ErrDraftStale)
	var custom *CustomError
	require.ErrorAs(t, err, &custom)
	assert.Equal(t, []int64{3, 9}, custom.Details["candidateIds"])
	assert.Contains(t, err.Error(), "2 candidate(s)")
}
