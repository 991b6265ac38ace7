package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBatchResultRecords(t *testing.T) {
	b := NewBatchResult()
	b.RecordSuccess(1)
	b.RecordFailure(2, errors.New("boom"))
	b.RecordFailure(3, nil)

	assert.Equal(t, 1, b.SuccessCount())
	assert.Equal(t, 2, b.FailureCount())
	assert.Equal(t, []int64{2, 3}, b.FailedIDs())
	assert.Equal(t, "boom", b.Failed[0].Error)
}

func TestBatchResultMerge(t *testing.T) {
	b := NewBatchResult()
	b.RecordSuccess(1)
	b.RecordFailure(2, errors.New("a"))
	b.RecordFailure(3, errors.New("b"))
	b.RecordFailure(4, errors.New("c"))

	retry := NewBatchResult()
	retry.RecordSuccess(2)
	retry.RecordFailure(3, errors.New("again"))

	b.Merge(retry)

	assert.Equal(t, []int64{1, 2}, b.Succeeded)
	assert.Equal(t, []int64{4, 3}, b.FailedIDs())
	assert.Equal(t, "again", b.Failed[1].Error)

	b.Merge(nil)
	assert.Len(t, b.Succeeded, 2)
}

func TestGenderAndStatus(t *testing.T) {
	assert.True(t, GenderMale.IsValid())
	assert.False(t, Gender("X").IsValid())
	assert.True(t, StatusAccepted.IsValid())
	assert.False(t, AdmissionStatus("waitlist").IsValid())
}

func TestNewStudentFromCandidate(t *testing.T) {
	class, nis := "7A", "25.26.07.001"
	c := &Candidate{ID: 9, FullName: "Siti", Gender: GenderFemale, AcademicYear: "2025/2026", ClassName: &class, NIS: &nis}

	s := NewStudentFromCandidate(c)

	assert.Equal(t, "25.26.07.001", s.NIS)
	assert.Equal(t, "7A", s.ClassName)
	assert.True(t, s.Active)
	if assert.NotNil(t, s.SourceCandidateID) {
		assert.Equal(t, int64(9), *s.SourceCandidateID)
	}
	assert.True(t, c.IsPlaced())
}
