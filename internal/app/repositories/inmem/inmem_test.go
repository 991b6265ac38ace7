package inmem

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/spmb/internal/app/models"
	"github.com/yigit/spmb/internal/pkg/apperrors"
)

func seed(t *testing.T, s *CandidateStore, name string, status models.AdmissionStatus) *models.Candidate {
	t.Helper()
	c := &models.Candidate{FullName: name, Gender: models.GenderMale, Status: status, AcademicYear: "2025/2026"}
	require.NoError(t, s.Create(context.Background(), c))
	return c
}

func TestCandidateStorePlacement(t *testing.T) {
	ctx := context.Background()
	s := NewCandidateStore()
	a := seed(t, s, "Andi", models.StatusAccepted)
	b := seed(t, s, "Budi", models.StatusAccepted)
	p := seed(t, s, "Cici", models.StatusPending)

	require.NoError(t, s.UpdatePlacement(ctx, a.ID, "7A", "25.26.07.001"))
	assert.ErrorIs(t, s.UpdatePlacement(ctx, a.ID, "7B", "25.26.07.004"), apperrors.ErrCandidateNotEligible)
	placed, err := s.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "7A", *placed.ClassName)
	assert.Equal(t, "25.26.07.001", *placed.NIS)
	assert.ErrorIs(t, s.UpdatePlacement(ctx, b.ID, "7B", "25.26.07.001"), apperrors.ErrNISAlreadyExists)
	assert.ErrorIs(t, s.UpdatePlacement(ctx, p.ID, "7B", "25.26.07.002"), apperrors.ErrCandidateNotEligible)
	assert.ErrorIs(t, s.UpdatePlacement(ctx, 99, "7B", "25.26.07.003"), apperrors.ErrCandidateNotFound)

	unassigned, err := s.ListUnassignedAccepted(ctx, "2025/2026")
	require.NoError(t, err)
	require.Len(t, unassigned, 1)
	assert.Equal(t, b.ID, unassigned[0].ID)

	assert.ErrorIs(t, s.UpdateStatus(ctx, a.ID, models.StatusRejected), apperrors.ErrCandidateNotEligible)
}

func TestCandidateStoreList(t *testing.T) {
	ctx := context.Background()
	s := NewCandidateStore()
	for _, name := range []string{"Andi", "Budi", "Cici", "Dedi"} {
		seed(t, s, name, models.StatusAccepted)
	}

	page, total, err := s.List(ctx, models.CandidateFilter{Offset: 2, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	require.Len(t, page, 1)
	assert.Equal(t, "Cici", page[0].FullName)

	found, total, err := s.List(ctx, models.CandidateFilter{Search: "ud"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Budi", found[0].FullName)
}

func TestRosterTransfer(t *testing.T) {
	ctx := context.Background()
	s := NewCandidateStore()
	r := NewRosterStore(s)
	a := seed(t, s, "Andi", models.StatusAccepted)
	b := seed(t, s, "Budi", models.StatusAccepted)
	require.NoError(t, s.UpdatePlacement(ctx, a.ID, "7A", "25.26.07.001"))
	require.NoError(t, s.UpdatePlacement(ctx, b.ID, "7A", "25.26.07.002"))
	r.FailTransfer[b.ID] = errors.New("connection reset")

	a, _ = s.GetByID(ctx, a.ID)
	b, _ = s.GetByID(ctx, b.ID)
	now := time.Now()

	require.NoError(t, r.TransferCandidate(ctx, a, now))
	require.Error(t, r.TransferCandidate(ctx, b, now))

	stored, _ := s.GetByID(ctx, b.ID)
	assert.False(t, stored.Transferred)
	stored, _ = s.GetByID(ctx, a.ID)
	assert.True(t, stored.Transferred)

	assert.ErrorIs(t, r.TransferCandidate(ctx, a, now), apperrors.ErrConflict)
	assert.Len(t, r.Students(), 1)
}
