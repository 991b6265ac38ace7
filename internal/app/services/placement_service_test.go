package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/spmb/internal/app/distribution"
	"github.com/yigit/spmb/internal/pkg/apperrors"
)

func TestCommitContinuesPastFailures(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	seeded := env.seedAccepted(t, 2, 1)

	placements := []distribution.Placement{
		{CandidateID: seeded[0].ID, ClassName: "7A", NIS: "25.26.07.001"},
		{CandidateID: seeded[1].ID, ClassName: "7A", NIS: "25.26.07.001"},
		{CandidateID: 404, ClassName: "7B", NIS: "25.26.07.002"},
		{CandidateID: seeded[2].ID, ClassName: "7B", NIS: "25.26.07.003"},
	}

	result := env.placement.Commit(ctx, placements)

	assert.Equal(t, []int64{seeded[0].ID, seeded[2].ID}, result.Succeeded)
	assert.Equal(t, []int64{seeded[1].ID, 404}, result.FailedIDs())
	assert.Contains(t, result.Failed[0].Error, apperrors.ErrNISAlreadyExists.Error())
}

func TestCommitCancelledContext(t *testing.T) {
	env := newTestEnv(t)
	seeded := env.seedAccepted(t, 1, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := env.placement.Commit(ctx, []distribution.Placement{{CandidateID: seeded[0].ID, ClassName: "7A", NIS: "25.26.07.001"}})

	assert.Empty(t, result.Succeeded)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, context.Canceled.Error(), result.Failed[0].Error)
}

func TestTransferToRoster(t *testing.T) {
	ctx := context.Background()

	t.Run("copies placed candidates once", func(t *testing.T) {
		env := newTestEnv(t)
		seeded := env.seedAccepted(t, 2, 1)
		require.NoError(t, env.candidates.UpdatePlacement(ctx, seeded[0].ID, "7A", "25.26.07.001"))
		require.NoError(t, env.candidates.UpdatePlacement(ctx, seeded[2].ID, "7B", "25.26.07.002"))

		result, err := env.placement.TransferToRoster(ctx, "")
		require.NoError(t, err)
		assert.ElementsMatch(t, []int64{seeded[0].ID, seeded[2].ID}, result.Succeeded)
		assert.Empty(t, result.Failed)

		students := env.roster.Students()
		require.Len(t, students, 2)
		assert.Equal(t, "25.26.07.001", students[0].NIS)
		assert.Equal(t, "7A", students[0].ClassName)
		assert.True(t, students[0].Active)
		require.NotNil(t, students[0].SourceCandidateID)
		assert.Equal(t, seeded[0].ID, *students[0].SourceCandidateID)

		again, err := env.placement.TransferToRoster(ctx, testYear)
		require.NoError(t, err)
		assert.Empty(t, again.Succeeded)
		assert.Len(t, env.roster.Students(), 2)

		roster, err := env.placement.ListRoster(ctx, "", "7B")
		require.NoError(t, err)
		assert.Equal(t, testYear, roster.AcademicYear)
		require.Equal(t, 1, roster.Total)
		assert.Equal(t, "25.26.07.002", roster.Students[0].NIS)

		other, err := env.placement.ListRoster(ctx, "2030/2031", "")
		require.NoError(t, err)
		assert.Empty(t, other.Students)
	})

	t.Run("failed record stays unmarked", func(t *testing.T) {
		env := newTestEnv(t)
		seeded := env.seedAccepted(t, 1, 1)
		require.NoError(t, env.candidates.UpdatePlacement(ctx, seeded[0].ID, "7A", "25.26.07.001"))
		require.NoError(t, env.candidates.UpdatePlacement(ctx, seeded[1].ID, "7A", "25.26.07.002"))
		env.roster.FailTransfer[seeded[0].ID] = errors.New("deadlock detected")

		result, err := env.placement.TransferToRoster(ctx, testYear)
		require.NoError(t, err)
		assert.Equal(t, []int64{seeded[1].ID}, result.Succeeded)
		require.Len(t, result.Failed, 1)
		assert.Equal(t, "deadlock detected", result.Failed[0].Error)

		stored, err := env.candidates.GetByID(ctx, seeded[0].ID)
		require.NoError(t, err)
		assert.False(t, stored.Transferred)

		delete(env.roster.FailTransfer, seeded[0].ID)
		retry, err := env.placement.TransferToRoster(ctx, testYear)
		require.NoError(t, err)
		assert.Equal(t, []int64{seeded[0].ID}, retry.Succeeded)
	})

	t.Run("invalid year", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.placement.TransferToRoster(ctx, "2025-2026")
		assert.ErrorIs(t, err, distribution.ErrInvalidYearPair)

		_, err = env.placement.ListRoster(ctx, "2025/2025", "")
		assert.ErrorIs(t, err, distribution.ErrInvalidYearPair)
	})
}
