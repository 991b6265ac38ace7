package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/spmb/internal/app/distribution"
	"github.com/yigit/spmb/internal/app/models"
	"github.com/yigit/spmb/internal/app/models/dto"
	"github.com/yigit/spmb/internal/pkg/apperrors"
)

func TestGenerateDraft(t *testing.T) {
	ctx := context.Background()

	t.Run("empty roster", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.distribution.GenerateDraft(ctx, nil)

		require.ErrorIs(t, err, distribution.ErrEmptyRoster)
		require.ErrorIs(t, err, apperrors.ErrPreconditionFailed)
		assert.Equal(t, 0, env.drafts.Len())
	})

	t.Run("balanced classes", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedAccepted(t, 7, 5)

		draft, err := env.distribution.GenerateDraft(ctx, &dto.GenerateDistributionRequest{ClassCount: intPtr(4)})

		require.NoError(t, err)
		assert.Equal(t, 12, draft.Total)
		require.Len(t, draft.Classes, 4)
		for _, class := range draft.Classes {
			assert.Contains(t, []int{1, 2}, class.Male)
			assert.Contains(t, []int{1, 2}, class.Female)
		}
		assert.Equal(t, "7A", draft.Classes[0].ClassName)
		assert.Equal(t, "7D", draft.Classes[3].ClassName)
	})

	t.Run("class count clamped", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedAccepted(t, 2, 1)

		draft, err := env.distribution.GenerateDraft(ctx, &dto.GenerateDistributionRequest{ClassCount: intPtr(40)})

		require.NoError(t, err)
		assert.Len(t, draft.Classes, distribution.MaxClassCount)
	})

	t.Run("default class count", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedAccepted(t, 3, 3)

		draft, err := env.distribution.GenerateDraft(ctx, &dto.GenerateDistributionRequest{})

		require.NoError(t, err)
		assert.Len(t, draft.Classes, DefaultClassCount)
	})

	t.Run("skips placed and unaccepted candidates", func(t *testing.T) {
		env := newTestEnv(t)
		seeded := env.seedAccepted(t, 2, 2)
		require.NoError(t, env.candidates.UpdatePlacement(ctx, seeded[0].ID, "7A", "25.26.07.001"))
		require.NoError(t, env.candidates.Create(ctx, &models.Candidate{
			FullName: "Pending", Gender: models.GenderMale, Status: models.StatusPending, AcademicYear: testYear,
		}))

		draft, err := env.distribution.GenerateDraft(ctx, &dto.GenerateDistributionRequest{ClassCount: intPtr(2)})

		require.NoError(t, err)
		assert.Equal(t, 3, draft.Total)
	})
}

func classOf(t *testing.T, draft *dto.DraftResponse, candidateID int64) string {
	t.Helper()
	for _, class := range draft.Classes {
		for _, c := range class.Candidates {
			if c.ID == candidateID {
				return class.ClassName
			}
		}
	}
	return ""
}

func TestDraftEditing(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	seeded := env.seedAccepted(t, 4, 4)
	draft, err := env.distribution.GenerateDraft(ctx, &dto.GenerateDistributionRequest{ClassCount: intPtr(2)})
	require.NoError(t, err)

	first := seeded[0].ID
	from := classOf(t, draft, first)
	to := "7A"
	if from == "7A" {
		to = "7B"
	}

	t.Run("move then undo and redo", func(t *testing.T) {
		moved, err := env.distribution.MoveCandidate(ctx, draft.ID, &dto.MoveCandidateRequest{CandidateID: first, FromClass: from, ToClass: to})
		require.NoError(t, err)
		assert.Equal(t, to, classOf(t, moved, first))
		assert.Equal(t, 8, moved.Total)
		assert.True(t, moved.CanUndo)

		undone, err := env.distribution.Undo(ctx, draft.ID)
		require.NoError(t, err)
		assert.Equal(t, from, classOf(t, undone, first))
		assert.Equal(t, draft.Classes, undone.Classes)
		assert.True(t, undone.CanRedo)

		redone, err := env.distribution.Redo(ctx, draft.ID)
		require.NoError(t, err)
		assert.Equal(t, to, classOf(t, redone, first))
		assert.False(t, redone.CanRedo)
	})

	t.Run("stale move", func(t *testing.T) {
		_, err := env.distribution.MoveCandidate(ctx, draft.ID, &dto.MoveCandidateRequest{CandidateID: first, FromClass: from, ToClass: to})
		assert.ErrorIs(t, err, distribution.ErrStaleReference)
	})

	t.Run("swap in same class refused", func(t *testing.T) {
		current, err := env.distribution.GetDraft(ctx, draft.ID)
		require.NoError(t, err)
		class := current.Classes[0]
		require.GreaterOrEqual(t, len(class.Candidates), 2)

		_, err = env.distribution.SwapCandidates(ctx, draft.ID, &dto.SwapCandidatesRequest{
			CandidateA: class.Candidates[0].ID, ClassA: class.ClassName,
			CandidateB: class.Candidates[1].ID, ClassB: class.ClassName,
		})
		assert.ErrorIs(t, err, distribution.ErrSameClass)
	})

	t.Run("swap across classes", func(t *testing.T) {
		current, err := env.distribution.GetDraft(ctx, draft.ID)
		require.NoError(t, err)
		a, b := current.Classes[0].Candidates[0], current.Classes[1].Candidates[0]

		swapped, err := env.distribution.SwapCandidates(ctx, draft.ID, &dto.SwapCandidatesRequest{
			CandidateA: a.ID, ClassA: "7A", CandidateB: b.ID, ClassB: "7B",
		})
		require.NoError(t, err)
		assert.Equal(t, b.ID, swapped.Classes[0].Candidates[0].ID)
		assert.Equal(t, a.ID, swapped.Classes[1].Candidates[0].ID)
	})

	t.Run("remove and add back", func(t *testing.T) {
		removed, err := env.distribution.RemoveCandidate(ctx, draft.ID, &dto.RemoveCandidateRequest{CandidateID: first})
		require.NoError(t, err)
		assert.Equal(t, 7, removed.Total)
		assert.Empty(t, classOf(t, removed, first))

		_, err = env.distribution.RemoveCandidate(ctx, draft.ID, &dto.RemoveCandidateRequest{CandidateID: first})
		assert.ErrorIs(t, err, distribution.ErrCandidateNotPlaced)

		added, err := env.distribution.AddCandidate(ctx, draft.ID, &dto.AddCandidateRequest{CandidateID: first, ClassName: "7B"})
		require.NoError(t, err)
		assert.Equal(t, 8, added.Total)
		last := added.Classes[1].Candidates[len(added.Classes[1].Candidates)-1]
		assert.Equal(t, first, last.ID)
	})

	t.Run("add to unknown class", func(t *testing.T) {
		_, err := env.distribution.AddCandidate(ctx, draft.ID, &dto.AddCandidateRequest{CandidateID: first, ClassName: "7Z"})
		assert.ErrorIs(t, err, distribution.ErrUnknownClass)
	})

	t.Run("add ineligible candidate", func(t *testing.T) {
		pending := &models.Candidate{FullName: "Pending", Gender: models.GenderFemale, Status: models.StatusPending, AcademicYear: testYear}
		require.NoError(t, env.candidates.Create(ctx, pending))

		_, err := env.distribution.AddCandidate(ctx, draft.ID, &dto.AddCandidateRequest{CandidateID: pending.ID, ClassName: "7A"})
		assert.ErrorIs(t, err, apperrors.ErrCandidateNotEligible)

		_, err = env.distribution.AddCandidate(ctx, draft.ID, &dto.AddCandidateRequest{CandidateID: 999, ClassName: "7A"})
		assert.ErrorIs(t, err, apperrors.ErrCandidateNotFound)
	})

	t.Run("unknown draft", func(t *testing.T) {
		_, err := env.distribution.Undo(ctx, "missing")
		assert.ErrorIs(t, err, apperrors.ErrDraftNotFound)
	})
}

func TestFinalizeDraft(t *testing.T) {
	ctx := context.Background()

	t.Run("commits identifiers in class order", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedAccepted(t, 2, 1)
		draft, err := env.distribution.GenerateDraft(ctx, &dto.GenerateDistributionRequest{ClassCount: intPtr(2)})
		require.NoError(t, err)

		final, err := env.distribution.FinalizeDraft(ctx, draft.ID)

		require.NoError(t, err)
		assert.True(t, final.Finalized)
		assert.False(t, final.CanUndo)
		require.Len(t, final.Placements, 3)
		assert.Equal(t, "25.26.07.001", final.Placements[0].NIS)
		assert.Equal(t, "7A", final.Placements[0].ClassName)
		assert.Equal(t, "25.26.07.003", final.Placements[2].NIS)
		assert.Equal(t, "7B", final.Placements[2].ClassName)
		assert.Len(t, final.Result.Succeeded, 3)
		assert.Empty(t, final.Result.Failed)

		for _, p := range final.Placements {
			stored, err := env.candidates.GetByID(ctx, p.CandidateID)
			require.NoError(t, err)
			assert.Equal(t, p.NIS, *stored.NIS)
			assert.Equal(t, p.ClassName, *stored.ClassName)
		}

		_, err = env.distribution.MoveCandidate(ctx, draft.ID, &dto.MoveCandidateRequest{CandidateID: 1, FromClass: "7A", ToClass: "7B"})
		assert.ErrorIs(t, err, apperrors.ErrDraftFinalized)
		_, err = env.distribution.FinalizeDraft(ctx, draft.ID)
		assert.ErrorIs(t, err, apperrors.ErrDraftFinalized)
		_, err = env.distribution.Undo(ctx, draft.ID)
		assert.ErrorIs(t, err, apperrors.ErrDraftFinalized)
	})

	t.Run("out of date draft is refused", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedAccepted(t, 2, 2)
		first, err := env.distribution.GenerateDraft(ctx, &dto.GenerateDistributionRequest{ClassCount: intPtr(2)})
		require.NoError(t, err)
		second, err := env.distribution.GenerateDraft(ctx, &dto.GenerateDistributionRequest{ClassCount: intPtr(1)})
		require.NoError(t, err)

		committed, err := env.distribution.FinalizeDraft(ctx, first.ID)
		require.NoError(t, err)
		require.Len(t, committed.Result.Succeeded, 4)

		_, err = env.distribution.FinalizeDraft(ctx, second.ID)

		require.ErrorIs(t, err, apperrors.ErrDraftStale)
		var custom *apperrors.CustomError
		require.ErrorAs(t, err, &custom)
		assert.ElementsMatch(t, committed.Result.Succeeded, custom.Details["candidateIds"])

		for _, p := range committed.Placements {
			stored, err := env.candidates.GetByID(ctx, p.CandidateID)
			require.NoError(t, err)
			assert.Equal(t, p.ClassName, *stored.ClassName)
			assert.Equal(t, p.NIS, *stored.NIS)
		}

		refused, err := env.distribution.GetDraft(ctx, second.ID)
		require.NoError(t, err)
		assert.False(t, refused.Finalized)
		assert.Empty(t, refused.Placements)
		_, err = env.distribution.RemoveCandidate(ctx, second.ID, &dto.RemoveCandidateRequest{CandidateID: committed.Placements[0].CandidateID})
		assert.NoError(t, err)
	})

	t.Run("identifier space exhausted writes nothing", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedAccepted(t, 500, 500)
		draft, err := env.distribution.GenerateDraft(ctx, &dto.GenerateDistributionRequest{ClassCount: intPtr(8)})
		require.NoError(t, err)

		_, err = env.distribution.FinalizeDraft(ctx, draft.ID)

		require.ErrorIs(t, err, distribution.ErrIdentifierSpaceExhausted)
		placed, err := env.candidates.ListPlaced(ctx, testYear)
		require.NoError(t, err)
		assert.Empty(t, placed)

		current, err := env.distribution.GetDraft(ctx, draft.ID)
		require.NoError(t, err)
		assert.False(t, current.Finalized)

		_, err = env.distribution.RemoveCandidate(ctx, draft.ID, &dto.RemoveCandidateRequest{CandidateID: current.Classes[0].Candidates[0].ID})
		require.NoError(t, err)
		final, err := env.distribution.FinalizeDraft(ctx, draft.ID)
		require.NoError(t, err)
		assert.Len(t, final.Result.Succeeded, distribution.MaxOrdinal)
	})

	t.Run("partial failure then retry", func(t *testing.T) {
		env := newTestEnv(t)
		seeded := env.seedAccepted(t, 3, 3)
		broken := seeded[1].ID
		env.candidates.FailPlacement[broken] = errors.New("connection reset by peer")

		draft, err := env.distribution.GenerateDraft(ctx, &dto.GenerateDistributionRequest{ClassCount: intPtr(3)})
		require.NoError(t, err)

		final, err := env.distribution.FinalizeDraft(ctx, draft.ID)
		require.NoError(t, err)
		assert.Len(t, final.Result.Succeeded, 5)
		require.Len(t, final.Result.Failed, 1)
		assert.Equal(t, broken, final.Result.Failed[0].ID)
		assert.Equal(t, "connection reset by peer", final.Result.Failed[0].Error)

		stored, err := env.candidates.GetByID(ctx, broken)
		require.NoError(t, err)
		assert.Nil(t, stored.NIS)

		delete(env.candidates.FailPlacement, broken)
		retried, err := env.distribution.RetryFailed(ctx, draft.ID)
		require.NoError(t, err)
		assert.Len(t, retried.Result.Succeeded, 6)
		assert.Empty(t, retried.Result.Failed)

		stored, err = env.candidates.GetByID(ctx, broken)
		require.NoError(t, err)
		require.NotNil(t, stored.NIS)

		_, err = env.distribution.RetryFailed(ctx, draft.ID)
		assert.ErrorIs(t, err, apperrors.ErrNothingToRetry)
	})

	t.Run("retry before finalize", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedAccepted(t, 1, 1)
		draft, err := env.distribution.GenerateDraft(ctx, nil)
		require.NoError(t, err)

		_, err = env.distribution.RetryFailed(ctx, draft.ID)
		assert.ErrorIs(t, err, apperrors.ErrPreconditionFailed)
	})

	t.Run("discard", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedAccepted(t, 1, 1)
		draft, err := env.distribution.GenerateDraft(ctx, nil)
		require.NoError(t, err)

		require.NoError(t, env.distribution.DiscardDraft(ctx, draft.ID))
		_, err = env.distribution.GetDraft(ctx, draft.ID)
		assert.ErrorIs(t, err, apperrors.ErrDraftNotFound)
	})
}
