package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/spmb/internal/app/distribution"
	"github.com/yigit/spmb/internal/app/models"
	"github.com/yigit/spmb/internal/app/models/dto"
	"github.com/yigit/spmb/internal/pkg/apperrors"
	"github.com/yigit/spmb/internal/pkg/metrics"
)

// DistributionService drives the draft workflow: generate, edit, finalize
type DistributionService interface {
	GenerateDraft(ctx context.Context, req *dto.GenerateDistributionRequest) (*dto.DraftResponse, error)
	GetDraft(ctx context.Context, id string) (*dto.DraftResponse, error)
	MoveCandidate(ctx context.Context, id string, req *dto.MoveCandidateRequest) (*dto.DraftResponse, error)
	RemoveCandidate(ctx context.Context, id string, req *dto.RemoveCandidateRequest) (*dto.DraftResponse, error)
	AddCandidate(ctx context.Context, id string, req *dto.AddCandidateRequest) (*dto.DraftResponse, error)
	SwapCandidates(ctx context.Context, id string, req *dto.SwapCandidatesRequest) (*dto.DraftResponse, error)
	Undo(ctx context.Context, id string) (*dto.DraftResponse, error)
	Redo(ctx context.Context, id string) (*dto.DraftResponse, error)
	DiscardDraft(ctx context.Context, id string) error
	FinalizeDraft(ctx context.Context, id string) (*dto.DraftResponse, error)
	RetryFailed(ctx context.Context, id string) (*dto.DraftResponse, error)
}

type distributionServiceImpl struct {
	candidates CandidateStore
	placements PlacementService
	drafts     *DraftStore
	settings   AdmissionSettings
	metrics    metrics.Recorder
	logger     zerolog.Logger
}

// NewDistributionService creates a new DistributionService
func NewDistributionService(
	candidates CandidateStore,
	placements PlacementService,
	drafts *DraftStore,
	settings AdmissionSettings,
	recorder metrics.Recorder,
	logger zerolog.Logger,
) DistributionService {
	return &distributionServiceImpl{
		candidates: candidates,
		placements: placements,
		drafts:     drafts,
		settings:   settings,
		metrics:    recorder,
		logger:     logger.With().Str("service", "distribution").Logger(),
	}
}

// GenerateDraft distributes the accepted, unassigned candidates of the configured year
func (s *distributionServiceImpl) GenerateDraft(ctx context.Context, req *dto.GenerateDistributionRequest) (*dto.DraftResponse, error) {
	classCount := s.settings.DefaultClassCount
	if req != nil && req.ClassCount != nil {
		classCount = *req.ClassCount
	}
	classCount = distribution.ClampClassCount(classCount)

	roster, err := s.candidates.ListUnassignedAccepted(ctx, s.settings.AcademicYear)
	if err != nil {
		return nil, fmt.Errorf("error loading unassigned candidates: %w", err)
	}

	d, err := distribution.Distribute(roster, classCount, s.settings.GradeLevel)
	if err != nil {
		return nil, apperrors.NewPreconditionError(err)
	}

	resp := s.drafts.Create(s.settings.AcademicYear, s.settings.GradeLevel, d, s.settings.HistoryDepth)
	s.metrics.RecordDraftGenerated(classCount)
	s.logger.Info().
		Str("draftId", resp.ID).
		Int("candidates", resp.Total).
		Int("classes", classCount).
		Msg("Distribution draft generated")
	return resp, nil
}

func (s *distributionServiceImpl) GetDraft(_ context.Context, id string) (*dto.DraftResponse, error) {
	return s.drafts.Get(id)
}

func (s *distributionServiceImpl) MoveCandidate(_ context.Context, id string, req *dto.MoveCandidateRequest) (*dto.DraftResponse, error) {
	return s.drafts.Edit(id, func(current distribution.Distribution) (distribution.Distribution, error) {
		return distribution.Move(current, req.CandidateID, req.FromClass, req.ToClass)
	})
}

func (s *distributionServiceImpl) RemoveCandidate(_ context.Context, id string, req *dto.RemoveCandidateRequest) (*dto.DraftResponse, error) {
	return s.drafts.Edit(id, func(current distribution.Distribution) (distribution.Distribution, error) {
		return distribution.Remove(current, req.CandidateID)
	})
}

// AddCandidate loads the candidate from storage; only accepted, unplaced candidates of
// the draft's year can join. A candidate already in the draft is moved.
func (s *distributionServiceImpl) AddCandidate(ctx context.Context, id string, req *dto.AddCandidateRequest) (*dto.DraftResponse, error) {
	candidate, err := s.candidates.GetByID(ctx, req.CandidateID)
	if err != nil {
		return nil, err
	}

	return s.drafts.Edit(id, func(current distribution.Distribution) (distribution.Distribution, error) {
		if err := s.checkEligible(candidate); err != nil {
			return nil, err
		}
		return distribution.Add(current, req.ClassName, *candidate)
	})
}

func (s *distributionServiceImpl) checkEligible(c *models.Candidate) error {
	if c.Status != models.StatusAccepted || c.IsPlaced() || c.Transferred || c.AcademicYear != s.settings.AcademicYear {
		return fmt.Errorf("candidate %d: %w", c.ID, apperrors.ErrCandidateNotEligible)
	}
	return nil
}

func (s *distributionServiceImpl) SwapCandidates(_ context.Context, id string, req *dto.SwapCandidatesRequest) (*dto.DraftResponse, error) {
	return s.drafts.Edit(id, func(current distribution.Distribution) (distribution.Distribution, error) {
		return distribution.Swap(current, req.CandidateA, req.ClassA, req.CandidateB, req.ClassB)
	})
}

// Undo steps back one edit; with nothing to undo the draft is returned unchanged
func (s *distributionServiceImpl) Undo(_ context.Context, id string) (*dto.DraftResponse, error) {
	return s.drafts.Update(id, func(d *Draft) error {
		if err := d.editable(); err != nil {
			return err
		}
		d.History.Undo()
		return nil
	})
}

// Redo re-applies one undone edit; with nothing to redo the draft is returned unchanged
func (s *distributionServiceImpl) Redo(_ context.Context, id string) (*dto.DraftResponse, error) {
	return s.drafts.Update(id, func(d *Draft) error {
		if err := d.editable(); err != nil {
			return err
		}
		d.History.Redo()
		return nil
	})
}

func (s *distributionServiceImpl) DiscardDraft(_ context.Context, id string) error {
	if err := s.drafts.Delete(id); err != nil {
		return err
	}
	s.logger.Info().Str("draftId", id).Msg("Distribution draft discarded")
	return nil
}

// FinalizeDraft numbers the current snapshot and commits it. Identifier generation
// runs first, so a precondition failure leaves the draft editable and nothing written.
func (s *distributionServiceImpl) FinalizeDraft(ctx context.Context, id string) (*dto.DraftResponse, error) {
	start := time.Now()

	var (
		placements []distribution.Placement
		year       string
	)
	_, err := s.drafts.Update(id, func(d *Draft) error {
		if err := d.editable(); err != nil {
			return err
		}
		current := d.History.Current()
		if current.Total() == 0 {
			return apperrors.NewPreconditionError(distribution.ErrEmptyRoster)
		}
		generated, err := distribution.GenerateIdentifiers(current, d.AcademicYear, s.settings.GradeMarker)
		if err != nil {
			return apperrors.NewPreconditionError(err)
		}
		placements = generated
		year = d.AcademicYear
		d.Finalizing = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.checkStillUnassigned(ctx, year, placements); err != nil {
		if _, resetErr := s.drafts.Update(id, func(d *Draft) error {
			d.Finalizing = false
			return nil
		}); resetErr != nil {
			s.logger.Warn().Err(resetErr).Str("draftId", id).Msg("Failed to release draft after refused finalize")
		}
		return nil, err
	}

	result := s.placements.Commit(ctx, placements)

	resp, err := s.drafts.Update(id, func(d *Draft) error {
		d.Finalizing = false
		d.Finalized = true
		d.Placements = placements
		d.Result = result
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveFinalizeLatency(time.Since(start).Seconds())
	s.logger.Info().
		Str("draftId", id).
		Int("succeeded", result.SuccessCount()).
		Int("failed", result.FailureCount()).
		Msg("Distribution draft finalized")
	return resp, nil
}

// checkStillUnassigned refuses a draft holding candidates that were placed, transferred
// or changed status since the draft was generated. Nothing is written in that case.
func (s *distributionServiceImpl) checkStillUnassigned(ctx context.Context, year string, placements []distribution.Placement) error {
	roster, err := s.candidates.ListUnassignedAccepted(ctx, year)
	if err != nil {
		return fmt.Errorf("error loading unassigned candidates: %w", err)
	}
	open := make(map[int64]struct{}, len(roster))
	for _, c := range roster {
		open[c.ID] = struct{}{}
	}

	var stale []int64
	for _, p := range placements {
		if _, ok := open[p.CandidateID]; !ok {
			stale = append(stale, p.CandidateID)
		}
	}
	if len(stale) > 0 {
		s.logger.Warn().Ints64("candidateIds", stale).Msg("Refusing to finalize an out of date draft")
		return apperrors.NewStaleDraftError(stale)
	}
	return nil
}

// RetryFailed re-commits only the placements whose commit failed
func (s *distributionServiceImpl) RetryFailed(ctx context.Context, id string) (*dto.DraftResponse, error) {
	var pending []distribution.Placement
	_, err := s.drafts.Update(id, func(d *Draft) error {
		if !d.Finalized || d.Finalizing {
			return apperrors.NewPreconditionError(fmt.Errorf("draft %s is not finalized", id))
		}
		if d.Result == nil || d.Result.FailureCount() == 0 {
			return apperrors.ErrNothingToRetry
		}
		failed := make(map[int64]struct{}, d.Result.FailureCount())
		for _, fid := range d.Result.FailedIDs() {
			failed[fid] = struct{}{}
		}
		for _, p := range d.Placements {
			if _, ok := failed[p.CandidateID]; ok {
				pending = append(pending, p)
			}
		}
		d.Finalizing = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	retry := s.placements.Commit(ctx, pending)

	return s.drafts.Update(id, func(d *Draft) error {
		d.Finalizing = false
		d.Result.Merge(retry)
		return nil
	})
}
