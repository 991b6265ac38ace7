package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/spmb/internal/app/distribution"
	"github.com/yigit/spmb/internal/app/models"
	"github.com/yigit/spmb/internal/app/models/dto"
	"github.com/yigit/spmb/internal/pkg/metrics"
)

// PlacementService writes finalized placements and moves placed candidates into the roster
type PlacementService interface {
	Commit(ctx context.Context, placements []distribution.Placement) *models.BatchResult
	TransferToRoster(ctx context.Context, academicYear string) (*models.BatchResult, error)
	ListRoster(ctx context.Context, academicYear, className string) (*dto.RosterResponse, error)
}

type placementServiceImpl struct {
	candidates CandidateStore
	roster     RosterStore
	settings   AdmissionSettings
	metrics    metrics.Recorder
	logger     zerolog.Logger
	now        func() time.Time
}

// NewPlacementService creates a new PlacementService
func NewPlacementService(
	candidates CandidateStore,
	roster RosterStore,
	settings AdmissionSettings,
	recorder metrics.Recorder,
	logger zerolog.Logger,
) PlacementService {
	return &placementServiceImpl{
		candidates: candidates,
		roster:     roster,
		settings:   settings,
		metrics:    recorder,
		logger:     logger.With().Str("service", "placement").Logger(),
		now:        time.Now,
	}
}

// Commit writes class and NIS of each placement one at a time. A failed record
// is reported in the result and the loop moves on; nothing is retried here.
func (s *placementServiceImpl) Commit(ctx context.Context, placements []distribution.Placement) *models.BatchResult {
	result := models.NewBatchResult()
	for _, p := range placements {
		if err := ctx.Err(); err != nil {
			result.RecordFailure(p.CandidateID, err)
			continue
		}
		if err := s.candidates.UpdatePlacement(ctx, p.CandidateID, p.ClassName, p.NIS); err != nil {
			s.logger.Warn().Err(err).Int64("candidateId", p.CandidateID).Str("nis", p.NIS).Msg("Failed to commit placement")
			result.RecordFailure(p.CandidateID, err)
			continue
		}
		result.RecordSuccess(p.CandidateID)
	}

	s.metrics.RecordPlacements(result.SuccessCount(), result.FailureCount())
	s.logger.Info().
		Int("succeeded", result.SuccessCount()).
		Int("failed", result.FailureCount()).
		Msg("Placements committed")
	return result
}

// TransferToRoster copies every accepted, placed, not yet transferred candidate of
// the academic year into the student roster. Each record is its own transaction.
func (s *placementServiceImpl) TransferToRoster(ctx context.Context, academicYear string) (*models.BatchResult, error) {
	year := s.settings.yearOrDefault(academicYear)
	if _, _, err := distribution.ParseYearPair(year); err != nil {
		return nil, err
	}

	candidates, err := s.candidates.ListTransferable(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("error listing transferable candidates: %w", err)
	}

	result := models.NewBatchResult()
	for i := range candidates {
		c := &candidates[i]
		if err := s.roster.TransferCandidate(ctx, c, s.now()); err != nil {
			s.logger.Warn().Err(err).Int64("candidateId", c.ID).Msg("Failed to transfer candidate")
			result.RecordFailure(c.ID, err)
			continue
		}
		result.RecordSuccess(c.ID)
	}

	s.metrics.RecordTransfers(result.SuccessCount(), result.FailureCount())
	s.logger.Info().
		Str("academicYear", year).
		Int("succeeded", result.SuccessCount()).
		Int("failed", result.FailureCount()).
		Msg("Roster transfer finished")
	return result, nil
}

// ListRoster returns the permanent roster of an academic year, optionally one class only
func (s *placementServiceImpl) ListRoster(ctx context.Context, academicYear, className string) (*dto.RosterResponse, error) {
	year := s.settings.yearOrDefault(academicYear)
	if _, _, err := distribution.ParseYearPair(year); err != nil {
		return nil, err
	}

	students, err := s.roster.ListStudents(ctx, year, className)
	if err != nil {
		return nil, fmt.Errorf("error listing roster: %w", err)
	}

	resp := &dto.RosterResponse{
		AcademicYear: year,
		ClassName:    className,
		Students:     make([]dto.StudentResponse, 0, len(students)),
		Total:        len(students),
	}
	for i := range students {
		resp.Students = append(resp.Students, dto.FromStudent(&students[i]))
	}
	return resp, nil
}
