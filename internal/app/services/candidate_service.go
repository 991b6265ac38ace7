package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/spmb/internal/app/models"
	"github.com/yigit/spmb/internal/app/models/dto"
	"github.com/yigit/spmb/internal/pkg/apperrors"
	"github.com/yigit/spmb/internal/pkg/helpers"
	"github.com/yigit/spmb/internal/pkg/metrics"
)

// CSV import columns. full_name and gender are required.
const (
	ColumnFullName     = "full_name"
	ColumnGender       = "gender"
	ColumnOriginSchool = "origin_school"
	ColumnStatus       = "status"
)

// CandidateService handles admission candidates
type CandidateService interface {
	CreateCandidate(ctx context.Context, req *dto.CreateCandidateRequest) (*dto.CandidateResponse, error)
	GetCandidate(ctx context.Context, id int64) (*dto.CandidateResponse, error)
	ListCandidates(ctx context.Context, filter *dto.CandidateFilterRequest) (*dto.CandidateListResponse, error)
	UpdateStatus(ctx context.Context, id int64, req *dto.UpdateCandidateStatusRequest) (*dto.CandidateResponse, error)
	ImportCSV(ctx context.Context, r io.Reader) (*models.BatchResult, error)
}

type candidateServiceImpl struct {
	candidates CandidateStore
	settings   AdmissionSettings
	metrics    metrics.Recorder
	logger     zerolog.Logger
}

// NewCandidateService creates a new CandidateService
func NewCandidateService(candidates CandidateStore, settings AdmissionSettings, recorder metrics.Recorder, logger zerolog.Logger) CandidateService {
	return &candidateServiceImpl{
		candidates: candidates,
		settings:   settings,
		metrics:    recorder,
		logger:     logger.With().Str("service", "candidate").Logger(),
	}
}

// ParseGender accepts the form codes L/P and the spelled-out Indonesian words
func ParseGender(raw string) (models.Gender, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "l", "laki-laki", "laki laki", "lk":
		return models.GenderMale, nil
	case "p", "perempuan", "pr":
		return models.GenderFemale, nil
	}
	return "", fmt.Errorf("%w: unknown gender %q", apperrors.ErrValidationFailed, raw)
}

// ParseStatus maps an optional status onto AdmissionStatus, defaulting to pending
func ParseStatus(raw string) (models.AdmissionStatus, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return models.StatusPending, nil
	}
	status := models.AdmissionStatus(raw)
	if !status.IsValid() {
		return "", fmt.Errorf("%w: unknown status %q", apperrors.ErrValidationFailed, raw)
	}
	return status, nil
}

func (s *candidateServiceImpl) newCandidate(fullName, gender, originSchool, status string) (*models.Candidate, error) {
	fullName = strings.Join(strings.Fields(fullName), " ")
	if fullName == "" {
		return nil, fmt.Errorf("%w: full name is required", apperrors.ErrValidationFailed)
	}
	g, err := ParseGender(gender)
	if err != nil {
		return nil, err
	}
	st, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}
	return &models.Candidate{
		FullName:     fullName,
		Gender:       g,
		OriginSchool: strings.TrimSpace(originSchool),
		Status:       st,
		AcademicYear: s.settings.AcademicYear,
	}, nil
}

// CreateCandidate stores one admission form submission for the configured year
func (s *candidateServiceImpl) CreateCandidate(ctx context.Context, req *dto.CreateCandidateRequest) (*dto.CandidateResponse, error) {
	c, err := s.newCandidate(req.FullName, req.Gender, req.OriginSchool, req.Status)
	if err != nil {
		return nil, err
	}
	if err := s.candidates.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("error creating candidate: %w", err)
	}

	resp := dto.FromCandidate(c)
	return &resp, nil
}

func (s *candidateServiceImpl) GetCandidate(ctx context.Context, id int64) (*dto.CandidateResponse, error) {
	if id <= 0 {
		return nil, apperrors.NewBadRequestError("candidate id must be positive")
	}
	c, err := s.candidates.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.FromCandidate(c)
	return &resp, nil
}

// ListCandidates returns one page of candidates; the year defaults to the configured one
func (s *candidateServiceImpl) ListCandidates(ctx context.Context, filter *dto.CandidateFilterRequest) (*dto.CandidateListResponse, error) {
	if filter == nil {
		filter = &dto.CandidateFilterRequest{}
	}

	modelFilter := models.CandidateFilter{
		AcademicYear: s.settings.yearOrDefault(filter.AcademicYear),
		Placed:       filter.Placed,
		Transferred:  filter.Transferred,
		Search:       filter.Search,
	}
	if filter.Status != "" {
		st, err := ParseStatus(filter.Status)
		if err != nil {
			return nil, err
		}
		modelFilter.Status = st
	}
	if filter.Gender != "" {
		g, err := ParseGender(filter.Gender)
		if err != nil {
			return nil, err
		}
		modelFilter.Gender = g
	}
	modelFilter.Offset, modelFilter.Limit = helpers.CalculateOffsetLimit(filter.Page, filter.PageSize)

	candidates, total, err := s.candidates.List(ctx, modelFilter)
	if err != nil {
		return nil, fmt.Errorf("error listing candidates: %w", err)
	}

	items := make([]dto.CandidateResponse, 0, len(candidates))
	for i := range candidates {
		items = append(items, dto.FromCandidate(&candidates[i]))
	}
	return &dto.CandidateListResponse{
		Candidates: items,
		Pagination: helpers.NewPaginationInfo(total, filter.Page, modelFilter.Limit),
	}, nil
}

// UpdateStatus records an admission decision. Placed candidates keep their status.
func (s *candidateServiceImpl) UpdateStatus(ctx context.Context, id int64, req *dto.UpdateCandidateStatusRequest) (*dto.CandidateResponse, error) {
	status, err := ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}
	if err := s.candidates.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.GetCandidate(ctx, id)
}

// ImportCSV creates one candidate per data row. The header row names the columns
// (full_name, gender, origin_school, status) in any order. Rows that fail are reported
// with their 1-based data row number as ID and the import continues.
func (s *candidateServiceImpl) ImportCSV(ctx context.Context, r io.Reader) (*models.BatchResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperrors.NewBadRequestError("CSV file is empty")
		}
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("invalid CSV header: %v", err))
	}
	columns, err := csvColumns(header)
	if err != nil {
		return nil, err
	}

	result := models.NewBatchResult()
	for row := int64(1); ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			result.RecordFailure(row, err)
			continue
		}
		if isBlankRecord(record) {
			continue
		}

		c, err := s.newCandidate(
			field(record, columns, ColumnFullName),
			field(record, columns, ColumnGender),
			field(record, columns, ColumnOriginSchool),
			field(record, columns, ColumnStatus),
		)
		if err != nil {
			result.RecordFailure(row, err)
			continue
		}
		if err := s.candidates.Create(ctx, c); err != nil {
			result.RecordFailure(row, err)
			continue
		}
		result.RecordSuccess(c.ID)
	}

	s.metrics.RecordImport(result.SuccessCount(), result.FailureCount())
	s.logger.Info().
		Int("succeeded", result.SuccessCount()).
		Int("failed", result.FailureCount()).
		Msg("Candidate CSV import finished")
	return result, nil
}

func csvColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		columns[name] = i
	}
	for _, required := range []string{ColumnFullName, ColumnGender} {
		if _, ok := columns[required]; !ok {
			return nil, apperrors.NewBadRequestError(fmt.Sprintf("CSV header is missing column %q", required))
		}
	}
	return columns, nil
}

func field(record []string, columns map[string]int, name string) string {
	i, ok := columns[name]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}

func isBlankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
