// Package inmem provides map-backed candidate and roster stores with the same
// semantics as the PostgreSQL repositories. Used in tests.
package inmem

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yigit/spmb/internal/app/models"
	"github.com/yigit/spmb/internal/pkg/apperrors"
)

// CandidateStore is an in-memory candidates table
type CandidateStore struct {
	mutex  sync.RWMutex
	t      map[int64]*models.Candidate
	nextID int64

	// FailPlacement makes UpdatePlacement fail for the given candidate ids
	FailPlacement map[int64]error
}

// NewCandidateStore creates an empty store
func NewCandidateStore() *CandidateStore {
	return &CandidateStore{
		t:             make(map[int64]*models.Candidate),
		FailPlacement: make(map[int64]error),
	}
}

func strPtr(s string) *string { return &s }

// query returns copies of all rows ordered by id. Callers hold the lock.
func (s *CandidateStore) query(keep func(c *models.Candidate) bool) []models.Candidate {
	res := make([]models.Candidate, 0, len(s.t))
	for _, c := range s.t {
		if keep == nil || keep(c) {
			res = append(res, *c)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

func (s *CandidateStore) Create(_ context.Context, c *models.Candidate) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.nextID++
	now := time.Now()
	c.ID = s.nextID
	c.CreatedAt = now
	c.UpdatedAt = now
	row := *c
	s.t[c.ID] = &row
	return nil
}

func (s *CandidateStore) GetByID(_ context.Context, id int64) (*models.Candidate, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	c, ok := s.t[id]
	if !ok {
		return nil, fmt.Errorf("candidate %d: %w", id, apperrors.ErrCandidateNotFound)
	}
	cp := *c
	return &cp, nil
}

func matches(c *models.Candidate, f models.CandidateFilter) bool {
	if f.AcademicYear != "" && c.AcademicYear != f.AcademicYear {
		return false
	}
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.Gender != "" && c.Gender != f.Gender {
		return false
	}
	if f.Placed != nil && c.IsPlaced() != *f.Placed {
		return false
	}
	if f.Transferred != nil && c.Transferred != *f.Transferred {
		return false
	}
	if search := strings.ToLower(strings.TrimSpace(f.Search)); search != "" {
		nis := ""
		if c.NIS != nil {
			nis = *c.NIS
		}
		if !strings.Contains(strings.ToLower(c.FullName), search) &&
			!strings.Contains(strings.ToLower(c.OriginSchool), search) &&
			!strings.Contains(strings.ToLower(nis), search) {
			return false
		}
	}
	return true
}

func (s *CandidateStore) List(_ context.Context, f models.CandidateFilter) ([]models.Candidate, int64, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	all := s.query(func(c *models.Candidate) bool { return matches(c, f) })
	total := int64(len(all))

	start := int(f.Offset)
	if start > len(all) {
		start = len(all)
	}
	end := len(all)
	if f.Limit > 0 && start+f.Limit < end {
		end = start + f.Limit
	}
	return all[start:end], total, nil
}

func (s *CandidateStore) UpdateStatus(_ context.Context, id int64, status models.AdmissionStatus) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	c, ok := s.t[id]
	if !ok {
		return fmt.Errorf("candidate %d: %w", id, apperrors.ErrCandidateNotFound)
	}
	if c.IsPlaced() {
		return fmt.Errorf("candidate %d: %w", id, apperrors.ErrCandidateNotEligible)
	}
	c.Status = status
	c.UpdatedAt = time.Now()
	return nil
}

func (s *CandidateStore) ListUnassignedAccepted(_ context.Context, academicYear string) ([]models.Candidate, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.query(func(c *models.Candidate) bool {
		return c.AcademicYear == academicYear && c.Status == models.StatusAccepted &&
			!c.IsPlaced() && c.NIS == nil && !c.Transferred
	}), nil
}

func (s *CandidateStore) ListPlaced(_ context.Context, academicYear string) ([]models.Candidate, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.query(func(c *models.Candidate) bool {
		return c.AcademicYear == academicYear && c.IsPlaced()
	}), nil
}

func (s *CandidateStore) ListTransferable(_ context.Context, academicYear string) ([]models.Candidate, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.query(func(c *models.Candidate) bool {
		return c.AcademicYear == academicYear && c.Status == models.StatusAccepted &&
			c.IsPlaced() && c.NIS != nil && !c.Transferred
	}), nil
}

func (s *CandidateStore) UpdatePlacement(_ context.Context, id int64, className, nis string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err, ok := s.FailPlacement[id]; ok {
		return err
	}
	c, ok := s.t[id]
	if !ok {
		return fmt.Errorf("candidate %d: %w", id, apperrors.ErrCandidateNotFound)
	}
	if c.Status != models.StatusAccepted || c.Transferred || c.IsPlaced() || c.NIS != nil {
		return fmt.Errorf("candidate %d: %w", id, apperrors.ErrCandidateNotEligible)
	}
	for _, other := range s.t {
		if other.ID != id && other.NIS != nil && *other.NIS == nis {
			return fmt.Errorf("NIS %s: %w", nis, apperrors.ErrNISAlreadyExists)
		}
	}
	c.ClassName = strPtr(className)
	c.NIS = strPtr(nis)
	c.UpdatedAt = time.Now()
	return nil
}

// markTransferred flags a candidate as copied into the roster
func (s *CandidateStore) markTransferred(id int64, at time.Time) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	c, ok := s.t[id]
	if !ok {
		return fmt.Errorf("candidate %d: %w", id, apperrors.ErrCandidateNotFound)
	}
	if c.Transferred {
		return fmt.Errorf("candidate %d: %w", id, apperrors.ErrConflict)
	}
	c.Transferred = true
	c.TransferredAt = &at
	return nil
}
