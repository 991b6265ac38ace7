package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/spmb/internal/app/distribution"
	"github.com/yigit/spmb/internal/app/models"
	"github.com/yigit/spmb/internal/app/models/dto"
	"github.com/yigit/spmb/internal/pkg/apperrors"
)

// Draft is a distribution under review. It lives only in memory until finalized.
type Draft struct {
	ID           string
	AcademicYear string
	GradeLevel   string
	History      *distribution.History
	Finalizing   bool
	Finalized    bool
	Placements   []distribution.Placement
	Result       *models.BatchResult
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// editable rejects edits once finalization has started
func (d *Draft) editable() error {
	if d.Finalized || d.Finalizing {
		return fmt.Errorf("draft %s: %w", d.ID, apperrors.ErrDraftFinalized)
	}
	return nil
}

// toResponse builds the API view. Callers hold the store lock.
func (d *Draft) toResponse() *dto.DraftResponse {
	current := d.History.Current()
	resp := &dto.DraftResponse{
		ID:           d.ID,
		AcademicYear: d.AcademicYear,
		GradeLevel:   d.GradeLevel,
		Total:        current.Total(),
		Classes:      dto.FromDistribution(current),
		CanUndo:      d.History.CanUndo() && !d.Finalized,
		CanRedo:      d.History.CanRedo() && !d.Finalized,
		Finalized:    d.Finalized,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	if len(d.Placements) > 0 {
		resp.Placements = append([]distribution.Placement(nil), d.Placements...)
	}
	if d.Result != nil {
		resp.Result = &models.BatchResult{
			Succeeded: append([]int64{}, d.Result.Succeeded...),
			Failed:    append([]models.BatchFailure{}, d.Result.Failed...),
		}
	}
	return resp
}

// DraftStore keeps drafts in memory keyed by id. Drafts untouched for longer
// than the TTL are evicted on the next store access.
type DraftStore struct {
	mu     sync.Mutex
	drafts map[string]*Draft
	ttl    time.Duration
	now    func() time.Time
}

// NewDraftStore creates an empty store
func NewDraftStore(ttl time.Duration) *DraftStore {
	if ttl <= 0 {
		ttl = DefaultDraftTTL
	}
	return &DraftStore{
		drafts: make(map[string]*Draft),
		ttl:    ttl,
		now:    time.Now,
	}
}

// evictExpired drops stale drafts. Callers hold mu.
func (s *DraftStore) evictExpired() {
	cutoff := s.now().Add(-s.ttl)
	for id, d := range s.drafts {
		if d.UpdatedAt.Before(cutoff) && !d.Finalizing {
			delete(s.drafts, id)
		}
	}
}

// Create stores a new draft over initial and returns its view
func (s *DraftStore) Create(academicYear, gradeLevel string, initial distribution.Distribution, historyDepth int) *dto.DraftResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictExpired()

	now := s.now()
	d := &Draft{
		ID:           uuid.New().String(),
		AcademicYear: academicYear,
		GradeLevel:   gradeLevel,
		History:      distribution.NewHistory(initial, historyDepth),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.drafts[d.ID] = d
	return d.toResponse()
}

func (s *DraftStore) lookup(id string) (*Draft, error) {
	s.evictExpired()
	d, ok := s.drafts[id]
	if !ok {
		return nil, fmt.Errorf("draft %s: %w", id, apperrors.ErrDraftNotFound)
	}
	return d, nil
}

// Get returns the view of a draft
func (s *DraftStore) Get(id string) (*dto.DraftResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return d.toResponse(), nil
}

// Update runs fn on a draft under the store lock and returns the resulting view.
// An error from fn leaves UpdatedAt untouched.
func (s *DraftStore) Update(id string, fn func(d *Draft) error) (*dto.DraftResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if err := fn(d); err != nil {
		return nil, err
	}
	d.UpdatedAt = s.now()
	return d.toResponse(), nil
}

// Edit applies a copy-on-write mutation to the current snapshot and records it in history
func (s *DraftStore) Edit(id string, mutate func(current distribution.Distribution) (distribution.Distribution, error)) (*dto.DraftResponse, error) {
	return s.Update(id, func(d *Draft) error {
		if err := d.editable(); err != nil {
			return err
		}
		next, err := mutate(d.History.Current())
		if err != nil {
			return err
		}
		d.History.Apply(next)
		return nil
	})
}

// Delete removes a draft
func (s *DraftStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.lookup(id)
	if err != nil {
		return err
	}
	if d.Finalizing {
		return fmt.Errorf("draft %s: %w", id, apperrors.ErrDraftFinalized)
	}
	delete(s.drafts, id)
	return nil
}

// Len returns the number of live drafts
func (s *DraftStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictExpired()
	return len(s.drafts)
}
