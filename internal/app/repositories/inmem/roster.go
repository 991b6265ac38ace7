package inmem

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/yigit/spmb/internal/app/models"
	"github.com/yigit/spmb/internal/pkg/apperrors"
)

// RosterStore is an in-memory students table bound to a CandidateStore
type RosterStore struct {
	mutex      sync.Mutex
	students   map[int64]models.Student // keyed by source candidate id
	candidates *CandidateStore
	nextID     int64

	// FailTransfer makes TransferCandidate fail for the given candidate ids before anything is written
	FailTransfer map[int64]error
}

// NewRosterStore creates an empty roster over candidates
func NewRosterStore(candidates *CandidateStore) *RosterStore {
	return &RosterStore{
		students:     make(map[int64]models.Student),
		candidates:   candidates,
		FailTransfer: make(map[int64]error),
	}
}

// TransferCandidate inserts the roster row unless one exists for the candidate, then
// marks the candidate transferred. A failed insert leaves the candidate unmarked.
func (r *RosterStore) TransferCandidate(_ context.Context, c *models.Candidate, at time.Time) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if err, ok := r.FailTransfer[c.ID]; ok {
		return err
	}
	if !c.IsPlaced() || c.NIS == nil {
		return fmt.Errorf("candidate %d: %w", c.ID, apperrors.ErrCandidateNotEligible)
	}

	student := models.NewStudentFromCandidate(c)
	for source, s := range r.students {
		if source != c.ID && s.NIS == student.NIS {
			return fmt.Errorf("NIS %s: %w", student.NIS, apperrors.ErrNISAlreadyExists)
		}
	}

	_, existed := r.students[c.ID]
	if !existed {
		r.nextID++
		student.ID = r.nextID
		student.CreatedAt = at
		r.students[c.ID] = *student
	}

	if err := r.candidates.markTransferred(c.ID, at); err != nil {
		if !existed {
			delete(r.students, c.ID)
		}
		return err
	}
	return nil
}

// Students returns the roster rows ordered by NIS
func (r *RosterStore) Students() []models.Student {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	res := make([]models.Student, 0, len(r.students))
	for _, s := range r.students {
		res = append(res, s)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].NIS < res[j].NIS })
	return res
}

// ListStudents returns the roster rows of a year ordered by NIS, optionally limited to one class
func (r *RosterStore) ListStudents(_ context.Context, academicYear, className string) ([]models.Student, error) {
	res := []models.Student{}
	for _, s := range r.Students() {
		if s.AcademicYear != academicYear {
			continue
		}
		if className != "" && s.ClassName != className {
			continue
		}
		res = append(res, s)
	}
	return res, nil
}
