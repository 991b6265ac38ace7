package services

import (
	"context"
	"time"

	"github.com/yigit/spmb/internal/app/models"
)

// CandidateStore is the candidate persistence used by the services.
// *repositories.CandidateRepository implements it.
type CandidateStore interface {
	Create(ctx context.Context, c *models.Candidate) error
	GetByID(ctx context.Context, id int64) (*models.Candidate, error)
	List(ctx context.Context, filter models.CandidateFilter) ([]models.Candidate, int64, error)
	UpdateStatus(ctx context.Context, id int64, status models.AdmissionStatus) error
	ListUnassignedAccepted(ctx context.Context, academicYear string) ([]models.Candidate, error)
	ListPlaced(ctx context.Context, academicYear string) ([]models.Candidate, error)
	ListTransferable(ctx context.Context, academicYear string) ([]models.Candidate, error)
	UpdatePlacement(ctx context.Context, id int64, className, nis string) error
}

// RosterStore copies candidates into the permanent student roster and reads it back.
// *repositories.StudentRepository implements it.
type RosterStore interface {
	TransferCandidate(ctx context.Context, c *models.Candidate, at time.Time) error
	ListStudents(ctx context.Context, academicYear, className string) ([]models.Student, error)
}
