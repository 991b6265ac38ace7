package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/spmb/internal/app/models"
	"github.com/yigit/spmb/internal/db"
	"github.com/yigit/spmb/internal/pkg/apperrors"
	"github.com/yigit/spmb/internal/pkg/dberrors"
)

const studentNISConstraint = "students_nis_key"

// StudentRepository handles the permanent student roster
type StudentRepository struct {
	db         *pgxpool.Pool
	sb         squirrel.StatementBuilderType
	candidates *CandidateRepository
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db *pgxpool.Pool, candidates *CandidateRepository) *StudentRepository {
	return &StudentRepository{
		db:         db,
		sb:         squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		candidates: candidates,
	}
}

// TransferCandidate copies a placed candidate into the roster and marks it transferred,
// both in one transaction. A roster row that already exists for the candidate is kept as is.
func (r *StudentRepository) TransferCandidate(ctx context.Context, c *models.Candidate, at time.Time) error {
	if !c.IsPlaced() || c.NIS == nil {
		return fmt.Errorf("candidate %d: %w", c.ID, apperrors.ErrCandidateNotEligible)
	}
	student := models.NewStudentFromCandidate(c)

	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.sb.Insert("students").
			Columns("nis", "full_name", "class_name", "academic_year", "gender", "active", "source_candidate_id").
			Values(student.NIS, student.FullName, student.ClassName, student.AcademicYear, student.Gender, student.Active, student.SourceCandidateID).
			Suffix("ON CONFLICT (source_candidate_id) DO NOTHING").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build insert student query: %w", err)
		}

		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			if dberrors.IsDuplicateConstraintError(err, studentNISConstraint) {
				return fmt.Errorf("NIS %s: %w", student.NIS, apperrors.ErrNISAlreadyExists)
			}
			return fmt.Errorf("failed to insert student: %w", err)
		}

		return r.candidates.MarkTransferred(ctx, tx, c.ID, at)
	})
}

var studentColumns = []string{
	"id", "nis", "full_name", "class_name", "academic_year", "gender", "active", "source_candidate_id", "created_at",
}

// ListStudents returns the roster of an academic year ordered by NIS, optionally limited to one class
func (r *StudentRepository) ListStudents(ctx context.Context, academicYear, className string) ([]models.Student, error) {
	q := r.sb.Select(studentColumns...).
		From("students").
		Where(squirrel.Eq{"academic_year": academicYear})
	if className != "" {
		q = q.Where(squirrel.Eq{"class_name": className})
	}

	sql, args, err := q.OrderBy("nis ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list students query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query students: %w", err)
	}
	defer rows.Close()

	students := []models.Student{}
	for rows.Next() {
		var st models.Student
		if err := rows.Scan(
			&st.ID, &st.NIS, &st.FullName, &st.ClassName, &st.AcademicYear,
			&st.Gender, &st.Active, &st.SourceCandidateID, &st.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		students = append(students, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating students: %w", err)
	}
	return students, nil
}
