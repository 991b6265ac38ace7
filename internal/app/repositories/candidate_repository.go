package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/spmb/internal/app/models"
	"github.com/yigit/spmb/internal/pkg/apperrors"
	"github.com/yigit/spmb/internal/pkg/dberrors"
	"github.com/yigit/spmb/internal/pkg/logger"
)

const candidateNISConstraint = "candidates_nis_key"

var candidateColumns = []string{
	"id", "full_name", "gender", "origin_school", "status", "academic_year",
	"class_name", "nis", "transferred", "transferred_at", "created_at", "updated_at",
}

// CandidateRepository handles candidate database operations
type CandidateRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCandidateRepository creates a new CandidateRepository
func NewCandidateRepository(db *pgxpool.Pool) *CandidateRepository {
	return &CandidateRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanCandidate(row pgx.Row) (*models.Candidate, error) {
	var c models.Candidate
	err := row.Scan(
		&c.ID, &c.FullName, &c.Gender, &c.OriginSchool, &c.Status, &c.AcademicYear,
		&c.ClassName, &c.NIS, &c.Transferred, &c.TransferredAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CandidateRepository) query(ctx context.Context, q squirrel.SelectBuilder) ([]models.Candidate, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build candidate query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating candidates: %w", err)
	}
	return candidates, nil
}

// Create inserts a candidate and fills its generated fields
func (r *CandidateRepository) Create(ctx context.Context, c *models.Candidate) error {
	sql, args, err := r.sb.Insert("candidates").
		Columns("full_name", "gender", "origin_school", "status", "academic_year").
		Values(c.FullName, c.Gender, c.OriginSchool, c.Status, c.AcademicYear).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert candidate query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if dberrors.IsCheckViolation(err) {
			return fmt.Errorf("%w: %v", apperrors.ErrValidationFailed, err)
		}
		return fmt.Errorf("failed to insert candidate: %w", err)
	}
	return nil
}

// GetByID retrieves a candidate by ID
func (r *CandidateRepository) GetByID(ctx context.Context, id int64) (*models.Candidate, error) {
	sql, args, err := r.sb.Select(candidateColumns...).
		From("candidates").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get candidate query: %w", err)
	}

	c, err := scanCandidate(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("candidate %d: %w", id, apperrors.ErrCandidateNotFound)
		}
		return nil, fmt.Errorf("error retrieving candidate: %w", err)
	}
	return c, nil
}

func candidateFilterCondition(filter models.CandidateFilter) squirrel.And {
	where := squirrel.And{}
	if filter.AcademicYear != "" {
		where = append(where, squirrel.Eq{"academic_year": filter.AcademicYear})
	}
	if filter.Status != "" {
		where = append(where, squirrel.Eq{"status": filter.Status})
	}
	if filter.Gender != "" {
		where = append(where, squirrel.Eq{"gender": filter.Gender})
	}
	if filter.Placed != nil {
		if *filter.Placed {
			where = append(where, squirrel.NotEq{"class_name": nil})
		} else {
			where = append(where, squirrel.Eq{"class_name": nil})
		}
	}
	if filter.Transferred != nil {
		where = append(where, squirrel.Eq{"transferred": *filter.Transferred})
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + search + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"full_name": pattern},
			squirrel.ILike{"origin_school": pattern},
			squirrel.ILike{"nis": pattern},
		})
	}
	return where
}

// List returns one page of candidates matching filter and the total match count
func (r *CandidateRepository) List(ctx context.Context, filter models.CandidateFilter) ([]models.Candidate, int64, error) {
	where := candidateFilterCondition(filter)

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("candidates").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count candidates query: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error executing count candidates query")
		return nil, 0, fmt.Errorf("failed to count candidates: %w", err)
	}
	if total == 0 {
		return []models.Candidate{}, 0, nil
	}

	q := r.sb.Select(candidateColumns...).
		From("candidates").
		Where(where).
		OrderBy("created_at ASC", "id ASC").
		Offset(filter.Offset)
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}

	candidates, err := r.query(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	return candidates, total, nil
}

// UpdateStatus records an admission decision on a candidate that has no class yet
func (r *CandidateRepository) UpdateStatus(ctx context.Context, id int64, status models.AdmissionStatus) error {
	sql, args, err := r.sb.Update("candidates").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "class_name": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update status query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to update candidate status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.explainMiss(ctx, id)
	}
	return nil
}

// ListUnassignedAccepted returns the accepted candidates of a year that have no class yet
func (r *CandidateRepository) ListUnassignedAccepted(ctx context.Context, academicYear string) ([]models.Candidate, error) {
	return r.query(ctx, r.sb.Select(candidateColumns...).
		From("candidates").
		Where(squirrel.Eq{
			"academic_year": academicYear,
			"status":        models.StatusAccepted,
			"class_name":    nil,
			"nis":           nil,
			"transferred":   false,
		}).
		OrderBy("id ASC"))
}

// ListPlaced returns the candidates of a year that have a class, ordered by class, NIS and name
func (r *CandidateRepository) ListPlaced(ctx context.Context, academicYear string) ([]models.Candidate, error) {
	return r.query(ctx, r.sb.Select(candidateColumns...).
		From("candidates").
		Where(squirrel.Eq{"academic_year": academicYear}).
		Where(squirrel.NotEq{"class_name": nil}).
		OrderBy("class_name ASC", "nis ASC NULLS LAST", "full_name ASC"))
}

// ListTransferable returns accepted, placed candidates of a year not yet in the roster
func (r *CandidateRepository) ListTransferable(ctx context.Context, academicYear string) ([]models.Candidate, error) {
	return r.query(ctx, r.sb.Select(candidateColumns...).
		From("candidates").
		Where(squirrel.Eq{
			"academic_year": academicYear,
			"status":        models.StatusAccepted,
			"transferred":   false,
		}).
		Where(squirrel.NotEq{"class_name": nil, "nis": nil}).
		OrderBy("nis ASC", "id ASC"))
}

// placementUpdate only matches accepted candidates without a class or NIS, so a
// candidate that already holds a NIS is never renumbered.
func placementUpdate(sb squirrel.StatementBuilderType, id int64, className, nis string) squirrel.UpdateBuilder {
	return sb.Update("candidates").
		Set("class_name", className).
		Set("nis", nis).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"id":          id,
			"status":      models.StatusAccepted,
			"transferred": false,
			"class_name":  nil,
			"nis":         nil,
		})
}

// UpdatePlacement writes the class and NIS of one accepted, unplaced candidate
func (r *CandidateRepository) UpdatePlacement(ctx context.Context, id int64, className, nis string) error {
	sql, args, err := placementUpdate(r.sb, id, className, nis).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update placement query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, candidateNISConstraint) {
			return fmt.Errorf("NIS %s: %w", nis, apperrors.ErrNISAlreadyExists)
		}
		return fmt.Errorf("failed to update candidate placement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.explainMiss(ctx, id)
	}
	return nil
}

// MarkTransferred flags a candidate as copied into the roster. Runs inside the transfer transaction.
func (r *CandidateRepository) MarkTransferred(ctx context.Context, tx pgx.Tx, id int64, at time.Time) error {
	sql, args, err := r.sb.Update("candidates").
		Set("transferred", true).
		Set("transferred_at", at).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "transferred": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build mark transferred query: %w", err)
	}

	tag, err := tx.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to mark candidate transferred: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("candidate %d: %w", id, apperrors.ErrConflict)
	}
	return nil
}

// explainMiss turns a zero-row update into not-found or not-eligible
func (r *CandidateRepository) explainMiss(ctx context.Context, id int64) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return fmt.Errorf("candidate %d: %w", id, apperrors.ErrCandidateNotEligible)
}
