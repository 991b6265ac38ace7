package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	CandidateRepository *CandidateRepository
	StudentRepository   *StudentRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	candidates := NewCandidateRepository(db)
	return &Repositories{
		CandidateRepository: candidates,
		StudentRepository:   NewStudentRepository(db, candidates),
	}
}
