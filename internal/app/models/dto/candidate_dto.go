package dto

import (
	"time"

	"github.com/yigit/spmb/internal/app/models"
)

// CreateCandidateRequest represents an admission form submission
type CreateCandidateRequest struct {
	FullName     string `json:"fullName" validate:"required,min=2,max=150" example:"Ahmad Fauzi"`
	Gender       string `json:"gender" validate:"required,oneof=L P" example:"L"`
	OriginSchool string `json:"originSchool" validate:"max=150" example:"SDN 1 Sukamaju"`
	Status       string `json:"status,omitempty" validate:"omitempty,oneof=pending accepted rejected" example:"pending"`
}

// UpdateCandidateStatusRequest records an admission decision
type UpdateCandidateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending accepted rejected" example:"accepted"`
}

// CandidateFilterRequest carries list query parameters
type CandidateFilterRequest struct {
	AcademicYear string
	Status       string
	Gender       string
	Placed       *bool
	Transferred  *bool
	Search       string
	Page         int
	PageSize     int
}

// CandidateResponse is the API view of a candidate
type CandidateResponse struct {
	ID            int64      `json:"id" example:"1"`
	FullName      string     `json:"fullName" example:"Ahmad Fauzi"`
	Gender        string     `json:"gender" example:"L"`
	OriginSchool  string     `json:"originSchool" example:"SDN 1 Sukamaju"`
	Status        string     `json:"status" example:"accepted"`
	AcademicYear  string     `json:"academicYear" example:"2025/2026"`
	ClassName     *string    `json:"className,omitempty" example:"7A"`
	NIS           *string    `json:"nis,omitempty" example:"25.26.07.001"`
	Transferred   bool       `json:"transferred" example:"false"`
	TransferredAt *time.Time `json:"transferredAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// CandidateListResponse is a page of candidates
type CandidateListResponse struct {
	Candidates []CandidateResponse `json:"candidates"`
	Pagination PaginationInfo      `json:"pagination"`
}

// FromCandidate converts a model into its API view
func FromCandidate(c *models.Candidate) CandidateResponse {
	return CandidateResponse{
		ID:            c.ID,
		FullName:      c.FullName,
		Gender:        string(c.Gender),
		OriginSchool:  c.OriginSchool,
		Status:        string(c.Status),
		AcademicYear:  c.AcademicYear,
		ClassName:     c.ClassName,
		NIS:           c.NIS,
		Transferred:   c.Transferred,
		TransferredAt: c.TransferredAt,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

// ImportCandidatesResponse reports a CSV import. Failed IDs are 1-based data row numbers.
type ImportCandidatesResponse struct {
	Result      *models.BatchResult `json:"result"`
	ArchivePath string              `json:"archivePath,omitempty" example:"exports/imports/3f2c..._pendaftar.csv"`
}
