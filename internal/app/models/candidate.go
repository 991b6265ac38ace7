package models

import (
	"time"
)

// Candidate defines an admission applicant based on the 'candidates' table
type Candidate struct {
	ID            int64           `json:"id" db:"id" example:"1"`
	FullName      string          `json:"fullName" db:"full_name" example:"Ahmad Fauzi"`
	Gender        Gender          `json:"gender" db:"gender" example:"L"`
	OriginSchool  string          `json:"originSchool" db:"origin_school" example:"SDN 1 Sukamaju"`
	Status        AdmissionStatus `json:"status" db:"status" example:"accepted"`
	AcademicYear  string          `json:"academicYear" db:"academic_year" example:"2025/2026"`
	ClassName     *string         `json:"className,omitempty" db:"class_name" example:"7A"`
	NIS           *string         `json:"nis,omitempty" db:"nis" example:"25.26.07.001"`
	Transferred   bool            `json:"transferred" db:"transferred"`
	TransferredAt *time.Time      `json:"transferredAt,omitempty" db:"transferred_at"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
}

// IsPlaced reports whether the candidate already has a class
func (c *Candidate) IsPlaced() bool {
	return c.ClassName != nil && *c.ClassName != ""
}

// CandidateFilter constrains candidate listing queries
type CandidateFilter struct {
	AcademicYear string
	Status       AdmissionStatus
	Gender       Gender
	Placed       *bool
	Transferred  *bool
	Search       string
	Offset       uint64
	Limit        int
}
