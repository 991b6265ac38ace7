package models

import "time"

// Student defines a permanent roster entry based on the 'students' table
type Student struct {
	ID                int64     `json:"id" db:"id" example:"1"`
	NIS               string    `json:"nis" db:"nis" example:"25.26.07.001"`
	FullName          string    `json:"fullName" db:"full_name" example:"Ahmad Fauzi"`
	ClassName         string    `json:"className" db:"class_name" example:"7A"`
	AcademicYear      string    `json:"academicYear" db:"academic_year" example:"2025/2026"`
	Gender            Gender    `json:"gender" db:"gender" example:"L"`
	Active            bool      `json:"active" db:"active" example:"true"`
	SourceCandidateID *int64    `json:"sourceCandidateId,omitempty" db:"source_candidate_id"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
}

// NewStudentFromCandidate copies the roster fields of a placed candidate
func NewStudentFromCandidate(c *Candidate) *Student {
	id := c.ID
	s := &Student{
		FullName:          c.FullName,
		AcademicYear:      c.AcademicYear,
		Gender:            c.Gender,
		Active:            true,
		SourceCandidateID: &id,
	}
	if c.NIS != nil {
		s.NIS = *c.NIS
	}
	if c.ClassName != nil {
		s.ClassName = *c.ClassName
	}
	return s
}
