package dto

import (
	"time"

	"github.com/yigit/spmb/internal/app/models"
)

// StudentResponse is one row of the permanent roster
type StudentResponse struct {
	ID                int64     `json:"id" example:"1"`
	NIS               string    `json:"nis" example:"25.26.07.001"`
	FullName          string    `json:"fullName" example:"Ahmad Fauzi"`
	ClassName         string    `json:"className" example:"7A"`
	Gender            string    `json:"gender" example:"L"`
	Active            bool      `json:"active" example:"true"`
	SourceCandidateID *int64    `json:"sourceCandidateId,omitempty" example:"12"`
	CreatedAt         time.Time `json:"createdAt"`
}

// RosterResponse lists the roster of one academic year
type RosterResponse struct {
	AcademicYear string            `json:"academicYear" example:"2025/2026"`
	ClassName    string            `json:"className,omitempty" example:"7A"`
	Total        int               `json:"total" example:"162"`
	Students     []StudentResponse `json:"students"`
}

func FromStudent(s *models.Student) StudentResponse {
	return StudentResponse{
		ID:                s.ID,
		NIS:               s.NIS,
		FullName:          s.FullName,
		ClassName:         s.ClassName,
		Gender:            string(s.Gender),
		Active:            s.Active,
		SourceCandidateID: s.SourceCandidateID,
		CreatedAt:         s.CreatedAt,
	}
}
