package dto

import (
	"time"

	"github.com/yigit/spmb/internal/app/distribution"
	"github.com/yigit/spmb/internal/app/models"
)

// GenerateDistributionRequest starts a new draft. A nil ClassCount uses the configured default;
// any other value is clamped to the supported range.
type GenerateDistributionRequest struct {
	ClassCount *int `json:"classCount,omitempty" example:"6"`
}

// MoveCandidateRequest moves a candidate between two classes of a draft
type MoveCandidateRequest struct {
	CandidateID int64  `json:"candidateId" validate:"required,gt=0" example:"12"`
	FromClass   string `json:"fromClass" validate:"required,class_name" example:"7A"`
	ToClass     string `json:"toClass" validate:"required,class_name" example:"7B"`
}

// RemoveCandidateRequest takes a candidate out of a draft
type RemoveCandidateRequest struct {
	CandidateID int64 `json:"candidateId" validate:"required,gt=0" example:"12"`
}

// AddCandidateRequest puts a stored candidate into a class of a draft
type AddCandidateRequest struct {
	CandidateID int64  `json:"candidateId" validate:"required,gt=0" example:"12"`
	ClassName   string `json:"className" validate:"required,class_name" example:"7C"`
}

// SwapCandidatesRequest exchanges two candidates of different classes
type SwapCandidatesRequest struct {
	CandidateA int64  `json:"candidateA" validate:"required,gt=0" example:"12"`
	ClassA     string `json:"classA" validate:"required,class_name" example:"7A"`
	CandidateB int64  `json:"candidateB" validate:"required,gt=0" example:"31"`
	ClassB     string `json:"classB" validate:"required,class_name,nefield=ClassA" example:"7B"`
}

// TransferRosterRequest selects the academic year to transfer; empty uses the configured year
type TransferRosterRequest struct {
	AcademicYear string `json:"academicYear,omitempty" validate:"omitempty,academic_year" example:"2025/2026"`
}

// DraftCandidate is a candidate entry inside a draft class
type DraftCandidate struct {
	ID           int64  `json:"id" example:"12"`
	FullName     string `json:"fullName" example:"Ahmad Fauzi"`
	Gender       string `json:"gender" example:"L"`
	OriginSchool string `json:"originSchool" example:"SDN 1 Sukamaju"`
}

// DraftClass is one class of a draft in list order
type DraftClass struct {
	ClassName  string           `json:"className" example:"7A"`
	Male       int              `json:"male" example:"14"`
	Female     int              `json:"female" example:"13"`
	Total      int              `json:"total" example:"27"`
	Candidates []DraftCandidate `json:"candidates"`
}

// DraftResponse is the API view of a distribution draft
type DraftResponse struct {
	ID           string                   `json:"id" example:"2f1c4d2e-8d1e-4d0f-9b7a-0f6f2c1e5a10"`
	AcademicYear string                   `json:"academicYear" example:"2025/2026"`
	GradeLevel   string                   `json:"gradeLevel" example:"7"`
	Total        int                      `json:"total" example:"162"`
	Classes      []DraftClass             `json:"classes"`
	CanUndo      bool                     `json:"canUndo"`
	CanRedo      bool                     `json:"canRedo"`
	Finalized    bool                     `json:"finalized"`
	Placements   []distribution.Placement `json:"placements,omitempty"`
	Result       *models.BatchResult      `json:"result,omitempty"`
	CreatedAt    time.Time                `json:"createdAt"`
	UpdatedAt    time.Time                `json:"updatedAt"`
}

// FromDistribution lists the classes of d in ascending name order with their summaries
func FromDistribution(d distribution.Distribution) []DraftClass {
	summaries := distribution.Summarize(d)
	classes := make([]DraftClass, 0, len(summaries))
	for _, s := range summaries {
		members := d[s.ClassName]
		entries := make([]DraftCandidate, 0, len(members))
		for _, c := range members {
			entries = append(entries, DraftCandidate{
				ID:           c.ID,
				FullName:     c.FullName,
				Gender:       string(c.Gender),
				OriginSchool: c.OriginSchool,
			})
		}
		classes = append(classes, DraftClass{
			ClassName:  s.ClassName,
			Male:       s.Male,
			Female:     s.Female,
			Total:      s.Total,
			Candidates: entries,
		})
	}
	return classes
}
