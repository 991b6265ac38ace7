package distribution

import (
	"fmt"

	"github.com/yigit/spmb/internal/app/models"
)

func newCandidate(id int64, gender models.Gender, school string) models.Candidate {
	return models.Candidate{
		ID:           id,
		FullName:     fmt.Sprintf("Candidate %d", id),
		Gender:       gender,
		OriginSchool: school,
		Status:       models.StatusAccepted,
		AcademicYear: "2025/2026",
	}
}

// roster builds male candidates with IDs 1..male and female candidates after them.
func roster(male, female int) []models.Candidate {
	out := make([]models.Candidate, 0, male+female)
	id := int64(1)
	for i := 0; i < male; i++ {
		out = append(out, newCandidate(id, models.GenderMale, fmt.Sprintf("SD %02d", i%5)))
		id++
	}
	for i := 0; i < female; i++ {
		out = append(out, newCandidate(id, models.GenderFemale, fmt.Sprintf("SD %02d", i%3)))
		id++
	}
	return out
}

func ids(list []models.Candidate) []int64 {
	out := make([]int64, len(list))
	for i, c := range list {
		out[i] = c.ID
	}
	return out
}

func countGender(list []models.Candidate, g models.Gender) int {
	n := 0
	for _, c := range list {
		if c.Gender == g {
			n++
		}
	}
	return n
}
