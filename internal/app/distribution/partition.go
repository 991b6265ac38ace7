package distribution

import (
	"sort"

	"github.com/yigit/spmb/internal/app/models"
)

// Partition splits candidates into a male group and a female group, each
// stably sorted by origin school name. Anyone not coded as male lands in the
// second group. The input slice is not modified.
func Partition(candidates []models.Candidate) (male, female []models.Candidate) {
	male = make([]models.Candidate, 0, len(candidates))
	female = make([]models.Candidate, 0, len(candidates))

	for _, c := range candidates {
		if c.Gender == models.GenderMale {
			male = append(male, c)
		} else {
			female = append(female, c)
		}
	}

	sortByOriginSchool(male)
	sortByOriginSchool(female)
	return male, female
}

func sortByOriginSchool(list []models.Candidate) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].OriginSchool < list[j].OriginSchool
	})
}
