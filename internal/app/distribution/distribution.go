package distribution

import (
	"sort"

	"github.com/yigit/spmb/internal/app/models"
)

// Distribution maps a class name to the ordered candidates placed in it.
//
// A candidate ID appears in at most one class. List order is significant: it
// is the order in which identifiers are handed out.
type Distribution map[string][]models.Candidate

// ClassNames returns the class names in ascending order.
func (d Distribution) ClassNames() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Total returns the number of placed candidates across all classes.
func (d Distribution) Total() int {
	total := 0
	for _, list := range d {
		total += len(list)
	}
	return total
}

// Locate finds the class and position of a candidate.
func (d Distribution) Locate(candidateID int64) (className string, index int, ok bool) {
	for name, list := range d {
		if i := indexOf(list, candidateID); i >= 0 {
			return name, i, true
		}
	}
	return "", -1, false
}

// Clone returns a deep copy of the class lists. Candidates are copied by value.
func (d Distribution) Clone() Distribution {
	out := make(Distribution, len(d))
	for name, list := range d {
		cp := make([]models.Candidate, len(list))
		copy(cp, list)
		out[name] = cp
	}
	return out
}

// Equal reports whether both distributions have the same classes holding the
// same candidate IDs in the same order.
func (d Distribution) Equal(other Distribution) bool {
	if len(d) != len(other) {
		return false
	}
	for name, list := range d {
		otherList, ok := other[name]
		if !ok || len(otherList) != len(list) {
			return false
		}
		for i := range list {
			if list[i].ID != otherList[i].ID {
				return false
			}
		}
	}
	return true
}

// ClassSummary is the gender breakdown of one class.
type ClassSummary struct {
	ClassName string `json:"className"`
	Male      int    `json:"male"`
	Female    int    `json:"female"`
	Total     int    `json:"total"`
}

// Summarize returns one ClassSummary per class, ordered by class name.
func Summarize(d Distribution) []ClassSummary {
	summaries := make([]ClassSummary, 0, len(d))
	for _, name := range d.ClassNames() {
		s := ClassSummary{ClassName: name}
		for _, c := range d[name] {
			if c.Gender == models.GenderMale {
				s.Male++
			} else {
				s.Female++
			}
		}
		s.Total = len(d[name])
		summaries = append(summaries, s)
	}
	return summaries
}

func indexOf(list []models.Candidate, candidateID int64) int {
	for i := range list {
		if list[i].ID == candidateID {
			return i
		}
	}
	return -1
}
