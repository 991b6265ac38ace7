package distribution

import (
	"github.com/yigit/spmb/internal/app/models"
)

const (
	// MinClassCount is the smallest number of classes Distribute creates.
	MinClassCount = 1
	// MaxClassCount is bounded by single-letter class suffixes.
	MaxClassCount = 26
)

// ClampClassCount forces n into [MinClassCount, MaxClassCount].
func ClampClassCount(n int) int {
	if n < MinClassCount {
		return MinClassCount
	}
	if n > MaxClassCount {
		return MaxClassCount
	}
	return n
}

// ClassNames builds n class names from the grade level and a letter suffix
// starting at 'A', e.g. ClassNames("7", 3) = ["7A", "7B", "7C"].
func ClassNames(gradeLevel string, n int) []string {
	n = ClampClassCount(n)
	names := make([]string, n)
	for i := 0; i < n; i++ {
		names[i] = gradeLevel + string(rune('A'+i))
	}
	return names
}

// Distribute places candidates into classCount classes.
//
// The algorithm:
//  1. Partition candidates by gender, each group ordered by origin school
//  2. Deal the male group round-robin starting at the first class
//  3. Reset the index and deal the female group the same way
//
// Dealing each gender in its own pass keeps, for every pair of classes, the
// male counts within one of each other and the female counts within one of
// each other, whatever the group sizes are. Each class list ends up as its
// male run followed by its female run.
//
// Parameters:
//   - candidates: accepted candidates without a class
//   - classCount: number of classes, clamped to [1, 26]
//   - gradeLevel: class name prefix, e.g. "7"
//
// Returns:
//   - Distribution: exactly classCount keys, every candidate in exactly one list
//   - error: ErrEmptyRoster when candidates is empty
func Distribute(candidates []models.Candidate, classCount int, gradeLevel string) (Distribution, error) {
	if len(candidates) == 0 {
		return nil, ErrEmptyRoster
	}

	names := ClassNames(gradeLevel, classCount)
	d := make(Distribution, len(names))
	for _, name := range names {
		d[name] = []models.Candidate{}
	}

	male, female := Partition(candidates)
	dealRoundRobin(d, names, male)
	dealRoundRobin(d, names, female)

	return d, nil
}

func dealRoundRobin(d Distribution, names []string, group []models.Candidate) {
	for i, c := range group {
		name := names[i%len(names)]
		d[name] = append(d[name], c)
	}
}
