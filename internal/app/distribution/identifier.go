package distribution

import (
	"fmt"
	"regexp"
	"strconv"
)

// MaxOrdinal is the largest ordinal a 3-digit identifier field can hold.
const MaxOrdinal = 999

// DefaultGradeMarker marks identifiers issued to grade 7 intakes.
const DefaultGradeMarker = "07"

var (
	yearPairPattern    = regexp.MustCompile(`^(\d{4})/(\d{4})$`)
	gradeMarkerPattern = regexp.MustCompile(`^\d{2}$`)
)

// Placement is the final class and identifier of one candidate.
type Placement struct {
	CandidateID int64  `json:"candidateId"`
	ClassName   string `json:"className"`
	NIS         string `json:"nis"`
}

// ParseYearPair splits "2025/2026" into the two-digit fragments "25" and "26".
// The second year must follow the first.
func ParseYearPair(pair string) (start, end string, err error) {
	m := yearPairPattern.FindStringSubmatch(pair)
	if m == nil {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidYearPair, pair)
	}
	first, _ := strconv.Atoi(m[1])
	second, _ := strconv.Atoi(m[2])
	if second != first+1 {
		return "", "", fmt.Errorf("%w: %q is not consecutive", ErrInvalidYearPair, pair)
	}
	return m[1][2:], m[2][2:], nil
}

// FormatIdentifier renders one identifier, e.g. "25.26.07.001".
func FormatIdentifier(start, end, gradeMarker string, ordinal int) string {
	return fmt.Sprintf("%s.%s.%s.%03d", start, end, gradeMarker, ordinal)
}

// GenerateIdentifiers numbers every candidate of a finalized distribution.
//
// Classes are walked in ascending name order and each class list in its
// existing order; the ordinal is global and starts at 1. The capacity check
// runs before any identifier is produced, so the result is all or nothing.
//
// Parameters:
//   - d: the finalized distribution
//   - yearPair: academic year pair, e.g. "2025/2026"
//   - gradeMarker: two-digit grade marker, e.g. "07"
//
// Returns:
//   - []Placement: one entry per candidate in ordinal order
//   - error: ErrInvalidYearPair, ErrInvalidGradeMarker or ErrIdentifierSpaceExhausted
func GenerateIdentifiers(d Distribution, yearPair, gradeMarker string) ([]Placement, error) {
	start, end, err := ParseYearPair(yearPair)
	if err != nil {
		return nil, err
	}
	if !gradeMarkerPattern.MatchString(gradeMarker) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidGradeMarker, gradeMarker)
	}

	total := d.Total()
	if total > MaxOrdinal {
		return nil, fmt.Errorf("%w: %d candidates, at most %d", ErrIdentifierSpaceExhausted, total, MaxOrdinal)
	}

	placements := make([]Placement, 0, total)
	ordinal := 0
	for _, name := range d.ClassNames() {
		for _, c := range d[name] {
			ordinal++
			placements = append(placements, Placement{
				CandidateID: c.ID,
				ClassName:   name,
				NIS:         FormatIdentifier(start, end, gradeMarker, ordinal),
			})
		}
	}

	return placements, nil
}
