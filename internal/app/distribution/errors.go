package distribution

import "errors"

var (
	// ErrEmptyRoster indicates there is nobody to distribute.
	ErrEmptyRoster = errors.New("no unassigned accepted candidates to distribute")

	// ErrIdentifierSpaceExhausted indicates more candidates than the 3-digit ordinal can number.
	ErrIdentifierSpaceExhausted = errors.New("identifier space exhausted")

	// ErrInvalidYearPair indicates an academic year pair not shaped like "2025/2026".
	ErrInvalidYearPair = errors.New("invalid academic year pair")

	// ErrInvalidGradeMarker indicates a grade marker that is not exactly two digits.
	ErrInvalidGradeMarker = errors.New("invalid grade marker")

	// ErrUnknownClass indicates a target class that is not a key of the distribution.
	ErrUnknownClass = errors.New("class is not part of the distribution")

	// ErrSameClass indicates a swap between two candidates of the same class.
	ErrSameClass = errors.New("both candidates are in the same class")

	// ErrStaleReference indicates a candidate is no longer in the class the caller expected.
	ErrStaleReference = errors.New("candidate is no longer in the expected class")

	// ErrCandidateNotPlaced indicates a candidate that does not appear in any class.
	ErrCandidateNotPlaced = errors.New("candidate is not in the distribution")
)
