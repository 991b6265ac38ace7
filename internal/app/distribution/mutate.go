package distribution

import (
	"fmt"

	"github.com/yigit/spmb/internal/app/models"
)

// The mutators never modify their input. On error the input is returned
// untouched alongside the error; on a no-op the input itself is returned.

// Move relocates a candidate from one class to the end of another.
func Move(d Distribution, candidateID int64, from, to string) (Distribution, error) {
	if from == to {
		return d, nil
	}
	if _, ok := d[to]; !ok {
		return d, fmt.Errorf("%w: %s", ErrUnknownClass, to)
	}
	idx := indexOf(d[from], candidateID)
	if idx < 0 {
		return d, fmt.Errorf("%w: candidate %d not in %s", ErrStaleReference, candidateID, from)
	}

	out := d.Clone()
	c := out[from][idx]
	out[from] = removeAt(out[from], idx)
	out[to] = append(out[to], c)
	return out, nil
}

// Remove takes a candidate out of the distribution entirely.
func Remove(d Distribution, candidateID int64) (Distribution, error) {
	name, idx, ok := d.Locate(candidateID)
	if !ok {
		return d, fmt.Errorf("%w: candidate %d", ErrCandidateNotPlaced, candidateID)
	}

	out := d.Clone()
	out[name] = removeAt(out[name], idx)
	return out, nil
}

// Add appends a candidate to a class, first removing it from any other class.
// Adding a candidate to the class it already sits in is a no-op.
func Add(d Distribution, className string, c models.Candidate) (Distribution, error) {
	if _, ok := d[className]; !ok {
		return d, fmt.Errorf("%w: %s", ErrUnknownClass, className)
	}

	current, idx, placed := d.Locate(c.ID)
	if placed && current == className {
		return d, nil
	}

	out := d.Clone()
	if placed {
		out[current] = removeAt(out[current], idx)
	}
	out[className] = append(out[className], c)
	return out, nil
}

// Swap exchanges two candidates sitting in different classes. Each takes the
// other's position in the class list.
func Swap(d Distribution, candidateA int64, classA string, candidateB int64, classB string) (Distribution, error) {
	if classA == classB {
		return d, fmt.Errorf("%w: %s", ErrSameClass, classA)
	}
	ia := indexOf(d[classA], candidateA)
	if ia < 0 {
		return d, fmt.Errorf("%w: candidate %d not in %s", ErrStaleReference, candidateA, classA)
	}
	ib := indexOf(d[classB], candidateB)
	if ib < 0 {
		return d, fmt.Errorf("%w: candidate %d not in %s", ErrStaleReference, candidateB, classB)
	}

	out := d.Clone()
	out[classA][ia], out[classB][ib] = out[classB][ib], out[classA][ia]
	return out, nil
}

// removeAt expects a list it owns.
func removeAt(list []models.Candidate, idx int) []models.Candidate {
	return append(list[:idx], list[idx+1:]...)
}
