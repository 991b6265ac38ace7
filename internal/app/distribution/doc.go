// Package distribution places admitted candidates into classes.
//
// The package is pure: it never touches storage. A draft distribution is built by
// Distribute, edited with the copy-on-write mutators (Move, Remove, Add, Swap) and
// finally numbered by GenerateIdentifiers, whose Placements are handed to the
// persistence layer.
//
// Basic usage:
//
//	d, err := distribution.Distribute(candidates, 6, "7")
//	if err != nil {
//	    return err
//	}
//	d, err = distribution.Move(d, candidateID, "7A", "7C")
//	placements, err := distribution.GenerateIdentifiers(d, "2025/2026", "07")
package distribution
