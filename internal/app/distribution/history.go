package distribution

// DefaultHistoryDepth is the number of undo steps kept when none is configured.
const DefaultHistoryDepth = 50

// History keeps the snapshots of a draft so edits can be undone and redone.
// It is not safe for concurrent use; callers serialize access.
type History struct {
	past    []Distribution
	current Distribution
	future  []Distribution
	depth   int
}

// NewHistory starts a history at the given snapshot.
func NewHistory(initial Distribution, depth int) *History {
	if depth <= 0 {
		depth = DefaultHistoryDepth
	}
	return &History{current: initial, depth: depth}
}

// Current returns the latest snapshot.
func (h *History) Current() Distribution {
	return h.current
}

// Apply records next as the current snapshot and clears the redo stack.
// It returns false when next does not differ from the current snapshot.
func (h *History) Apply(next Distribution) bool {
	if next.Equal(h.current) {
		return false
	}
	h.past = append(h.past, h.current)
	if len(h.past) > h.depth {
		h.past = h.past[len(h.past)-h.depth:]
	}
	h.current = next
	h.future = nil
	return true
}

// Undo steps back one snapshot.
func (h *History) Undo() bool {
	if len(h.past) == 0 {
		return false
	}
	h.future = append(h.future, h.current)
	h.current = h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	return true
}

// Redo re-applies the last undone snapshot.
func (h *History) Redo() bool {
	if len(h.future) == 0 {
		return false
	}
	h.past = append(h.past, h.current)
	h.current = h.future[len(h.future)-1]
	h.future = h.future[:len(h.future)-1]
	return true
}

// CanUndo reports whether Undo would change the current snapshot.
func (h *History) CanUndo() bool { return len(h.past) > 0 }

// CanRedo reports whether Redo would change the current snapshot.
func (h *History) CanRedo() bool { return len(h.future) > 0 }
