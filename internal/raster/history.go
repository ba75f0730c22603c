package raster

// DefaultHistoryLimit caps the undo history.
const DefaultHistoryLimit = 50

// History is a capped, chronological stack of snapshots. It is never empty: it is
// seeded with the cleared canvas and Undo cannot pop the last entry. There is no redo;
// a popped snapshot is discarded.
type History struct {
	entries []Snapshot
	limit   int
}

func NewHistory(seed Snapshot, limit int) *History {
	if limit < 1 {
		limit = DefaultHistoryLimit
	}
	return &History{entries: []Snapshot{seed}, limit: limit}
}

// Push appends s, dropping the oldest entry once the cap is exceeded.
func (h *History) Push(s Snapshot) {
	h.entries = append(h.entries, s)
	if len(h.entries) > h.limit {
		h.entries = append(h.entries[:0:0], h.entries[len(h.entries)-h.limit:]...)
	}
}

// Undo removes the newest entry and returns the new top. With a single entry it returns
// that entry and false.
func (h *History) Undo() (Snapshot, bool) {
	if len(h.entries) <= 1 {
		return h.Top(), false
	}
	h.entries = h.entries[:len(h.entries)-1]
	return h.Top(), true
}

func (h *History) Top() Snapshot {
	return h.entries[len(h.entries)-1]
}

func (h *History) Len() int {
	return len(h.entries)
}

// Reset replaces the whole stack with a single seed.
func (h *History) Reset(seed Snapshot) {
	h.entries = []Snapshot{seed}
}
