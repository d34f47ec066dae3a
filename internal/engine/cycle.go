package engine

// StateHistory remembers every graph snapshot seen so far and the press
// index at which it was first observed.
//
// Aggregate records the initial state as index 0 and the state after press
// i as index i. The first snapshot that is already present closes a loop:
// the state after press i equals the state after press loopStart, so
// presses loopStart+1 .. i repeat forever with period i - loopStart.
//
// Snapshots are stored by value; memory grows with the loop length, which
// is bounded by 2^bits but in practice by the number of presses simulated
// before the first repeat.
type StateHistory struct {
	seen map[Snapshot]int64
}

// NewStateHistory creates an empty history.
func NewStateHistory() *StateHistory {
	return &StateHistory{
		seen: make(map[Snapshot]int64),
	}
}

// Seen returns the index at which s was first recorded.
func (h *StateHistory) Seen(s Snapshot) (int64, bool) {
	idx, ok := h.seen[s]
	return idx, ok
}

// Record stores s at index idx unless it is already present. It returns the
// earlier index and true when s was already present.
func (h *StateHistory) Record(s Snapshot, idx int64) (int64, bool) {
	if prev, ok := h.seen[s]; ok {
		return prev, true
	}
	h.seen[s] = idx
	return idx, false
}

// Len returns the number of distinct snapshots recorded.
func (h *StateHistory) Len() int {
	return len(h.seen)
}

// Clear forgets every snapshot.
func (h *StateHistory) Clear() {
	clear(h.seen)
}
