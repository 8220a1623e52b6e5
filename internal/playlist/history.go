package playlist

// DefaultHistoryCapacity is the number of undo steps kept.
const DefaultHistoryCapacity = 10

// History is a bounded undo log of store snapshots. When full, pushing a new
// snapshot discards the oldest one. There is no redo.
type History struct {
	entries []Snapshot
	head    int // index of the oldest entry
	size    int
}

// NewHistory creates a history that keeps at most capacity snapshots.
// A non-positive capacity falls back to DefaultHistoryCapacity.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History{entries: make([]Snapshot, capacity)}
}

// Push records a snapshot as the most recent undo step.
func (h *History) Push(s Snapshot) {
	tail := (h.head + h.size) % len(h.entries)
	h.entries[tail] = s
	if h.size == len(h.entries) {
		h.head = (h.head + 1) % len(h.entries)
		return
	}
	h.size++
}

// Pop removes and returns the most recent snapshot.
func (h *History) Pop() (Snapshot, bool) {
	if h.size == 0 {
		return nil, false
	}
	tail := (h.head + h.size - 1) % len(h.entries)
	s := h.entries[tail]
	h.entries[tail] = nil
	h.size--
	return s, true
}

// Len returns the number of recoverable snapshots.
func (h *History) Len() int {
	return h.size
}

// Cap returns the maximum number of snapshots kept.
func (h *History) Cap() int {
	return len(h.entries)
}

// Clear drops every snapshot.
func (h *History) Clear() {
	for i := range h.entries {
		h.entries[i] = nil
	}
	h.head, h.size = 0, 0
}

// Editor couples a store with its undo history. Mutations that should be
// undoable call Checkpoint first.
type Editor struct {
	Store   *Store
	History *History
}

// NewEditor creates an empty store with a history of the given capacity.
func NewEditor(capacity int) *Editor {
	return &Editor{Store: NewStore(), History: NewHistory(capacity)}
}

// Checkpoint pushes a copy of the current store onto the history.
func (e *Editor) Checkpoint() {
	e.History.Push(e.Store.Snapshot())
}

// Undo replaces the store with the most recent snapshot.
// Returns false when there is nothing to undo.
func (e *Editor) Undo() bool {
	s, ok := e.History.Pop()
	if !ok {
		return false
	}
	e.Store.ReplaceAll(s)
	return true
}
