// Package history keeps a bounded, undoable trail of patch snapshots for
// one refinement session. The window slides: once the capacity is reached,
// adding a snapshot evicts the oldest one, initial patch included.
package history

import "github.com/voltlab/patchmind/internal/patch"

// DefaultCapacity is the number of snapshots retained per session.
const DefaultCapacity = 5

// History is the per-session undo stack. It is owned by exactly one
// session and is not safe for concurrent use; callers serialize turns.
type History struct {
	snapshots []*patch.Patch
	current   int
	capacity  int
}

// Option customizes history construction.
type Option func(*History)

// WithCapacity overrides the snapshot window size.
func WithCapacity(n int) Option {
	return func(h *History) {
		if n > 0 {
			h.capacity = n
		}
	}
}

// New starts a history seeded with the initial patch, which counts toward
// the capacity like any later snapshot.
func New(initial *patch.Patch, opts ...Option) *History {
	h := &History{capacity: DefaultCapacity}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	if initial != nil {
		h.snapshots = []*patch.Patch{initial.Clone()}
	}
	h.current = len(h.snapshots) - 1
	return h
}

// AddPatch appends a snapshot, evicting the oldest entry once the window is
// full, and points current at the new snapshot.
func (h *History) AddPatch(p *patch.Patch) {
	if p == nil {
		return
	}
	h.snapshots = append(h.snapshots, p.Clone())
	if len(h.snapshots) > h.capacity {
		h.snapshots = h.snapshots[len(h.snapshots)-h.capacity:]
	}
	h.current = len(h.snapshots) - 1
}

// Undo steps the current pointer back one snapshot and returns it. On a
// history with nothing earlier it reports false and changes nothing; that
// is a signal, not an error.
func (h *History) Undo() (*patch.Patch, bool) {
	if h.current <= 0 {
		return nil, false
	}
	h.current--
	return h.snapshots[h.current].Clone(), true
}

// CurrentPatch returns the snapshot under the current pointer.
func (h *History) CurrentPatch() (*patch.Patch, bool) {
	if h.current < 0 || h.current >= len(h.snapshots) {
		return nil, false
	}
	return h.snapshots[h.current].Clone(), true
}

// PreviousPatch peeks one snapshot back without moving the pointer.
func (h *History) PreviousPatch() (*patch.Patch, bool) {
	if h.current <= 0 {
		return nil, false
	}
	return h.snapshots[h.current-1].Clone(), true
}

// Snapshots returns a copy of the retained window, oldest first.
func (h *History) Snapshots() []*patch.Patch {
	out := make([]*patch.Patch, len(h.snapshots))
	for i, p := range h.snapshots {
		out[i] = p.Clone()
	}
	return out
}

// Len reports how many snapshots are retained.
func (h *History) Len() int {
	return len(h.snapshots)
}

// Clear empties the history. CurrentPatch afterwards reports false until a
// new snapshot arrives.
func (h *History) Clear() {
	h.snapshots = nil
	h.current = -1
}
