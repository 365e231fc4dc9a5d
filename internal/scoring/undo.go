package scoring

import (
	"slices"
	"time"
)

// Snapshot is the score as it stood immediately before one recorded action.
type Snapshot struct {
	Kind        EventKind `json:"kind"`
	Side        Side      `json:"side,omitempty"`
	Description string    `json:"description"`
	RecordedAt  time.Time `json:"recordedAt"`

	setsLen int
	before  State
}

// SetsHistoryLen is the number of completed sets when the snapshot was taken.
func (s Snapshot) SetsHistoryLen() int {
	return s.setsLen
}

// State returns the captured score without its sets history.
func (s Snapshot) State() State {
	return s.before
}

// recordSnapshot pushes a capture of every mutable field of s onto its own history.
// It must run once per event, before the event mutates anything.
func recordSnapshot(s State, kind EventKind, side Side, description string, at time.Time) State {
	before := s
	before.SetsHistory = nil
	before.history = nil

	next := s
	next.history = append(slices.Clip(s.history), Snapshot{
		Kind:        kind,
		Side:        side,
		Description: description,
		RecordedAt:  at,
		setsLen:     len(s.SetsHistory),
		before:      before,
	})
	return next
}

// restore reverts s to the most recent snapshot and reports what was undone.
func restore(s State) (State, Snapshot, error) {
	if len(s.history) == 0 {
		return s, Snapshot{}, ErrNothingToUndo
	}
	last := len(s.history) - 1
	snap := s.history[last]

	prev := snap.before
	setsLen := min(snap.setsLen, len(s.SetsHistory))
	prev.SetsHistory = slices.Clip(s.SetsHistory[:setsLen])
	if last > 0 {
		prev.history = slices.Clip(s.history[:last])
	}
	return prev, snap, nil
}
