package matches

import (
	"time"

	"tennis-referee-service/internal/domain/courts"
	"tennis-referee-service/internal/scoring"
)

// Status is the coarse lifecycle of a match.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusFinished   Status = "finished"
)

// Match is one live match: who plays where, and the current score.
type Match struct {
	ID        string        `json:"id"`
	Court     courts.Court  `json:"court"`
	Lineup    Lineup        `json:"format"`
	State     scoring.State `json:"state"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// Status derives the lifecycle from the score.
func (m Match) Status() Status {
	switch {
	case m.State.IsMatchFinished:
		return StatusFinished
	case m.State.Phase == scoring.PhaseServerSelection:
		return StatusNotStarted
	default:
		return StatusInProgress
	}
}

// SideName returns the display name of side.
func (m Match) SideName(side scoring.Side) string {
	if m.Lineup.Format == nil {
		return side.String()
	}
	return m.Lineup.SideName(side)
}

// Clone returns a copy that shares no mutable memory with m.
func (m Match) Clone() Match {
	m.State = m.State.Clone()
	return m
}
