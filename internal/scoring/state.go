package scoring

import (
	"slices"
	"time"
)

// Side identifies one half of the match: a singles player or a doubles team.
type Side int

const (
	Side1 Side = 1
	Side2 Side = 2
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == Side1 {
		return Side2
	}
	return Side1
}

// Valid reports whether s names one of the two sides.
func (s Side) Valid() bool {
	return s == Side1 || s == Side2
}

func (s Side) String() string {
	switch s {
	case Side1:
		return "player1"
	case Side2:
		return "player2"
	default:
		return "unknown"
	}
}

// Phase is the input the engine expects next.
type Phase string

const (
	PhaseServerSelection Phase = "server_selection"
	PhaseServe           Phase = "serve"
	PhaseRally           Phase = "rally"
	PhaseMatchFinished   Phase = "match_finished"
)

// Stats are the per-side counters collected while scoring.
type Stats struct {
	Aces              int `json:"aces"`
	DoubleFaults      int `json:"doubleFaults"`
	Winners           int `json:"winners"`
	ForcedErrors      int `json:"forcedErrors"`
	UnforcedErrors    int `json:"unforcedErrors"`
	FirstServesIn     int `json:"firstServesIn"`
	FirstServesTotal  int `json:"firstServesTotal"`
	SecondServesIn    int `json:"secondServesIn"`
	SecondServesTotal int `json:"secondServesTotal"`
}

// FirstServePercentage returns the truncated share of first serves that landed in.
func (s Stats) FirstServePercentage() int {
	return percentage(s.FirstServesIn, s.FirstServesTotal)
}

// SecondServePercentage returns the truncated share of second serves that landed in.
func (s Stats) SecondServePercentage() int {
	return percentage(s.SecondServesIn, s.SecondServesTotal)
}

func percentage(in, total int) int {
	if total <= 0 {
		return 0
	}
	return in * 100 / total
}

// SetScore is the final game count of a completed set.
type SetScore struct {
	SetNumber    int `json:"setNumber"`
	Player1Games int `json:"player1Games"`
	Player2Games int `json:"player2Games"`
}

// SideScore holds the counters that belong to one side.
type SideScore struct {
	Points int   `json:"points"`
	Games  int   `json:"games"`
	Sets   int   `json:"sets"`
	Stats  Stats `json:"stats"`
}

// State is the complete score of one match. Values are never mutated by the
// engine once returned; every transition produces a new State.
type State struct {
	Player1 SideScore `json:"player1"`
	Player2 SideScore `json:"player2"`

	// SetsHistory is append-only, except that undo may drop trailing entries.
	SetsHistory []SetScore `json:"setsHistory"`

	IsPlayer1Serving bool `json:"isPlayer1Serving"`
	IsFirstServe     bool `json:"isFirstServe"`
	IsTiebreak       bool `json:"isTiebreak"`
	IsSuperTiebreak  bool `json:"isSuperTiebreak"`
	IsMatchFinished  bool `json:"isMatchFinished"`
	SidesSwapped     bool `json:"sidesSwapped"`

	// TotalGamesPlayed counts completed regular games in the current set.
	TotalGamesPlayed int `json:"totalGamesPlayed"`

	Phase      Phase     `json:"phase"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`

	history []Snapshot
}

// NewState returns the score of a match whose first server is not chosen yet.
func NewState() State {
	return State{
		SetsHistory:      []SetScore{},
		IsPlayer1Serving: true,
		IsFirstServe:     true,
		Phase:            PhaseServerSelection,
	}
}

// Side returns a copy of the counters for side.
func (s State) Side(side Side) SideScore {
	if side == Side2 {
		return s.Player2
	}
	return s.Player1
}

func (s *State) side(side Side) *SideScore {
	if side == Side2 {
		return &s.Player2
	}
	return &s.Player1
}

// Server returns the side currently serving.
func (s State) Server() Side {
	if s.IsPlayer1Serving {
		return Side1
	}
	return Side2
}

// InTiebreak reports whether points are counted as a tiebreak of either kind.
func (s State) InTiebreak() bool {
	return s.IsTiebreak || s.IsSuperTiebreak
}

// Winner returns the side that won the match, if it is finished.
func (s State) Winner() (Side, bool) {
	if !s.IsMatchFinished {
		return 0, false
	}
	switch {
	case s.Player1.Sets > s.Player2.Sets:
		return Side1, true
	case s.Player2.Sets > s.Player1.Sets:
		return Side2, true
	default:
		return 0, false
	}
}

// Duration returns how long the match has lasted, measured to now while it is in progress.
func (s State) Duration(now time.Time) time.Duration {
	if s.StartedAt.IsZero() {
		return 0
	}
	end := now
	if s.IsMatchFinished && !s.FinishedAt.IsZero() {
		end = s.FinishedAt
	}
	if end.Before(s.StartedAt) {
		return 0
	}
	return end.Sub(s.StartedAt)
}

// CanUndo reports whether there is at least one recorded action to revert.
func (s State) CanUndo() bool {
	return len(s.history) > 0
}

// History returns a copy of the recorded snapshots, oldest first.
func (s State) History() []Snapshot {
	return slices.Clone(s.history)
}

// Clone returns a State that shares no mutable memory with s.
func (s State) Clone() State {
	c := s
	c.SetsHistory = slices.Clip(slices.Clone(s.SetsHistory))
	if c.SetsHistory == nil {
		c.SetsHistory = []SetScore{}
	}
	c.history = slices.Clip(slices.Clone(s.history))
	return c
}
