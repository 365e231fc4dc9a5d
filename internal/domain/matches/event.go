package matches

import (
	"time"

	"tennis-referee-service/internal/scoring"
)

// EventType is the overlay event vocabulary understood by the score server.
type EventType string

const (
	EventPoint       EventType = "point"
	EventGame        EventType = "game"
	EventSet         EventType = "set"
	EventMatchStart  EventType = "match_start"
	EventMatchEnd    EventType = "match_end"
	EventServeChange EventType = "serve_change"
	EventSideChange  EventType = "side_change"
)

// Event is an immutable overlay record describing the match right after a transition.
type Event struct {
	CourtID   string     `json:"court_id"`
	MatchID   string     `json:"match_id,omitempty"`
	EventType EventType  `json:"event_type"`
	Player1   PlayerInfo `json:"player1"`
	Player2   PlayerInfo `json:"player2"`
	Score     ScoreInfo  `json:"score"`
	// Timestamp is in Unix milliseconds.
	Timestamp int64 `json:"timestamp"`
}

// PlayerInfo identifies one side on the overlay.
type PlayerInfo struct {
	Name      string `json:"name"`
	Flag      string `json:"flag,omitempty"`
	IsServing bool   `json:"is_serving"`
}

// ScoreInfo is the full score carried by every overlay event.
type ScoreInfo struct {
	Player1Sets     int  `json:"player1_sets"`
	Player2Sets     int  `json:"player2_sets"`
	Player1Games    int  `json:"player1_games"`
	Player2Games    int  `json:"player2_games"`
	Player1Points   int  `json:"player1_points"`
	Player2Points   int  `json:"player2_points"`
	IsTiebreak      bool `json:"is_tiebreak"`
	IsSuperTiebreak bool `json:"is_super_tiebreak"`
	MatchFinished   bool `json:"match_finished"`
}

// EventTypeFor maps an engine change to the overlay vocabulary. Tiebreak entries have no
// overlay event of their own; the score flags of the next event carry them.
func EventTypeFor(kind scoring.ChangeKind) (EventType, bool) {
	switch kind {
	case scoring.ChangePoint:
		return EventPoint, true
	case scoring.ChangeGame:
		return EventGame, true
	case scoring.ChangeSet:
		return EventSet, true
	case scoring.ChangeMatchEnd:
		return EventMatchEnd, true
	case scoring.ChangeServe:
		return EventServeChange, true
	case scoring.ChangeSides:
		return EventSideChange, true
	default:
		return "", false
	}
}

// NewEvent snapshots m for the overlay. The overlay draws sides by court position,
// so the serving marker follows the sides swap.
func NewEvent(m Match, eventType EventType, at time.Time) Event {
	s := m.State
	p1Serving := s.IsPlayer1Serving != s.SidesSwapped

	return Event{
		CourtID:   m.Court.ID,
		MatchID:   m.ID,
		EventType: eventType,
		Player1:   PlayerInfo{Name: m.SideName(scoring.Side1), Flag: flagOf(m, scoring.Side1), IsServing: p1Serving},
		Player2:   PlayerInfo{Name: m.SideName(scoring.Side2), Flag: flagOf(m, scoring.Side2), IsServing: !p1Serving},
		Score: ScoreInfo{
			Player1Sets:     s.Player1.Sets,
			Player2Sets:     s.Player2.Sets,
			Player1Games:    s.Player1.Games,
			Player2Games:    s.Player2.Games,
			Player1Points:   s.Player1.Points,
			Player2Points:   s.Player2.Points,
			IsTiebreak:      s.IsTiebreak,
			IsSuperTiebreak: s.IsSuperTiebreak,
			MatchFinished:   s.IsMatchFinished,
		},
		Timestamp: at.UnixMilli(),
	}
}

func flagOf(m Match, side scoring.Side) string {
	if m.Lineup.Format == nil {
		return ""
	}
	return m.Lineup.Flag(side)
}
