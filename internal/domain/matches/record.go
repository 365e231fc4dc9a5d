package matches

import (
	"errors"
	"time"

	"tennis-referee-service/internal/scoring"
)

// ErrNotFinished rejects archiving a match that is still being played.
var ErrNotFinished = errors.New("match not finished")

// SideSummary is the final line of one side in an archived match.
type SideSummary struct {
	Name                  string        `json:"name"`
	Sets                  int           `json:"sets"`
	Stats                 scoring.Stats `json:"stats"`
	FirstServePercentage  int           `json:"firstServePercentage"`
	SecondServePercentage int           `json:"secondServePercentage"`
}

// Record is the durable summary of a finished match.
type Record struct {
	ID          string             `json:"id"`
	CourtID     string             `json:"courtId"`
	CourtName   string             `json:"courtName,omitempty"`
	Lineup      Lineup             `json:"format"`
	StartedAt   time.Time          `json:"startedAt"`
	FinishedAt  time.Time          `json:"finishedAt"`
	DurationMS  int64              `json:"durationMs"`
	SetsHistory []scoring.SetScore `json:"setsHistory"`
	Player1     SideSummary        `json:"player1"`
	Player2     SideSummary        `json:"player2"`
	Winner      scoring.Side       `json:"winner"`
	WinnerName  string             `json:"winnerName"`
}

// NewRecord summarizes a finished match.
func NewRecord(m Match) (Record, error) {
	s := m.State
	winner, ok := s.Winner()
	if !ok {
		return Record{}, ErrNotFinished
	}
	sets := append([]scoring.SetScore{}, s.SetsHistory...)
	return Record{
		ID:          m.ID,
		CourtID:     m.Court.ID,
		CourtName:   m.Court.DisplayName(),
		Lineup:      m.Lineup,
		StartedAt:   s.StartedAt,
		FinishedAt:  s.FinishedAt,
		DurationMS:  s.Duration(s.FinishedAt).Milliseconds(),
		SetsHistory: sets,
		Player1:     summarize(m, scoring.Side1),
		Player2:     summarize(m, scoring.Side2),
		Winner:      winner,
		WinnerName:  m.SideName(winner),
	}, nil
}

// Side returns the summary for side.
func (r Record) Side(side scoring.Side) SideSummary {
	if side == scoring.Side2 {
		return r.Player2
	}
	return r.Player1
}

// Duration returns the playing time.
func (r Record) Duration() time.Duration {
	return time.Duration(r.DurationMS) * time.Millisecond
}

func summarize(m Match, side scoring.Side) SideSummary {
	sc := m.State.Side(side)
	return SideSummary{
		Name:                  m.SideName(side),
		Sets:                  sc.Sets,
		Stats:                 sc.Stats,
		FirstServePercentage:  sc.Stats.FirstServePercentage(),
		SecondServePercentage: sc.Stats.SecondServePercentage(),
	}
}

// StatisticsReport is the end-of-match statistics payload accepted by the score server.
type StatisticsReport struct {
	MatchID         string      `json:"match_id"`
	CourtID         string      `json:"court_id"`
	Player1Name     string      `json:"player1_name"`
	Player2Name     string      `json:"player2_name"`
	Player1Stats    PlayerStats `json:"player1_stats"`
	Player2Stats    PlayerStats `json:"player2_stats"`
	MatchDurationMS int64       `json:"match_duration_ms"`
	Winner          string      `json:"winner,omitempty"`
}

// PlayerStats is the per-side block of a StatisticsReport.
type PlayerStats struct {
	Aces                 int     `json:"aces"`
	DoubleFaults         int     `json:"double_faults"`
	Winners              int     `json:"winners"`
	ForcedErrors         int     `json:"forced_errors"`
	UnforcedErrors       int     `json:"unforced_errors"`
	FirstServes          int     `json:"first_serves"`
	FirstServesIn        int     `json:"first_serves_in"`
	FirstServePercentage float64 `json:"first_serve_percentage"`
}

// NewStatisticsReport converts an archived record into the score server payload.
func NewStatisticsReport(r Record) StatisticsReport {
	return StatisticsReport{
		MatchID:         r.ID,
		CourtID:         r.CourtID,
		Player1Name:     r.Player1.Name,
		Player2Name:     r.Player2.Name,
		Player1Stats:    playerStats(r.Player1),
		Player2Stats:    playerStats(r.Player2),
		MatchDurationMS: r.DurationMS,
		Winner:          r.WinnerName,
	}
}

func playerStats(s SideSummary) PlayerStats {
	return PlayerStats{
		Aces:                 s.Stats.Aces,
		DoubleFaults:         s.Stats.DoubleFaults,
		Winners:              s.Stats.Winners,
		ForcedErrors:         s.Stats.ForcedErrors,
		UnforcedErrors:       s.Stats.UnforcedErrors,
		FirstServes:          s.Stats.FirstServesTotal,
		FirstServesIn:        s.Stats.FirstServesIn,
		FirstServePercentage: float64(s.FirstServePercentage),
	}
}
