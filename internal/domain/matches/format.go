package matches

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"tennis-referee-service/internal/domain/players"
	"tennis-referee-service/internal/domain/teams"
	"tennis-referee-service/internal/scoring"
)

// FormatKind tags the variant carried by a Lineup.
type FormatKind string

const (
	KindSingles FormatKind = "singles"
	KindDoubles FormatKind = "doubles"
)

// ErrInvalidFormat reports a lineup that cannot be scored.
var ErrInvalidFormat = errors.New("invalid match format")

// Format names who plays on each side. Scoring only ever sees side 1 and side 2;
// identity and display belong to the format.
type Format interface {
	Kind() FormatKind
	SideName(side scoring.Side) string
	// Flag returns the flag code shown for side on overlays.
	Flag(side scoring.Side) string
	Validate() error
}

// Singles is a one-against-one match.
type Singles struct {
	Player1 players.Player `json:"player1"`
	Player2 players.Player `json:"player2"`
}

func (Singles) Kind() FormatKind { return KindSingles }

func (s Singles) SideName(side scoring.Side) string {
	return s.player(side).DisplayName()
}

func (s Singles) Flag(side scoring.Side) string {
	return s.player(side).Flag
}

func (s Singles) player(side scoring.Side) players.Player {
	if side == scoring.Side2 {
		return s.Player2
	}
	return s.Player1
}

func (s Singles) Validate() error {
	if s.Player1.Name == "" || s.Player2.Name == "" {
		return fmt.Errorf("%w: both players need a name", ErrInvalidFormat)
	}
	if s.Player1.ID != 0 && s.Player1.ID == s.Player2.ID {
		return fmt.Errorf("%w: player %d cannot face themselves", ErrInvalidFormat, s.Player1.ID)
	}
	return nil
}

// Doubles is a two-against-two match.
type Doubles struct {
	Team1 teams.Team `json:"team1"`
	Team2 teams.Team `json:"team2"`
}

func (Doubles) Kind() FormatKind { return KindDoubles }

func (d Doubles) SideName(side scoring.Side) string {
	return d.team(side).DisplayName()
}

// Flag returns the flag of the first listed partner.
func (d Doubles) Flag(side scoring.Side) string {
	return d.team(side).Players[0].Flag
}

func (d Doubles) Validate() error {
	seen := make(map[int]bool, 4)
	for _, team := range []teams.Team{d.Team1, d.Team2} {
		for _, p := range team.Players {
			if p.Name == "" {
				return fmt.Errorf("%w: every doubles player needs a name", ErrInvalidFormat)
			}
			if p.ID != 0 && seen[p.ID] {
				return fmt.Errorf("%w: player %d appears twice", ErrInvalidFormat, p.ID)
			}
			seen[p.ID] = true
		}
	}
	return nil
}

func (d Doubles) team(side scoring.Side) teams.Team {
	if side == scoring.Side2 {
		return d.Team2
	}
	return d.Team1
}

// Lineup carries a Format through JSON as {"kind": "...", ...variant fields}.
type Lineup struct {
	Format
}

type lineupWire struct {
	Kind    FormatKind      `json:"kind"`
	Player1 *players.Player `json:"player1,omitempty"`
	Player2 *players.Player `json:"player2,omitempty"`
	Team1   *teams.Team     `json:"team1,omitempty"`
	Team2   *teams.Team     `json:"team2,omitempty"`
}

func (l Lineup) MarshalJSON() ([]byte, error) {
	switch f := l.Format.(type) {
	case Singles:
		return json.Marshal(lineupWire{Kind: KindSingles, Player1: &f.Player1, Player2: &f.Player2})
	case Doubles:
		return json.Marshal(lineupWire{Kind: KindDoubles, Team1: &f.Team1, Team2: &f.Team2})
	case nil:
		return []byte("null"), nil
	default:
		return nil, fmt.Errorf("%w: unsupported format %T", ErrInvalidFormat, l.Format)
	}
}

func (l *Lineup) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		l.Format = nil
		return nil
	}
	var wire lineupWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	switch wire.Kind {
	case KindSingles:
		if wire.Player1 == nil || wire.Player2 == nil {
			return fmt.Errorf("%w: singles needs player1 and player2", ErrInvalidFormat)
		}
		l.Format = Singles{Player1: *wire.Player1, Player2: *wire.Player2}
	case KindDoubles:
		if wire.Team1 == nil || wire.Team2 == nil {
			return fmt.Errorf("%w: doubles needs team1 and team2", ErrInvalidFormat)
		}
		l.Format = Doubles{Team1: *wire.Team1, Team2: *wire.Team2}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidFormat, wire.Kind)
	}
	return nil
}
