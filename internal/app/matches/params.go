package matches

import (
	"fmt"

	"tennis-referee-service/internal/domain/courts"
	domainmatches "tennis-referee-service/internal/domain/matches"
	"tennis-referee-service/internal/domain/players"
	"tennis-referee-service/internal/domain/teams"
)

// CreateParams selects a court and the players of a new match by catalog id.
type CreateParams struct {
	CourtID string                   `json:"courtId"`
	Kind    domainmatches.FormatKind `json:"kind"`
	Player1 int                      `json:"player1,omitempty"`
	Player2 int                      `json:"player2,omitempty"`
	Team1   TeamParams               `json:"team1,omitempty"`
	Team2   TeamParams               `json:"team2,omitempty"`
}

// TeamParams names a doubles pairing.
type TeamParams struct {
	Name    string `json:"name,omitempty"`
	Players [2]int `json:"players"`
}

// Catalog resolves courts and players known to the service.
type Catalog interface {
	GetCourt(id string) (courts.Court, bool)
	GetPlayer(id int) (players.Player, bool)
}

func (p CreateParams) lineup(catalog Catalog) (domainmatches.Lineup, error) {
	kind := p.Kind
	if kind == "" {
		kind = domainmatches.KindSingles
	}

	var format domainmatches.Format
	switch kind {
	case domainmatches.KindSingles:
		p1, err := lookupPlayer(catalog, p.Player1)
		if err != nil {
			return domainmatches.Lineup{}, err
		}
		p2, err := lookupPlayer(catalog, p.Player2)
		if err != nil {
			return domainmatches.Lineup{}, err
		}
		format = domainmatches.Singles{Player1: p1, Player2: p2}
	case domainmatches.KindDoubles:
		t1, err := lookupTeam(catalog, p.Team1)
		if err != nil {
			return domainmatches.Lineup{}, err
		}
		t2, err := lookupTeam(catalog, p.Team2)
		if err != nil {
			return domainmatches.Lineup{}, err
		}
		format = domainmatches.Doubles{Team1: t1, Team2: t2}
	default:
		return domainmatches.Lineup{}, fmt.Errorf("%w: unknown format %q", ErrInvalidRequest, kind)
	}

	if err := format.Validate(); err != nil {
		return domainmatches.Lineup{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return domainmatches.Lineup{Format: format}, nil
}

func lookupPlayer(catalog Catalog, id int) (players.Player, error) {
	if id <= 0 {
		return players.Player{}, fmt.Errorf("%w: player id required", ErrInvalidRequest)
	}
	p, ok := catalog.GetPlayer(id)
	if !ok {
		return players.Player{}, fmt.Errorf("%w: unknown player %d", ErrInvalidRequest, id)
	}
	return p, nil
}

func lookupTeam(catalog Catalog, tp TeamParams) (teams.Team, error) {
	team := teams.Team{Name: tp.Name}
	for i, id := range tp.Players {
		p, err := lookupPlayer(catalog, id)
		if err != nil {
			return teams.Team{}, err
		}
		team.Players[i] = p
	}
	return team, nil
}
