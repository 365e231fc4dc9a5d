package testutil

import (
	"time"

	"tennis-referee-service/internal/domain/courts"
	"tennis-referee-service/internal/domain/matches"
	"tennis-referee-service/internal/domain/players"
	"tennis-referee-service/internal/scoring"
	"tennis-referee-service/internal/store"
)

// SampleCourts returns two open courts and one closed court.
func SampleCourts() []courts.Court {
	return []courts.Court{
		{ID: "1", OverlayID: "ov-1", Name: "Centre Court", IsAvailable: true},
		{ID: "2", Name: "Court 2", IsAvailable: true},
		{ID: "3", Name: "Court 3", IsAvailable: false},
	}
}

// SamplePlayers returns four players split across two groups.
func SamplePlayers() []players.Player {
	return []players.Player{
		{ID: 1, Name: "Anna Kowalska", Flag: "pl", Group: "A"},
		{ID: 2, Name: "Beatriz Silva", Flag: "br", Group: "A"},
		{ID: 3, Name: "Chloe Martin", Flag: "fr", Group: "B"},
		{ID: 4, Name: "Dana Novak", Flag: "cz", Group: "B"},
	}
}

// NewCatalog returns a catalog store loaded with the sample courts and players.
func NewCatalog() *store.CatalogStore {
	c := store.NewCatalogStore()
	c.SetCourts(SampleCourts())
	c.SetPlayers(SamplePlayers())
	return c
}

// SampleRecord returns a finished singles match won 4-1 4-2 by side 1.
func SampleRecord(id, courtID string, finished time.Time) matches.Record {
	ps := SamplePlayers()
	return matches.Record{
		ID:         id,
		CourtID:    courtID,
		CourtName:  "Court " + courtID,
		Lineup:     matches.Lineup{Format: matches.Singles{Player1: ps[0], Player2: ps[1]}},
		StartedAt:  finished.Add(-time.Hour),
		FinishedAt: finished,
		DurationMS: time.Hour.Milliseconds(),
		SetsHistory: []scoring.SetScore{
			{SetNumber: 1, Player1Games: 4, Player2Games: 1},
			{SetNumber: 2, Player1Games: 4, Player2Games: 2},
		},
		Player1:    matches.SideSummary{Name: ps[0].Name, Sets: 2},
		Player2:    matches.SideSummary{Name: ps[1].Name},
		Winner:     scoring.Side1,
		WinnerName: ps[0].Name,
	}
}
