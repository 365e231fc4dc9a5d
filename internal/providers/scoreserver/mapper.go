package scoreserver

import (
	"strconv"

	"tennis-referee-service/internal/domain/courts"
	"tennis-referee-service/internal/domain/players"
)

func mapCourt(c courtResponse) courts.Court {
	court := courts.Court{
		ID:          c.ID,
		OverlayID:   deref(c.OverlayID),
		Name:        deref(c.Name),
		IsAvailable: true,
	}
	if c.IsAvailable != nil {
		court.IsAvailable = *c.IsAvailable
	}
	if c.CurrentMatchID != nil {
		court.CurrentMatchID = strconv.Itoa(*c.CurrentMatchID)
	}
	return court
}

func mapPlayer(p playerResponse) players.Player {
	return players.Player{
		ID:      p.ID,
		Name:    p.Name,
		Flag:    deref(p.Flag),
		FlagURL: deref(p.FlagURL),
		Group:   deref(p.Group),
		List:    deref(p.List),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
