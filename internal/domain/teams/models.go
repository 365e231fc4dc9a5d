package teams

import (
	"strings"

	"tennis-referee-service/internal/domain/players"
)

// Team is one side of a doubles match.
type Team struct {
	Name    string            `json:"name,omitempty"`
	Players [2]players.Player `json:"players"`
}

// DisplayName returns the team name, or the partners joined by a slash when unnamed.
func (t Team) DisplayName() string {
	if name := strings.TrimSpace(t.Name); name != "" {
		return name
	}
	return t.Players[0].DisplayName() + " / " + t.Players[1].DisplayName()
}
