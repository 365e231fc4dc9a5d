package players

import "tennis-referee-service/internal/domain/players"

// Store is the read side of the player catalog.
type Store interface {
	ListPlayers() []players.Player
	GetPlayer(id int) (players.Player, bool)
}

// Service coordinates player operations using a Store.
type Service struct {
	store Store
}

// NewService constructs a Service with the provided Store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Players returns the current set of players.
func (s *Service) Players() []players.Player {
	return s.store.ListPlayers()
}

// PlayersInGroup returns players whose group matches; an empty group returns everyone.
func (s *Service) PlayersInGroup(group string) []players.Player {
	all := s.store.ListPlayers()
	if group == "" {
		return all
	}
	out := make([]players.Player, 0, len(all))
	for _, p := range all {
		if p.Group == group {
			out = append(out, p)
		}
	}
	return out
}

// PlayerByID returns a single player if present.
func (s *Service) PlayerByID(id int) (players.Player, bool) {
	return s.store.GetPlayer(id)
}
