package store

import (
	"cmp"
	"slices"
	"strconv"
	"sync"

	"tennis-referee-service/internal/domain/courts"
	"tennis-referee-service/internal/domain/players"
)

// CatalogStore keeps a thread-safe snapshot of courts and players in memory.
type CatalogStore struct {
	mu      sync.RWMutex
	courts  map[string]courts.Court
	players map[int]players.Player
}

// NewCatalogStore constructs an empty CatalogStore.
func NewCatalogStore() *CatalogStore {
	return &CatalogStore{
		courts:  make(map[string]courts.Court),
		players: make(map[int]players.Player),
	}
}

// ListCourts returns the courts ordered by id, numerically when ids are numbers.
func (s *CatalogStore) ListCourts() []courts.Court {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]courts.Court, 0, len(s.courts))
	for _, c := range s.courts {
		result = append(result, c)
	}
	slices.SortFunc(result, func(a, b courts.Court) int { return compareIDs(a.ID, b.ID) })
	return result
}

// GetCourt retrieves a court by ID.
func (s *CatalogStore) GetCourt(id string) (courts.Court, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.courts[id]
	return c, ok
}

// SetCourts replaces the existing courts with a new snapshot.
func (s *CatalogStore) SetCourts(list []courts.Court) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.courts = make(map[string]courts.Court, len(list))
	for _, c := range list {
		s.courts[c.ID] = c
	}
}

// ListPlayers returns the players ordered by name.
func (s *CatalogStore) ListPlayers() []players.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]players.Player, 0, len(s.players))
	for _, p := range s.players {
		result = append(result, p)
	}
	slices.SortFunc(result, func(a, b players.Player) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return result
}

// GetPlayer retrieves a player by ID.
func (s *CatalogStore) GetPlayer(id int) (players.Player, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.players[id]
	return p, ok
}

// SetPlayers replaces the existing players with a new snapshot.
func (s *CatalogStore) SetPlayers(list []players.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.players = make(map[int]players.Player, len(list))
	for _, p := range list {
		s.players[p.ID] = p
	}
}

func compareIDs(a, b string) int {
	ai, errA := strconv.Atoi(a)
	bi, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return cmp.Compare(ai, bi)
	}
	return cmp.Compare(a, b)
}
