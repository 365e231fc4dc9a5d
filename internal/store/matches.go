package store

import (
	"slices"
	"sync"

	"tennis-referee-service/internal/domain/matches"
)

// MatchStore keeps live matches in memory. Values are cloned on the way in and out.
type MatchStore struct {
	mu      sync.RWMutex
	matches map[string]matches.Match
}

// NewMatchStore constructs an empty MatchStore.
func NewMatchStore() *MatchStore {
	return &MatchStore{matches: make(map[string]matches.Match)}
}

// Put inserts or replaces a match.
func (s *MatchStore) Put(m matches.Match) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[m.ID] = m.Clone()
}

// Get retrieves a match by ID.
func (s *MatchStore) Get(id string) (matches.Match, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.matches[id]
	if !ok {
		return matches.Match{}, false
	}
	return m.Clone(), true
}

// Delete removes a match and reports whether it was present.
func (s *MatchStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.matches[id]; !ok {
		return false
	}
	delete(s.matches, id)
	return true
}

// List returns live matches, oldest first.
func (s *MatchStore) List() []matches.Match {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]matches.Match, 0, len(s.matches))
	for _, m := range s.matches {
		result = append(result, m.Clone())
	}
	slices.SortFunc(result, func(a, b matches.Match) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return result
}

// ByCourt returns the live match on a court, if any.
func (s *MatchStore) ByCourt(courtID string) (matches.Match, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.matches {
		if m.Court.ID == courtID {
			return m.Clone(), true
		}
	}
	return matches.Match{}, false
}
