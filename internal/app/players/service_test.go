package players

import (
	"testing"

	"tennis-referee-service/internal/domain/players"
)

type stubPlayerStore struct {
	items []players.Player
	byID  map[int]players.Player
}

func (s *stubPlayerStore) ListPlayers() []players.Player { return s.items }
func (s *stubPlayerStore) GetPlayer(id int) (players.Player, bool) {
	val, ok := s.byID[id]
	return val, ok
}

func TestPlayersService(t *testing.T) {
	store := &stubPlayerStore{
		items: []players.Player{{ID: 1, Name: "Ann"}},
		byID:  map[int]players.Player{1: {ID: 1, Name: "Ann"}},
	}
	svc := NewService(store)

	if len(svc.Players()) != 1 {
		t.Fatalf("expected players from store")
	}
	if _, ok := svc.PlayerByID(1); !ok {
		t.Fatalf("expected player by id")
	}
	if _, ok := svc.PlayerByID(2); ok {
		t.Fatalf("expected unknown player to be missing")
	}
}

func TestPlayersInGroup(t *testing.T) {
	store := &stubPlayerStore{items: []players.Player{
		{ID: 1, Name: "Ann", Group: "A"},
		{ID: 2, Name: "Bea", Group: "B"},
		{ID: 3, Name: "Cat", Group: "A"},
	}}
	svc := NewService(store)

	got := svc.PlayersInGroup("A")
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 3 {
		t.Fatalf("expected group A players, got %+v", got)
	}
	if len(svc.PlayersInGroup("")) != 3 {
		t.Fatalf("expected empty group to return everyone")
	}
}
