package fixture

import (
	"context"
	"testing"

	"tennis-referee-service/internal/domain/matches"
	"tennis-referee-service/internal/providers"
)

var _ providers.ScoreServer = (*Provider)(nil)

func TestFetchCourtsReturnsDeterministicCourts(t *testing.T) {
	p := New()
	list, err := p.FetchCourts(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(list) != 4 {
		t.Fatalf("expected 4 courts, got %d", len(list))
	}
	if list[0].ID != "1" || list[0].DisplayName() != "Centre Court" {
		t.Fatalf("unexpected first court %+v", list[0])
	}
	if list[3].IsAvailable {
		t.Fatalf("expected last court to be unavailable")
	}
}

func TestFetchPlayersReturnsDeterministicPlayers(t *testing.T) {
	list, err := New().FetchPlayers(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(list) != 6 || list[0].ID != 1 || list[0].Flag != "pl" {
		t.Fatalf("unexpected players %+v", list)
	}
}

func TestAuthorizeCourtChecksPIN(t *testing.T) {
	p := New()
	if ok, _ := p.AuthorizeCourt(context.Background(), "1", DefaultPIN); !ok {
		t.Fatalf("expected default pin to be accepted")
	}
	if ok, _ := p.AuthorizeCourt(context.Background(), "1", "9999"); ok {
		t.Fatalf("expected wrong pin to be refused")
	}
	if ok, _ := p.AuthorizeCourt(context.Background(), "", DefaultPIN); ok {
		t.Fatalf("expected empty court to be refused")
	}
}

func TestPublishedEventsAndReportsAreRecorded(t *testing.T) {
	p := New()
	_ = p.PublishEvent(context.Background(), matches.Event{EventType: matches.EventMatchStart})
	_ = p.SubmitStatistics(context.Background(), matches.StatisticsReport{MatchID: "m1"})

	events := p.Events()
	if len(events) != 1 || events[0].EventType != matches.EventMatchStart {
		t.Fatalf("unexpected events %+v", events)
	}
	events[0].CourtID = "mutated"
	if p.Events()[0].CourtID == "mutated" {
		t.Fatalf("expected a copy of the events")
	}
	if reports := p.Reports(); len(reports) != 1 || reports[0].MatchID != "m1" {
		t.Fatalf("unexpected reports %+v", reports)
	}
}
