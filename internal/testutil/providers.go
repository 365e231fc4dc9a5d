package testutil

import (
	"context"
	"sync"

	"tennis-referee-service/internal/domain/courts"
	"tennis-referee-service/internal/domain/matches"
	"tennis-referee-service/internal/domain/players"
	"tennis-referee-service/internal/providers"
)

// StubScoreServer is an in-memory providers.ScoreServer. Err fails every call.
type StubScoreServer struct {
	Courts  []courts.Court
	Players []players.Player
	PIN     string
	Err     error

	mu      sync.Mutex
	events  []matches.Event
	reports []matches.StatisticsReport
}

var _ providers.ScoreServer = (*StubScoreServer)(nil)

func (s *StubScoreServer) FetchCourts(ctx context.Context) ([]courts.Court, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Courts, nil
}

func (s *StubScoreServer) FetchPlayers(ctx context.Context) ([]players.Player, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Players, nil
}

func (s *StubScoreServer) AuthorizeCourt(ctx context.Context, courtID, pin string) (bool, error) {
	if s.Err != nil {
		return false, s.Err
	}
	return pin == s.PIN, nil
}

func (s *StubScoreServer) PublishEvent(ctx context.Context, event matches.Event) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *StubScoreServer) SubmitStatistics(ctx context.Context, report matches.StatisticsReport) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, report)
	return nil
}

// Events returns the published events in order.
func (s *StubScoreServer) Events() []matches.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]matches.Event(nil), s.events...)
}

// Reports returns the submitted statistics reports in order.
func (s *StubScoreServer) Reports() []matches.StatisticsReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]matches.StatisticsReport(nil), s.reports...)
}

// NewStubScoreServer returns a stub serving the sample catalog with PIN "1234".
func NewStubScoreServer() *StubScoreServer {
	return &StubScoreServer{Courts: SampleCourts(), Players: SamplePlayers(), PIN: "1234"}
}

// NotifyingCatalog serves the sample catalog and closes Notify on the first court fetch.
type NotifyingCatalog struct {
	Notify chan struct{}
	once   sync.Once
}

func (p *NotifyingCatalog) FetchCourts(ctx context.Context) ([]courts.Court, error) {
	p.once.Do(func() {
		if p.Notify != nil {
			close(p.Notify)
		}
	})
	return SampleCourts(), nil
}

func (p *NotifyingCatalog) FetchPlayers(ctx context.Context) ([]players.Player, error) {
	return SamplePlayers(), nil
}
