package fixture

import (
	"context"
	"sync"

	"tennis-referee-service/internal/domain/courts"
	"tennis-referee-service/internal/domain/matches"
	"tennis-referee-service/internal/domain/players"
)

// DefaultPIN unlocks every fixture court.
const DefaultPIN = "1234"

// Provider serves a static venue for local runs and tests. Published events and
// statistics are kept in memory.
type Provider struct {
	pin string

	mu      sync.Mutex
	events  []matches.Event
	reports []matches.StatisticsReport
}

// New creates a fixture provider that accepts DefaultPIN.
func New() *Provider {
	return &Provider{pin: DefaultPIN}
}

// FetchCourts returns a deterministic set of courts.
func (p *Provider) FetchCourts(ctx context.Context) ([]courts.Court, error) {
	return []courts.Court{
		{ID: "1", OverlayID: "overlay-1", Name: "Centre Court", IsAvailable: true},
		{ID: "2", OverlayID: "overlay-2", Name: "Court 2", IsAvailable: true},
		{ID: "3", OverlayID: "overlay-3", IsAvailable: true},
		{ID: "4", IsAvailable: false},
	}, nil
}

// FetchPlayers returns a deterministic set of players.
func (p *Provider) FetchPlayers(ctx context.Context) ([]players.Player, error) {
	return []players.Player{
		{ID: 1, Name: "Anna Kowalska", Flag: "pl", Group: "A", List: "main"},
		{ID: 2, Name: "Maria Nowak", Flag: "pl", Group: "A", List: "main"},
		{ID: 3, Name: "Emma Schmidt", Flag: "de", Group: "B", List: "main"},
		{ID: 4, Name: "Lucia Rossi", Flag: "it", Group: "B", List: "main"},
		{ID: 5, Name: "Sofia Garcia", Flag: "es", Group: "C", List: "reserve"},
		{ID: 6, Name: "Chloe Martin", Flag: "fr", Group: "C", List: "reserve"},
	}, nil
}

// AuthorizeCourt accepts the fixture PIN for any court.
func (p *Provider) AuthorizeCourt(ctx context.Context, courtID, pin string) (bool, error) {
	return courtID != "" && pin == p.pin, nil
}

// PublishEvent records event.
func (p *Provider) PublishEvent(ctx context.Context, event matches.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

// SubmitStatistics records report.
func (p *Provider) SubmitStatistics(ctx context.Context, report matches.StatisticsReport) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reports = append(p.reports, report)
	return nil
}

// Events returns a copy of the published events.
func (p *Provider) Events() []matches.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]matches.Event(nil), p.events...)
}

// Reports returns a copy of the submitted statistics.
func (p *Provider) Reports() []matches.StatisticsReport {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]matches.StatisticsReport(nil), p.reports...)
}
