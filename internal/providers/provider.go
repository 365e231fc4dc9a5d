package providers

import (
	"context"

	"tennis-referee-service/internal/domain/courts"
	"tennis-referee-service/internal/domain/matches"
	"tennis-referee-service/internal/domain/players"
)

// CatalogProvider supplies the courts and players a referee can choose from.
type CatalogProvider interface {
	FetchCourts(ctx context.Context) ([]courts.Court, error)
	FetchPlayers(ctx context.Context) ([]players.Player, error)
}

// CourtAuthorizer verifies a court PIN against the venue.
type CourtAuthorizer interface {
	AuthorizeCourt(ctx context.Context, courtID, pin string) (bool, error)
}

// EventPublisher delivers overlay events.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event matches.Event) error
}

// StatisticsSink receives the statistics of a closed match.
type StatisticsSink interface {
	SubmitStatistics(ctx context.Context, report matches.StatisticsReport) error
}

// ScoreServer is everything the remote score server offers.
type ScoreServer interface {
	CatalogProvider
	CourtAuthorizer
	EventPublisher
	StatisticsSink
}
