package server

import (
	"context"

	"tennis-referee-service/internal/poller"
)

// Poller defines the minimal catalog poller behavior needed by the server.
type Poller interface {
	Start(ctx context.Context)
	Stop(ctx context.Context) error
	Status() poller.Status
}

// backgroundPublisher is the lifecycle of the queued event publisher.
type backgroundPublisher interface {
	Start(ctx context.Context)
	Stop(ctx context.Context) error
}
