package eventlog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tennis-referee-service/internal/domain/matches"
	"tennis-referee-service/internal/logging"
	"tennis-referee-service/internal/metrics"
	"tennis-referee-service/internal/providers"
)

// Sink is a named destination of the fanout.
type Sink struct {
	Name      string
	Publisher providers.EventPublisher
}

// Fanout delivers each event to every sink. A failing sink does not stop the others;
// their errors are joined.
type Fanout struct {
	sinks    []Sink
	logger   *slog.Logger
	recorder *metrics.Recorder
}

// NewFanout builds a fanout over the non-nil sinks.
func NewFanout(logger *slog.Logger, recorder *metrics.Recorder, sinks ...Sink) *Fanout {
	kept := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s.Publisher != nil {
			kept = append(kept, s)
		}
	}
	return &Fanout{sinks: kept, logger: logger, recorder: recorder}
}

// Sinks returns the sink names in delivery order.
func (f *Fanout) Sinks() []string {
	names := make([]string, 0, len(f.sinks))
	for _, s := range f.sinks {
		names = append(names, s.Name)
	}
	return names
}

// PublishEvent sends event to all sinks in order.
func (f *Fanout) PublishEvent(ctx context.Context, event matches.Event) error {
	var errs []error
	for _, s := range f.sinks {
		err := s.Publisher.PublishEvent(ctx, event)
		f.recorder.RecordPublish(s.Name, err)
		if err != nil {
			logging.Warn(logging.FromContext(ctx, f.logger), "event sink failed",
				logging.FieldSink, s.Name,
				logging.FieldCourtID, event.CourtID,
				logging.FieldEvent, string(event.EventType),
				"err", err,
			)
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
		}
	}
	return errors.Join(errs...)
}
