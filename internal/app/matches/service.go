package matches

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	domainmatches "tennis-referee-service/internal/domain/matches"
	"tennis-referee-service/internal/history"
	"tennis-referee-service/internal/logging"
	"tennis-referee-service/internal/metrics"
	"tennis-referee-service/internal/providers"
	"tennis-referee-service/internal/scoring"
)

// Store persists live matches.
type Store interface {
	Put(m domainmatches.Match)
	Get(id string) (domainmatches.Match, bool)
	Delete(id string) bool
	List() []domainmatches.Match
	ByCourt(courtID string) (domainmatches.Match, bool)
}

// Service runs live matches: it feeds referee input to the scoring engine, keeps the
// result in the store, and reports every transition to the publisher.
type Service struct {
	engine    *scoring.Engine
	store     Store
	catalog   Catalog
	archive   history.Archive
	publisher providers.EventPublisher
	stats     providers.StatisticsSink
	logger    *slog.Logger
	recorder  *metrics.Recorder
	now       func() time.Time
	newID     func() string

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// Option customizes a Service.
type Option func(*Service)

// WithPublisher sets the destination for overlay events.
func WithPublisher(p providers.EventPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithStatisticsSink sets the destination for end-of-match statistics.
func WithStatisticsSink(sink providers.StatisticsSink) Option {
	return func(s *Service) { s.stats = sink }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(recorder *metrics.Recorder) Option {
	return func(s *Service) { s.recorder = recorder }
}

// WithClock overrides the time source for match bookkeeping and event timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides how match ids are assigned.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// NewService constructs a Service.
func NewService(engine *scoring.Engine, store Store, catalog Catalog, archive history.Archive, opts ...Option) *Service {
	s := &Service{
		engine:  engine,
		store:   store,
		catalog: catalog,
		archive: archive,
		now:     time.Now,
		newID:   uuid.NewString,
		locks:   make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create registers a new match awaiting the first server.
func (s *Service) Create(ctx context.Context, params CreateParams) (domainmatches.Match, error) {
	court, ok := s.catalog.GetCourt(params.CourtID)
	if !ok {
		return domainmatches.Match{}, fmt.Errorf("%w: unknown court %q", ErrInvalidRequest, params.CourtID)
	}
	if !court.IsAvailable {
		return domainmatches.Match{}, fmt.Errorf("%w: court %s is unavailable", ErrCourtBusy, court.ID)
	}
	lineup, err := params.lineup(s.catalog)
	if err != nil {
		return domainmatches.Match{}, err
	}

	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	if live, ok := s.store.ByCourt(court.ID); ok {
		return domainmatches.Match{}, fmt.Errorf("%w: match %s is live on court %s", ErrCourtBusy, live.ID, court.ID)
	}

	now := s.now()
	m := domainmatches.Match{
		ID:        s.newID(),
		Court:     court,
		Lineup:    lineup,
		State:     scoring.NewState(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.store.Put(m)

	logging.Info(s.logFor(ctx), "match created",
		logging.FieldMatchID, m.ID,
		logging.FieldCourtID, court.ID,
		"format", lineup.Kind(),
	)
	return m, nil
}

// Get returns a live match.
func (s *Service) Get(id string) (domainmatches.Match, error) {
	m, ok := s.store.Get(id)
	if !ok {
		return domainmatches.Match{}, ErrNotFound
	}
	return m, nil
}

// List returns all live matches, oldest first.
func (s *Service) List() []domainmatches.Match {
	return s.store.List()
}

// SetFirstServer starts the match.
func (s *Service) SetFirstServer(ctx context.Context, id string, side scoring.Side) (domainmatches.Match, error) {
	unlock := s.lock(id)
	defer unlock()

	m, ok := s.store.Get(id)
	if !ok {
		s.forget(id)
		return domainmatches.Match{}, ErrNotFound
	}
	next, err := s.engine.SetFirstServer(m.State, side)
	if err != nil {
		return m, err
	}

	m = s.commit(m, next)
	s.recorder.RecordMatchStarted()
	logging.Info(s.logFor(ctx), "match started",
		logging.FieldMatchID, m.ID,
		logging.FieldCourtID, m.Court.ID,
		"server", side.String(),
	)
	s.publish(ctx, m, domainmatches.EventMatchStart)
	return m, nil
}

// Apply runs one referee event against a live match.
func (s *Service) Apply(ctx context.Context, id string, ev scoring.Event) (domainmatches.Match, []scoring.Change, error) {
	unlock := s.lock(id)
	defer unlock()

	m, ok := s.store.Get(id)
	if !ok {
		s.forget(id)
		return domainmatches.Match{}, nil, ErrNotFound
	}
	ev.Label = actorLabel(m, ev)
	next, changes, err := s.engine.Apply(m.State, ev)
	s.recorder.RecordScoringEvent(string(ev.Kind), err != nil)
	if err != nil {
		logging.Debug(s.logFor(ctx), "event rejected",
			logging.FieldMatchID, id,
			logging.FieldEvent, string(ev.Kind),
			"err", err,
		)
		return m, nil, err
	}

	m = s.commit(m, next)
	if next.IsMatchFinished {
		s.recorder.RecordMatchFinished(next.Duration(next.FinishedAt))
		winner, _ := next.Winner()
		logging.Info(s.logFor(ctx), "match finished",
			logging.FieldMatchID, m.ID,
			logging.FieldCourtID, m.Court.ID,
			"winner", m.SideName(winner),
		)
	}
	for _, change := range changes {
		if eventType, ok := domainmatches.EventTypeFor(change.Kind); ok {
			s.publish(ctx, m, eventType)
		}
	}
	return m, changes, nil
}

// SwapSides records a manual change of ends.
func (s *Service) SwapSides(ctx context.Context, id string) (domainmatches.Match, error) {
	m, _, err := s.Apply(ctx, id, scoring.Event{Kind: scoring.EventSwapSides})
	return m, err
}

// Undo reverts the last recorded event and returns its description. The overlay is
// resynchronized with a point event carrying the restored score.
func (s *Service) Undo(ctx context.Context, id string) (domainmatches.Match, string, error) {
	unlock := s.lock(id)
	defer unlock()

	m, ok := s.store.Get(id)
	if !ok {
		s.forget(id)
		return domainmatches.Match{}, "", ErrNotFound
	}
	next, description, err := s.engine.Undo(m.State)
	s.recorder.RecordUndo(err != nil)
	if err != nil {
		return m, "", err
	}

	m = s.commit(m, next)
	logging.Info(s.logFor(ctx), "event undone",
		logging.FieldMatchID, m.ID,
		"description", description,
	)
	s.publish(ctx, m, domainmatches.EventPoint)
	return m, description, nil
}

// Close archives a finished match, reports its statistics and removes it from the live set.
func (s *Service) Close(ctx context.Context, id string) (domainmatches.Record, error) {
	unlock := s.lock(id)
	defer unlock()

	m, ok := s.store.Get(id)
	if !ok {
		s.forget(id)
		if _, err := s.archive.Get(ctx, id); err == nil {
			return domainmatches.Record{}, ErrAlreadyClosed
		}
		return domainmatches.Record{}, ErrNotFound
	}
	record, err := domainmatches.NewRecord(m)
	if err != nil {
		return domainmatches.Record{}, err
	}

	if err := s.archive.Save(ctx, record); err != nil {
		if errors.Is(err, history.ErrExists) {
			s.forget(id)
			return domainmatches.Record{}, ErrAlreadyClosed
		}
		return domainmatches.Record{}, fmt.Errorf("archive match %s: %w", id, err)
	}
	s.forget(id)

	s.submitStatistics(ctx, record)
	return record, nil
}

// actorLabel names the acting side in undo descriptions by its display name.
func actorLabel(m domainmatches.Match, ev scoring.Event) string {
	if ev.Label != "" {
		return ev.Label
	}
	switch ev.Kind {
	case scoring.EventAce, scoring.EventFault, scoring.EventBallInPlay:
		return m.SideName(m.State.Server())
	case scoring.EventWinner, scoring.EventForcedError, scoring.EventUnforcedError:
		if ev.Side.Valid() {
			return m.SideName(ev.Side)
		}
	}
	return ""
}

func (s *Service) commit(m domainmatches.Match, next scoring.State) domainmatches.Match {
	m.State = next
	m.UpdatedAt = s.now()
	s.store.Put(m)
	return m
}

// forget drops the match and its lock entry; ids that never existed leave nothing behind.
func (s *Service) forget(id string) {
	s.store.Delete(id)
	s.locksMu.Lock()
	delete(s.locks, id)
	s.locksMu.Unlock()
}

func (s *Service) publish(ctx context.Context, m domainmatches.Match, eventType domainmatches.EventType) {
	if s.publisher == nil {
		return
	}
	event := domainmatches.NewEvent(m, eventType, s.now())
	if err := s.publisher.PublishEvent(ctx, event); err != nil {
		logging.Warn(s.logFor(ctx), "event not published",
			logging.FieldMatchID, m.ID,
			logging.FieldEvent, string(eventType),
			"err", err,
		)
	}
}

func (s *Service) submitStatistics(ctx context.Context, record domainmatches.Record) {
	if s.stats == nil {
		return
	}
	report := domainmatches.NewStatisticsReport(record)
	if err := s.stats.SubmitStatistics(ctx, report); err != nil {
		logging.Warn(s.logFor(ctx), "statistics not submitted",
			logging.FieldMatchID, record.ID,
			"err", err,
		)
		return
	}
	logging.Info(s.logFor(ctx), "statistics submitted", logging.FieldMatchID, record.ID)
}

// lock serializes transitions of one match.
func (s *Service) lock(id string) func() {
	s.locksMu.Lock()
	mu, ok := s.locks[id]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[id] = mu
	}
	s.locksMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

func (s *Service) logFor(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}
