package matches

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tennis-referee-service/internal/domain/courts"
	domainmatches "tennis-referee-service/internal/domain/matches"
	"tennis-referee-service/internal/domain/players"
	"tennis-referee-service/internal/history"
	"tennis-referee-service/internal/metrics"
	"tennis-referee-service/internal/scoring"
	"tennis-referee-service/internal/store"
)

var clock = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domainmatches.Event
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, ev domainmatches.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []domainmatches.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domainmatches.EventType, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.EventType
	}
	return out
}

type recordingSink struct {
	reports []domainmatches.StatisticsReport
	err     error
}

func (s *recordingSink) SubmitStatistics(_ context.Context, r domainmatches.StatisticsReport) error {
	s.reports = append(s.reports, r)
	return s.err
}

type memArchive struct {
	mu      sync.Mutex
	records map[string]domainmatches.Record
	saveErr error
}

func newMemArchive() *memArchive {
	return &memArchive{records: make(map[string]domainmatches.Record)}
}

func (a *memArchive) Save(_ context.Context, r domainmatches.Record) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.saveErr != nil {
		return a.saveErr
	}
	if _, ok := a.records[r.ID]; ok {
		return history.ErrExists
	}
	a.records[r.ID] = r
	return nil
}

func (a *memArchive) Get(_ context.Context, id string) (domainmatches.Record, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	r, ok := a.records[id]
	if !ok {
		return domainmatches.Record{}, history.ErrNotFound
	}
	return r, nil
}

func (a *memArchive) List(context.Context, history.Query) ([]domainmatches.Record, error) {
	return nil, nil
}

func (a *memArchive) Delete(context.Context, string) error { return nil }

func (a *memArchive) Count(context.Context) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.records), nil
}

type fixture struct {
	svc       *Service
	live      *store.MatchStore
	archive   *memArchive
	publisher *recordingPublisher
	sink      *recordingSink
	recorder  *metrics.Recorder
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	rules := scoring.DefaultRules()
	rules.LenientPhases = true
	engine, err := scoring.NewEngine(rules, scoring.WithClock(func() time.Time { return clock }))
	require.NoError(t, err)

	catalog := store.NewCatalogStore()
	catalog.SetCourts([]courts.Court{
		{ID: "1", Name: "Centre Court", IsAvailable: true},
		{ID: "2", IsAvailable: true},
		{ID: "9", Name: "Closed", IsAvailable: false},
	})
	catalog.SetPlayers([]players.Player{
		{ID: 1, Name: "Ann", Flag: "pl"},
		{ID: 2, Name: "Bea", Flag: "cz"},
		{ID: 3, Name: "Cat"},
		{ID: 4, Name: "Dee"},
	})

	f := fixture{
		live:      store.NewMatchStore(),
		archive:   newMemArchive(),
		publisher: &recordingPublisher{},
		sink:      &recordingSink{},
		recorder:  metrics.NewRecorder(),
	}
	ids := 0
	f.svc = NewService(engine, f.live, catalog, f.archive,
		WithPublisher(f.publisher),
		WithStatisticsSink(f.sink),
		WithMetrics(f.recorder),
		WithClock(func() time.Time { return clock }),
		WithIDGenerator(func() string {
			ids++
			return fmt.Sprintf("m-%d", ids)
		}),
	)
	return f
}

func (f fixture) singles(t *testing.T, court string) domainmatches.Match {
	t.Helper()
	m, err := f.svc.Create(context.Background(), CreateParams{CourtID: court, Player1: 1, Player2: 2})
	require.NoError(t, err)
	return m
}

func (f fixture) finished(t *testing.T) domainmatches.Match {
	t.Helper()
	ctx := context.Background()
	m := f.singles(t, "1")
	_, err := f.svc.SetFirstServer(ctx, m.ID, scoring.Side1)
	require.NoError(t, err)
	for !m.State.IsMatchFinished {
		m, _, err = f.svc.Apply(ctx, m.ID, scoring.Event{Kind: scoring.EventWinner, Side: scoring.Side1})
		require.NoError(t, err)
	}
	return m
}

func TestCreateSingles(t *testing.T) {
	f := newFixture(t)
	m := f.singles(t, "1")

	assert.Equal(t, "m-1", m.ID)
	assert.Equal(t, "Centre Court", m.Court.Name)
	assert.Equal(t, domainmatches.StatusNotStarted, m.Status())
	assert.Equal(t, "Ann", m.SideName(scoring.Side1))
	assert.Equal(t, clock, m.CreatedAt)

	got, err := f.svc.Get(m.ID)
	require.NoError(t, err)
	assert.Equal(t, m, got)
	assert.Len(t, f.svc.List(), 1)
}

func TestCreateDoubles(t *testing.T) {
	f := newFixture(t)
	m, err := f.svc.Create(context.Background(), CreateParams{
		CourtID: "2",
		Kind:    domainmatches.KindDoubles,
		Team1:   TeamParams{Players: [2]int{1, 2}},
		Team2:   TeamParams{Name: "Cats", Players: [2]int{3, 4}},
	})
	require.NoError(t, err)
	assert.Equal(t, domainmatches.KindDoubles, m.Lineup.Kind())
	assert.Equal(t, "Ann / Bea", m.SideName(scoring.Side1))
	assert.Equal(t, "Cats", m.SideName(scoring.Side2))
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		params CreateParams
		want   error
	}{
		{"unknown court", CreateParams{CourtID: "7", Player1: 1, Player2: 2}, ErrInvalidRequest},
		{"unavailable court", CreateParams{CourtID: "9", Player1: 1, Player2: 2}, ErrCourtBusy},
		{"missing player", CreateParams{CourtID: "1", Player1: 1}, ErrInvalidRequest},
		{"unknown player", CreateParams{CourtID: "1", Player1: 1, Player2: 42}, ErrInvalidRequest},
		{"same player", CreateParams{CourtID: "1", Player1: 1, Player2: 1}, ErrInvalidRequest},
		{"unknown kind", CreateParams{CourtID: "1", Kind: "mixed"}, ErrInvalidRequest},
		{"doubles overlap", CreateParams{CourtID: "1", Kind: domainmatches.KindDoubles, Team1: TeamParams{Players: [2]int{1, 2}}, Team2: TeamParams{Players: [2]int{2, 3}}}, ErrInvalidRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, tc.params)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Empty(t, f.svc.List())
}

func TestCreateRejectsBusyCourt(t *testing.T) {
	f := newFixture(t)
	f.singles(t, "1")

	_, err := f.svc.Create(context.Background(), CreateParams{CourtID: "1", Player1: 3, Player2: 4})
	assert.ErrorIs(t, err, ErrCourtBusy)
}

func TestUnknownMatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.SetFirstServer(ctx, "nope", scoring.Side1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = f.svc.Apply(ctx, "nope", scoring.Event{Kind: scoring.EventAce})
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = f.svc.Undo(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.Close(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFirstServerPublishesMatchStart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.singles(t, "1")

	m, err := f.svc.SetFirstServer(ctx, m.ID, scoring.Side2)
	require.NoError(t, err)
	assert.Equal(t, scoring.Side2, m.State.Server())
	assert.Equal(t, domainmatches.StatusInProgress, m.Status())
	assert.Equal(t, []domainmatches.EventType{domainmatches.EventMatchStart}, f.publisher.types())
	assert.Equal(t, 1, f.recorder.Count(metrics.CounterMatchesStarted, ""))

	ev := f.publisher.events[0]
	assert.Equal(t, "1", ev.CourtID)
	assert.Equal(t, m.ID, ev.MatchID)
	assert.True(t, ev.Player2.IsServing)
	assert.Equal(t, clock.UnixMilli(), ev.Timestamp)

	_, err = f.svc.SetFirstServer(ctx, m.ID, scoring.Side1)
	assert.ErrorIs(t, err, scoring.ErrInvalidEventForPhase)
}

func TestApplyPublishesOneEventPerChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.singles(t, "1")
	_, err := f.svc.SetFirstServer(ctx, m.ID, scoring.Side1)
	require.NoError(t, err)

	m, changes, err := f.svc.Apply(ctx, m.ID, scoring.Event{Kind: scoring.EventAce})
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, scoring.ChangePoint, changes[0].Kind)
	assert.Equal(t, 1, m.State.Player1.Points)
	assert.Equal(t, []domainmatches.EventType{domainmatches.EventMatchStart, domainmatches.EventPoint}, f.publisher.types())

	stored, err := f.svc.Get(m.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.State.Player1.Points)
}

func TestApplyRejectionKeepsState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.singles(t, "1")

	_, _, err := f.svc.Apply(ctx, m.ID, scoring.Event{Kind: scoring.EventAce})
	assert.ErrorIs(t, err, scoring.ErrInvalidEventForPhase)
	assert.Empty(t, f.publisher.types())
	assert.Equal(t, 1, f.recorder.Count(metrics.CounterScoringEvents, "ace/"+metrics.OutcomeRejected))

	stored, _ := f.svc.Get(m.ID)
	assert.Equal(t, m.State, stored.State)
}

func TestPublishFailureDoesNotAffectState(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("queue full")
	ctx := context.Background()
	m := f.singles(t, "1")

	_, err := f.svc.SetFirstServer(ctx, m.ID, scoring.Side1)
	require.NoError(t, err)
	m, _, err = f.svc.Apply(ctx, m.ID, scoring.Event{Kind: scoring.EventAce})
	require.NoError(t, err)
	assert.Equal(t, 1, m.State.Player1.Points)
}

func TestSwapSidesAndUndo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.singles(t, "1")

	_, _, err := f.svc.Undo(ctx, m.ID)
	assert.ErrorIs(t, err, scoring.ErrNothingToUndo)
	assert.Equal(t, 1, f.recorder.Count(metrics.CounterUndos, metrics.OutcomeRejected))

	_, err = f.svc.SetFirstServer(ctx, m.ID, scoring.Side1)
	require.NoError(t, err)
	m, err = f.svc.SwapSides(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, m.State.SidesSwapped)

	m, desc, err := f.svc.Undo(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Swap sides", desc)
	assert.False(t, m.State.SidesSwapped)
	assert.Equal(t, 1, f.recorder.Count(metrics.CounterUndos, metrics.OutcomeOK))

	types := f.publisher.types()
	assert.Equal(t, domainmatches.EventPoint, types[len(types)-1])

	_, _, err = f.svc.Apply(ctx, m.ID, scoring.Event{Kind: scoring.EventAce})
	require.NoError(t, err)
	_, desc, err = f.svc.Undo(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ace - Ann", desc)
}

func TestFinishCloseAndReport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.finished(t)

	assert.Equal(t, domainmatches.StatusFinished, m.Status())
	assert.Equal(t, 1, f.recorder.Count(metrics.CounterMatchesFinished, ""))
	types := f.publisher.types()
	assert.Equal(t, domainmatches.EventMatchEnd, types[len(types)-1])

	_, _, err := f.svc.Apply(ctx, m.ID, scoring.Event{Kind: scoring.EventAce})
	assert.ErrorIs(t, err, scoring.ErrMatchAlreadyFinished)

	rec, err := f.svc.Close(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ID, rec.ID)
	assert.Equal(t, scoring.Side1, rec.Winner)
	assert.Equal(t, "Ann", rec.WinnerName)

	count, _ := f.archive.Count(ctx)
	assert.Equal(t, 1, count)
	require.Len(t, f.sink.reports, 1)
	assert.Equal(t, "Ann", f.sink.reports[0].Winner)

	_, err = f.svc.Get(m.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.Close(ctx, m.ID)
	assert.ErrorIs(t, err, ErrAlreadyClosed)

	f.singles(t, "1")
}

func TestCloseRequiresFinishedMatch(t *testing.T) {
	f := newFixture(t)
	m := f.singles(t, "1")

	_, err := f.svc.Close(context.Background(), m.ID)
	assert.ErrorIs(t, err, domainmatches.ErrNotFinished)
	_, err = f.svc.Get(m.ID)
	assert.NoError(t, err)
}

func TestCloseArchiveFailureKeepsMatchLive(t *testing.T) {
	f := newFixture(t)
	m := f.finished(t)
	f.archive.saveErr = errors.New("disk full")

	_, err := f.svc.Close(context.Background(), m.ID)
	assert.ErrorContains(t, err, "disk full")
	_, err = f.svc.Get(m.ID)
	assert.NoError(t, err)
	assert.Empty(t, f.sink.reports)
}

func TestCloseAlreadyArchivedMatch(t *testing.T) {
	f := newFixture(t)
	m := f.finished(t)
	rec, err := domainmatches.NewRecord(m)
	require.NoError(t, err)
	require.NoError(t, f.archive.Save(context.Background(), rec))

	_, err = f.svc.Close(context.Background(), m.ID)
	assert.ErrorIs(t, err, ErrAlreadyClosed)
	_, err = f.svc.Get(m.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStatisticsFailureIsBestEffort(t *testing.T) {
	f := newFixture(t)
	f.sink.err = errors.New("offline")
	m := f.finished(t)

	_, err := f.svc.Close(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Len(t, f.sink.reports, 1)
}

func TestConcurrentEventsAreSerialized(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.singles(t, "1")
	_, err := f.svc.SetFirstServer(ctx, m.ID, scoring.Side1)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := f.svc.Apply(ctx, m.ID, scoring.Event{Kind: scoring.EventWinner, Side: scoring.Side2})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := f.svc.Get(m.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.State.Player2.Points)
	assert.Len(t, got.State.History(), 3)
}
