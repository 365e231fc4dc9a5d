package poller

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"tennis-referee-service/internal/domain/courts"
	"tennis-referee-service/internal/domain/players"
	"tennis-referee-service/internal/metrics"
	"tennis-referee-service/internal/providers"
	"tennis-referee-service/internal/store"
)

type stubProvider struct {
	mu         sync.Mutex
	courts     []courts.Court
	players    []players.Player
	courtErr   error
	playersErr error
	calls      atomic.Int32
	notify     chan struct{}
}

func (s *stubProvider) FetchCourts(ctx context.Context) ([]courts.Court, error) {
	s.calls.Add(1)
	if s.notify != nil {
		select {
		case <-s.notify:
		default:
			close(s.notify)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.courts, s.courtErr
}

func (s *stubProvider) FetchPlayers(ctx context.Context) ([]players.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.players, s.playersErr
}

func sampleProvider() *stubProvider {
	return &stubProvider{
		courts:  []courts.Court{{ID: "1", Name: "Centre"}, {ID: "2"}},
		players: []players.Player{{ID: 1, Name: "Ann"}},
	}
}

func TestPollerLoadsCatalogOnStart(t *testing.T) {
	provider := sampleProvider()
	provider.notify = make(chan struct{})
	catalog := store.NewCatalogStore()

	p := New(provider, catalog, nil, nil, 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p.Start(ctx)

	select {
	case <-provider.notify:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timed out waiting for initial fetch")
	}

	deadline := time.Now().Add(time.Second)
	for !p.Status().IsReady() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	_ = p.Stop(context.Background())

	if got := len(catalog.ListCourts()); got != 2 {
		t.Fatalf("expected 2 courts, got %d", got)
	}
	if status := p.Status(); status.Courts != 2 || status.Players != 1 {
		t.Fatalf("unexpected status counts %+v", status)
	}
}

func TestPollerStopsOnContextCancel(t *testing.T) {
	provider := sampleProvider()
	provider.notify = make(chan struct{})

	p := New(provider, store.NewCatalogStore(), nil, nil, 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	p.Start(ctx)

	select {
	case <-provider.notify:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timed out waiting for initial fetch")
	}

	cancel()
	_ = p.Stop(context.Background())
	time.Sleep(10 * time.Millisecond)

	callsAfterStop := provider.calls.Load()
	time.Sleep(20 * time.Millisecond)
	if provider.calls.Load() != callsAfterStop {
		t.Fatalf("expected no additional fetches after stop; before=%d after=%d", callsAfterStop, provider.calls.Load())
	}
}

func TestPollerStartAndStopAreIdempotent(t *testing.T) {
	p := New(sampleProvider(), nil, nil, nil, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p.Start(ctx)
	p.Start(ctx)

	if err := p.Stop(context.Background()); err != nil {
		t.Fatalf("first stop returned error: %v", err)
	}
	if err := p.Stop(context.Background()); err != nil {
		t.Fatalf("second stop returned error: %v", err)
	}
}

func TestPollerDefaultsInterval(t *testing.T) {
	p := New(sampleProvider(), nil, nil, nil, 0)
	if p.interval != defaultInterval {
		t.Fatalf("expected default interval %s, got %s", defaultInterval, p.interval)
	}
}

func TestPollerStatusTracksFailuresAndSuccess(t *testing.T) {
	provider := sampleProvider()
	provider.courtErr = errors.New("boom")
	catalog := store.NewCatalogStore()
	rec := metrics.NewRecorder()

	p := New(provider, catalog, nil, rec, time.Millisecond)
	ctx := context.Background()

	if err := p.Refresh(ctx); err == nil || !strings.Contains(err.Error(), "courts: boom") {
		t.Fatalf("expected courts error, got %v", err)
	}
	status := p.Status()
	if status.ConsecutiveFailures != 1 || status.LastError == "" {
		t.Fatalf("expected failure recorded, got %+v", status)
	}
	if status.IsReady() {
		t.Fatalf("expected not ready after failure")
	}
	if len(catalog.ListPlayers()) != 1 {
		t.Fatalf("expected players stored despite courts failure")
	}

	provider.courtErr = nil
	if err := p.Refresh(ctx); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	status = p.Status()
	if status.ConsecutiveFailures != 0 || status.LastSuccess.IsZero() || !status.IsReady() {
		t.Fatalf("expected ready after success, got %+v", status)
	}
	if rec.Count(metrics.CounterPollerCycles, metrics.OutcomeError) != 1 || rec.Count(metrics.CounterPollerCycles, metrics.OutcomeOK) != 1 {
		t.Fatalf("expected one failed and one ok cycle")
	}
}

func TestPollerNotReadyAfterRepeatedFailures(t *testing.T) {
	provider := sampleProvider()
	p := New(provider, nil, slog.New(slog.NewTextHandler(io.Discard, nil)), nil, time.Minute)
	_ = p.Refresh(context.Background())

	provider.playersErr = errors.New("down")
	for i := 0; i < maxFailures; i++ {
		_ = p.Refresh(context.Background())
	}
	if p.Status().IsReady() {
		t.Fatalf("expected not ready after %d failures", maxFailures)
	}
}

func TestPollerWithoutProvider(t *testing.T) {
	p := New(nil, nil, nil, nil, time.Minute)
	if err := p.Refresh(context.Background()); !errors.Is(err, providers.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func BenchmarkPollerFetchOnce(b *testing.B) {
	p := New(sampleProvider(), store.NewCatalogStore(), nil, nil, time.Second)
	ctx := context.Background()

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = p.fetchOnce(ctx)
	}
}
