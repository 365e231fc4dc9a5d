package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"tennis-referee-service/internal/domain/courts"
	"tennis-referee-service/internal/domain/players"
	"tennis-referee-service/internal/logging"
	"tennis-referee-service/internal/metrics"
	"tennis-referee-service/internal/providers"
)

const (
	defaultInterval = 5 * time.Minute
	maxFailures     = 3
)

// Catalog receives the refreshed venue data.
type Catalog interface {
	SetCourts(list []courts.Court)
	SetPlayers(list []players.Player)
}

// Poller refreshes courts and players from the provider on an interval.
type Poller struct {
	provider providers.CatalogProvider
	catalog  Catalog
	logger   *slog.Logger
	metrics  *metrics.Recorder
	interval time.Duration
	now      func() time.Time

	ticker   *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
	startMu  sync.Mutex
	started  bool

	statusMu sync.RWMutex
	status   Status
}

// Status describes the recent health of the poller loop.
type Status struct {
	ConsecutiveFailures int
	LastError           string
	LastAttempt         time.Time
	LastSuccess         time.Time
	Courts              int
	Players             int
}

// IsReady reports whether the catalog has been loaded and refreshes are not failing repeatedly.
func (s Status) IsReady() bool {
	if s.LastSuccess.IsZero() {
		return false
	}
	return s.ConsecutiveFailures < maxFailures
}

// New constructs a Poller with sane defaults.
func New(provider providers.CatalogProvider, catalog Catalog, logger *slog.Logger, recorder *metrics.Recorder, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Poller{
		provider: provider,
		catalog:  catalog,
		logger:   logger,
		metrics:  recorder,
		interval: interval,
		now:      time.Now,
		done:     make(chan struct{}),
	}
}

// Start begins polling until the context is cancelled or Stop is called.
func (p *Poller) Start(ctx context.Context) {
	p.startMu.Lock()
	if p.started {
		p.startMu.Unlock()
		return
	}
	p.started = true
	p.startMu.Unlock()

	p.ticker = time.NewTicker(p.interval)

	go func() {
		logging.Info(p.logger, "poller started", slog.Int64(logging.FieldDurationMS, p.interval.Milliseconds()))
		// Load the catalog right away so /ready turns green without waiting a full interval.
		p.fetchOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				p.stopTicker()
				logging.Info(p.logger, "poller stopped")
				return
			case <-p.done:
				p.stopTicker()
				logging.Info(p.logger, "poller stopped")
				return
			case <-p.ticker.C:
				p.fetchOnce(ctx)
			}
		}
	}()
}

// Stop halts the polling loop.
func (p *Poller) Stop(ctx context.Context) error {
	p.stopOnce.Do(func() {
		close(p.done)
		p.stopTicker()
	})
	return nil
}

// Refresh runs one fetch cycle synchronously.
func (p *Poller) Refresh(ctx context.Context) error {
	return p.fetchOnce(ctx)
}

// fetchOnce loads courts and players. Each list is stored as soon as it arrives, so a
// failure of one does not discard the other; the cycle still counts as failed.
func (p *Poller) fetchOnce(ctx context.Context) error {
	start := p.now()
	p.recordAttempt(start)

	if p.provider == nil {
		p.recordFailure(providers.ErrProviderUnavailable, start)
		return providers.ErrProviderUnavailable
	}

	var errs []error
	courtList, err := p.provider.FetchCourts(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("courts: %w", err))
	} else if p.catalog != nil {
		p.catalog.SetCourts(courtList)
	}

	playerList, err := p.provider.FetchPlayers(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("players: %w", err))
	} else if p.catalog != nil {
		p.catalog.SetPlayers(playerList)
	}

	err = errors.Join(errs...)
	elapsed := time.Since(start)
	p.metrics.RecordPollerCycle(elapsed, err)
	if err != nil {
		logging.Error(p.logger, "catalog refresh failed", err, slog.Int64(logging.FieldDurationMS, elapsed.Milliseconds()))
		p.recordFailure(err, start)
		return err
	}

	p.recordSuccess(start, len(courtList), len(playerList))
	logging.Info(p.logger, "catalog refreshed",
		"courts", len(courtList),
		"players", len(playerList),
		logging.FieldDurationMS, elapsed.Milliseconds(),
	)
	return nil
}

func (p *Poller) stopTicker() {
	if p.ticker != nil {
		p.ticker.Stop()
	}
}

func (p *Poller) recordAttempt(at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.LastAttempt = at
}

func (p *Poller) recordSuccess(at time.Time, courtCount, playerCount int) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.ConsecutiveFailures = 0
	p.status.LastError = ""
	p.status.LastSuccess = at
	p.status.Courts = courtCount
	p.status.Players = playerCount
}

func (p *Poller) recordFailure(err error, at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.ConsecutiveFailures++
	if err != nil {
		p.status.LastError = err.Error()
	}
	p.status.LastAttempt = at
}

// Status returns a snapshot of the poller's recent health.
func (p *Poller) Status() Status {
	p.statusMu.RLock()
	defer p.statusMu.RUnlock()
	return p.status
}
