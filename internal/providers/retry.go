package providers

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"tennis-referee-service/internal/domain/courts"
	"tennis-referee-service/internal/domain/matches"
	"tennis-referee-service/internal/domain/players"
	"tennis-referee-service/internal/logging"
	"tennis-referee-service/internal/metrics"
)

const (
	defaultMaxRetries      = 3
	defaultInitialInterval = 200 * time.Millisecond
	defaultMaxElapsed      = 15 * time.Second
)

// RetryPolicy bounds how hard a decorator retries a failing provider call.
type RetryPolicy struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxElapsed      time.Duration
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxRetries == 0 {
		p.MaxRetries = defaultMaxRetries
	}
	if p.InitialInterval <= 0 {
		p.InitialInterval = defaultInitialInterval
	}
	if p.MaxElapsed <= 0 {
		p.MaxElapsed = defaultMaxElapsed
	}
	return p
}

// retrier runs provider calls under an exponential backoff, honoring Retry-After hints
// and stopping early on errors that repeating cannot fix.
type retrier struct {
	name     string
	logger   *slog.Logger
	recorder *metrics.Recorder
	policy   RetryPolicy
}

func newRetrier(name string, logger *slog.Logger, recorder *metrics.Recorder, policy RetryPolicy) retrier {
	if name == "" {
		name = "provider"
	}
	return retrier{name: name, logger: logger, recorder: recorder, policy: policy.withDefaults()}
}

func (r retrier) do(ctx context.Context, op string, call func(context.Context) error) error {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = r.policy.InitialInterval
	exp.MaxElapsedTime = r.policy.MaxElapsed
	exp.Reset()
	hinted := &retryAfterBackOff{BackOff: exp}
	policy := backoff.WithContext(backoff.WithMaxRetries(hinted, r.policy.MaxRetries), ctx)

	logger := logging.FromContext(ctx, r.logger)
	attempt := 0
	operation := func() error {
		attempt++
		start := time.Now()
		err := call(ctx)
		r.recorder.RecordProviderAttempt(r.name, time.Since(start), err)
		hinted.lastErr = err
		if err == nil {
			return nil
		}
		if rl, ok := AsRateLimitError(err); ok {
			r.recorder.RecordRateLimit(r.name, rl.RetryAfter)
		}
		if !Retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, delay time.Duration) {
		logWithProvider(ctx, logger, slog.LevelWarn, r.name, "provider call retry",
			slog.String("op", op), slog.Int("attempt", attempt), slog.Duration("delay", delay), slog.Any("err", err))
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		logWithProvider(ctx, logger, slog.LevelWarn, r.name, "provider call failed",
			slog.String("op", op), slog.Int("attempts", attempt), slog.Any("err", err))
		return err
	}
	return nil
}

// retryAfterBackOff stretches the next delay to the upstream Retry-After hint.
type retryAfterBackOff struct {
	backoff.BackOff
	lastErr error
}

func (b *retryAfterBackOff) NextBackOff() time.Duration {
	next := b.BackOff.NextBackOff()
	if next == backoff.Stop {
		return next
	}
	if rl, ok := AsRateLimitError(b.lastErr); ok && rl.RetryAfter > next {
		return rl.RetryAfter
	}
	return next
}

type retryingPublisher struct {
	inner EventPublisher
	retry retrier
}

// NewRetryingPublisher wraps a publisher with exponential backoff retries.
func NewRetryingPublisher(inner EventPublisher, logger *slog.Logger, recorder *metrics.Recorder, name string, policy RetryPolicy) EventPublisher {
	return &retryingPublisher{inner: inner, retry: newRetrier(name, logger, recorder, policy)}
}

func (p *retryingPublisher) PublishEvent(ctx context.Context, event matches.Event) error {
	if p.inner == nil {
		return ErrProviderUnavailable
	}
	return p.retry.do(ctx, "publish_event", func(ctx context.Context) error {
		return p.inner.PublishEvent(ctx, event)
	})
}

type retryingCatalog struct {
	inner CatalogProvider
	retry retrier
}

// NewRetryingCatalog wraps a catalog provider with exponential backoff retries.
func NewRetryingCatalog(inner CatalogProvider, logger *slog.Logger, recorder *metrics.Recorder, name string, policy RetryPolicy) CatalogProvider {
	return &retryingCatalog{inner: inner, retry: newRetrier(name, logger, recorder, policy)}
}

func (c *retryingCatalog) FetchCourts(ctx context.Context) ([]courts.Court, error) {
	if c.inner == nil {
		return nil, ErrProviderUnavailable
	}
	var out []courts.Court
	err := c.retry.do(ctx, "fetch_courts", func(ctx context.Context) error {
		list, err := c.inner.FetchCourts(ctx)
		out = list
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *retryingCatalog) FetchPlayers(ctx context.Context) ([]players.Player, error) {
	if c.inner == nil {
		return nil, ErrProviderUnavailable
	}
	var out []players.Player
	err := c.retry.do(ctx, "fetch_players", func(ctx context.Context) error {
		list, err := c.inner.FetchPlayers(ctx)
		out = list
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
