package providers

import (
	"context"
	"log/slog"
	"sync"

	"tennis-referee-service/internal/domain/matches"
	"tennis-referee-service/internal/logging"
	"tennis-referee-service/internal/metrics"
)

const defaultQueueSize = 256

// AsyncPublisher decouples callers from event delivery. Events are queued and delivered
// in order by a single goroutine; when the queue is full the event is dropped and counted.
type AsyncPublisher struct {
	inner    EventPublisher
	logger   *slog.Logger
	recorder *metrics.Recorder
	sink     string

	mu      sync.RWMutex
	queue   chan matches.Event
	closed  bool
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewAsyncPublisher builds a publisher that delivers to inner in the background.
func NewAsyncPublisher(inner EventPublisher, logger *slog.Logger, recorder *metrics.Recorder, sink string, queueSize int) *AsyncPublisher {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	if sink == "" {
		sink = "publisher"
	}
	return &AsyncPublisher{
		inner:    inner,
		logger:   logger,
		recorder: recorder,
		sink:     sink,
		queue:    make(chan matches.Event, queueSize),
		done:     make(chan struct{}),
	}
}

// Start launches the delivery goroutine. Deliveries outlive ctx cancellation so that
// Stop can flush the queue; only Stop's deadline cuts them short.
func (p *AsyncPublisher) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.closed {
		return
	}
	p.started = true

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p.cancel = cancel
	go p.run(runCtx)
}

// PublishEvent enqueues event without blocking.
func (p *AsyncPublisher) PublishEvent(ctx context.Context, event matches.Event) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.recorder.RecordPublishDrop(p.sink)
		return ErrPublisherClosed
	}
	select {
	case p.queue <- event:
		return nil
	default:
		p.recorder.RecordPublishDrop(p.sink)
		logWithProvider(ctx, logging.FromContext(ctx, p.logger), slog.LevelWarn, p.sink, "publish queue full, event dropped", eventAttrs(event)...)
		return ErrQueueFull
	}
}

// Pending returns the number of queued events.
func (p *AsyncPublisher) Pending() int {
	return len(p.queue)
}

// Stop stops accepting events and waits for the queue to drain or ctx to end.
func (p *AsyncPublisher) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	started := p.started
	p.mu.Unlock()

	if !started {
		return nil
	}
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		p.cancel()
		<-p.done
		return ctx.Err()
	}
}

func (p *AsyncPublisher) run(ctx context.Context) {
	defer close(p.done)
	defer p.cancel()
	for event := range p.queue {
		if ctx.Err() != nil {
			p.recorder.RecordPublishDrop(p.sink)
			continue
		}
		p.deliver(ctx, event)
	}
}

func (p *AsyncPublisher) deliver(ctx context.Context, event matches.Event) {
	if p.inner == nil {
		p.recorder.RecordPublish(p.sink, ErrProviderUnavailable)
		return
	}
	err := p.inner.PublishEvent(ctx, event)
	p.recorder.RecordPublish(p.sink, err)
	if err != nil {
		logWithProvider(ctx, p.logger, slog.LevelError, p.sink, "event delivery failed", append(eventAttrs(event), slog.Any("err", err))...)
		return
	}
	logWithProvider(ctx, p.logger, slog.LevelDebug, p.sink, "event delivered", eventAttrs(event)...)
}
