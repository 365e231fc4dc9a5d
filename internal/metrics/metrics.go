package metrics

import (
	"sync"
	"time"
)

// Counter names mirrored in memory and exported through OpenTelemetry.
const (
	CounterScoringEvents   = "scoring_events_total"
	CounterUndos           = "scoring_undos_total"
	CounterMatchesStarted  = "matches_started_total"
	CounterMatchesFinished = "matches_finished_total"
	CounterPublish         = "event_publish_total"
	CounterArchiveWrites   = "archive_writes_total"
	CounterPollerCycles    = "poller_cycles_total"
	CounterHTTPRequests    = "http_requests_total"
)

type providerStats struct {
	calls           int
	errors          int
	rateLimitHits   int
	lastRetryAfter  time.Duration
	lastCallLatency time.Duration
}

type counterKey struct {
	name  string
	label string
}

// Recorder captures lightweight, in-memory metrics and forwards them to OpenTelemetry when configured.
// A nil Recorder is valid and records nothing.
type Recorder struct {
	mu       sync.Mutex
	stats    map[string]*providerStats
	counters map[counterKey]int
	otel     *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		stats:    make(map[string]*providerStats),
		counters: make(map[counterKey]int),
		otel:     otel,
	}
}

// RecordProviderAttempt increments counters for a provider call and stores the last observed latency.
func (r *Recorder) RecordProviderAttempt(provider string, duration time.Duration, err error) {
	if r == nil {
		return
	}

	r.withStats(provider, func(stats *providerStats) {
		stats.calls++
		stats.lastCallLatency = duration
		if err != nil {
			stats.errors++
		}
	})
	if r.otel != nil {
		r.otel.recordProviderAttempt(provider, duration, err)
	}
}

// RecordRateLimit tracks that a provider response hit a rate limit and stores the last Retry-After.
func (r *Recorder) RecordRateLimit(provider string, retryAfter time.Duration) {
	if r == nil {
		return
	}

	r.withStats(provider, func(stats *providerStats) {
		stats.rateLimitHits++
		if retryAfter > 0 {
			stats.lastRetryAfter = retryAfter
		}
	})
	if r.otel != nil {
		r.otel.recordRateLimit(provider, retryAfter)
	}
}

// RecordScoringEvent counts one referee event, labelled by kind and whether the engine accepted it.
func (r *Recorder) RecordScoringEvent(kind string, rejected bool) {
	if r == nil {
		return
	}
	outcome := OutcomeOK
	if rejected {
		outcome = OutcomeRejected
	}
	r.add(CounterScoringEvents, kind+"/"+outcome)
	if r.otel != nil {
		r.otel.recordScoringEvent(kind, outcome)
	}
}

// RecordUndo counts an undo request; rejected undos had nothing to revert.
func (r *Recorder) RecordUndo(rejected bool) {
	if r == nil {
		return
	}
	outcome := OutcomeOK
	if rejected {
		outcome = OutcomeRejected
	}
	r.add(CounterUndos, outcome)
	if r.otel != nil {
		r.otel.recordCounter(r.otel.undos, 1, attrString(AttrOutcome, outcome))
	}
}

// RecordMatchStarted counts matches whose first server was chosen.
func (r *Recorder) RecordMatchStarted() {
	if r == nil {
		return
	}
	r.add(CounterMatchesStarted, "")
	if r.otel != nil {
		r.otel.recordCounter(r.otel.matchesStarted, 1)
	}
}

// RecordMatchFinished counts matches that reached match point.
func (r *Recorder) RecordMatchFinished(duration time.Duration) {
	if r == nil {
		return
	}
	r.add(CounterMatchesFinished, "")
	if r.otel != nil {
		r.otel.recordMatchFinished(duration)
	}
}

// RecordPublish tracks one delivery attempt to an event sink.
func (r *Recorder) RecordPublish(sink string, err error) {
	if r == nil {
		return
	}
	outcome := outcomeOf(err)
	r.add(CounterPublish, sink+"/"+outcome)
	if r.otel != nil {
		r.otel.recordPublish(sink, outcome)
	}
}

// RecordPublishDrop tracks an event discarded because the sink queue was full.
func (r *Recorder) RecordPublishDrop(sink string) {
	if r == nil {
		return
	}
	r.add(CounterPublish, sink+"/"+OutcomeDropped)
	if r.otel != nil {
		r.otel.recordPublish(sink, OutcomeDropped)
	}
}

// RecordArchiveWrite tracks persistence of a finished match.
func (r *Recorder) RecordArchiveWrite(driver string, duration time.Duration, err error) {
	if r == nil {
		return
	}
	r.add(CounterArchiveWrites, driver+"/"+outcomeOf(err))
	if r.otel != nil {
		r.otel.recordArchiveWrite(driver, duration, err)
	}
}

// Count returns the in-memory value of a counter for one label, e.g. Count(CounterPublish, "kafka/ok").
func (r *Recorder) Count(name, label string) int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counters[counterKey{name: name, label: label}]
}

// ProviderCalls returns the total attempts recorded for a provider.
func (r *Recorder) ProviderCalls(provider string) int {
	return r.Snapshot(provider).Calls
}

// ProviderErrors returns the total failed attempts recorded for a provider.
func (r *Recorder) ProviderErrors(provider string) int {
	return r.Snapshot(provider).Errors
}

// RateLimitHits returns the number of rate limit events seen for a provider.
func (r *Recorder) RateLimitHits(provider string) int {
	return r.Snapshot(provider).RateLimitHits
}

// LastRetryAfter returns the most recent Retry-After recorded for a provider.
func (r *Recorder) LastRetryAfter(provider string) time.Duration {
	return r.Snapshot(provider).LastRetryAfter
}

// LastCallLatency returns the last recorded latency for a provider call.
func (r *Recorder) LastCallLatency(provider string) time.Duration {
	return r.Snapshot(provider).LastCallLatency
}

// Snapshot returns a copy of the current stats for the provider.
type Snapshot struct {
	Calls           int
	Errors          int
	RateLimitHits   int
	LastRetryAfter  time.Duration
	LastCallLatency time.Duration
}

func (r *Recorder) Snapshot(provider string) Snapshot {
	if r == nil {
		return Snapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.stats[provider]
	if !ok || stats == nil {
		return Snapshot{}
	}
	return Snapshot{
		Calls:           stats.calls,
		Errors:          stats.errors,
		RateLimitHits:   stats.rateLimitHits,
		LastRetryAfter:  stats.lastRetryAfter,
		LastCallLatency: stats.lastCallLatency,
	}
}

// RecordHTTPRequest tracks basic HTTP metrics, mirrored in memory as "METHOD route".
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil {
		return
	}
	r.add(CounterHTTPRequests, method+" "+path)
	if r.otel != nil {
		r.otel.recordHTTPRequest(method, path, status, duration)
	}
}

// RecordPollerCycle tracks poller cycles and errors.
func (r *Recorder) RecordPollerCycle(duration time.Duration, err error) {
	if r == nil {
		return
	}
	r.add(CounterPollerCycles, outcomeOf(err))
	if r.otel != nil {
		r.otel.recordPoller(duration, err)
	}
}

func (r *Recorder) withStats(provider string, fn func(*providerStats)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.stats[provider]
	if !ok {
		stats = &providerStats{}
		r.stats[provider] = stats
	}
	fn(stats)
}

func (r *Recorder) add(name, label string) {
	r.mu.Lock()
	r.counters[counterKey{name: name, label: label}]++
	r.mu.Unlock()
}
