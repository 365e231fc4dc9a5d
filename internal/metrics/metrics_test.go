package metrics

import (
	"errors"
	"testing"
	"time"
)

func TestRecorderTracksProviderAttemptsAndErrors(t *testing.T) {
	rec := NewRecorder()
	rec.RecordProviderAttempt("scoreserver", 10*time.Millisecond, nil)
	rec.RecordProviderAttempt("scoreserver", 15*time.Millisecond, errors.New("boom"))

	if got := rec.ProviderCalls("scoreserver"); got != 2 {
		t.Fatalf("expected 2 calls, got %d", got)
	}
	if got := rec.ProviderErrors("scoreserver"); got != 1 {
		t.Fatalf("expected 1 error, got %d", got)
	}
	if got := rec.LastCallLatency("scoreserver"); got != 15*time.Millisecond {
		t.Fatalf("expected last latency to be 15ms, got %s", got)
	}

	snap := rec.Snapshot("scoreserver")
	if snap.Calls != 2 || snap.Errors != 1 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestRecorderTracksRateLimits(t *testing.T) {
	rec := NewRecorder()
	rec.RecordRateLimit("scoreserver", 5*time.Second)
	rec.RecordRateLimit("scoreserver", 0)

	if got := rec.RateLimitHits("scoreserver"); got != 2 {
		t.Fatalf("expected 2 rate limit hits, got %d", got)
	}
	if got := rec.LastRetryAfter("scoreserver"); got != 5*time.Second {
		t.Fatalf("expected last retry-after to be 5s, got %s", got)
	}
}

func TestRecorderCountsDomainEvents(t *testing.T) {
	rec := NewRecorder()
	rec.RecordScoringEvent("ace", false)
	rec.RecordScoringEvent("ace", false)
	rec.RecordScoringEvent("winner", true)
	rec.RecordUndo(false)
	rec.RecordPublish("kafka", nil)
	rec.RecordPublish("kafka", errors.New("broker down"))
	rec.RecordPublishDrop("scoreserver")
	rec.RecordArchiveWrite("fs", time.Millisecond, nil)
	rec.RecordMatchStarted()
	rec.RecordMatchFinished(time.Hour)
	rec.RecordPollerCycle(time.Millisecond, errors.New("upstream"))

	cases := []struct {
		name, label string
		want        int
	}{
		{CounterScoringEvents, "ace/ok", 2},
		{CounterScoringEvents, "winner/rejected", 1},
		{CounterUndos, "ok", 1},
		{CounterPublish, "kafka/ok", 1},
		{CounterPublish, "kafka/error", 1},
		{CounterPublish, "scoreserver/dropped", 1},
		{CounterArchiveWrites, "fs/ok", 1},
		{CounterMatchesStarted, "", 1},
		{CounterMatchesFinished, "", 1},
		{CounterPollerCycles, "error", 1},
	}
	for _, tc := range cases {
		if got := rec.Count(tc.name, tc.label); got != tc.want {
			t.Fatalf("%s{%s}: expected %d, got %d", tc.name, tc.label, tc.want, got)
		}
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	var rec *Recorder
	rec.RecordScoringEvent("ace", false)
	rec.RecordPublishDrop("kafka")
	rec.RecordHTTPRequest("GET", "/", 200, time.Millisecond)
	if rec.Count(CounterPublish, "kafka/dropped") != 0 || rec.ProviderCalls("x") != 0 {
		t.Fatal("expected zero values from nil recorder")
	}
}
