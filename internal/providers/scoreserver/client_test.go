package scoreserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tennis-referee-service/internal/domain/matches"
	"tennis-referee-service/internal/providers"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL + "/", APIKey: "secret"})
}

func TestFetchCourtsMapsResponse(t *testing.T) {
	var capturedAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/courts" || r.Method != http.MethodGet {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		capturedAuth = r.Header.Get("Authorization")
		_, _ = io.WriteString(w, `{
			"courts": [
				{"kort_id": "1", "overlay_id": "ov-1", "name": "Centre", "is_available": false, "current_match_id": 42},
				{"kort_id": "2"},
				{"name": "no id"}
			],
			"total_count": 3
		}`)
	})

	list, err := c.FetchCourts(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if capturedAuth != "Bearer secret" {
		t.Fatalf("expected bearer auth, got %q", capturedAuth)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 courts, got %d", len(list))
	}
	first := list[0]
	if first.ID != "1" || first.OverlayID != "ov-1" || first.Name != "Centre" || first.IsAvailable || first.CurrentMatchID != "42" {
		t.Fatalf("unexpected first court %+v", first)
	}
	if !list[1].IsAvailable || list[1].DisplayName() != "Court 2" {
		t.Fatalf("expected defaults for sparse court, got %+v", list[1])
	}
}

func TestFetchPlayersMapsResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"ok": true, "count": 2, "players": [
			{"id": 1, "name": "Iga Swiatek", "flag": "pl", "flagUrl": "https://flags/pl.png", "group": "A", "list": "main"},
			{"id": 2, "name": "Coco Gauff"}
		]}`)
	})

	list, err := c.FetchPlayers(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 players, got %d", len(list))
	}
	if p := list[0]; p.ID != 1 || p.Flag != "pl" || p.FlagURL != "https://flags/pl.png" || p.Group != "A" || p.List != "main" {
		t.Fatalf("unexpected player %+v", p)
	}
	if list[1].Flag != "" {
		t.Fatalf("expected empty flag, got %q", list[1].Flag)
	}
}

func TestFetchPlayersRejectedByServer(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"ok": false, "error": "maintenance"}`)
	})
	if _, err := c.FetchPlayers(context.Background()); err == nil || !strings.Contains(err.Error(), "maintenance") {
		t.Fatalf("expected rejection error, got %v", err)
	}
}

func TestAuthorizeCourt(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body pinRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode pin: %v", err)
		}
		switch r.URL.Path {
		case "/api/courts/1/authorize":
			ok := body.PIN == "1234"
			_ = json.NewEncoder(w).Encode(authResponse{OK: true, Authorized: ok, CourtID: "1"})
		case "/api/courts/2/authorize":
			w.WriteHeader(http.StatusForbidden)
		default:
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, "kaput")
		}
	})

	ok, err := c.AuthorizeCourt(context.Background(), "1", "1234")
	if err != nil || !ok {
		t.Fatalf("expected authorization, got %v %v", ok, err)
	}
	ok, err = c.AuthorizeCourt(context.Background(), "1", "0000")
	if err != nil || ok {
		t.Fatalf("expected wrong pin to be refused, got %v %v", ok, err)
	}
	ok, err = c.AuthorizeCourt(context.Background(), "2", "1234")
	if err != nil || ok {
		t.Fatalf("expected forbidden to be a refusal, got %v %v", ok, err)
	}
	_, err = c.AuthorizeCourt(context.Background(), "3", "1234")
	var statusErr *providers.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusInternalServerError || statusErr.Body != "kaput" {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestPublishEventPostsJSON(t *testing.T) {
	var got matches.Event
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/match-events" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("expected json content type, got %q", ct)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = io.WriteString(w, `{"success": true, "message": "ok"}`)
	})

	event := matches.Event{CourtID: "5", EventType: matches.EventGame, Timestamp: 1700000000000}
	if err := c.PublishEvent(context.Background(), event); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.CourtID != "5" || got.EventType != matches.EventGame || got.Timestamp != 1700000000000 {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestPublishEventRejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success": false, "message": "unknown court"}`)
	})
	err := c.PublishEvent(context.Background(), matches.Event{EventType: matches.EventPoint})
	if err == nil || !strings.Contains(err.Error(), "unknown court") {
		t.Fatalf("expected rejection, got %v", err)
	}
}

func TestSubmitStatisticsAcceptsEmptyBody(t *testing.T) {
	var path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})
	if err := c.SubmitStatistics(context.Background(), matches.StatisticsReport{MatchID: "m1"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if path != "/api/match-statistics" {
		t.Fatalf("unexpected path %s", path)
	}
}

func TestRateLimitResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, "slow down")
	})
	_, err := c.FetchCourts(context.Background())
	rl, ok := providers.AsRateLimitError(err)
	if !ok {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	if rl.RetryAfter != 7*time.Second || rl.Remaining != "0" || rl.Message != "slow down" || rl.Provider != providerName {
		t.Fatalf("unexpected rate limit error %+v", rl)
	}
}

func TestErrorBodyIsBounded(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, strings.Repeat("x", 4096))
	})
	_, err := c.FetchPlayers(context.Background())
	var statusErr *providers.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected status error, got %v", err)
	}
	if len(statusErr.Body) != maxErrorBody {
		t.Fatalf("expected body capped at %d, got %d", maxErrorBody, len(statusErr.Body))
	}
}

func TestDecodeErrorIsWrapped(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "{not json")
	})
	if _, err := c.FetchCourts(context.Background()); err == nil || !strings.Contains(err.Error(), "decode") {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestTransportErrorSurfaces(t *testing.T) {
	rt := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("dial failed")
	})
	c := NewClient(Config{BaseURL: "http://example.invalid", HTTPClient: &http.Client{Transport: rt}})
	if _, err := c.FetchCourts(context.Background()); err == nil {
		t.Fatal("expected transport error")
	}
}

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
