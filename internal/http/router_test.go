package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	courtsapp "tennis-referee-service/internal/app/courts"
	matchesapp "tennis-referee-service/internal/app/matches"
	playersapp "tennis-referee-service/internal/app/players"
	"tennis-referee-service/internal/auth"
	"tennis-referee-service/internal/history"
	"tennis-referee-service/internal/http/handlers"
	"tennis-referee-service/internal/metrics"
	"tennis-referee-service/internal/scoring"
	"tennis-referee-service/internal/store"
	"tennis-referee-service/internal/testutil"
)

func newTestRouter(t *testing.T, secret, adminToken string) (http.Handler, *metrics.Recorder, *auth.TokenManager) {
	t.Helper()
	engine, err := scoring.NewEngine(scoring.DefaultRules())
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	catalog := testutil.NewCatalog()
	server := testutil.NewStubScoreServer()
	archive := history.NewFSArchive(t.TempDir(), 0)
	tokens := auth.NewTokenManager(secret, time.Hour, "")
	recorder := metrics.NewRecorder()

	h := Handlers{
		API:     handlers.NewHandler(courtsapp.NewService(catalog, server, tokens, nil), playersapp.NewService(catalog), nil, nil),
		Matches: handlers.NewMatchHandler(matchesapp.NewService(engine, store.NewMatchStore(), catalog, archive), tokens, nil),
		History: handlers.NewHistoryHandler(archive, nil),
	}
	if adminToken != "" {
		h.Admin = handlers.NewAdminHandler(archive, adminToken, nil)
	}
	return NewRouter(h, tokens, nil, recorder), recorder, tokens
}

func serve(router http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestRouterRoutesKnownPaths(t *testing.T) {
	router, _, _ := newTestRouter(t, "", "")

	cases := map[string]int{
		"/health":        http.StatusOK,
		"/ready":         http.StatusOK,
		"/courts":        http.StatusOK,
		"/courts/1":      http.StatusOK,
		"/players":       http.StatusOK,
		"/players/1":     http.StatusOK,
		"/matches":       http.StatusOK,
		"/matches/m-404": http.StatusNotFound, // known route with missing match
		"/history":       http.StatusOK,
		"/history/m-404": http.StatusNotFound,
	}

	for path, expected := range cases {
		rr := serve(router, http.MethodGet, path, "", "")
		if rr.Code != expected {
			t.Fatalf("route %s expected status %d, got %d", path, expected, rr.Code)
		}
	}
}

func TestRouterUnknownRouteReturns404(t *testing.T) {
	router, recorder, _ := newTestRouter(t, "", "")

	rr := serve(router, http.MethodGet, "/games", "", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown route, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"code":"not_found"`) {
		t.Fatalf("expected json error body, got %s", rr.Body.String())
	}
	if got := recorder.Count(metrics.CounterHTTPRequests, "GET unmatched"); got != 1 {
		t.Fatalf("expected unmatched request counted, got %d", got)
	}
}

func TestRouterWrongMethodReturns405(t *testing.T) {
	router, _, _ := newTestRouter(t, "", "")

	rr := serve(router, http.MethodDelete, "/matches", "", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestRouterSetsRequestIDAndLabelsRoutes(t *testing.T) {
	router, recorder, _ := newTestRouter(t, "", "")

	rr := serve(router, http.MethodGet, "/matches/m-1", "", "")
	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected request id header")
	}
	if !strings.Contains(rr.Body.String(), rr.Header().Get("X-Request-ID")) {
		t.Fatalf("expected request id echoed in error body, got %s", rr.Body.String())
	}
	if got := recorder.Count(metrics.CounterHTTPRequests, "GET /matches/{matchID}"); got != 1 {
		t.Fatalf("expected request labelled by route pattern, got %d", got)
	}
}

func TestRouterProtectsMutatingMatchRoutes(t *testing.T) {
	router, _, tokens := newTestRouter(t, "secret", "")
	body := `{"courtId":"1","player1":1,"player2":2}`

	if rr := serve(router, http.MethodPost, "/matches", body, ""); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rr.Code)
	}
	if rr := serve(router, http.MethodGet, "/matches", "", ""); rr.Code != http.StatusOK {
		t.Fatalf("expected reads to stay open, got %d", rr.Code)
	}

	token, _, err := tokens.Issue("1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if rr := serve(router, http.MethodPost, "/matches", body, token); rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 with court token, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestRouterAdminRoutes(t *testing.T) {
	router, _, _ := newTestRouter(t, "", "")
	if rr := serve(router, http.MethodGet, "/admin/stats", "", "anything"); rr.Code != http.StatusNotFound {
		t.Fatalf("expected admin routes absent without token, got %d", rr.Code)
	}

	router, _, _ = newTestRouter(t, "", "ops")
	if rr := serve(router, http.MethodGet, "/admin/stats", "", ""); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without admin token, got %d", rr.Code)
	}
	rr := serve(router, http.MethodGet, "/admin/stats", "", "ops")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"archived":0`) {
		t.Fatalf("expected stats, got %d %s", rr.Code, rr.Body.String())
	}
}
