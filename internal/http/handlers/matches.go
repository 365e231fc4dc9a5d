package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	matchesapp "tennis-referee-service/internal/app/matches"
	"tennis-referee-service/internal/auth"
	domainmatches "tennis-referee-service/internal/domain/matches"
	"tennis-referee-service/internal/scoring"
)

// MatchHandler serves live match scoring.
type MatchHandler struct {
	svc    *matchesapp.Service
	tokens *auth.TokenManager
	logger *slog.Logger
}

// NewMatchHandler constructs a MatchHandler. A nil or disabled token manager leaves
// mutating routes open.
func NewMatchHandler(svc *matchesapp.Service, tokens *auth.TokenManager, logger *slog.Logger) *MatchHandler {
	return &MatchHandler{svc: svc, tokens: tokens, logger: logger}
}

// MatchView is a live match together with the values a scoreboard needs.
type MatchView struct {
	domainmatches.Match
	Status  domainmatches.Status `json:"status"`
	Phase   scoring.Phase        `json:"phase"`
	Server  scoring.Side         `json:"server"`
	Points  PointsView           `json:"points"`
	CanUndo bool                 `json:"canUndo"`
	Winner  scoring.Side         `json:"winner,omitempty"`
	Changes []scoring.Change     `json:"changes,omitempty"`
	Undone  string               `json:"undone,omitempty"`
}

// PointsView is the displayed point score of both sides.
type PointsView struct {
	Player1 string `json:"player1"`
	Player2 string `json:"player2"`
}

func newMatchView(m domainmatches.Match) MatchView {
	s := m.State
	winner, _ := s.Winner()
	view := MatchView{
		Match:   m,
		Status:  m.Status(),
		Phase:   s.Phase,
		Points:  PointsView{Player1: s.PointsDisplay(scoring.Side1), Player2: s.PointsDisplay(scoring.Side2)},
		CanUndo: s.CanUndo(),
		Winner:  winner,
	}
	if s.Phase != scoring.PhaseServerSelection {
		view.Server = s.Server()
	}
	return view
}

// Create opens a new match.
func (h *MatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	var params matchesapp.CreateParams
	if err := decodeBody(r, &params); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	if err := h.tokens.Authorize(r.Context(), params.CourtID); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	m, err := h.svc.Create(r.Context(), params)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	w.Header().Set("Location", "/matches/"+m.ID)
	writeJSON(w, http.StatusCreated, newMatchView(m), h.logger)
}

// List returns all live matches.
func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	live := h.svc.List()
	views := make([]MatchView, 0, len(live))
	for _, m := range live {
		views = append(views, newMatchView(m))
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": views, "count": len(views)}, h.logger)
}

// Get returns one live match.
func (h *MatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.Get(chi.URLParam(r, "matchID"))
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, newMatchView(m), h.logger)
}

type firstServerRequest struct {
	Side scoring.Side `json:"side"`
}

// SetFirstServer starts the match.
func (h *MatchHandler) SetFirstServer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorizeMatch(w, r)
	if !ok {
		return
	}
	var req firstServerRequest
	if err := decodeBody(r, &req); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	m, err := h.svc.SetFirstServer(r.Context(), id, req.Side)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, newMatchView(m), h.logger)
}

type eventRequest struct {
	Type scoring.EventKind `json:"type"`
	Side scoring.Side      `json:"side,omitempty"`
}

// ApplyEvent records one referee input.
func (h *MatchHandler) ApplyEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorizeMatch(w, r)
	if !ok {
		return
	}
	var req eventRequest
	if err := decodeBody(r, &req); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	m, changes, err := h.svc.Apply(r.Context(), id, scoring.Event{Kind: req.Type, Side: req.Side})
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	view := newMatchView(m)
	view.Changes = changes
	writeJSON(w, http.StatusOK, view, h.logger)
}

// SwapSides records a manual change of ends.
func (h *MatchHandler) SwapSides(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorizeMatch(w, r)
	if !ok {
		return
	}
	m, err := h.svc.SwapSides(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, newMatchView(m), h.logger)
}

// Undo reverts the last recorded event.
func (h *MatchHandler) Undo(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorizeMatch(w, r)
	if !ok {
		return
	}
	m, description, err := h.svc.Undo(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	view := newMatchView(m)
	view.Undone = description
	writeJSON(w, http.StatusOK, view, h.logger)
}

// Close archives a finished match.
func (h *MatchHandler) Close(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorizeMatch(w, r)
	if !ok {
		return
	}
	record, err := h.svc.Close(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, record, h.logger)
}

// authorizeMatch resolves the match id and checks the session court against the match court.
// Unknown matches pass through so the service reports them.
func (h *MatchHandler) authorizeMatch(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "matchID")
	if !h.tokens.Enabled() {
		return id, true
	}
	m, err := h.svc.Get(id)
	if err != nil {
		return id, true
	}
	if err := h.tokens.Authorize(r.Context(), m.Court.ID); err != nil {
		writeServiceError(w, r, err, h.logger)
		return "", false
	}
	return id, true
}
