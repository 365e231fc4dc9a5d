package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	courtsapp "tennis-referee-service/internal/app/courts"
	playersapp "tennis-referee-service/internal/app/players"
	"tennis-referee-service/internal/poller"
)

// Handler serves health probes and the court and player catalog.
type Handler struct {
	courts   *courtsapp.Service
	players  *playersapp.Service
	logger   *slog.Logger
	statusFn func() poller.Status
}

// NewHandler constructs a Handler. statusFn may be nil when no poller runs.
func NewHandler(courts *courtsapp.Service, players *playersapp.Service, logger *slog.Logger, statusFn func() poller.Status) *Handler {
	return &Handler{
		courts:   courts,
		players:  players,
		logger:   logger,
		statusFn: statusFn,
	}
}

// Health reports the service health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := r.Context().Err(); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, CodeUnavailable, "shutting down", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// Ready reports readiness for traffic (e.g., for Kubernetes probes).
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.statusFn == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	status := h.statusFn()
	if status.IsReady() {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "ready",
			"courts":  status.Courts,
			"players": status.Players,
		}, h.logger)
		return
	}
	msg := status.LastError
	if msg == "" {
		msg = "not ready"
	}
	writeError(w, r, http.StatusServiceUnavailable, CodeUnavailable, msg, h.logger)
}

// Courts lists the court catalog. ?available=true limits it to open courts.
func (h *Handler) Courts(w http.ResponseWriter, r *http.Request) {
	list := h.courts.Courts()
	if strings.EqualFold(r.URL.Query().Get("available"), "true") {
		list = h.courts.AvailableCourts()
	}
	writeJSON(w, http.StatusOK, map[string]any{"courts": list, "count": len(list)}, h.logger)
}

// Players lists the player catalog, optionally filtered by ?group=.
func (h *Handler) Players(w http.ResponseWriter, r *http.Request) {
	list := h.players.PlayersInGroup(strings.TrimSpace(r.URL.Query().Get("group")))
	writeJSON(w, http.StatusOK, map[string]any{"players": list, "count": len(list)}, h.logger)
}

// Court returns one court of the catalog.
func (h *Handler) Court(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "courtID")
	court, ok := h.courts.CourtByID(id)
	if !ok {
		writeError(w, r, http.StatusNotFound, CodeNotFound, "court "+id+" not found", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, court, h.logger)
}

// Player returns one player of the catalog.
func (h *Handler) Player(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "playerID")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusBadRequest, CodeInvalidRequest, "player id must be a positive integer", h.logger)
		return
	}
	player, ok := h.players.PlayerByID(id)
	if !ok {
		writeError(w, r, http.StatusNotFound, CodeNotFound, "player "+raw+" not found", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, player, h.logger)
}

type authorizeRequest struct {
	PIN string `json:"pin"`
}

// AuthorizeCourt checks a referee PIN and returns a court session.
func (h *Handler) AuthorizeCourt(w http.ResponseWriter, r *http.Request) {
	var req authorizeRequest
	if err := decodeBody(r, &req); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	session, err := h.courts.Authorize(r.Context(), chi.URLParam(r, "courtID"), req.PIN)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, session, h.logger)
}
