package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"tennis-referee-service/internal/history"
	"tennis-referee-service/internal/timeutil"
)

// HistoryHandler serves archived matches.
type HistoryHandler struct {
	archive history.Archive
	logger  *slog.Logger
}

// NewHistoryHandler constructs a HistoryHandler.
func NewHistoryHandler(archive history.Archive, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{archive: archive, logger: logger}
}

// List returns archived matches filtered by ?court=&from=&to=&limit=.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := parseHistoryQuery(r)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	records, err := h.archive.List(r.Context(), q)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": records, "count": len(records)}, h.logger)
}

// Get returns one archived match.
func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	record, err := h.archive.Get(r.Context(), chi.URLParam(r, "matchID"))
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, record, h.logger)
}

func parseHistoryQuery(r *http.Request) (history.Query, error) {
	values := r.URL.Query()
	q := history.Query{CourtID: strings.TrimSpace(values.Get("court"))}

	if raw := strings.TrimSpace(values.Get("from")); raw != "" {
		from, err := timeutil.ParseBound(raw, false)
		if err != nil {
			return history.Query{}, badRequest(fmt.Errorf("invalid from: %w", err))
		}
		q.From = from
	}
	if raw := strings.TrimSpace(values.Get("to")); raw != "" {
		to, err := timeutil.ParseBound(raw, true)
		if err != nil {
			return history.Query{}, badRequest(fmt.Errorf("invalid to: %w", err))
		}
		q.To = to
	}
	if !q.From.IsZero() && !q.To.IsZero() && q.To.Before(q.From) {
		return history.Query{}, badRequest(errors.New("to is before from"))
	}
	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return history.Query{}, badRequest(fmt.Errorf("invalid limit %q", raw))
		}
		q.Limit = limit
	}
	return q, nil
}
