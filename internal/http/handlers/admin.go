package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tennis-referee-service/internal/history"
	"tennis-referee-service/internal/http/requestutil"
	"tennis-referee-service/internal/logging"
)

// AdminHandler exposes admin-only endpoints guarded by ADMIN_TOKEN.
type AdminHandler struct {
	archive history.Archive
	token   string
	logger  *slog.Logger
}

// NewAdminHandler constructs an AdminHandler. An empty token disables every admin route.
func NewAdminHandler(archive history.Archive, token string, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		archive: archive,
		token:   token,
		logger:  logger,
	}
}

// RequireToken rejects requests without the admin bearer token.
func (h *AdminHandler) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !requestutil.TokenMatches(r, h.token) {
			logging.Warn(h.logger, "admin unauthorized",
				slog.String(logging.FieldPath, r.URL.Path),
				slog.String("client_ip", requestutil.ClientIP(r)),
			)
			writeError(w, r, http.StatusUnauthorized, CodeUnauthorized, "unauthorized", h.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// DeleteHistory removes an archived match.
func (h *AdminHandler) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "matchID")
	logger := loggerFromContext(r, h.logger)
	if err := h.archive.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	logging.Info(logger, "admin deleted archived match", slog.String(logging.FieldMatchID, id))
	w.WriteHeader(http.StatusNoContent)
}

// Stats reports archive totals.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	count, err := h.archive.Count(r.Context())
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"archived": count}, h.logger)
}
