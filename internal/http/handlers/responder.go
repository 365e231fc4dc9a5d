package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	courtsapp "tennis-referee-service/internal/app/courts"
	matchesapp "tennis-referee-service/internal/app/matches"
	"tennis-referee-service/internal/auth"
	domainmatches "tennis-referee-service/internal/domain/matches"
	"tennis-referee-service/internal/history"
	"tennis-referee-service/internal/http/middleware"
	"tennis-referee-service/internal/http/requestutil"
	"tennis-referee-service/internal/logging"
	"tennis-referee-service/internal/providers"
	"tennis-referee-service/internal/scoring"
)

// Error codes returned in the "code" field of error bodies.
const (
	CodeInvalidRequest       = "invalid_request"
	CodeNotFound             = "not_found"
	CodeMethodNotAllowed     = "method_not_allowed"
	CodeMatchFinished        = "match_already_finished"
	CodeMatchNotFinished     = "match_not_finished"
	CodeNothingToUndo        = "nothing_to_undo"
	CodeAlreadyClosed        = "already_closed"
	CodeCourtBusy            = "court_busy"
	CodeInvalidEventForPhase = "invalid_event_for_phase"
	CodeUnauthorized         = "unauthorized"
	CodeForbidden            = "forbidden"
	CodeInvalidPIN           = "invalid_pin"
	CodeUnavailable          = "unavailable"
	CodeUpstream             = "upstream_error"
	CodeInternal             = "internal"
)

type errorBody struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"requestId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && logger != nil {
		logger.Error("failed to encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, logger *slog.Logger) {
	reqID := middleware.RequestIDFromContext(r.Context())
	if reqID == "" {
		reqID = r.Header.Get("X-Request-ID")
	}
	writeJSON(w, status, errorBody{Error: message, Code: code, RequestID: reqID}, logger)
}

// writeServiceError maps domain and collaborator errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		logging.Error(loggerFromContext(r, logger), "request failed", err,
			logging.FieldPath, r.URL.Path,
		)
	}
	writeError(w, r, status, code, err.Error(), logger)
}

func classify(err error) (int, string) {
	var rateLimited *providers.RateLimitError
	var statusErr *providers.StatusError

	switch {
	case errors.Is(err, scoring.ErrMatchAlreadyFinished):
		return http.StatusConflict, CodeMatchFinished
	case errors.Is(err, scoring.ErrNothingToUndo):
		return http.StatusConflict, CodeNothingToUndo
	case errors.Is(err, matchesapp.ErrAlreadyClosed):
		return http.StatusConflict, CodeAlreadyClosed
	case errors.Is(err, matchesapp.ErrCourtBusy):
		return http.StatusConflict, CodeCourtBusy
	case errors.Is(err, domainmatches.ErrNotFinished):
		return http.StatusConflict, CodeMatchNotFinished
	case errors.Is(err, scoring.ErrInvalidEventForPhase):
		return http.StatusUnprocessableEntity, CodeInvalidEventForPhase
	case errors.Is(err, matchesapp.ErrNotFound),
		errors.Is(err, history.ErrNotFound),
		errors.Is(err, courtsapp.ErrUnknownCourt):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, matchesapp.ErrInvalidRequest),
		errors.Is(err, scoring.ErrInvalidSide),
		errors.Is(err, scoring.ErrUnknownEvent),
		errors.Is(err, courtsapp.ErrPINRequired),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest, CodeInvalidRequest
	case errors.Is(err, courtsapp.ErrInvalidPIN):
		return http.StatusUnauthorized, CodeInvalidPIN
	case errors.Is(err, auth.ErrMissingToken), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, CodeUnauthorized
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden, CodeForbidden
	case errors.Is(err, providers.ErrProviderUnavailable):
		return http.StatusServiceUnavailable, CodeUnavailable
	case errors.As(err, &rateLimited), errors.As(err, &statusErr):
		return http.StatusBadGateway, CodeUpstream
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// errBadRequest marks malformed input detected by the HTTP layer itself.
var errBadRequest = errors.New("bad request")

func badRequest(err error) error {
	return fmt.Errorf("%w: %w", errBadRequest, err)
}

func decodeBody(r *http.Request, dst any) error {
	if err := requestutil.DecodeJSON(r, dst); err != nil {
		return badRequest(err)
	}
	return nil
}

// WriteAuthError renders authentication middleware failures.
func WriteAuthError(logger *slog.Logger) auth.ErrorWriter {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		logging.Warn(loggerFromContext(r, logger), "request unauthenticated",
			logging.FieldPath, r.URL.Path,
			"err", err,
		)
		writeServiceError(w, r, err, logger)
	}
}

// NotFound is the router fallback for unknown paths.
func NotFound(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, CodeNotFound, "not found", logger)
	}
}

// MethodNotAllowed is the router fallback for known paths with the wrong method.
func MethodNotAllowed(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed", logger)
	}
}

func loggerFromContext(r *http.Request, fallback *slog.Logger) *slog.Logger {
	if r == nil {
		return fallback
	}
	return logging.FromContext(r.Context(), fallback)
}
