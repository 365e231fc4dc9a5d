package http

import (
	"log/slog"
	nethttp "net/http"

	"github.com/go-chi/chi/v5"

	"tennis-referee-service/internal/auth"
	"tennis-referee-service/internal/http/handlers"
	"tennis-referee-service/internal/http/middleware"
	"tennis-referee-service/internal/metrics"
)

// Handlers groups the route handlers mounted by NewRouter. Admin may be nil.
type Handlers struct {
	API     *handlers.Handler
	Matches *handlers.MatchHandler
	History *handlers.HistoryHandler
	Admin   *handlers.AdminHandler
}

// NewRouter registers HTTP routes on a chi router.
func NewRouter(h Handlers, tokens *auth.TokenManager, logger *slog.Logger, recorder *metrics.Recorder) nethttp.Handler {
	r := chi.NewRouter()
	r.Use(func(next nethttp.Handler) nethttp.Handler {
		return middleware.LoggingMiddleware(logger, recorder, next)
	})
	r.Use(middleware.Recoverer)
	r.NotFound(handlers.NotFound(logger))
	r.MethodNotAllowed(handlers.MethodNotAllowed(logger))

	r.Get("/health", h.API.Health)
	r.Get("/ready", h.API.Ready)
	r.Get("/courts", h.API.Courts)
	r.Get("/courts/{courtID}", h.API.Court)
	r.Get("/players", h.API.Players)
	r.Get("/players/{playerID}", h.API.Player)
	r.Post("/courts/{courtID}/authorize", h.API.AuthorizeCourt)

	r.Route("/matches", func(r chi.Router) {
		r.Get("/", h.Matches.List)
		r.Get("/{matchID}", h.Matches.Get)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate(tokens, handlers.WriteAuthError(logger)))
			r.Post("/", h.Matches.Create)
			r.Post("/{matchID}/first-server", h.Matches.SetFirstServer)
			r.Post("/{matchID}/events", h.Matches.ApplyEvent)
			r.Post("/{matchID}/swap-sides", h.Matches.SwapSides)
			r.Post("/{matchID}/undo", h.Matches.Undo)
			r.Post("/{matchID}/close", h.Matches.Close)
		})
	})

	r.Route("/history", func(r chi.Router) {
		r.Get("/", h.History.List)
		r.Get("/{matchID}", h.History.Get)
	})

	if h.Admin != nil {
		r.Route("/admin", func(r chi.Router) {
			r.Use(h.Admin.RequireToken)
			r.Get("/stats", h.Admin.Stats)
			r.Delete("/history/{matchID}", h.Admin.DeleteHistory)
		})
	}
	return r
}
