package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	courtsapp "tennis-referee-service/internal/app/courts"
	matchesapp "tennis-referee-service/internal/app/matches"
	playersapp "tennis-referee-service/internal/app/players"
	"tennis-referee-service/internal/auth"
	"tennis-referee-service/internal/config"
	httpserver "tennis-referee-service/internal/http"
	"tennis-referee-service/internal/http/handlers"
	"tennis-referee-service/internal/logging"
	"tennis-referee-service/internal/metrics"
	"tennis-referee-service/internal/poller"
	"tennis-referee-service/internal/providers"
	"tennis-referee-service/internal/scoring"
	"tennis-referee-service/internal/store"
)

var metricsSetup = metrics.Setup

type Server struct {
	cfg           config.Config
	logger        *slog.Logger
	metrics       *metrics.Recorder
	matches       *matchesapp.Service
	httpServer    httpServer
	metricsServer httpServer
	poller        Poller
	publisher     backgroundPublisher
	closers       []func() error
	metricsStop   func(context.Context) error
}

// New constructs a server with the configured provider, archive and event sinks.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	return newServerWithProvider(cfg, logger, nil)
}

func newServerWithProvider(cfg config.Config, logger *slog.Logger, provider providers.ScoreServer) (*Server, error) {
	return newServerWithMetrics(cfg, logger, provider, nil)
}

func newServerWithMetrics(cfg config.Config, logger *slog.Logger, provider providers.ScoreServer, recorder *metrics.Recorder) (*Server, error) {
	rules, err := cfg.Rules.ScoringRules()
	if err != nil {
		return nil, fmt.Errorf("scoring rules: %w", err)
	}
	engine, err := scoring.NewEngine(rules)
	if err != nil {
		return nil, err
	}

	recorder, metricsSrv, metricsShutdown := buildMetrics(cfg, logger, recorder)

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()
	archive, err := buildArchive(ctx, cfg, logger, recorder)
	if err != nil {
		if metricsShutdown != nil {
			_ = metricsShutdown(context.Background())
		}
		return nil, err
	}

	factory := newProviderFactory(logger, recorder)
	comps := factory.build(cfg, provider)
	events := factory.events(cfg, comps)
	logging.Info(logger, "event sinks configured", "sinks", events.sinks)

	catalog := store.NewCatalogStore()
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer)
	if !tokens.Enabled() {
		logging.Warn(logger, "JWT_SECRET not set, match routes are not authenticated")
	}
	matchSvc := matchesapp.NewService(engine, store.NewMatchStore(), catalog, archive.archive,
		matchesapp.WithPublisher(events.publisher),
		matchesapp.WithStatisticsSink(comps.stats),
		matchesapp.WithLogger(logger),
		matchesapp.WithMetrics(recorder),
	)
	plr := poller.New(comps.catalog, catalog, logger, recorder, cfg.PollInterval)

	h := httpserver.Handlers{
		API:     handlers.NewHandler(courtsapp.NewService(catalog, comps.authorizer, tokens, logger), playersapp.NewService(catalog), logger, plr.Status),
		Matches: handlers.NewMatchHandler(matchSvc, tokens, logger),
		History: handlers.NewHistoryHandler(archive.archive, logger),
	}
	if cfg.AdminToken != "" {
		h.Admin = handlers.NewAdminHandler(archive.archive, cfg.AdminToken, logger)
	}

	closers := []func() error{events.kafka.Close}
	if archive.close != nil {
		closers = append(closers, func() error {
			archive.close()
			return nil
		})
	}

	return &Server{
		cfg:           cfg,
		logger:        logger,
		metrics:       recorder,
		matches:       matchSvc,
		httpServer:    buildHTTPServer(cfg, h, tokens, logger, recorder),
		metricsServer: metricsSrv,
		poller:        plr,
		publisher:     events.publisher,
		closers:       closers,
		metricsStop:   metricsShutdown,
	}, nil
}

// newServerWithDeps is used for testing to inject custom components.
func newServerWithDeps(cfg config.Config, logger *slog.Logger, httpSrv httpServer, plr Poller, publisher backgroundPublisher) *Server {
	return &Server{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpSrv,
		poller:     plr,
		publisher:  publisher,
	}
}

func buildHTTPServer(cfg config.Config, h httpserver.Handlers, tokens *auth.TokenManager, logger *slog.Logger, recorder *metrics.Recorder) httpServer {
	if logger == nil {
		logger = logging.NewLogger(logging.Config{})
	}
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpserver.NewRouter(h, tokens, logger, recorder),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
	return netHTTPServer{srv: srv}
}

// Run starts the poller, event publisher and HTTP server, then waits for context
// cancellation to shut down gracefully.
func (s *Server) Run(ctx context.Context, stop context.CancelFunc) {
	s.startMetrics()
	s.startServer(stop)
	if s.publisher != nil {
		s.publisher.Start(ctx)
	}
	s.poller.Start(ctx)

	<-ctx.Done()
	logging.Info(s.logger, "shutdown signal received")

	s.gracefulShutdown()
}

func (s *Server) startServer(stop context.CancelFunc) {
	logging.Info(s.logger, "http server starting", slog.String("addr", s.httpServer.Addr()))
	launchServer("http", s.httpServer, s.logger, func(err error) {
		if stop != nil {
			stop()
		}
	})
}

func (s *Server) startMetrics() {
	if s.metricsServer == nil {
		return
	}
	logging.Info(s.logger, "metrics server starting", slog.String("addr", s.metricsServer.Addr()))
	launchServer("metrics", s.metricsServer, s.logger, nil)
}

// gracefulShutdown stops intake first (HTTP, poller), then flushes queued events and
// releases the sinks and archive connections.
func (s *Server) gracefulShutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error(s.logger, "graceful shutdown failed", err)
	}

	if err := s.poller.Stop(shutdownCtx); err != nil {
		logging.Error(s.logger, "failed to stop poller", err)
	}

	if s.publisher != nil {
		if err := s.publisher.Stop(shutdownCtx); err != nil {
			logging.Warn(s.logger, "event queue not drained", "err", err)
		}
	}

	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			logging.Warn(s.logger, "close failed", "err", err)
		}
	}

	if s.metricsStop != nil {
		if err := s.metricsStop(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics shutdown failed", "err", err)
		}
	}

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics server shutdown failed", "err", err)
		}
	}

	logging.Info(s.logger, "shutdown complete")
}

func buildMetrics(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*metrics.Recorder, httpServer, func(context.Context) error) {
	if recorder != nil {
		return recorder, nil, nil
	}

	recCfg := metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		Port:         cfg.Metrics.Port,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	}

	rec, handler, shutdown, err := metricsSetup(context.Background(), recCfg)
	if err != nil {
		logging.Warn(logger, "metrics setup failed, continuing without telemetry", "err", err)
		return metrics.NewRecorder(), nil, nil
	}

	var metricsSrv httpServer
	if handler != nil && recCfg.Enabled {
		metricsSrv = netHTTPServer{
			srv: &http.Server{
				Addr:              ":" + recCfg.Port,
				Handler:           handler,
				ReadHeaderTimeout: readTimeout,
			},
		}
	}

	return rec, metricsSrv, shutdown
}

func launchServer(name string, srv httpServer, logger *slog.Logger, onError func(error)) {
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Warn(logger, name+" server failed", "err", err)
			if onError != nil {
				onError(err)
			}
		}
	}()
}

// Handler exposes the HTTP handler (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler()
}

