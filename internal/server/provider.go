package server

import (
	"log/slog"

	"tennis-referee-service/internal/config"
	"tennis-referee-service/internal/logging"
	"tennis-referee-service/internal/providers"
	"tennis-referee-service/internal/providers/fixture"
	"tennis-referee-service/internal/providers/scoreserver"
)

func selectProvider(cfg config.Config, logger *slog.Logger) providers.ScoreServer {
	switch cfg.Provider {
	case config.ProviderFixture, "":
		return fixture.New()
	case config.ProviderScoreServer:
		return scoreserver.NewClient(scoreserver.Config{
			BaseURL: cfg.ScoreServer.BaseURL,
			APIKey:  cfg.ScoreServer.APIKey,
			Timeout: cfg.ScoreServer.Timeout,
		})
	default:
		logging.Warn(logger, "unknown provider, falling back to fixture", logging.FieldProvider, cfg.Provider)
		return fixture.New()
	}
}
