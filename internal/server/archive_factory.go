package server

import (
	"context"
	"fmt"
	"log/slog"

	"tennis-referee-service/internal/config"
	"tennis-referee-service/internal/history"
	"tennis-referee-service/internal/logging"
	"tennis-referee-service/internal/metrics"
)

// Swappable for tests that must not reach a database.
var (
	openPool       = history.OpenPool
	migrateArchive = history.Migrate
)

type archiveComponents struct {
	archive history.Archive
	close   func()
}

// buildArchive opens the configured finished-match archive. The postgres driver applies
// migrations first when enabled.
func buildArchive(ctx context.Context, cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (archiveComponents, error) {
	switch cfg.Archive.Driver {
	case config.ArchivePostgres:
		if cfg.Archive.MigrateOnStart {
			if err := migrateArchive(cfg.Archive.DatabaseURL, logger); err != nil {
				return archiveComponents{}, fmt.Errorf("migrate archive: %w", err)
			}
		}
		pool, err := openPool(ctx, cfg.Archive.DatabaseURL)
		if err != nil {
			return archiveComponents{}, fmt.Errorf("open archive database: %w", err)
		}
		logging.Info(logger, "archive ready", "driver", config.ArchivePostgres)
		return archiveComponents{
			archive: history.Instrument(history.NewPgArchive(pool), config.ArchivePostgres, logger, recorder),
			close:   pool.Close,
		}, nil
	default:
		fs := history.NewFSArchive(cfg.Archive.Dir, cfg.Archive.RetentionDays)
		logging.Info(logger, "archive ready", "driver", config.ArchiveFS, "dir", fs.BasePath())
		return archiveComponents{
			archive: history.Instrument(fs, config.ArchiveFS, logger, recorder),
		}, nil
	}
}
