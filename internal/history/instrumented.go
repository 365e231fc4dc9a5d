package history

import (
	"context"
	"log/slog"
	"time"

	"tennis-referee-service/internal/domain/matches"
	"tennis-referee-service/internal/logging"
	"tennis-referee-service/internal/metrics"
)

type instrumentedArchive struct {
	Archive
	driver   string
	logger   *slog.Logger
	recorder *metrics.Recorder
}

// Instrument records archive writes and their latency under the driver name.
func Instrument(inner Archive, driver string, logger *slog.Logger, recorder *metrics.Recorder) Archive {
	return &instrumentedArchive{Archive: inner, driver: driver, logger: logger, recorder: recorder}
}

func (a *instrumentedArchive) Save(ctx context.Context, record matches.Record) error {
	start := time.Now()
	err := a.Archive.Save(ctx, record)
	a.recorder.RecordArchiveWrite(a.driver, time.Since(start), err)

	logger := logging.FromContext(ctx, a.logger)
	if err != nil {
		logging.Error(logger, "archive write failed", err, logging.FieldMatchID, record.ID, "driver", a.driver)
		return err
	}
	logging.Info(logger, "match archived",
		logging.FieldMatchID, record.ID,
		logging.FieldCourtID, record.CourtID,
		"driver", a.driver,
		logging.FieldDurationMS, time.Since(start).Milliseconds(),
	)
	return nil
}
