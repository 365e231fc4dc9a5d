package providers

import (
	"context"
	"log/slog"

	"tennis-referee-service/internal/domain/matches"
	"tennis-referee-service/internal/logging"
)

// logWithProvider emits a log entry tagged with the provider name. A nil logger is ignored.
func logWithProvider(ctx context.Context, logger *slog.Logger, level slog.Level, provider string, msg string, args ...any) {
	if logger == nil || !logger.Enabled(ctx, level) {
		return
	}
	args = append(args, slog.String(logging.FieldProvider, provider))
	logger.Log(ctx, level, msg, args...)
}

func eventAttrs(event matches.Event) []any {
	return []any{
		slog.String(logging.FieldCourtID, event.CourtID),
		slog.String(logging.FieldMatchID, event.MatchID),
		slog.String(logging.FieldEvent, string(event.EventType)),
	}
}
