package internal

import (
	"io"
	"log/slog"
	"time"
)

// NewLogger builds the service logger: JSON in prod so log aggregation can
// parse entries, plain text everywhere else. Unknown levels fall back to
// info.
func NewLogger(w io.Writer, env string, level string) *slog.Logger {
	lvl, ok := parseLogLevel(level)
	if !ok {
		slog.Default().Warn("Unknown log level, using info", slog.String("value", level))
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if env != "prod" {
		return slog.New(slog.NewTextHandler(w, opts))
	}

	opts.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.TimeKey {
			return slog.String("time", a.Value.Time().Format(time.RFC3339Nano))
		}
		return a
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// parseLogLevel maps a LOG_LEVEL string to a slog level. The second return
// reports whether the value was recognized; unrecognized values map to info.
func parseLogLevel(level string) (slog.Level, bool) {
	switch level {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
