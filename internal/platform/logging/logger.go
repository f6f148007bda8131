package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/pscheid92/tradesbychat/internal/platform/correlation"
)

// LevelTrading marks trading decisions. It sits between INFO and WARN so that operators
// can filter decisions apart from routine information and from feed errors.
const LevelTrading = slog.Level(2)

// Logger is the application-wide structured logger instance.
var Logger *slog.Logger

// InitLogger initializes the global logger with the specified level and format.
// level: "debug", "info", "trading", "warn", "error" (defaults to "info")
// format: "json" or "text" (defaults to "text")
func InitLogger(level, format string) {
	Logger = New(os.Stdout, level, format)
	slog.SetDefault(Logger)
}

// New builds a logger writing to w. Exposed for tests that capture output.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:       parseLevel(level),
		ReplaceAttr: renameTradingLevel,
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(correlation.NewHandler(handler))
}

// Trading logs a trading decision on the default logger.
func Trading(ctx context.Context, msg string, args ...any) {
	slog.Log(ctx, LevelTrading, msg, args...)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "trading":
		return LevelTrading
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func renameTradingLevel(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if level, ok := a.Value.Any().(slog.Level); ok && level == LevelTrading {
		a.Value = slog.StringValue("TRADING")
	}
	return a
}
