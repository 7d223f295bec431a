package semka

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

var discardLogger = slog.New(slog.DiscardHandler)

// LoggingContext returns a copy of ctx carrying logger. The Tree, the
// renderer, and the widgets log through it; without one they stay quiet.
func LoggingContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// Logger returns the logger carried by ctx, or one that discards everything.
func Logger(ctx context.Context) *slog.Logger {
	return logger(ctx)
}

func logger(ctx context.Context) *slog.Logger {
	l, ok := ctx.Value(loggerKey{}).(*slog.Logger)
	if !ok || l == nil {
		return discardLogger
	}
	return l
}

// docLogger tags every record with the document it's about.
func docLogger(ctx context.Context, path Path) *slog.Logger {
	return logger(ctx).With(slog.String("doc_path", path.String()))
}
