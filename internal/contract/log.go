package contract

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// LogTimeFormat is the timestamp layout of log lines.
const LogTimeFormat = "15:04:05.00"

type loggerKey struct{}

// NewLogger creates a timestamped logger writing to w at the given level.
func NewLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      LogTimeFormat,
		Level:           level,
	})
}

// NewStderrLogger parses a level name and creates a logger on stderr.
// Unknown names fall back to warn.
func NewStderrLogger(level string) *log.Logger {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = log.WarnLevel
	}
	return NewLogger(os.Stderr, lvl)
}

// WithLogger attaches a logger to ctx.
func WithLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// LoggerFrom returns the logger attached to ctx, or the default logger.
func LoggerFrom(ctx context.Context) *log.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok && l != nil {
			return l
		}
	}
	return log.Default()
}
