package logging

import (
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// BuildLogger creates a structured logger writing to stderr at the given level.
func BuildLogger(level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})
	return slog.New(handler)
}

// Reporter forwards build warnings to a logger and counts them.
type Reporter struct {
	Logger *slog.Logger

	warnings atomic.Int64
}

// NewReporter returns a Reporter writing to logger.
func NewReporter(logger *slog.Logger) *Reporter {
	return &Reporter{Logger: logger}
}

// Warn logs msg at warning level. A nil Logger drops the message.
func (r *Reporter) Warn(msg string) {
	r.warnings.Add(1)
	if r.Logger != nil {
		r.Logger.Warn(msg)
	}
}

// Warnings returns how many warnings were reported.
func (r *Reporter) Warnings() int {
	return int(r.warnings.Load())
}
