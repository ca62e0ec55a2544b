package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ctxKey is the private context key the logger is stored under.
type ctxKey struct{}

// New creates the process-wide logger. The minimum level comes from
// LOG_LEVEL (trace, debug, info, warn, error; default info) and
// LOG_FORMAT=json switches from the human-readable console format to
// raw JSON lines.
func New() zerolog.Logger {
	var out io.Writer = zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
		out = os.Stdout
	}
	return zerolog.New(out).Level(levelFromEnv()).With().Timestamp().Caller().Logger()
}

// NewWithWriter creates a JSON logger that writes to w. Used by tests and
// anywhere the output needs to be captured.
func NewWithWriter(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Caller().Logger()
}

func levelFromEnv() zerolog.Level {
	raw := os.Getenv("LOG_LEVEL")
	if raw == "" {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(raw))
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// WithContext returns a copy of ctx carrying the logger.
func WithContext(ctx context.Context, log zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// FromContext retrieves the logger stored in ctx. When ctx carries no
// logger a default one is returned, so callers can always log.
func FromContext(ctx context.Context) zerolog.Logger {
	if log, ok := ctx.Value(ctxKey{}).(zerolog.Logger); ok {
		return log
	}
	return New()
}

// WithFields returns a child logger with every entry in fields attached.
func WithFields(log zerolog.Logger, fields map[string]interface{}) zerolog.Logger {
	lc := log.With()
	for k, v := range fields {
		lc = lc.Interface(k, v)
	}
	return lc.Logger()
}
