// Package logger wraps a process-wide zerolog logger and carries
// request-scoped children through context.
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var log = zerolog.New(os.Stdout).With().Timestamp().Logger()

type ctxKey struct{}

// Init configures the global logger. Development builds log to a console
// writer; everything else emits JSON lines.
func Init(env, logLevel string) {
	var out io.Writer = os.Stdout
	if env == "development" || env == "dev" || env == "" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	}
	InitWithWriter(out, logLevel)
}

// InitWithWriter is Init with an explicit sink.
func InitWithWriter(out io.Writer, logLevel string) {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(ParseLevel(logLevel))
	log = zerolog.New(out).With().Timestamp().Caller().Logger()
}

// ParseLevel maps a config value to a level, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func Get() *zerolog.Logger {
	return &log
}

// WithContext returns the request logger stored in ctx, or the global one.
func WithContext(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*zerolog.Logger); ok {
			return l
		}
	}
	return &log
}

func NewContext(ctx context.Context, l *zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// WithRequestID derives a child of the global logger tagged with the request.
func WithRequestID(requestID string) zerolog.Logger {
	return log.With().Str("request_id", requestID).Logger()
}

// WithField returns ctx with its logger extended by one string field.
func WithField(ctx context.Context, key, value string) context.Context {
	l := WithContext(ctx).With().Str(key, value).Logger()
	return NewContext(ctx, &l)
}

// HTTPRequest logs a completed request at a level matching its status.
func HTTPRequest(ctx context.Context, method, path string, status int, duration time.Duration) {
	l := WithContext(ctx)
	var event *zerolog.Event
	switch {
	case status >= 500:
		event = l.Error()
	case status >= 400:
		event = l.Warn()
	default:
		event = l.Info()
	}
	event.
		Str("method", method).
		Str("path", path).
		Int("status", status).
		Dur("duration_ms", duration).
		Msg("HTTP Request")
}

func ServiceStart(name, port string) {
	log.Info().Str("service", name).Str("port", port).Msg("Service Started")
}

func ServiceStop(name string) {
	log.Info().Str("service", name).Msg("Service Stopped")
}
