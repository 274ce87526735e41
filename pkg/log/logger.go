package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// ErrAttr is a wrapper to pass err to slog.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}

// ParseLevel converts "debug", "info", "warn" or "error" to a Level.
func ParseLevel(level string) (Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("invalid log level: %q", level)
	}
}

// SetupLogger installs a JSON slog logger on stdout as both the slog default
// and the package logger.
func SetupLogger(loglevel string) error {
	level, err := ParseLevel(loglevel)
	if err != nil {
		return err
	}
	SetLogger(NewSlogLogger(os.Stdout, level))
	return nil
}

// NewSlogLogger returns a Logger writing JSON records to w. The record keys
// follow the Cloud Logging conventions (severity, message).
func NewSlogLogger(w io.Writer, level Level) Logger {
	ops := slog.HandlerOptions{
		AddSource: true,
		Level:     slog.Level(level),
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.LevelKey:
				attr = slog.Attr{Key: "severity", Value: attr.Value}
			case slog.MessageKey:
				attr = slog.Attr{Key: "message", Value: attr.Value}
			case slog.SourceKey:
				attr = slog.Attr{Key: "logging.googleapis.com/sourceLocation", Value: attr.Value}
			}
			return attr
		},
	}
	l := slog.New(WrapByErrFmtHandler(slog.NewJSONHandler(w, &ops)))
	slog.SetDefault(l)
	return &slogLogger{l: l}
}

type slogLogger struct {
	l *slog.Logger
}

func (s *slogLogger) Debug(msg string, fields ...any) { s.l.Debug(msg, normalizeFields(fields)...) }
func (s *slogLogger) Info(msg string, fields ...any)  { s.l.Info(msg, normalizeFields(fields)...) }
func (s *slogLogger) Warn(msg string, fields ...any)  { s.l.Warn(msg, normalizeFields(fields)...) }
func (s *slogLogger) Error(msg string, fields ...any) { s.l.Error(msg, normalizeFields(fields)...) }

func (s *slogLogger) With(fields ...any) Logger {
	return &slogLogger{l: s.l.With(normalizeFields(fields)...)}
}

func (s *slogLogger) Enabled(ctx context.Context, level Level) bool {
	return s.l.Enabled(ctx, slog.Level(level))
}

// normalizeFields turns a leading error value into an ErrAttr so that
// ErrFmtHandler can lift its stack trace.
func normalizeFields(fields []any) []any {
	if len(fields) == 0 {
		return fields
	}
	if err, ok := fields[0].(error); ok {
		out := make([]any, 0, len(fields))
		out = append(out, ErrAttr(err))
		return append(out, fields[1:]...)
	}
	return fields
}
