package log

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/YuminosukeSato/xgbpredictor/pkg/errors"
)

// Format selects the zerolog output encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatConsole Format = "console"
)

type zerologLogger struct {
	zl zerolog.Logger
}

// NewZerologLogger returns a Logger backed by zerolog. FormatConsole renders
// human-readable lines, anything else renders JSON.
func NewZerologLogger(w io.Writer, level Level, format Format) Logger {
	if format == FormatConsole {
		w = zerolog.ConsoleWriter{Out: w, NoColor: true}
	}
	zl := zerolog.New(w).Level(toZerologLevel(level)).With().Timestamp().Logger()
	return &zerologLogger{zl: zl}
}

// InstallWarningSink routes pkg/errors warnings to l when l is zerolog-backed.
// Warnings implementing zerolog.LogObjectMarshaler keep their structure.
func InstallWarningSink(l Logger) {
	zlog, ok := l.(*zerologLogger)
	if !ok {
		errors.SetZerologWarnFunc(nil)
		return
	}
	errors.SetZerologWarnFunc(func(w error) {
		ev := zlog.zl.Warn()
		if m, ok := w.(zerolog.LogObjectMarshaler); ok {
			ev = ev.EmbedObject(m)
		}
		ev.Msg(w.Error())
	})
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

func (z *zerologLogger) Debug(msg string, fields ...any) { z.emit(z.zl.Debug(), msg, fields) }
func (z *zerologLogger) Info(msg string, fields ...any)  { z.emit(z.zl.Info(), msg, fields) }
func (z *zerologLogger) Warn(msg string, fields ...any)  { z.emit(z.zl.Warn(), msg, fields) }
func (z *zerologLogger) Error(msg string, fields ...any) { z.emit(z.zl.Error(), msg, fields) }

func (z *zerologLogger) With(fields ...any) Logger {
	ctx := z.zl.With()
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			ctx = ctx.AnErr(ErrAttrKey, err)
			fields = fields[1:]
		}
	}
	for i := 0; i+1 < len(fields); i += 2 {
		ctx = ctx.Interface(fmt.Sprint(fields[i]), fields[i+1])
	}
	return &zerologLogger{zl: ctx.Logger()}
}

func (z *zerologLogger) Enabled(_ context.Context, level Level) bool {
	return z.zl.GetLevel() <= toZerologLevel(level)
}

func (z *zerologLogger) emit(ev *zerolog.Event, msg string, fields []any) {
	if ev == nil {
		return
	}
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			ev = ev.AnErr(ErrAttrKey, err)
			var m zerolog.LogObjectMarshaler
			if errors.As(err, &m) {
				ev = ev.EmbedObject(m)
			}
			if kind := ErrorType(err); kind != "" {
				ev = ev.Str(ErrorTypeKey, kind)
			}
			fields = fields[1:]
		}
	}
	for i := 0; i+1 < len(fields); i += 2 {
		ev = ev.Interface(fmt.Sprint(fields[i]), fields[i+1])
	}
	ev.Msg(msg)
}
