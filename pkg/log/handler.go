package log

import (
	"context"
	"log/slog"

	crdb "github.com/cockroachdb/errors"

	"github.com/YuminosukeSato/xgbpredictor/pkg/errors"
)

// ErrFmtHandler is a slog handler for records carrying an error under
// ErrAttrKey. It adds the cockroachdb/errors stack trace and the decode
// failure kind as separate attributes.
type ErrFmtHandler struct {
	handler slog.Handler
}

// WrapByErrFmtHandler wraps handler with an ErrFmtHandler.
func WrapByErrFmtHandler(handler slog.Handler) slog.Handler {
	return &ErrFmtHandler{handler: handler}
}

func (eh *ErrFmtHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return eh.handler.Enabled(ctx, l)
}

func (eh *ErrFmtHandler) Handle(ctx context.Context, r slog.Record) error {
	var found error
	r.Attrs(func(attr slog.Attr) bool {
		if attr.Key != ErrAttrKey {
			return true
		}
		found, _ = attr.Value.Any().(error)
		return false
	})
	if found != nil {
		if st := extractStacktrace(found); st != "" {
			r.AddAttrs(slog.String(StacktraceAttrKey, st))
		}
		if kind := ErrorType(found); kind != "" {
			r.AddAttrs(slog.String(ErrorTypeKey, kind))
		}
	}
	return eh.handler.Handle(ctx, r)
}

func (eh *ErrFmtHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ErrFmtHandler{handler: eh.handler.WithAttrs(attrs)}
}

func (eh *ErrFmtHandler) WithGroup(g string) slog.Handler {
	return &ErrFmtHandler{handler: eh.handler.WithGroup(g)}
}

func extractStacktrace(err error) string {
	safeDetails := crdb.GetSafeDetails(err).SafeDetails
	if len(safeDetails) > 0 {
		return safeDetails[0]
	}
	return ""
}

var errorKinds = []struct {
	sentinel error
	kind     string
}{
	{errors.ErrTruncated, "truncated"},
	{errors.ErrUnsupportedBooster, "unsupported_booster"},
	{errors.ErrUnsupportedObjective, "unsupported_objective"},
	{errors.ErrInvalidUTF8, "invalid_utf8"},
	{errors.ErrStructural, "structural"},
	{errors.ErrUnsupportedFormat, "unsupported_format"},
}

// ErrorType names the failure kind of err for the ErrorTypeKey attribute,
// or returns "" for errors outside the taxonomy.
func ErrorType(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.sentinel) {
			return k.kind
		}
	}
	var ve *errors.ValidationError
	if errors.As(err, &ve) {
		return "validation"
	}
	var pe *errors.PanicError
	if errors.As(err, &pe) {
		return "panic"
	}
	return ""
}
