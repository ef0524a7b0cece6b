package logging

import (
	"context"
	"log/slog"
	"time"

	"artistdb/internal/diag"
)

type Attr = slog.Attr

func Any(key string, value any) Attr { return slog.Any(key, value) }

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func Int64(key string, value int64) Attr { return slog.Int64(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// Args converts attributes to the variadic form slog.Logger methods accept.
func Args(attrs ...Attr) []any {
	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}
	return args
}

func NewNop() *slog.Logger {
	return slog.New(NoopHandler{})
}

// NewComponentLogger creates a logger with a standardized component attribute.
// If logger is nil, a no-op logger is used as the base.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

// HasAttrKey returns true if any attribute in attrs has the given key.
func HasAttrKey(attrs []Attr, key string) bool {
	for _, a := range attrs {
		if a.Key == key {
			return true
		}
	}
	return false
}

// withDefaults appends each default whose key is not already present.
func withDefaults(attrs []Attr, defaults ...Attr) []Attr {
	for _, d := range defaults {
		if !HasAttrKey(attrs, d.Key) {
			attrs = append(attrs, d)
		}
	}
	return attrs
}

// WarnWithContext logs a warning that always carries event_type, error_hint
// and impact; missing ones get generic defaults.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	attrs = withDefaults(attrs,
		String(FieldEventType, eventType),
		String(FieldErrorHint, "check logs for details"),
		String(FieldImpact, "run completed with warnings"))
	logger.Warn(msg, Args(attrs...)...)
}

// ErrorWithContext logs an error that always carries event_type and error_hint.
func ErrorWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	attrs = withDefaults(attrs,
		String(FieldEventType, eventType),
		String(FieldErrorHint, "check logs for details"))
	logger.Error(msg, Args(attrs...)...)
}

// DiagnosticAttrs builds the standard attributes for a resolution diagnostic.
func DiagnosticAttrs(d diag.Diagnostic) []Attr {
	attrs := make([]Attr, 0, 4)
	if d.Artist != "" {
		attrs = append(attrs, String(FieldArtist, d.Artist))
	}
	if d.Field != "" {
		attrs = append(attrs, String(FieldField, d.Field))
	}
	attrs = append(attrs, String(FieldKind, string(d.Kind)))
	if d.Hint != "" {
		attrs = append(attrs, String(FieldErrorHint, d.Hint))
	}
	return attrs
}

// LogDiagnostic emits d at its own level. Warnings carry the enforced
// event_type/error_hint/impact triple.
func LogDiagnostic(ctx context.Context, logger *slog.Logger, d diag.Diagnostic) {
	if logger == nil {
		return
	}
	attrs := DiagnosticAttrs(d)
	switch d.Level {
	case diag.LevelWarn:
		attrs = append(attrs, String(FieldImpact, "published entry may be incomplete"))
		WarnWithContext(logger, d.Message, string(d.Kind), attrs...)
	case diag.LevelInfo:
		logger.InfoContext(ctx, d.Message, Args(attrs...)...)
	default:
		logger.DebugContext(ctx, d.Message, Args(attrs...)...)
	}
}

// NoopHandler discards all log output.
type NoopHandler struct{}

func (NoopHandler) Enabled(context.Context, slog.Level) bool { return false }

func (NoopHandler) Handle(context.Context, slog.Record) error { return nil }

func (NoopHandler) WithAttrs([]slog.Attr) slog.Handler { return NoopHandler{} }

func (NoopHandler) WithGroup(string) slog.Handler { return NoopHandler{} }
