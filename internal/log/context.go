// Package log provides structured logging utilities.
package log

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	deckKey      ctxKey = "deck"
	caseIDKey    ctxKey = "case"
)

func withValue(ctx context.Context, key ctxKey, v string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, key, v)
}

func stringValue(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}

// ContextWithRequestID stores the request ID for correlation.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return withValue(ctx, requestIDKey, id)
}

// ContextWithDeck stores the deck path under processing.
func ContextWithDeck(ctx context.Context, path string) context.Context {
	return withValue(ctx, deckKey, path)
}

// ContextWithCaseID stores the case-matrix entry name.
func ContextWithCaseID(ctx context.Context, id string) context.Context {
	return withValue(ctx, caseIDKey, id)
}

// RequestIDFromContext extracts the request ID, or "" if absent.
func RequestIDFromContext(ctx context.Context) string {
	return stringValue(ctx, requestIDKey)
}

// DeckFromContext extracts the deck path, or "" if absent.
func DeckFromContext(ctx context.Context) string {
	return stringValue(ctx, deckKey)
}

// CaseIDFromContext extracts the case name, or "" if absent.
func CaseIDFromContext(ctx context.Context) string {
	return stringValue(ctx, caseIDKey)
}

// correlationFields pairs each context key with the log field it feeds.
var correlationFields = []struct {
	key   ctxKey
	field string
}{
	{requestIDKey, FieldRequestID},
	{deckKey, FieldDeck},
	{caseIDKey, FieldCase},
}

// WithContext enriches the supplied logger with whatever correlation
// values the context carries. Without any it returns the logger as is.
func WithContext(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	if ctx == nil {
		return logger
	}
	builder := logger.With()
	added := false
	for _, cf := range correlationFields {
		if v := stringValue(ctx, cf.key); v != "" {
			builder = builder.Str(cf.field, v)
			added = true
		}
	}
	if !added {
		return logger
	}
	return builder.Logger()
}

// WithComponentFromContext returns a component-annotated logger enriched
// with correlation fields from ctx. This is the usual entry point for
// request-scoped logging.
func WithComponentFromContext(ctx context.Context, component string) zerolog.Logger {
	l := WithContext(ctx, *FromContext(ctx))
	return l.With().Str(FieldComponent, component).Logger()
}

// FromContext returns the logger stored in ctx, falling back to the
// base logger when none is present.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		l := Base()
		return &l
	}
	l := zerolog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		b := Base()
		return &b
	}
	return l
}

// WithTraceContext returns the base logger enriched with the active
// span's trace_id and span_id, so log lines can be joined with traces.
func WithTraceContext(ctx context.Context) zerolog.Logger {
	l := logger()
	if ctx == nil {
		return l
	}
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return l
	}
	return l.With().
		Str("trace_id", spanCtx.TraceID().String()).
		Str("span_id", spanCtx.SpanID().String()).
		Logger()
}
