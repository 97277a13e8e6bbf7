package log

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

func TestRequestIDRoundTrip(t *testing.T) {
	cases := map[string]struct {
		parent context.Context
		id     string
	}{
		"nil parent":        {nil, "req-a1b2"},
		"background parent": {context.Background(), "req-7f"},
		"blank id":          {context.Background(), ""},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got := RequestIDFromContext(ContextWithRequestID(tc.parent, tc.id))
			if got != tc.id {
				t.Errorf("round-trip returned %q, want %q", got, tc.id)
			}
		})
	}
}

func TestDeckAndCaseRoundTrip(t *testing.T) {
	ctx := ContextWithDeck(nil, "decks/base.fst")
	ctx = ContextWithCaseID(ctx, "rated-wind")

	if got := DeckFromContext(ctx); got != "decks/base.fst" {
		t.Errorf("DeckFromContext() = %v", got)
	}
	if got := CaseIDFromContext(ctx); got != "rated-wind" {
		t.Errorf("CaseIDFromContext() = %v", got)
	}
}

func TestLookupsOnBareContexts(t *testing.T) {
	for name, ctx := range map[string]context.Context{
		"nil":              nil,
		"empty":            context.Background(),
		"wrong value type": context.WithValue(context.Background(), requestIDKey, 123),
	} {
		if got := RequestIDFromContext(ctx); got != "" {
			t.Errorf("%s context: request id = %q, want empty", name, got)
		}
		if FromContext(ctx) == nil {
			t.Errorf("%s context: FromContext returned nil", name)
		}
	}
}

func TestWithContextEnrichment(t *testing.T) {
	buf := captureBase(t)

	ctx := ContextWithRequestID(context.Background(), "req-9")
	ctx = ContextWithDeck(ctx, "a.fst")
	ctx = ContextWithCaseID(ctx, "case-1")

	WithContext(ctx, Base()).Info().Msg("enriched")

	entry := decodeLine(t, buf)
	for field, want := range map[string]string{
		FieldRequestID: "req-9",
		FieldDeck:      "a.fst",
		FieldCase:      "case-1",
	} {
		if entry[field] != want {
			t.Errorf("%s = %v, want %s", field, entry[field], want)
		}
	}
}

func TestWithContextNoFields(t *testing.T) {
	baseLogger := WithComponent("test")
	enriched := WithContext(context.Background(), baseLogger)
	if enriched.GetLevel() != baseLogger.GetLevel() {
		t.Error("logger level should be preserved")
	}
}

func TestWithComponentFromContext(t *testing.T) {
	buf := captureBase(t)

	ctx := ContextWithDeck(context.Background(), "b.fst")
	WithComponentFromContext(ctx, "watcher").Info().Msg("seen")

	entry := decodeLine(t, buf)
	if entry[FieldComponent] != "watcher" {
		t.Errorf("component = %v", entry[FieldComponent])
	}
	if entry[FieldDeck] != "b.fst" {
		t.Errorf("deck = %v", entry[FieldDeck])
	}
}

func TestWithTraceContext(t *testing.T) {
	t.Run("no span", func(t *testing.T) {
		l := WithTraceContext(context.Background())
		if l.GetLevel() > zerolog.PanicLevel {
			t.Error("expected valid logger without trace")
		}
	})

	t.Run("sampled span", func(t *testing.T) {
		buf := captureBase(t)

		traceID, err := trace.TraceIDFromHex("7c3de1a9b2f4056e8d91c0a34b5f6e72")
		if err != nil {
			t.Fatal(err)
		}
		spanID, err := trace.SpanIDFromHex("5b8aef91c2d3047f")
		if err != nil {
			t.Fatal(err)
		}
		ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
			TraceID:    traceID,
			SpanID:     spanID,
			TraceFlags: trace.FlagsSampled,
		}))

		WithTraceContext(ctx).Info().Msg("with trace")

		entry := decodeLine(t, buf)
		if entry["trace_id"] != traceID.String() {
			t.Errorf("trace_id = %v, want %v", entry["trace_id"], traceID)
		}
		if entry["span_id"] != spanID.String() {
			t.Errorf("span_id = %v, want %v", entry["span_id"], spanID)
		}
	})
}
