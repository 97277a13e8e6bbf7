package telemetry

import (
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func findAttr(t *testing.T, attrs []attribute.KeyValue, key attribute.Key) attribute.Value {
	t.Helper()
	for _, kv := range attrs {
		if kv.Key == key {
			return kv.Value
		}
	}
	t.Fatalf("attribute %s not found", key)
	return attribute.Value{}
}

func TestDeckAttributes(t *testing.T) {
	tests := []struct {
		name    string
		hash    string
		path    string
		origin  string
		wantLen int
	}{
		{"all fields", "deadbeef", "/decks/turbine.fst", "watcher", 3},
		{"only hash", "deadbeef", "", "", 1},
		{"empty fields", "", "", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := DeckAttributes(tt.hash, tt.path, tt.origin)
			if len(attrs) != tt.wantLen {
				t.Fatalf("got %d attributes, want %d", len(attrs), tt.wantLen)
			}
			if tt.hash != "" {
				if got := findAttr(t, attrs, DeckHashKey).AsString(); got != tt.hash {
					t.Errorf("deck.hash = %q, want %q", got, tt.hash)
				}
			}
		})
	}
}

func TestValidationAttributes(t *testing.T) {
	attrs := ValidationAttributes(4, 3, false, true)

	if got := findAttr(t, attrs, ValidationIssuesKey).AsInt64(); got != 4 {
		t.Errorf("validation.issues = %d, want 4", got)
	}
	if got := findAttr(t, attrs, ValidationErrorsKey).AsInt64(); got != 3 {
		t.Errorf("validation.errors = %d, want 3", got)
	}
	if findAttr(t, attrs, ValidationCleanKey).AsBool() {
		t.Error("validation.clean should be false")
	}
	if !findAttr(t, attrs, ValidationCacheHitKey).AsBool() {
		t.Error("validation.cache_hit should be true")
	}
}

func TestErrorAttributes(t *testing.T) {
	attrs := ErrorAttributes(errors.New("bad header"), "parse_error")

	if !findAttr(t, attrs, ErrorKey).AsBool() {
		t.Error("error flag should be set")
	}
	if got := findAttr(t, attrs, ErrorTypeKey).AsString(); got != "parse_error" {
		t.Errorf("error.type = %q, want parse_error", got)
	}
}
