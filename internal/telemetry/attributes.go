package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Span attribute keys shared by the watcher and the HTTP handlers, so
// traces stay queryable across both ingestion paths.
var (
	DeckHashKey   = attribute.Key("deck.hash")
	DeckPathKey   = attribute.Key("deck.path")
	DeckOriginKey = attribute.Key("deck.origin")

	ValidationIssuesKey   = attribute.Key("validation.issues")
	ValidationErrorsKey   = attribute.Key("validation.errors")
	ValidationCleanKey    = attribute.Key("validation.clean")
	ValidationCacheHitKey = attribute.Key("validation.cache_hit")

	ErrorKey     = attribute.Key("error")
	ErrorTypeKey = attribute.Key("error.type")
)

// DeckAttributes builds deck span attributes, skipping empty values.
func DeckAttributes(hash, path, origin string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	if hash != "" {
		attrs = append(attrs, DeckHashKey.String(hash))
	}
	if path != "" {
		attrs = append(attrs, DeckPathKey.String(path))
	}
	if origin != "" {
		attrs = append(attrs, DeckOriginKey.String(origin))
	}
	return attrs
}

// ValidationAttributes builds validation outcome attributes.
func ValidationAttributes(issues, errors int, clean, cacheHit bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		ValidationIssuesKey.Int(issues),
		ValidationErrorsKey.Int(errors),
		ValidationCleanKey.Bool(clean),
		ValidationCacheHitKey.Bool(cacheHit),
	}
}

// ErrorAttributes marks a span failed with a classified error type.
func ErrorAttributes(_ error, errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		ErrorKey.Bool(true),
		ErrorTypeKey.String(errorType),
	}
}
