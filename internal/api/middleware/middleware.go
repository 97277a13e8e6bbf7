// Package middleware provides the HTTP ingress middleware stack for the
// fstdeck daemon.
package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"github.com/google/uuid"

	"github.com/windtools/fstdeck/internal/log"
)

// HeaderRequestID carries the request correlation ID.
const HeaderRequestID = "X-Request-Id"

// RequestID assigns every request a correlation ID. IDs arriving from an
// upstream proxy are kept; the ID is echoed in the response header and
// stored in the request context so log lines can be correlated.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(log.ContextWithRequestID(r.Context(), id)))
	})
}

// Recoverer keeps a panicking handler from taking the process down. The
// panic is logged with its stack and the client gets a 500 JSON body.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				respondPanic(w, r, rec)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func respondPanic(w http.ResponseWriter, r *http.Request, rec any) {
	reqID := log.RequestIDFromContext(r.Context())

	log.WithComponentFromContext(r.Context(), "panic-recovery").Error().
		Str("event", "http.panic").
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("remote_addr", r.RemoteAddr).
		Any("panic_value", rec).
		Bytes("stack", debug.Stack()).
		Msg("recovered panicking handler")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":     "internal server error",
		"requestId": reqID,
	})
}
