package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/windtools/fstdeck/internal/log"
)

func do(h http.Handler, method, target, addr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if addr != "" {
		req.RemoteAddr = addr
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequestID(t *testing.T) {
	t.Run("generates one when absent", func(t *testing.T) {
		var seen string
		h := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			seen = log.RequestIDFromContext(r.Context())
		}))

		w := do(h, http.MethodGet, "/api/v1/decks", "")
		if seen == "" {
			t.Error("handler context carried no request ID")
		}
		if got := w.Header().Get(HeaderRequestID); got != seen {
			t.Errorf("response header %q = %q, want %q", HeaderRequestID, got, seen)
		}
	})

	t.Run("keeps upstream ID", func(t *testing.T) {
		h := RequestID(okHandler())

		req := httptest.NewRequest(http.MethodGet, "/api/v1/decks", nil)
		req.Header.Set(HeaderRequestID, "upstream-id-42")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		if got := w.Header().Get(HeaderRequestID); got != "upstream-id-42" {
			t.Errorf("upstream request ID lost, got %q", got)
		}
	})
}

func TestRecoverer(t *testing.T) {
	t.Run("panic becomes 500 JSON", func(t *testing.T) {
		h := Recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}))

		w := do(h, http.MethodGet, "/api/v1/validate", "")
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", w.Code)
		}
		if ct := w.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}

		var body map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("response is not valid JSON: %v", err)
		}
		if body["error"] != "internal server error" {
			t.Errorf("error = %v, want internal server error", body["error"])
		}
	})

	t.Run("clean requests untouched", func(t *testing.T) {
		h := Recoverer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))

		if w := do(h, http.MethodGet, "/api/v1/validate", ""); w.Code != http.StatusTeapot {
			t.Errorf("status = %d, want 418", w.Code)
		}
	})
}

func TestMetrics_RecordsRequests(t *testing.T) {
	h := Metrics()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("payload"))
	}))

	if w := do(h, http.MethodGet, "/observed", ""); w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", w.Code)
	}

	scrape := do(promhttp.Handler(), http.MethodGet, "/metrics", "")
	body := scrape.Body.String()

	for _, want := range []string{
		"fstdeck_http_request_duration_seconds",
		"fstdeck_http_response_size_bytes",
		`status="202"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics exposition missing %s", want)
		}
	}
}

func TestRateLimit_PerClientWindow(t *testing.T) {
	h := RateLimit(3, time.Second)(okHandler())

	const client = "198.51.100.9:40000"
	for i := range 3 {
		if w := do(h, http.MethodGet, "/api/v1/validate", client); w.Code != http.StatusOK {
			t.Errorf("request %d: status = %d, want 200", i+1, w.Code)
		}
	}

	w := do(h, http.MethodGet, "/api/v1/validate", client)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("over-limit request: status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("429 response missing Retry-After")
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	// A different client address gets its own window.
	if w := do(h, http.MethodGet, "/api/v1/validate", "203.0.113.4:4444"); w.Code != http.StatusOK {
		t.Errorf("fresh client: status = %d, want 200", w.Code)
	}
}

func TestAccessLog_PreservesResponse(t *testing.T) {
	h := AccessLog(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("done"))
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/validate", strings.NewReader("body"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", w.Code)
	}
	if w.Body.String() != "done" {
		t.Errorf("body = %q, want done", w.Body.String())
	}
}
