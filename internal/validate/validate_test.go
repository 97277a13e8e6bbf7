package validate

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// check runs fn against a fresh validator and returns what it recorded.
func check(fn func(v *Validator)) []Error {
	v := New()
	fn(v)
	return v.Errors()
}

func TestURL(t *testing.T) {
	cases := map[string]struct {
		value   string
		schemes []string
		issues  int
	}{
		"plain http":        {"http://collector:4318", []string{"http", "https"}, 0},
		"https":             {"https://otel.example.org", []string{"http", "https"}, 0},
		"scheme not listed": {"ftp://mirror.example.net", []string{"http", "https"}, 1},
		"host missing":      {"http://", []string{"http"}, 1},
		"blank":             {"", []string{"http"}, 1},
		"any scheme ok":     {"nats://queue.local:4222", nil, 0},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got := check(func(v *Validator) { v.URL("endpoint", tc.value, tc.schemes) })
			if len(got) != tc.issues {
				t.Errorf("URL(%q) recorded %d issues, want %d: %v", tc.value, len(got), tc.issues, got)
			}
		})
	}
}

func TestAddressChecks(t *testing.T) {
	for _, tc := range []struct {
		name   string
		fn     func(v *Validator)
		issues int
	}{
		{"listen with port", func(v *Validator) { v.HostPort("listen", ":8080") }, 0},
		{"host and port", func(v *Validator) { v.HostPort("listen", "10.0.0.7:8080") }, 0},
		{"bare host", func(v *Validator) { v.HostPort("listen", "localhost") }, 1},
		{"empty address", func(v *Validator) { v.HostPort("listen", "") }, 1},
		{"first valid port", func(v *Validator) { v.Port("port", 1) }, 0},
		{"last valid port", func(v *Validator) { v.Port("port", 65535) }, 0},
		{"port zero", func(v *Validator) { v.Port("port", 0) }, 1},
		{"port beyond range", func(v *Validator) { v.Port("port", 70000) }, 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := check(tc.fn); len(got) != tc.issues {
				t.Errorf("recorded %d issues, want %d: %v", len(got), tc.issues, got)
			}
		})
	}
}

func TestBoundsChecks(t *testing.T) {
	v := New()
	v.Range("retries", 3, 0, 10)
	v.RangeFloat("ratio", 0.5, 0, 1)
	v.Positive("limit", 1)
	v.NonNegative("offset", 0)
	if !v.IsValid() {
		t.Fatalf("in-bounds values flagged: %v", v.Err())
	}

	v.Range("retries", 11, 0, 10)
	v.RangeFloat("ratio", 1.5, 0, 1)
	v.Positive("limit", 0)
	v.NonNegative("offset", -1)

	issues := v.Errors()
	if len(issues) != 4 {
		t.Fatalf("want 4 issues, got %d: %v", len(issues), issues)
	}
	if !strings.Contains(issues[1].Message, "between 0 and 1") {
		t.Errorf("RangeFloat message: %s", issues[1].Message)
	}
}

func TestStringChecks(t *testing.T) {
	v := New()
	v.OneOf("backend", "memory", []string{"memory", "redis"})
	v.NotEmpty("name", "x")
	if !v.IsValid() {
		t.Fatalf("valid strings flagged: %v", v.Err())
	}

	v.OneOf("backend", "bolt", []string{"memory", "redis"})
	v.NotEmpty("name", "   ")
	if len(v.Errors()) != 2 {
		t.Fatalf("want 2 issues, got %d", len(v.Errors()))
	}
}

func TestDirectory(t *testing.T) {
	t.Run("present", func(t *testing.T) {
		got := check(func(v *Validator) { v.Directory("dir", t.TempDir(), true) })
		if len(got) != 0 {
			t.Errorf("existing directory flagged: %v", got)
		}
	})

	t.Run("absent and required", func(t *testing.T) {
		got := check(func(v *Validator) {
			v.Directory("dir", filepath.Join(t.TempDir(), "missing"), true)
		})
		if len(got) == 0 {
			t.Error("missing required directory not flagged")
		}
	})

	t.Run("absent gets created", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "created")
		got := check(func(v *Validator) { v.Directory("dir", path, false) })
		if len(got) != 0 {
			t.Fatalf("creatable directory flagged: %v", got)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("directory was not created: %v", err)
		}
	})

	t.Run("dotdot rejected", func(t *testing.T) {
		got := check(func(v *Validator) { v.Directory("dir", "../escape", false) })
		if len(got) == 0 {
			t.Error("traversal path not flagged")
		}
	})

	t.Run("regular file rejected", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "plain")
		if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
		got := check(func(v *Validator) { v.Directory("dir", file, true) })
		if len(got) == 0 {
			t.Error("non-directory path not flagged")
		}
	})
}

func TestWritableDirectory(t *testing.T) {
	dir := t.TempDir()
	got := check(func(v *Validator) { v.WritableDirectory("data", dir, true) })
	if len(got) != 0 {
		t.Fatalf("writable directory flagged: %v", got)
	}

	// Probe files must not be left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("probe file left behind: %v", entries)
	}
}

func TestErrorBundling(t *testing.T) {
	v := New()
	if v.Err() != nil {
		t.Fatal("empty validator must yield nil error")
	}

	v.AddError("a", "first problem", 1)
	err := v.Err()
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); got != "validation failed for a: first problem" {
		t.Errorf("single error format: %q", got)
	}

	v.AddError("b", "second problem", 2)
	err = v.Err()
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(verr.Errors()) != 2 {
		t.Errorf("want 2 bundled issues, got %d", len(verr.Errors()))
	}
	if !strings.Contains(err.Error(), "; ") {
		t.Errorf("bundle should join with semicolons: %q", err.Error())
	}
}
