package config

import (
	"testing"
	"time"
)

func TestParseBool(t *testing.T) {
	tests := []struct {
		value string
		def   bool
		want  bool
	}{
		{"true", false, true},
		{"TRUE", false, true},
		{"1", false, true},
		{"yes", false, true},
		{"false", true, false},
		{"0", true, false},
		{"no", true, false},
		{"garbage", true, true},
		{"", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("FSTDECK_TEST_BOOL", tt.value)
			if got := ParseBool("FSTDECK_TEST_BOOL", tt.def); got != tt.want {
				t.Errorf("ParseBool(%q, %v) = %v, want %v", tt.value, tt.def, got, tt.want)
			}
		})
	}

	if got := ParseBool("FSTDECK_TEST_BOOL_UNSET", true); !got {
		t.Error("unset variable must return default")
	}
}

func TestParseInt(t *testing.T) {
	t.Setenv("FSTDECK_TEST_INT", "42")
	if got := ParseInt("FSTDECK_TEST_INT", 7); got != 42 {
		t.Errorf("got %d, want 42", got)
	}

	t.Setenv("FSTDECK_TEST_INT", "not-a-number")
	if got := ParseInt("FSTDECK_TEST_INT", 7); got != 7 {
		t.Errorf("invalid value must fall back, got %d", got)
	}
}

func TestParseInt64(t *testing.T) {
	t.Setenv("FSTDECK_TEST_INT64", "2097152")
	if got := ParseInt64("FSTDECK_TEST_INT64", 1); got != 2097152 {
		t.Errorf("got %d, want 2097152", got)
	}
}

func TestParseDuration(t *testing.T) {
	t.Setenv("FSTDECK_TEST_DUR", "90s")
	if got := ParseDuration("FSTDECK_TEST_DUR", time.Minute); got != 90*time.Second {
		t.Errorf("got %v, want 90s", got)
	}

	t.Setenv("FSTDECK_TEST_DUR", "soon")
	if got := ParseDuration("FSTDECK_TEST_DUR", time.Minute); got != time.Minute {
		t.Errorf("invalid value must fall back, got %v", got)
	}
}

func TestParseFloat(t *testing.T) {
	t.Setenv("FSTDECK_TEST_FLOAT", "0.25")
	if got := ParseFloat("FSTDECK_TEST_FLOAT", 1.0); got != 0.25 {
		t.Errorf("got %v, want 0.25", got)
	}
}

func TestParseStringList(t *testing.T) {
	t.Setenv("FSTDECK_TEST_LIST", " a, b ,a,, c ")
	got := ParseStringList("FSTDECK_TEST_LIST", nil)
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("element %d: got %q, want %q", i, got[i], want[i])
		}
	}

	t.Setenv("FSTDECK_TEST_LIST", "  ")
	def := []string{"keep"}
	if got := ParseStringList("FSTDECK_TEST_LIST", def); len(got) != 1 || got[0] != "keep" {
		t.Errorf("blank value must return default, got %v", got)
	}
}
