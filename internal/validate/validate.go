// Package validate holds the accumulating validator the config layer runs
// before a binary starts serving. Checks never abort early; callers collect
// every problem in one pass and report them together.
package validate

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Error is one failed check, tied to the config field it concerns.
type Error struct {
	Field   string
	Value   any
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// ValidationError bundles every failed check from one validation pass.
type ValidationError struct {
	issues []Error
}

// Errors returns the individual failures inside the bundle.
func (e ValidationError) Errors() []Error {
	return e.issues
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return ""
	}
	var b strings.Builder
	for i, issue := range e.issues {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(issue.Error())
	}
	return b.String()
}

// Validator accumulates check failures. The zero value is ready to use;
// New exists for symmetry with the rest of the internal packages.
type Validator struct {
	issues []Error
}

func New() *Validator {
	return &Validator{}
}

// AddError records a failure directly, for checks too specific to have a
// helper here.
func (v *Validator) AddError(field, message string, value any) {
	v.issues = append(v.issues, Error{Field: field, Value: value, Message: message})
}

// IsValid reports whether no check has failed so far.
func (v *Validator) IsValid() bool {
	return len(v.issues) == 0
}

// Errors returns all failures recorded so far.
func (v *Validator) Errors() []Error {
	return v.issues
}

// Err converts the recorded failures into a single error, or nil when every
// check passed. The returned bundle is detached from the validator.
func (v *Validator) Err() error {
	if len(v.issues) == 0 {
		return nil
	}
	return ValidationError{issues: slices.Clone(v.issues)}
}

// outside reports whether value falls out of the inclusive [lo, hi] interval.
func outside[T cmp.Ordered](value, lo, hi T) bool {
	return value < lo || value > hi
}

// URL checks that value parses as a URL with a host, optionally restricted
// to the given schemes.
func (v *Validator) URL(field, value string, allowedSchemes []string) {
	u, err := url.Parse(value)
	switch {
	case value == "":
		v.AddError(field, "URL is empty", value)
	case err != nil:
		v.AddError(field, fmt.Sprintf("not a valid URL: %v", err), value)
	case u.Host == "":
		v.AddError(field, "URL has no host", value)
	case len(allowedSchemes) > 0 && !slices.Contains(allowedSchemes, u.Scheme):
		v.AddError(field, fmt.Sprintf("scheme %q not allowed (want one of %v)", u.Scheme, allowedSchemes), value)
	}
}

// HostPort checks a "host:port" listen or dial address.
func (v *Validator) HostPort(field, value string) {
	if value == "" {
		v.AddError(field, "address is empty", value)
		return
	}
	if !strings.Contains(value, ":") {
		v.AddError(field, "address must be host:port", value)
	}
}

// Port checks a TCP/UDP port number.
func (v *Validator) Port(field string, port int) {
	if outside(port, 1, 65535) {
		v.AddError(field, fmt.Sprintf("port %d outside 1-65535", port), port)
	}
}

// Range checks an integer against an inclusive interval.
func (v *Validator) Range(field string, value, minVal, maxVal int) {
	if outside(value, minVal, maxVal) {
		v.AddError(field, fmt.Sprintf("want between %d and %d, got %d", minVal, maxVal, value), value)
	}
}

// RangeFloat checks a float against an inclusive interval.
func (v *Validator) RangeFloat(field string, value, minVal, maxVal float64) {
	if outside(value, minVal, maxVal) {
		v.AddError(field, fmt.Sprintf("want between %g and %g, got %g", minVal, maxVal, value), value)
	}
}

// Directory checks a directory path. With mustExist false a missing
// directory is created instead of reported. Relative paths are resolved
// against the working directory; traversal sequences are always rejected.
func (v *Validator) Directory(field, path string, mustExist bool) {
	if path == "" {
		v.AddError(field, "directory path is empty", path)
		return
	}
	if strings.Contains(path, "..") {
		v.AddError(field, "path traversal (..) not allowed", path)
		return
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		v.AddError(field, fmt.Sprintf("resolve path: %v", err), path)
		return
	}

	info, err := os.Stat(absPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if mustExist {
			v.AddError(field, "no such directory", path)
			return
		}
		if err := os.MkdirAll(absPath, 0o750); err != nil {
			v.AddError(field, fmt.Sprintf("create directory: %v", err), path)
		}
	case err != nil:
		v.AddError(field, fmt.Sprintf("stat directory: %v", err), path)
	case !info.IsDir():
		v.AddError(field, "not a directory", path)
	}
}

// WritableDirectory runs Directory and then proves the process can create
// files there. The probe file is removed again.
func (v *Validator) WritableDirectory(field, path string, mustExist bool) {
	before := len(v.issues)
	v.Directory(field, path, mustExist)
	if len(v.issues) != before {
		return
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		v.AddError(field, fmt.Sprintf("resolve path: %v", err), path)
		return
	}
	probe, err := os.CreateTemp(absPath, ".probe-*")
	if err != nil {
		v.AddError(field, fmt.Sprintf("directory is not writable: %v", err), path)
		return
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
}

// NotEmpty checks that value has non-whitespace content.
func (v *Validator) NotEmpty(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "must not be empty", value)
	}
}

// OneOf checks value against a closed set.
func (v *Validator) OneOf(field, value string, allowed []string) {
	if !slices.Contains(allowed, value) {
		v.AddError(field, fmt.Sprintf("got %q, want one of %v", value, allowed), value)
	}
}

// Positive checks value > 0.
func (v *Validator) Positive(field string, value int) {
	if value <= 0 {
		v.AddError(field, fmt.Sprintf("must be > 0, got %d", value), value)
	}
}

// NonNegative checks value >= 0.
func (v *Validator) NonNegative(field string, value int) {
	if value < 0 {
		v.AddError(field, fmt.Sprintf("must be >= 0, got %d", value), value)
	}
}
