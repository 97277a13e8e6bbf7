package deck

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is a single field value with its exact source text. The text is kept
// verbatim so a canonically formatted file survives a parse/encode cycle
// byte for byte; programmatic setters regenerate it in canonical form.
type Value struct {
	raw       string
	kind      Kind
	boolVal   bool
	intVal    int
	floatVal  float64
	strVal    string
	listVal   []float64
	isDefault bool
}

// Kind returns the value type.
func (v Value) Kind() Kind { return v.kind }

// Raw returns the textual form of the value as read or as last set.
func (v Value) Raw() string { return v.raw }

// IsDefault reports whether the value is the literal "default" sentinel.
func (v Value) IsDefault() bool { return v.isDefault }

func (v Value) Bool() bool        { return v.boolVal }
func (v Value) Int() int          { return v.intVal }
func (v Value) Float() float64    { return v.floatVal }
func (v Value) Str() string       { return v.strVal }
func (v Value) Floats() []float64 { return v.listVal }

// Equal compares typed content, ignoring source text differences.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind || v.isDefault != o.isDefault {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.boolVal == o.boolVal
	case KindInt:
		return v.intVal == o.intVal
	case KindFloat:
		return v.isDefault || v.floatVal == o.floatVal
	case KindString:
		return v.strVal == o.strVal
	case KindFloatList:
		if len(v.listVal) != len(o.listVal) {
			return false
		}
		for i := range v.listVal {
			if v.listVal[i] != o.listVal[i] {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// parseValue converts the raw value text of a field line into a typed Value
// according to the field's schema row.
func parseValue(spec FieldSpec, text string) (Value, error) {
	unq, _ := unquote(text)

	if spec.Sentinel && strings.EqualFold(unq, "default") {
		return Value{raw: text, kind: spec.Kind, isDefault: true}, nil
	}

	v := Value{raw: text, kind: spec.Kind}
	switch spec.Kind {
	case KindBool:
		b, err := parseFlag(unq)
		if err != nil {
			return Value{}, err
		}
		v.boolVal = b
	case KindInt:
		n, err := strconv.Atoi(unq)
		if err != nil {
			return Value{}, fmt.Errorf("invalid integer %q", text)
		}
		v.intVal = n
	case KindFloat:
		f, err := parseReal(unq)
		if err != nil {
			return Value{}, err
		}
		v.floatVal = f
	case KindString:
		v.strVal = unq
	case KindFloatList:
		parts := strings.Split(text, ",")
		list := make([]float64, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p == "" {
				return Value{}, fmt.Errorf("invalid list %q: empty element", text)
			}
			f, err := parseReal(p)
			if err != nil {
				return Value{}, fmt.Errorf("invalid list %q: %v", text, err)
			}
			list = append(list, f)
		}
		v.listVal = list
	}
	return v, nil
}

// parseFlag recognizes the boolean token set of the format.
func parseFlag(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "t":
		return true, nil
	case "false", "f":
		return false, nil
	default:
		return false, fmt.Errorf("invalid flag %q (want True or False)", s)
	}
}

// parseReal parses an IEEE double. Decks written by Fortran tooling may carry
// D exponents ("1.0D+06"), which strconv does not accept. NaN and infinities
// are rejected: they never belong in an input deck.
func parseReal(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && strings.ContainsAny(s, "dD") {
		fixed := strings.Map(func(r rune) rune {
			switch r {
			case 'd':
				return 'e'
			case 'D':
				return 'E'
			}
			return r
		}, s)
		f, err = strconv.ParseFloat(fixed, 64)
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return f, nil
}

// unquote strips a surrounding double-quote pair, reporting whether one was
// present. Unbalanced quotes are left untouched.
func unquote(s string) (string, bool) {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1], true
	}
	return s, false
}

// Canonical value constructors. Each renders the canonical text form used by
// the writer for programmatically set fields.

func boolValue(v bool) Value {
	raw := "False"
	if v {
		raw = "True"
	}
	return Value{raw: raw, kind: KindBool, boolVal: v}
}

func intValue(v int) Value {
	return Value{raw: strconv.Itoa(v), kind: KindInt, intVal: v}
}

func floatValue(v float64) Value {
	return Value{raw: formatReal(v), kind: KindFloat, floatVal: v}
}

func stringValue(spec FieldSpec, s string) Value {
	raw := s
	if spec.Quoted {
		raw = `"` + s + `"`
	}
	return Value{raw: raw, kind: KindString, strVal: s}
}

func floatListValue(vs []float64) Value {
	parts := make([]string, len(vs))
	for i, f := range vs {
		parts[i] = formatReal(f)
	}
	list := make([]float64, len(vs))
	copy(list, vs)
	return Value{raw: strings.Join(parts, ", "), kind: KindFloatList, listVal: list}
}

func defaultValue(kind Kind) Value {
	return Value{raw: `"default"`, kind: kind, isDefault: true}
}

// formatReal renders a float the way hand-written decks do: plain decimal
// with at least one fractional digit, exponent form only when unavoidable.
func formatReal(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
