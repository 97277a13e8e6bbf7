package deck

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// IssueKind classifies a validation finding.
type IssueKind int

const (
	// InvalidEnumValue marks an enumerated field outside its declared set.
	InvalidEnumValue IssueKind = iota
	// OutOfRange marks a numeric field outside its declared domain.
	OutOfRange
	// ConsistencyViolation marks a broken cross-field invariant.
	ConsistencyViolation
	// FormatWidth marks an OutFmt descriptor whose field width differs from
	// the 10-character tabular contract. Informational only.
	FormatWidth
)

func (k IssueKind) String() string {
	switch k {
	case InvalidEnumValue:
		return "InvalidEnumValue"
	case OutOfRange:
		return "OutOfRange"
	case ConsistencyViolation:
		return "ConsistencyViolation"
	case FormatWidth:
		return "FormatWidth"
	default:
		return fmt.Sprintf("IssueKind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler for JSON reports.
func (k IssueKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *IssueKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "InvalidEnumValue":
		*k = InvalidEnumValue
	case "OutOfRange":
		*k = OutOfRange
	case "ConsistencyViolation":
		*k = ConsistencyViolation
	case "FormatWidth":
		*k = FormatWidth
	default:
		return fmt.Errorf("unknown issue kind %q", text)
	}
	return nil
}

// Severity grades a validation finding.
type Severity int

const (
	SeverityError Severity = iota
	SeverityInfo
)

func (s Severity) String() string {
	if s == SeverityInfo {
		return "info"
	}
	return "error"
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "info":
		*s = SeverityInfo
	case "error":
		*s = SeverityError
	default:
		return fmt.Errorf("unknown severity %q", text)
	}
	return nil
}

// Issue is one validation finding.
type Issue struct {
	Field    string    `json:"field"`
	Section  string    `json:"section"`
	Kind     IssueKind `json:"kind"`
	Severity Severity  `json:"severity"`
	Value    string    `json:"value"`
	Message  string    `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Kind, i.Field, i.Message)
}

// Validate checks every field of a document against the schema and returns
// all findings, not just the first. An empty slice means the document
// conforms. Structural completeness is guaranteed by construction, so only
// value domains and cross-field invariants are checked here.
func Validate(d *Document) []Issue {
	t := Schema()
	issues := make([]Issue, 0)

	add := func(f *Field, section int, kind IssueKind, sev Severity, format string, args ...any) {
		issues = append(issues, Issue{
			Field:    f.Name,
			Section:  t.Sections[section].Title,
			Kind:     kind,
			Severity: sev,
			Value:    f.Value.Raw(),
			Message:  fmt.Sprintf(format, args...),
		})
	}

	for si, sec := range t.Sections {
		for fi, spec := range sec.Fields {
			f := d.sections[si][fi]
			if f == nil {
				continue
			}
			switch spec.Kind {
			case KindInt:
				if spec.Enum != nil {
					if !containsInt(spec.Enum, f.Value.Int()) {
						add(f, si, InvalidEnumValue, SeverityError,
							"value must be one of %s, got %d", enumSet(spec.Enum), f.Value.Int())
					}
					continue
				}
				if msg := intDomainError(spec.Domain, f.Value.Int()); msg != "" {
					add(f, si, OutOfRange, SeverityError, "%s", msg)
				}
			case KindFloat:
				if f.Value.IsDefault() {
					continue
				}
				if msg := floatDomainError(spec.Domain, f.Value.Float()); msg != "" {
					add(f, si, OutOfRange, SeverityError, "%s", msg)
				}
			case KindString:
				if spec.EnumStr != nil && !containsFold(spec.EnumStr, f.Value.Str()) {
					add(f, si, InvalidEnumValue, SeverityError,
						"value must be one of %v, got %q", spec.EnumStr, f.Value.Str())
				}
			}
		}
	}

	// OutFmt carries a Fortran edit descriptor whose field width should be
	// 10 to keep tabular columns aligned. Advisory: the consuming engine
	// does not enforce it either.
	if f, ok := d.Field("OutFmt"); ok {
		if w, parsed := descriptorWidth(f.Value.Str()); parsed && w != 10 {
			pos, _ := t.position("OutFmt")
			add(f, pos.section, FormatWidth, SeverityInfo,
				"descriptor %q yields a %d-character field, tabular output expects 10", f.Value.Str(), w)
		}
	}

	// LinTimes must supply exactly NLinTimes entries when linearization is
	// requested; the fields are inert otherwise.
	if lin, err := d.Bool("Linearize"); err == nil && lin {
		n, nerr := d.Int("NLinTimes")
		times, terr := d.Floats("LinTimes")
		if nerr == nil && terr == nil && len(times) != n {
			f, _ := d.Field("LinTimes")
			pos, _ := t.position("LinTimes")
			add(f, pos.section, ConsistencyViolation, SeverityError,
				"LinTimes has %d entries, NLinTimes is %d", len(times), n)
		}
	}

	return issues
}

// Errors returns only the error-severity subset of issues.
func Errors(issues []Issue) []Issue {
	out := make([]Issue, 0, len(issues))
	for _, i := range issues {
		if i.Severity == SeverityError {
			out = append(out, i)
		}
	}
	return out
}

func intDomainError(dom Domain, v int) string {
	switch dom {
	case DomainPositive:
		if v <= 0 {
			return fmt.Sprintf("value must be positive, got %d", v)
		}
	case DomainNonNegative:
		if v < 0 {
			return fmt.Sprintf("value cannot be negative, got %d", v)
		}
	case DomainAtLeastOne:
		if v < 1 {
			return fmt.Sprintf("value must be at least 1, got %d", v)
		}
	}
	return ""
}

func floatDomainError(dom Domain, v float64) string {
	switch dom {
	case DomainPositive:
		if v <= 0 {
			return fmt.Sprintf("value must be positive, got %g", v)
		}
	case DomainNonNegative:
		if v < 0 {
			return fmt.Sprintf("value cannot be negative, got %g", v)
		}
	case DomainAtLeastOne:
		if v < 1 {
			return fmt.Sprintf("value must be at least 1, got %g", v)
		}
	}
	return ""
}

func containsInt(set []int, v int) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsFold(set []string, v string) bool {
	for _, s := range set {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

func enumSet(set []int) string {
	parts := make([]string, len(set))
	for i, v := range set {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

var descriptorRe = regexp.MustCompile(`^(?:\d+[pP])?([A-Za-z]{1,2})(\d+)(?:\.\d+)?(?:[eE]\d+)?$`)

// descriptorWidth extracts the field width of a Fortran edit descriptor
// such as "ES10.3E2", "F10.4" or "1pE12.5". The second return is false when
// the text is not a recognizable descriptor.
func descriptorWidth(desc string) (int, bool) {
	m := descriptorRe.FindStringSubmatch(strings.TrimSpace(desc))
	if m == nil {
		return 0, false
	}
	w, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false
	}
	return w, true
}
