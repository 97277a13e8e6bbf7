package deck

import "fmt"

// ErrKind classifies a structural parse failure.
type ErrKind int

const (
	// ErrMalformedLine marks a line that fails tokenization: missing value
	// or name token, or a value that does not parse as its declared type.
	ErrMalformedLine ErrKind = iota
	// ErrSchemaViolation marks a structurally sound line that the schema
	// rejects: unknown, duplicate or misplaced fields and sections, or
	// fields missing at end of input.
	ErrSchemaViolation
)

func (k ErrKind) String() string {
	switch k {
	case ErrMalformedLine:
		return "malformed line"
	case ErrSchemaViolation:
		return "schema violation"
	default:
		return fmt.Sprintf("ErrKind(%d)", int(k))
	}
}

// ParseError is the single error type returned by Parse. Parsing fails fast:
// the first structural error aborts, since a broken document cannot be
// validated further.
type ParseError struct {
	Kind  ErrKind
	Line  int    // 1-based source line, 0 when not tied to one
	Field string // offending field name, may be empty
	Msg   string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s at line %d: %s", e.Kind, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func malformedf(line int, field, format string, args ...any) *ParseError {
	return &ParseError{Kind: ErrMalformedLine, Line: line, Field: field, Msg: fmt.Sprintf(format, args...)}
}

func violationf(line int, field, format string, args ...any) *ParseError {
	return &ParseError{Kind: ErrSchemaViolation, Line: line, Field: field, Msg: fmt.Sprintf(format, args...)}
}
