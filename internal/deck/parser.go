package deck

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Parse reads a primary input file into a Document. It fails fast on the
// first structural error with a *ParseError carrying line and field context.
//
// Layout, per line:
//   - a run of dashes with an embedded title opens a section; the first
//     dashed line that matches no section title is the file banner
//   - free text before the first section is the description block
//   - everything else is a field line: value token(s), field name, then an
//     optional "-" delimited trailing description
func Parse(data []byte) (*Document, error) {
	if !utf8.Valid(data) {
		// Decks from Windows tooling occasionally carry Latin-1 bytes in
		// their description text (degree signs and the like).
		if decoded, err := charmap.Windows1252.NewDecoder().Bytes(data); err == nil {
			data = decoded
		}
	}

	t := Schema()
	doc := newEmpty(t)

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := strings.Split(text, "\n")

	cur := -1 // open section index, -1 while in the preamble
	bannerSeen := false

	for i, line := range lines {
		lineNo := i + 1
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if isHeaderLine(trimmed) {
			title := headerTitle(trimmed)
			idx, known := t.SectionIndex(title)
			switch {
			case known && idx == cur+1:
				doc.headers[idx] = line
				cur = idx
			case known:
				return nil, violationf(lineNo, "", "section %q out of order", t.Sections[idx].Title)
			case cur == -1 && !bannerSeen:
				doc.Banner = line
				bannerSeen = true
			default:
				return nil, violationf(lineNo, "", "unknown section header %q", title)
			}
			continue
		}

		if cur == -1 {
			doc.Description = append(doc.Description, line)
			continue
		}

		if err := parseFieldLine(t, doc, cur, line, lineNo); err != nil {
			return nil, err
		}
	}

	if cur < len(t.Sections)-1 {
		return nil, violationf(0, "", "missing section %q", t.Sections[cur+1].Title)
	}
	for si, sec := range doc.sections {
		for fi, f := range sec {
			if f == nil {
				return nil, violationf(0, t.Sections[si].Fields[fi].Name,
					"missing field %q in section %q", t.Sections[si].Fields[fi].Name, t.Sections[si].Title)
			}
		}
	}

	return doc, nil
}

// ParseFile reads and parses the deck at path.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- deck paths are provided by the operator via CLI/API
	if err != nil {
		return nil, fmt.Errorf("read deck: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

func parseFieldLine(t *Table, doc *Document, cur int, line string, lineNo int) *ParseError {
	rawValue, name, desc, perr := splitFieldLine(line, lineNo)
	if perr != nil {
		return perr
	}

	spec, section, ok := t.Lookup(name)
	if !ok {
		return violationf(lineNo, name, "unknown field %q", name)
	}
	if section != cur {
		return violationf(lineNo, spec.Name, "field %q belongs to section %q",
			spec.Name, t.Sections[section].Title)
	}
	pos, _ := t.position(name)
	if doc.sections[pos.section][pos.index] != nil {
		return violationf(lineNo, spec.Name, "duplicate field %q", spec.Name)
	}

	v, err := parseValue(spec, rawValue)
	if err != nil {
		return malformedf(lineNo, spec.Name, "field %q: %v", spec.Name, err)
	}

	doc.put(pos, &Field{Name: spec.Name, Value: v, Desc: desc, Line: lineNo})
	return nil
}

// splitFieldLine tokenizes one field line into its raw value text, field
// name and trailing description.
func splitFieldLine(line string, lineNo int) (rawValue, name, desc string, err *ParseError) {
	s := line
	i := skipSpace(s, 0)
	if i == len(s) {
		return "", "", "", malformedf(lineNo, "", "missing value token")
	}

	// Value: a quoted token, or plain tokens chained by trailing commas.
	start := i
	if s[i] == '"' {
		j := strings.IndexByte(s[i+1:], '"')
		if j < 0 {
			return "", "", "", malformedf(lineNo, "", "unterminated quote in value")
		}
		i += j + 2
	} else {
		for {
			i = skipToken(s, i)
			if s[start:i] == "-" {
				return "", "", "", malformedf(lineNo, "", "missing value token")
			}
			if !strings.HasSuffix(s[start:i], ",") {
				break
			}
			j := skipSpace(s, i)
			if j == len(s) {
				return "", "", "", malformedf(lineNo, "", "list value ends with a comma")
			}
			// Only numbers continue a comma list; anything else is the
			// field name of a line with a stray trailing comma.
			if c := s[j]; (c < '0' || c > '9') && c != '.' && c != '-' && c != '+' {
				break
			}
			i = j
		}
	}
	rawValue = s[start:i]

	i = skipSpace(s, i)
	if i == len(s) {
		return "", "", "", malformedf(lineNo, "", "missing field name after value %q", rawValue)
	}
	nameStart := i
	i = skipToken(s, i)
	name = s[nameStart:i]
	if name == "-" {
		return "", "", "", malformedf(lineNo, "", "missing field name after value %q", rawValue)
	}

	rest := strings.TrimSpace(s[i:])
	desc = strings.TrimSpace(strings.TrimPrefix(rest, "-"))
	return rawValue, name, desc, nil
}

func skipSpace(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}

func skipToken(s string, i int) int {
	for i < len(s) && s[i] != ' ' && s[i] != '\t' {
		i++
	}
	return i
}

// isHeaderLine reports whether a trimmed line is a dashed banner or section
// header rather than a field line.
func isHeaderLine(trimmed string) bool {
	return strings.HasPrefix(trimmed, "---")
}

// headerTitle extracts the embedded title of a dashed header line.
func headerTitle(trimmed string) string {
	return strings.TrimSpace(strings.Trim(trimmed, "-"))
}
