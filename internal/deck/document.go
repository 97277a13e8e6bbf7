package deck

import (
	"fmt"
	"sort"
	"strings"
)

// Field is one named value line of the document.
type Field struct {
	Name  string // canonical name from the schema
	Value Value
	Desc  string // trailing description text
	Line  int    // 1-based source line, 0 when set programmatically
}

// Document is a parsed or programmatically built primary input file. It is
// complete by construction: every schema field is present exactly once.
// Documents are not safe for concurrent mutation.
type Document struct {
	Banner      string   // first dashed line, verbatim
	Description []string // free text lines before the first section

	headers  []string // section header lines as read, "" = emit canonical
	sections [][]*Field
	index    map[string]*Field
}

func newEmpty(t *Table) *Document {
	d := &Document{
		headers:  make([]string, len(t.Sections)),
		sections: make([][]*Field, len(t.Sections)),
		index:    make(map[string]*Field, t.NumFields()),
	}
	for i, sec := range t.Sections {
		d.sections[i] = make([]*Field, len(sec.Fields))
	}
	return d
}

func (d *Document) put(pos fieldPos, f *Field) {
	d.sections[pos.section][pos.index] = f
	d.index[strings.ToLower(f.Name)] = f
}

// Field returns the named field, case-insensitively.
func (d *Document) Field(name string) (*Field, bool) {
	f, ok := d.index[strings.ToLower(name)]
	return f, ok
}

// Fields returns all fields in schema order.
func (d *Document) Fields() []*Field {
	out := make([]*Field, 0, len(d.index))
	for _, sec := range d.sections {
		out = append(out, sec...)
	}
	return out
}

// SectionFields returns the fields of one section in schema order.
func (d *Document) SectionFields(section int) []*Field {
	return d.sections[section]
}

// Clone returns an independent deep copy.
func (d *Document) Clone() *Document {
	c := &Document{
		Banner:      d.Banner,
		Description: append([]string(nil), d.Description...),
		headers:     append([]string(nil), d.headers...),
		sections:    make([][]*Field, len(d.sections)),
		index:       make(map[string]*Field, len(d.index)),
	}
	for si, sec := range d.sections {
		c.sections[si] = make([]*Field, len(sec))
		for fi, f := range sec {
			if f == nil {
				continue
			}
			cp := *f
			if f.Value.listVal != nil {
				cp.Value.listVal = append([]float64(nil), f.Value.listVal...)
			}
			c.sections[si][fi] = &cp
			c.index[strings.ToLower(cp.Name)] = c.sections[si][fi]
		}
	}
	return c
}

func (d *Document) typed(name string, want Kind) (*Field, error) {
	f, ok := d.Field(name)
	if !ok {
		return nil, fmt.Errorf("unknown field %q", name)
	}
	if f.Value.kind != want {
		return nil, fmt.Errorf("field %q: want %s, got %s", f.Name, want, f.Value.kind)
	}
	return f, nil
}

// Bool returns the value of a flag field.
func (d *Document) Bool(name string) (bool, error) {
	f, err := d.typed(name, KindBool)
	if err != nil {
		return false, err
	}
	return f.Value.boolVal, nil
}

// Int returns the value of an integer field.
func (d *Document) Int(name string) (int, error) {
	f, err := d.typed(name, KindInt)
	if err != nil {
		return 0, err
	}
	return f.Value.intVal, nil
}

// Float returns the value of a float field. The "default" sentinel is an
// error; check IsDefault first.
func (d *Document) Float(name string) (float64, error) {
	f, err := d.typed(name, KindFloat)
	if err != nil {
		return 0, err
	}
	if f.Value.isDefault {
		return 0, fmt.Errorf("field %q is set to %q", f.Name, "default")
	}
	return f.Value.floatVal, nil
}

// Str returns the value of a string field, quotes stripped.
func (d *Document) Str(name string) (string, error) {
	f, err := d.typed(name, KindString)
	if err != nil {
		return "", err
	}
	return f.Value.strVal, nil
}

// Floats returns the value of a list field.
func (d *Document) Floats(name string) ([]float64, error) {
	f, err := d.typed(name, KindFloatList)
	if err != nil {
		return nil, err
	}
	return append([]float64(nil), f.Value.listVal...), nil
}

// IsDefault reports whether a sentinel-capable field holds "default".
func (d *Document) IsDefault(name string) bool {
	f, ok := d.Field(name)
	return ok && f.Value.isDefault
}

func (d *Document) setValue(name string, want Kind, v Value) error {
	f, ok := d.Field(name)
	if !ok {
		return fmt.Errorf("unknown field %q", name)
	}
	if f.Value.kind != want {
		return fmt.Errorf("field %q: want %s, got %s", f.Name, want, f.Value.kind)
	}
	v.kind = f.Value.kind
	f.Value = v
	return nil
}

// SetBool sets a flag field.
func (d *Document) SetBool(name string, v bool) error {
	return d.setValue(name, KindBool, boolValue(v))
}

// SetInt sets an integer field.
func (d *Document) SetInt(name string, v int) error {
	return d.setValue(name, KindInt, intValue(v))
}

// SetFloat sets a float field, clearing any "default" sentinel.
func (d *Document) SetFloat(name string, v float64) error {
	return d.setValue(name, KindFloat, floatValue(v))
}

// SetStr sets a string field. The canonical quoting of the field is applied
// on write.
func (d *Document) SetStr(name, v string) error {
	spec, _, ok := Schema().Lookup(name)
	if !ok {
		return fmt.Errorf("unknown field %q", name)
	}
	return d.setValue(name, KindString, stringValue(spec, v))
}

// SetFloats sets a list field.
func (d *Document) SetFloats(name string, v []float64) error {
	return d.setValue(name, KindFloatList, floatListValue(v))
}

// SetDefault sets the "default" sentinel on a field that declares it.
func (d *Document) SetDefault(name string) error {
	spec, _, ok := Schema().Lookup(name)
	if !ok {
		return fmt.Errorf("unknown field %q", name)
	}
	if !spec.Sentinel {
		return fmt.Errorf("field %q does not accept %q", spec.Name, "default")
	}
	return d.setValue(name, spec.Kind, defaultValue(spec.Kind))
}

// Set parses text per the field's schema row and assigns it. This is the
// entry point for untyped callers (CLI arguments, case matrices).
func (d *Document) Set(name, text string) error {
	spec, _, ok := Schema().Lookup(name)
	if !ok {
		return fmt.Errorf("unknown field %q", name)
	}
	v, err := parseValue(spec, text)
	if err != nil {
		return fmt.Errorf("field %q: %w", spec.Name, err)
	}
	return d.setValue(name, spec.Kind, v)
}

// Apply sets a batch of overrides, keys in deterministic order. The value
// types mirror what YAML and JSON decoding produce for scalars and lists.
func (d *Document) Apply(overrides map[string]any) error {
	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := d.applyOne(name, overrides[name]); err != nil {
			return err
		}
	}
	return nil
}

func (d *Document) applyOne(name string, raw any) error {
	spec, _, ok := Schema().Lookup(name)
	if !ok {
		return fmt.Errorf("unknown field %q", name)
	}

	switch spec.Kind {
	case KindBool:
		b, ok := raw.(bool)
		if !ok {
			return fmt.Errorf("field %q: want bool, got %T", spec.Name, raw)
		}
		return d.SetBool(name, b)
	case KindInt:
		n, ok := asInt(raw)
		if !ok {
			return fmt.Errorf("field %q: want integer, got %T", spec.Name, raw)
		}
		return d.SetInt(name, n)
	case KindFloat:
		if s, isStr := raw.(string); isStr {
			return d.Set(name, s)
		}
		f, ok := asFloat(raw)
		if !ok {
			return fmt.Errorf("field %q: want number, got %T", spec.Name, raw)
		}
		return d.SetFloat(name, f)
	case KindString:
		s, ok := raw.(string)
		if !ok {
			return fmt.Errorf("field %q: want string, got %T", spec.Name, raw)
		}
		return d.SetStr(name, s)
	case KindFloatList:
		list, err := asFloatList(raw)
		if err != nil {
			return fmt.Errorf("field %q: %w", spec.Name, err)
		}
		return d.SetFloats(name, list)
	default:
		return fmt.Errorf("field %q: unsupported kind %s", spec.Name, spec.Kind)
	}
}

func asInt(raw any) (int, bool) {
	switch n := raw.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}

func asFloat(raw any) (float64, bool) {
	switch n := raw.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func asFloatList(raw any) ([]float64, error) {
	switch list := raw.(type) {
	case []float64:
		return list, nil
	case []any:
		out := make([]float64, 0, len(list))
		for i, el := range list {
			f, ok := asFloat(el)
			if !ok {
				return nil, fmt.Errorf("want number list, element %d is %T", i, el)
			}
			out = append(out, f)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("want number list, got %T", raw)
	}
}

