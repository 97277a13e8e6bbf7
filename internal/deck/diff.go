package deck

// FieldDiff records one field whose typed value differs between two
// documents.
type FieldDiff struct {
	Field   string `json:"field"`
	Section string `json:"section"`
	Old     string `json:"old"`
	New     string `json:"new"`
}

// Diff compares two documents field by field in schema order. Source text
// differences that do not change the typed value (quoting, number spelling)
// are not reported.
func Diff(a, b *Document) []FieldDiff {
	t := Schema()
	var diffs []FieldDiff
	for si, sec := range t.Sections {
		for fi := range sec.Fields {
			fa := a.sections[si][fi]
			fb := b.sections[si][fi]
			if fa == nil || fb == nil {
				continue
			}
			if fa.Value.Equal(fb.Value) {
				continue
			}
			diffs = append(diffs, FieldDiff{
				Field:   fa.Name,
				Section: sec.Title,
				Old:     fa.Value.Raw(),
				New:     fb.Value.Raw(),
			})
		}
	}
	return diffs
}
