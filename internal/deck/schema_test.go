package deck

import (
	"strings"
	"testing"
)

func TestSchemaTableBuilds(t *testing.T) {
	tbl, err := buildTable()
	if err != nil {
		t.Fatalf("buildTable failed: %v", err)
	}

	if got := len(tbl.Sections); got != 6 {
		t.Errorf("expected 6 sections, got %d", got)
	}
	if got := tbl.NumFields(); got != 46 {
		t.Errorf("expected 46 fields, got %d", got)
	}

	wantTitles := []string{
		SectionSimControl,
		SectionFeatures,
		SectionInputFiles,
		SectionOutput,
		SectionLinear,
		SectionVis,
	}
	for i, want := range wantTitles {
		if tbl.Sections[i].Title != want {
			t.Errorf("section %d: got title %q, want %q", i, tbl.Sections[i].Title, want)
		}
	}
}

func TestSchemaLookupCaseInsensitive(t *testing.T) {
	tbl := Schema()

	spec, section, ok := tbl.Lookup("compaero")
	if !ok {
		t.Fatal("compaero not found")
	}
	if spec.Name != "CompAero" {
		t.Errorf("canonical name: got %q, want CompAero", spec.Name)
	}
	if section != 1 {
		t.Errorf("section: got %d, want 1", section)
	}

	if _, _, ok := tbl.Lookup("NoSuchField"); ok {
		t.Error("NoSuchField should not resolve")
	}
}

func TestSchemaSectionAliases(t *testing.T) {
	tbl := Schema()

	for title, want := range map[string]int{
		"SIMULATION CONTROL":         0,
		"simulation control":         0,
		"FEATURE SWITCHES AND FLAGS": 1,
		"FEATURE SWITCHES":           1,
		"Feature   Switches":         1,
		"VISUALIZATION":              5,
	} {
		got, ok := tbl.SectionIndex(title)
		if !ok {
			t.Errorf("title %q did not resolve", title)
			continue
		}
		if got != want {
			t.Errorf("title %q: got section %d, want %d", title, got, want)
		}
	}

	if _, ok := tbl.SectionIndex("TURBULENCE"); ok {
		t.Error("TURBULENCE should not resolve")
	}
}

func TestSchemaRowConsistency(t *testing.T) {
	tbl := Schema()

	for _, sec := range tbl.Sections {
		for _, f := range sec.Fields {
			if f.Desc == "" {
				t.Errorf("%s: missing description", f.Name)
			}
			if f.Enum != nil && f.Kind != KindInt {
				t.Errorf("%s: integer enum on non-integer field", f.Name)
			}
			if f.EnumStr != nil && f.Kind != KindString {
				t.Errorf("%s: string enum on non-string field", f.Name)
			}
			if f.Sentinel && f.Kind != KindFloat {
				t.Errorf("%s: %q sentinel on non-float field", f.Name, "default")
			}
			if f.GovernedBy != "" {
				if _, _, ok := tbl.Lookup(f.GovernedBy); !ok {
					t.Errorf("%s: governed by unknown field %q", f.Name, f.GovernedBy)
				}
			}
			if f.Quoted && f.Kind != KindString {
				t.Errorf("%s: quoting declared on non-string field", f.Name)
			}
			if strings.TrimSpace(f.Name) != f.Name || f.Name == "" {
				t.Errorf("bad field name %q", f.Name)
			}
		}
	}
}
