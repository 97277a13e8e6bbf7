// Package deck reads, validates and writes OpenFAST primary input files (.fst).
package deck

import (
	"fmt"
	"strings"
	"sync"
)

// Kind is the value type of a schema field.
type Kind int

const (
	KindBool Kind = iota
	KindInt
	KindFloat
	KindString
	KindFloatList
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "flag"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindFloatList:
		return "float list"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Domain classifies the numeric range constraint of a field.
type Domain int

const (
	DomainAny Domain = iota
	DomainPositive    // > 0
	DomainNonNegative // >= 0
	DomainAtLeastOne  // >= 1
)

// Canonical section titles, in file order.
const (
	SectionSimControl = "SIMULATION CONTROL"
	SectionFeatures   = "FEATURE SWITCHES AND FLAGS"
	SectionInputFiles = "INPUT FILES"
	SectionOutput     = "OUTPUT"
	SectionLinear     = "LINEARIZATION"
	SectionVis        = "VISUALIZATION"
)

// FieldSpec defines a single field's schema metadata.
type FieldSpec struct {
	Name       string   // Canonical field name (e.g. "CompAero")
	Kind       Kind     // Value type
	Enum       []int    // Allowed values for integer switches
	EnumStr    []string // Allowed values for string enums
	Domain     Domain   // Numeric range constraint
	Quoted     bool     // Value is written double-quoted
	Sentinel   bool     // Accepts the literal "default" in place of a number
	GovernedBy string   // Flag field this one is unused without
	Desc       string   // Canonical trailing description
}

// SectionSpec defines one section and its fields in canonical order.
type SectionSpec struct {
	Title  string
	Fields []FieldSpec
}

type fieldPos struct {
	section int
	index   int
}

// Table is the full primary-input schema: six fixed sections, every field
// present exactly once. Parser, validator and writer all derive their
// behavior from it.
type Table struct {
	Sections []SectionSpec
	byName   map[string]fieldPos
	byTitle  map[string]int
}

var (
	tableOnce sync.Once
	tableInst *Table
)

// Schema returns the primary-input schema table.
// Thread-safe via sync.Once.
func Schema() *Table {
	tableOnce.Do(func() {
		t, err := buildTable()
		if err != nil {
			panic(fmt.Sprintf("deck: invalid schema table: %v", err))
		}
		tableInst = t
	})
	return tableInst
}

func buildTable() (*Table, error) {
	t := &Table{
		Sections: []SectionSpec{
			{Title: SectionSimControl, Fields: []FieldSpec{
				{Name: "Echo", Kind: KindBool, Desc: "Echo input data to <RootName>.ech (flag)"},
				{Name: "AbortLevel", Kind: KindString, Quoted: true, EnumStr: []string{"WARNING", "SEVERE", "FATAL"}, Desc: `Error level when simulation should abort (string) {"WARNING", "SEVERE", "FATAL"}`},
				{Name: "TMax", Kind: KindFloat, Domain: DomainPositive, Desc: "Total run time (s)"},
				{Name: "DT", Kind: KindFloat, Domain: DomainPositive, Desc: "Recommended module time step (s)"},
				{Name: "InterpOrder", Kind: KindInt, Enum: []int{1, 2}, Desc: "Interpolation order for input/output time history (-) {1=linear, 2=quadratic}"},
				{Name: "NumCrctn", Kind: KindInt, Domain: DomainNonNegative, Desc: "Number of correction iterations (-) {0=explicit calculation, i.e., no corrections}"},
				{Name: "DT_UJac", Kind: KindFloat, Domain: DomainPositive, Desc: "Time between calls to get Jacobians (s)"},
				{Name: "UJacSclFact", Kind: KindFloat, Domain: DomainPositive, Desc: "Scaling factor used in Jacobians (-)"},
			}},
			{Title: SectionFeatures, Fields: []FieldSpec{
				{Name: "CompElast", Kind: KindInt, Enum: []int{1, 2}, Desc: "Compute structural dynamics (switch) {1=ElastoDyn; 2=ElastoDyn + BeamDyn for blades}"},
				{Name: "CompInflow", Kind: KindInt, Enum: []int{0, 1, 2}, Desc: "Compute inflow wind velocities (switch) {0=still air; 1=InflowWind; 2=external from OpenFOAM}"},
				{Name: "CompAero", Kind: KindInt, Enum: []int{0, 1, 2}, Desc: "Compute aerodynamic loads (switch) {0=None; 1=AeroDyn v14; 2=AeroDyn v15}"},
				{Name: "CompServo", Kind: KindInt, Enum: []int{0, 1}, Desc: "Compute control and electrical-drive dynamics (switch) {0=None; 1=ServoDyn}"},
				{Name: "CompHydro", Kind: KindInt, Enum: []int{0, 1}, Desc: "Compute hydrodynamic loads (switch) {0=None; 1=HydroDyn}"},
				{Name: "CompSub", Kind: KindInt, Enum: []int{0, 1, 2}, Desc: "Compute sub-structural dynamics (switch) {0=None; 1=SubDyn; 2=External Platform MCKF}"},
				{Name: "CompMooring", Kind: KindInt, Enum: []int{0, 1, 2, 3, 4}, Desc: "Compute mooring system (switch) {0=None; 1=MAP++; 2=FEAMooring; 3=MoorDyn; 4=OrcaFlex}"},
				{Name: "CompIce", Kind: KindInt, Enum: []int{0, 1, 2}, Desc: "Compute ice loads (switch) {0=None; 1=IceFloe; 2=IceDyn}"},
			}},
			{Title: SectionInputFiles, Fields: []FieldSpec{
				{Name: "EDFile", Kind: KindString, Quoted: true, Desc: "Name of file containing ElastoDyn input parameters (quoted string)"},
				{Name: "BDBldFile(1)", Kind: KindString, Quoted: true, Desc: "Name of file containing BeamDyn input parameters for blade 1 (quoted string)"},
				{Name: "BDBldFile(2)", Kind: KindString, Quoted: true, Desc: "Name of file containing BeamDyn input parameters for blade 2 (quoted string)"},
				{Name: "BDBldFile(3)", Kind: KindString, Quoted: true, Desc: "Name of file containing BeamDyn input parameters for blade 3 (quoted string)"},
				{Name: "InflowFile", Kind: KindString, Quoted: true, Desc: "Name of file containing inflow wind input parameters (quoted string)"},
				{Name: "AeroFile", Kind: KindString, Quoted: true, Desc: "Name of file containing aerodynamic input parameters (quoted string)"},
				{Name: "ServoFile", Kind: KindString, Quoted: true, Desc: "Name of file containing control and electrical-drive input parameters (quoted string)"},
				{Name: "HydroFile", Kind: KindString, Quoted: true, Desc: "Name of file containing hydrodynamic input parameters (quoted string)"},
				{Name: "SubFile", Kind: KindString, Quoted: true, Desc: "Name of file containing sub-structural input parameters (quoted string)"},
				{Name: "MooringFile", Kind: KindString, Quoted: true, Desc: "Name of file containing mooring system input parameters (quoted string)"},
				{Name: "IceFile", Kind: KindString, Quoted: true, Desc: "Name of file containing ice input parameters (quoted string)"},
			}},
			{Title: SectionOutput, Fields: []FieldSpec{
				{Name: "SumPrint", Kind: KindBool, Desc: `Print summary data to "<RootName>.sum" (flag)`},
				{Name: "SttsTime", Kind: KindFloat, Domain: DomainPositive, Desc: "Amount of time between screen status messages (s)"},
				{Name: "ChkptTime", Kind: KindFloat, Domain: DomainPositive, Desc: "Amount of time between creating checkpoint files for potential restart (s)"},
				{Name: "DT_Out", Kind: KindFloat, Domain: DomainPositive, Sentinel: true, Desc: `Time step for tabular output (s) (or "default")`},
				{Name: "TStart", Kind: KindFloat, Domain: DomainNonNegative, Desc: "Time to begin tabular output (s)"},
				{Name: "OutFileFmt", Kind: KindInt, Enum: []int{1, 2, 3}, Desc: "Format for tabular (time-marching) output file (switch) {1: text file [<RootName>.out], 2: binary file [<RootName>.outb], 3: both}"},
				{Name: "TabDelim", Kind: KindBool, Desc: "Use tab delimiters in text tabular output file? (flag) {uses spaces if false}"},
				{Name: "OutFmt", Kind: KindString, Quoted: true, Desc: "Format used for text tabular output, excluding the time channel. Resulting field should be 10 characters. (quoted string)"},
			}},
			{Title: SectionLinear, Fields: []FieldSpec{
				{Name: "Linearize", Kind: KindBool, Desc: "Linearization analysis (flag)"},
				{Name: "NLinTimes", Kind: KindInt, Domain: DomainAtLeastOne, GovernedBy: "Linearize", Desc: "Number of times to linearize (-) [>=1] [unused if Linearize=False]"},
				{Name: "LinTimes", Kind: KindFloatList, GovernedBy: "Linearize", Desc: "List of times at which to linearize (s) [1 to NLinTimes] [unused if Linearize=False]"},
				{Name: "LinInputs", Kind: KindInt, Enum: []int{0, 1, 2}, GovernedBy: "Linearize", Desc: "Inputs included in linearization (switch) {0=none; 1=standard; 2=all module inputs (debug)} [unused if Linearize=False]"},
				{Name: "LinOutputs", Kind: KindInt, Enum: []int{0, 1, 2}, GovernedBy: "Linearize", Desc: "Outputs included in linearization (switch) {0=none; 1=from OutList(s); 2=all module outputs (debug)} [unused if Linearize=False]"},
				{Name: "LinOutJac", Kind: KindBool, GovernedBy: "Linearize", Desc: "Include full Jacobians in linearization output (for debug) (flag) [unused if Linearize=False; used only if LinInputs=LinOutputs=2]"},
				{Name: "LinOutMod", Kind: KindBool, GovernedBy: "Linearize", Desc: "Write module-level linearization output files in addition to output for full system? (flag) [unused if Linearize=False]"},
			}},
			{Title: SectionVis, Fields: []FieldSpec{
				{Name: "WrVTK", Kind: KindInt, Enum: []int{0, 1, 2}, Desc: "VTK visualization data output (switch) {0=none; 1=initialization data only; 2=animation}"},
				{Name: "VTK_type", Kind: KindInt, Enum: []int{1, 2, 3}, GovernedBy: "WrVTK", Desc: "Type of VTK visualization data (switch) {1=surfaces; 2=basic meshes (lines/points); 3=all meshes (debug)} [unused if WrVTK=0]"},
				{Name: "VTK_fields", Kind: KindBool, GovernedBy: "WrVTK", Desc: "Write mesh fields to VTK data files? (flag) {true/false} [unused if WrVTK=0]"},
				{Name: "VTK_fps", Kind: KindFloat, Domain: DomainPositive, GovernedBy: "WrVTK", Desc: "Frame rate for VTK output (frames per second) {will use closest integer multiple of DT} [used only if WrVTK=2]"},
			}},
		},
		byName:  make(map[string]fieldPos),
		byTitle: make(map[string]int),
	}

	for si, sec := range t.Sections {
		title := normalizeTitle(sec.Title)
		if _, dup := t.byTitle[title]; dup {
			return nil, fmt.Errorf("duplicate section title: %s", sec.Title)
		}
		t.byTitle[title] = si
		for fi, f := range sec.Fields {
			key := strings.ToLower(f.Name)
			if _, dup := t.byName[key]; dup {
				return nil, fmt.Errorf("duplicate field name: %s", f.Name)
			}
			t.byName[key] = fieldPos{section: si, index: fi}
		}
	}

	// Older decks head the second section with just "FEATURE SWITCHES".
	t.byTitle[normalizeTitle("FEATURE SWITCHES")] = 1

	return t, nil
}

func normalizeTitle(title string) string {
	return strings.ToUpper(strings.Join(strings.Fields(title), " "))
}

// Lookup resolves a field name case-insensitively and returns its spec and
// section index.
func (t *Table) Lookup(name string) (FieldSpec, int, bool) {
	pos, ok := t.byName[strings.ToLower(name)]
	if !ok {
		return FieldSpec{}, 0, false
	}
	return t.Sections[pos.section].Fields[pos.index], pos.section, true
}

// SectionIndex resolves a header title (case- and spacing-insensitive) to its
// section index.
func (t *Table) SectionIndex(title string) (int, bool) {
	i, ok := t.byTitle[normalizeTitle(title)]
	return i, ok
}

// NumFields returns the total number of schema fields.
func (t *Table) NumFields() int {
	n := 0
	for _, sec := range t.Sections {
		n += len(sec.Fields)
	}
	return n
}

func (t *Table) position(name string) (fieldPos, bool) {
	pos, ok := t.byName[strings.ToLower(name)]
	return pos, ok
}
