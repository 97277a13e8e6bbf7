package deck

import "fmt"

// Baseline deck: a land-based turbine with structural dynamics, inflow,
// aerodynamics and controls enabled, offshore modules off. Raw texts are
// kept exactly as a hand-written deck would spell them.
const (
	baselineBanner      = "------- OpenFAST PRIMARY INPUT FILE -------"
	baselineDescription = "Baseline land-based turbine model"
)

var baseline = []struct {
	name string
	raw  string
}{
	{"Echo", "False"},
	{"AbortLevel", `"FATAL"`},
	{"TMax", "60.0"},
	{"DT", "0.0125"},
	{"InterpOrder", "2"},
	{"NumCrctn", "0"},
	{"DT_UJac", "99999.0"},
	{"UJacSclFact", "1E+06"},
	{"CompElast", "1"},
	{"CompInflow", "1"},
	{"CompAero", "2"},
	{"CompServo", "1"},
	{"CompHydro", "0"},
	{"CompSub", "0"},
	{"CompMooring", "0"},
	{"CompIce", "0"},
	{"EDFile", `"turbine_ElastoDyn.dat"`},
	{"BDBldFile(1)", `"turbine_BeamDyn.dat"`},
	{"BDBldFile(2)", `"turbine_BeamDyn.dat"`},
	{"BDBldFile(3)", `"turbine_BeamDyn.dat"`},
	{"InflowFile", `"turbine_InflowWind.dat"`},
	{"AeroFile", `"turbine_AeroDyn.dat"`},
	{"ServoFile", `"turbine_ServoDyn.dat"`},
	{"HydroFile", `"unused"`},
	{"SubFile", `"unused"`},
	{"MooringFile", `"unused"`},
	{"IceFile", `"unused"`},
	{"SumPrint", "True"},
	{"SttsTime", "1.0"},
	{"ChkptTime", "99999.0"},
	{"DT_Out", `"default"`},
	{"TStart", "0.0"},
	{"OutFileFmt", "1"},
	{"TabDelim", "True"},
	{"OutFmt", `"ES10.3E2"`},
	{"Linearize", "False"},
	{"NLinTimes", "2"},
	{"LinTimes", "30, 60"},
	{"LinInputs", "1"},
	{"LinOutputs", "1"},
	{"LinOutJac", "False"},
	{"LinOutMod", "False"},
	{"WrVTK", "0"},
	{"VTK_type", "2"},
	{"VTK_fields", "False"},
	{"VTK_fps", "15.0"},
}

// New returns the baseline document. Every schema field is populated with
// its baseline value and canonical description.
func New() *Document {
	t := Schema()
	doc := newEmpty(t)
	doc.Banner = baselineBanner
	doc.Description = []string{baselineDescription}

	for _, seed := range baseline {
		spec, _, ok := t.Lookup(seed.name)
		if !ok {
			panic(fmt.Sprintf("deck: baseline names unknown field %q", seed.name))
		}
		v, err := parseValue(spec, seed.raw)
		if err != nil {
			panic(fmt.Sprintf("deck: baseline value for %s: %v", spec.Name, err))
		}
		pos, _ := t.position(seed.name)
		doc.put(pos, &Field{Name: spec.Name, Value: v, Desc: spec.Desc})
	}

	for si, sec := range doc.sections {
		for fi, f := range sec {
			if f == nil {
				panic(fmt.Sprintf("deck: baseline misses field %q", t.Sections[si].Fields[fi].Name))
			}
		}
	}
	return doc
}
