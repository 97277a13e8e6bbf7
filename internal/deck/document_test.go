package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentTypedGetters(t *testing.T) {
	doc := New()

	echo, err := doc.Bool("Echo")
	require.NoError(t, err)
	assert.False(t, echo)

	order, err := doc.Int("InterpOrder")
	require.NoError(t, err)
	assert.Equal(t, 2, order)

	tmax, err := doc.Float("TMax")
	require.NoError(t, err)
	assert.Equal(t, 60.0, tmax)

	level, err := doc.Str("AbortLevel")
	require.NoError(t, err)
	assert.Equal(t, "FATAL", level)

	times, err := doc.Floats("LinTimes")
	require.NoError(t, err)
	assert.Equal(t, []float64{30, 60}, times)
}

func TestDocumentGetterKindMismatch(t *testing.T) {
	doc := New()

	_, err := doc.Int("Echo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want integer, got flag")

	_, err = doc.Bool("TMax")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want flag, got float")

	_, err = doc.Str("NoSuchField")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown field "NoSuchField"`)
}

func TestDocumentFloatRejectsSentinel(t *testing.T) {
	doc := New()
	require.True(t, doc.IsDefault("DT_Out"))

	_, err := doc.Float("DT_Out")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"default"`)

	require.NoError(t, doc.SetFloat("DT_Out", 0.05))
	assert.False(t, doc.IsDefault("DT_Out"))

	v, err := doc.Float("DT_Out")
	require.NoError(t, err)
	assert.Equal(t, 0.05, v)
}

func TestDocumentSettersWriteCanonicalText(t *testing.T) {
	doc := New()

	require.NoError(t, doc.SetBool("Echo", true))
	require.NoError(t, doc.SetInt("NLinTimes", 3))
	require.NoError(t, doc.SetFloat("TMax", 120))
	require.NoError(t, doc.SetStr("EDFile", "variant.dat"))
	require.NoError(t, doc.SetFloats("LinTimes", []float64{10, 20, 30}))

	raw := rawValues(doc)
	assert.Equal(t, "True", raw["Echo"])
	assert.Equal(t, "3", raw["NLinTimes"])
	assert.Equal(t, "120.0", raw["TMax"])
	assert.Equal(t, `"variant.dat"`, raw["EDFile"])
	assert.Equal(t, "10.0, 20.0, 30.0", raw["LinTimes"])
}

func TestDocumentSetDefault(t *testing.T) {
	doc := New()
	require.NoError(t, doc.SetFloat("DT_Out", 0.05))

	require.NoError(t, doc.SetDefault("DT_Out"))
	assert.True(t, doc.IsDefault("DT_Out"))
	f, _ := doc.Field("DT_Out")
	assert.Equal(t, `"default"`, f.Value.Raw())

	err := doc.SetDefault("TMax")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `does not accept "default"`)
}

func TestDocumentSetParsesText(t *testing.T) {
	doc := New()

	require.NoError(t, doc.Set("TMax", "1.5e2"))
	tmax, err := doc.Float("TMax")
	require.NoError(t, err)
	assert.Equal(t, 150.0, tmax)

	require.NoError(t, doc.Set("DT_Out", "default"))
	assert.True(t, doc.IsDefault("DT_Out"))

	require.NoError(t, doc.Set("Echo", "T"))
	echo, err := doc.Bool("Echo")
	require.NoError(t, err)
	assert.True(t, echo)

	err = doc.Set("Echo", "maybe")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid flag "maybe"`)

	err = doc.Set("NoSuch", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown field")
}

func TestDocumentApply(t *testing.T) {
	t.Run("scalar coercions", func(t *testing.T) {
		doc := New()
		err := doc.Apply(map[string]any{
			"Echo":      true,
			"CompAero":  1,
			"NLinTimes": 3.0, // integral float, as YAML may decode
			"TMax":      300.5,
			"DT_Out":    "default",
			"EDFile":    "applied.dat",
			"LinTimes":  []any{10, 20.5, 30},
		})
		require.NoError(t, err)

		echo, _ := doc.Bool("Echo")
		assert.True(t, echo)
		n, _ := doc.Int("NLinTimes")
		assert.Equal(t, 3, n)
		tmax, _ := doc.Float("TMax")
		assert.Equal(t, 300.5, tmax)
		assert.True(t, doc.IsDefault("DT_Out"))
		file, _ := doc.Str("EDFile")
		assert.Equal(t, "applied.dat", file)
		times, _ := doc.Floats("LinTimes")
		assert.Equal(t, []float64{10, 20.5, 30}, times)
	})

	t.Run("fractional float for an integer field", func(t *testing.T) {
		doc := New()
		err := doc.Apply(map[string]any{"CompAero": 1.5})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "want integer")
	})

	t.Run("wrong scalar type", func(t *testing.T) {
		doc := New()
		err := doc.Apply(map[string]any{"EDFile": true})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "want string")
	})

	t.Run("list with a non-numeric element", func(t *testing.T) {
		doc := New()
		err := doc.Apply(map[string]any{"LinTimes": []any{10, "soon"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "element 1")
	})
}

func TestDocumentClone(t *testing.T) {
	orig := New()
	clone := orig.Clone()

	require.NoError(t, clone.SetFloat("TMax", 999))
	require.NoError(t, clone.SetFloats("LinTimes", []float64{1, 2, 3}))

	tmax, _ := orig.Float("TMax")
	assert.Equal(t, 60.0, tmax)
	times, _ := orig.Floats("LinTimes")
	assert.Equal(t, []float64{30, 60}, times)

	ctimes, _ := clone.Floats("LinTimes")
	assert.Equal(t, []float64{1, 2, 3}, ctimes)
}

func TestDiffReportsTypedChangesOnly(t *testing.T) {
	a := New()
	b := New()

	// Same typed value, different spelling: not a difference.
	require.NoError(t, b.Set("TMax", "6e1"))
	require.NoError(t, b.Set("Echo", "F"))
	assert.Empty(t, Diff(a, b))

	require.NoError(t, b.SetFloat("DT", 0.02))
	require.NoError(t, b.SetInt("CompAero", 1))

	diffs := Diff(a, b)
	require.Len(t, diffs, 2)

	assert.Equal(t, "DT", diffs[0].Field)
	assert.Equal(t, SectionSimControl, diffs[0].Section)
	assert.Equal(t, "0.0125", diffs[0].Old)
	assert.Equal(t, "0.02", diffs[0].New)

	assert.Equal(t, "CompAero", diffs[1].Field)
	assert.Equal(t, "2", diffs[1].Old)
	assert.Equal(t, "1", diffs[1].New)
}

func TestDiffSentinelAgainstExplicit(t *testing.T) {
	a := New()
	b := New()
	require.NoError(t, b.SetFloat("DT_Out", 0.05))

	diffs := Diff(a, b)
	require.Len(t, diffs, 1)
	assert.Equal(t, "DT_Out", diffs[0].Field)
	assert.Equal(t, `"default"`, diffs[0].Old)
	assert.Equal(t, "0.05", diffs[0].New)
}
