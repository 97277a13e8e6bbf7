package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issuesFor(issues []Issue, field string) []Issue {
	out := make([]Issue, 0)
	for _, i := range issues {
		if i.Field == field {
			out = append(out, i)
		}
	}
	return out
}

func TestValidateCanonicalIsClean(t *testing.T) {
	assert.Empty(t, Validate(New()))
}

func TestValidateEnumFields(t *testing.T) {
	t.Run("int switch outside its set", func(t *testing.T) {
		doc := New()
		require.NoError(t, doc.SetInt("CompAero", 5))

		issues := Validate(doc)
		require.Len(t, issues, 1)
		assert.Equal(t, "CompAero", issues[0].Field)
		assert.Equal(t, InvalidEnumValue, issues[0].Kind)
		assert.Equal(t, SeverityError, issues[0].Severity)
		assert.Equal(t, "value must be one of {0, 1, 2}, got 5", issues[0].Message)
	})

	t.Run("abort level is matched case-insensitively", func(t *testing.T) {
		doc := New()
		require.NoError(t, doc.SetStr("AbortLevel", "fatal"))
		assert.Empty(t, Validate(doc))
	})

	t.Run("abort level outside its set", func(t *testing.T) {
		doc := New()
		require.NoError(t, doc.SetStr("AbortLevel", "PANIC"))

		issues := issuesFor(Validate(doc), "AbortLevel")
		require.Len(t, issues, 1)
		assert.Equal(t, InvalidEnumValue, issues[0].Kind)
		assert.Contains(t, issues[0].Message, `got "PANIC"`)
	})
}

func TestValidateNumericDomains(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Document) error
		field   string
		message string
	}{
		{
			name:    "TMax must be positive",
			mutate:  func(d *Document) error { return d.SetFloat("TMax", 0) },
			field:   "TMax",
			message: "value must be positive, got 0",
		},
		{
			name:    "NumCrctn cannot be negative",
			mutate:  func(d *Document) error { return d.SetInt("NumCrctn", -1) },
			field:   "NumCrctn",
			message: "value cannot be negative, got -1",
		},
		{
			name:    "TStart cannot be negative",
			mutate:  func(d *Document) error { return d.SetFloat("TStart", -5) },
			field:   "TStart",
			message: "value cannot be negative, got -5",
		},
		{
			name:    "NLinTimes needs at least one step",
			mutate:  func(d *Document) error { return d.SetInt("NLinTimes", 0) },
			field:   "NLinTimes",
			message: "value must be at least 1, got 0",
		},
		{
			name:    "VTK_fps must be positive",
			mutate:  func(d *Document) error { return d.SetFloat("VTK_fps", -1) },
			field:   "VTK_fps",
			message: "value must be positive, got -1",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := New()
			require.NoError(t, tc.mutate(doc))

			issues := issuesFor(Validate(doc), tc.field)
			require.Len(t, issues, 1)
			assert.Equal(t, OutOfRange, issues[0].Kind)
			assert.Equal(t, tc.message, issues[0].Message)
		})
	}
}

func TestValidateSentinelSkipsDomainCheck(t *testing.T) {
	doc := New()
	require.True(t, doc.IsDefault("DT_Out"))
	assert.Empty(t, issuesFor(Validate(doc), "DT_Out"))

	require.NoError(t, doc.SetFloat("DT_Out", -0.5))
	issues := issuesFor(Validate(doc), "DT_Out")
	require.Len(t, issues, 1)
	assert.Equal(t, OutOfRange, issues[0].Kind)
}

func TestValidateLinearizationConsistency(t *testing.T) {
	t.Run("matching lengths pass", func(t *testing.T) {
		doc := New()
		require.NoError(t, doc.SetBool("Linearize", true))
		assert.Empty(t, Validate(doc)) // baseline carries 2 times and NLinTimes=2
	})

	t.Run("mismatch is reported against LinTimes", func(t *testing.T) {
		doc := New()
		require.NoError(t, doc.SetBool("Linearize", true))
		require.NoError(t, doc.SetInt("NLinTimes", 3))

		issues := Validate(doc)
		require.Len(t, issues, 1)
		assert.Equal(t, "LinTimes", issues[0].Field)
		assert.Equal(t, ConsistencyViolation, issues[0].Kind)
		assert.Equal(t, "LinTimes has 2 entries, NLinTimes is 3", issues[0].Message)
	})

	t.Run("inert when linearization is off", func(t *testing.T) {
		doc := New()
		require.NoError(t, doc.SetInt("NLinTimes", 5))
		assert.Empty(t, Validate(doc))
	})
}

func TestValidateOutFmtWidth(t *testing.T) {
	cases := []struct {
		desc      string
		wantIssue bool
		width     string
	}{
		{desc: "ES10.3E2", wantIssue: false},
		{desc: "F10.4", wantIssue: false},
		{desc: "1pE10.5", wantIssue: false},
		{desc: "ES12.4E2", wantIssue: true, width: "12"},
		{desc: "F8.4", wantIssue: true, width: "8"},
		{desc: "not a descriptor", wantIssue: false},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			doc := New()
			require.NoError(t, doc.SetStr("OutFmt", tc.desc))

			issues := issuesFor(Validate(doc), "OutFmt")
			if !tc.wantIssue {
				assert.Empty(t, issues)
				return
			}
			require.Len(t, issues, 1)
			assert.Equal(t, FormatWidth, issues[0].Kind)
			assert.Equal(t, SeverityInfo, issues[0].Severity)
			assert.Contains(t, issues[0].Message, tc.width+"-character")
		})
	}
}

func TestValidateAccumulatesAllFindings(t *testing.T) {
	doc := New()
	require.NoError(t, doc.SetInt("CompAero", 9))
	require.NoError(t, doc.SetFloat("DT", -0.1))
	require.NoError(t, doc.SetInt("WrVTK", 7))
	require.NoError(t, doc.SetStr("OutFmt", "ES12.4E2"))

	issues := Validate(doc)
	assert.Len(t, issues, 4)

	errs := Errors(issues)
	assert.Len(t, errs, 3)
	for _, i := range errs {
		assert.Equal(t, SeverityError, i.Severity)
	}
}

func TestIssueKindTextRoundTrip(t *testing.T) {
	for _, k := range []IssueKind{InvalidEnumValue, OutOfRange, ConsistencyViolation, FormatWidth} {
		text, err := k.MarshalText()
		require.NoError(t, err)

		var back IssueKind
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, k, back)
	}

	var k IssueKind
	assert.Error(t, k.UnmarshalText([]byte("Bogus")))
}
