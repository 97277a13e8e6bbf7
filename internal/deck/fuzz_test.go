package deck

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
)

// FuzzParse asserts the round-trip contract on arbitrary input: whatever
// parses must encode to a form that parses again to the same values, and the
// encoding must be stable from then on.
func FuzzParse(f *testing.F) {
	canonical, err := os.ReadFile("testdata/canonical.fst")
	if err != nil {
		f.Fatalf("read seed: %v", err)
	}

	f.Add(canonical)
	f.Add(bytes.ToLower(canonical))
	f.Add(bytes.ReplaceAll(canonical, []byte("\n"), []byte("\r\n")))
	f.Add(canonical[:len(canonical)/2])
	f.Add([]byte(strings.ReplaceAll(string(canonical), "60.0", "6.0D+01")))
	f.Add([]byte("---- banner ----\ndesc\n"))
	f.Add([]byte(""))

	f.Fuzz(func(t *testing.T, data []byte) {
		doc, err := Parse(data)
		if err != nil {
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("Parse returned a non-ParseError: %v", err)
			}
			return
		}

		once := doc.Bytes()
		again, err := Parse(once)
		if err != nil {
			t.Fatalf("encoded output does not parse back: %v\n%s", err, once)
		}
		if d := Diff(doc, again); len(d) != 0 {
			t.Fatalf("values changed across encode/parse: %v", d)
		}
		if twice := again.Bytes(); !bytes.Equal(once, twice) {
			t.Fatalf("encoding unstable:\nfirst:\n%s\nsecond:\n%s", once, twice)
		}
	})
}
