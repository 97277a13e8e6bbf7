package deck

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/google/renameio/v2"
)

// Canonical column layout: the value is padded to 14 characters and the
// field name to 16 before the "-" delimited description. Values or names
// that overflow their column get a fixed separator instead.
const (
	valueColWidth = 14
	nameColWidth  = 16
	headerWidth   = 80
)

// Encode writes the document in canonical layout: banner, description,
// then every section in schema order. Output of Encode always re-parses,
// and re-encoding a parsed canonical file reproduces it byte for byte.
func (d *Document) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)

	if d.Banner != "" {
		fmt.Fprintln(bw, d.Banner)
	}
	for _, line := range d.Description {
		fmt.Fprintln(bw, line)
	}

	t := Schema()
	for si, sec := range t.Sections {
		header := d.headers[si]
		if header == "" {
			header = sectionHeader(sec.Title)
		}
		fmt.Fprintln(bw, header)
		for _, f := range d.sections[si] {
			if f == nil {
				continue
			}
			writeField(bw, f)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write deck: %w", err)
	}
	return nil
}

// Bytes returns the canonical text of the document.
func (d *Document) Bytes() []byte {
	var buf bytes.Buffer
	// bytes.Buffer cannot fail.
	_ = d.Encode(&buf)
	return buf.Bytes()
}

// WriteFile writes the document to path atomically and durably: the content
// is fsynced to a temp file which then replaces path by rename.
func (d *Document) WriteFile(path string) error {
	pending, err := renameio.NewPendingFile(path)
	if err != nil {
		return fmt.Errorf("create pending deck file: %w", err)
	}
	defer func() {
		// Removes the temp file if we bail before the rename.
		_ = pending.Cleanup()
	}()

	if err := d.Encode(pending); err != nil {
		return err
	}

	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace deck file: %w", err)
	}
	return nil
}

func writeField(w *bufio.Writer, f *Field) {
	val := f.Value.Raw()
	w.WriteString(val)
	if pad := valueColWidth - len(val); pad > 0 {
		w.WriteString(strings.Repeat(" ", pad))
	} else {
		w.WriteString("    ")
	}

	w.WriteString(f.Name)
	if f.Desc != "" {
		if pad := nameColWidth - len(f.Name); pad > 0 {
			w.WriteString(strings.Repeat(" ", pad))
		} else {
			w.WriteString(" ")
		}
		w.WriteString("- ")
		w.WriteString(f.Desc)
	}
	w.WriteByte('\n')
}

func sectionHeader(title string) string {
	line := strings.Repeat("-", 22) + " " + title + " "
	if pad := headerWidth - len(line); pad > 0 {
		return line + strings.Repeat("-", pad)
	}
	return line + "---"
}
