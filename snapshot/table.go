// snapshot/table.go
package snapshot

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
)

// Table is a snapshot read back as untyped text. Rows may be ragged when the
// file was written under more than one schema.
type Table struct {
	Header []string
	Rows   [][]string
}

// Shape returns the (row count, column count) pair. The column count is the
// widest of the header and every row.
func (t Table) Shape() (rows, cols int) {
	cols = len(t.Header)
	for _, r := range t.Rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	return len(t.Rows), cols
}

// ColumnIndex returns the position of the named header column, or -1.
func (t Table) ColumnIndex(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at (row, col), or "" past the end of a short row.
func (t Table) Cell(row, col int) string {
	r := t.Rows[row]
	if col >= len(r) {
		return ""
	}
	return r[col]
}

// Load reads a CSV snapshot. A leading UTF-8 byte order mark is stripped.
func Load(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("failed to open snapshot %s: %w", path, err)
	}
	defer f.Close()

	t, err := ReadTable(f)
	if err != nil {
		return Table{}, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	return t, nil
}

// ReadTable decodes CSV text into a Table; the first record is the header.
func ReadTable(r io.Reader) (Table, error) {
	cr := csv.NewReader(unicode.UTF8BOM.NewDecoder().Reader(r))
	cr.FieldsPerRecord = -1

	var t Table
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, err
		}
		if t.Header == nil {
			t.Header = rec
			continue
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

// writeTable encodes t as CSV.
func writeTable(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}
