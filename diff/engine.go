// diff/engine.go
package diff

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/gewnthar/tollwatch/models"
	"github.com/gewnthar/tollwatch/snapshot"
)

// positionLabel heads the row-label column of artifacts for unkeyed kinds.
const positionLabel = "row"

// Result is the outcome of comparing two snapshots of the same kind.
type Result struct {
	Kind     models.Kind
	Verdict  models.Verdict
	Reason   string // set when Verdict is incomparable or insufficient
	Records  []models.DiffRecord
	Artifact snapshot.Table // populated only when Verdict is diffed

	// Snapshot paths, set by CompareFiles.
	PreviousPath string
	CurrentPath  string
}

// Summary is a one-line description suitable for logs and console output.
func (r Result) Summary() string {
	switch r.Verdict {
	case models.VerdictNoChange:
		return fmt.Sprintf("No change in %s data", r.Kind)
	case models.VerdictDiffed:
		return fmt.Sprintf("Difference found in %s data: %d changed cells in %d rows", r.Kind, len(r.Records), len(r.Artifact.Rows))
	case models.VerdictIncomparable:
		return fmt.Sprintf("Previous and current %s data can't be compared: %s", r.Kind, r.Reason)
	default:
		return fmt.Sprintf("Nothing to compare for %s data: %s", r.Kind, r.Reason)
	}
}

// frame is a snapshot reshaped for comparison: one label per row plus the
// compared columns. For keyed kinds the key column becomes the label.
type frame struct {
	labelName string
	labels    []string
	columns   []string
	cells     [][]string
}

// Compare diffs previous against current cell by cell.
//
// The tables must have the same shape (rows and columns, after keyed kinds
// collapse duplicate ids) and the same column labels; otherwise the verdict
// is incomparable and no alignment is attempted.
func Compare(kind models.Kind, previous, current snapshot.Table) Result {
	res := Result{Kind: kind}

	prev, err := newFrame(kind, previous)
	if err != nil {
		return incomparable(res, "previous: "+err.Error())
	}
	curr, err := newFrame(kind, current)
	if err != nil {
		return incomparable(res, "current: "+err.Error())
	}

	if len(prev.labels) != len(curr.labels) || len(prev.columns) != len(curr.columns) {
		return incomparable(res, fmt.Sprintf("shapes differ: (%d, %d) vs (%d, %d)",
			len(prev.labels), len(prev.columns), len(curr.labels), len(curr.columns)))
	}
	if !slices.Equal(prev.columns, curr.columns) {
		return incomparable(res, fmt.Sprintf("columns differ: %v vs %v", prev.columns, curr.columns))
	}

	// rowOf maps each previous row to its counterpart in current.
	rowOf := make([]int, len(prev.labels))
	if kind.Keyed() {
		pos := make(map[string]int, len(curr.labels))
		for i, l := range curr.labels {
			pos[l] = i
		}
		for i, l := range prev.labels {
			j, ok := pos[l]
			if !ok {
				return incomparable(res, fmt.Sprintf("%s %q missing from current", prev.labelName, l))
			}
			rowOf[i] = j
		}
	} else {
		for i := range rowOf {
			rowOf[i] = i
		}
	}

	changedCols := make([]bool, len(prev.columns))
	var changedRows []int
	for i := range prev.labels {
		rowChanged := false
		for c, col := range prev.columns {
			p, q := prev.cells[i][c], curr.cells[rowOf[i]][c]
			if cellsEqual(p, q) {
				continue
			}
			res.Records = append(res.Records, models.DiffRecord{
				Key:      prev.labels[i],
				Column:   col,
				Previous: p,
				Current:  q,
			})
			changedCols[c] = true
			rowChanged = true
		}
		if rowChanged {
			changedRows = append(changedRows, i)
		}
	}

	if len(res.Records) == 0 {
		res.Verdict = models.VerdictNoChange
		return res
	}

	res.Verdict = models.VerdictDiffed
	res.Artifact = buildArtifact(prev, curr, rowOf, changedRows, changedCols)
	return res
}

func incomparable(res Result, reason string) Result {
	res.Verdict = models.VerdictIncomparable
	res.Reason = reason
	res.Records = nil
	return res
}

// buildArtifact lays out only changed rows and changed columns; each changed
// column becomes a <column>_previous, <column>_current pair. Cells that did
// not change within a changed column are left blank.
func buildArtifact(prev, curr *frame, rowOf, changedRows []int, changedCols []bool) snapshot.Table {
	header := []string{prev.labelName}
	for c, col := range prev.columns {
		if changedCols[c] {
			header = append(header, col+"_previous", col+"_current")
		}
	}

	rows := make([][]string, 0, len(changedRows))
	for _, i := range changedRows {
		row := []string{prev.labels[i]}
		for c := range prev.columns {
			if !changedCols[c] {
				continue
			}
			p, q := prev.cells[i][c], curr.cells[rowOf[i]][c]
			if cellsEqual(p, q) {
				row = append(row, "", "")
			} else {
				row = append(row, p, q)
			}
		}
		rows = append(rows, row)
	}
	return snapshot.Table{Header: header, Rows: rows}
}

func newFrame(kind models.Kind, t snapshot.Table) (*frame, error) {
	_, width := t.Shape()
	names := columnNames(t.Header, width)

	if !kind.Keyed() {
		f := &frame{labelName: positionLabel, columns: names}
		for i := range t.Rows {
			f.labels = append(f.labels, strconv.Itoa(i))
			f.cells = append(f.cells, padded(t, i, width, -1))
		}
		return f, nil
	}

	key := kind.KeyColumn()
	keyIdx := t.ColumnIndex(key)
	if keyIdx < 0 {
		return nil, fmt.Errorf("key column %q not found", key)
	}

	f := &frame{labelName: key, columns: slices.Delete(slices.Clone(names), keyIdx, keyIdx+1)}
	index := make(map[string]int, len(t.Rows))
	for i := range t.Rows {
		label := t.Cell(i, keyIdx)
		values := padded(t, i, width, keyIdx)
		if at, seen := index[label]; seen {
			// duplicate ids collapse; the last occurrence wins
			f.cells[at] = values
			continue
		}
		index[label] = len(f.labels)
		f.labels = append(f.labels, label)
		f.cells = append(f.cells, values)
	}
	return f, nil
}

// padded returns row i widened to width cells, minus the skip column (-1 for none).
func padded(t snapshot.Table, i, width, skip int) []string {
	out := make([]string, 0, width)
	for c := 0; c < width; c++ {
		if c == skip {
			continue
		}
		out = append(out, t.Cell(i, c))
	}
	return out
}

// columnNames names every column up to width; columns past the header get positional names.
func columnNames(header []string, width int) []string {
	names := make([]string, width)
	for c := range names {
		if c < len(header) && strings.TrimSpace(header[c]) != "" {
			names[c] = header[c]
		} else {
			names[c] = "column_" + strconv.Itoa(c)
		}
	}
	return names
}

// cellsEqual treats identical text as equal (including two missing values)
// and numbers that parse to the same value, so "2.5" matches "2.50".
func cellsEqual(a, b string) bool {
	if a == b {
		return true
	}
	fa, errA := strconv.ParseFloat(strings.TrimSpace(a), 64)
	fb, errB := strconv.ParseFloat(strings.TrimSpace(b), 64)
	return errA == nil && errB == nil && fa == fb
}
