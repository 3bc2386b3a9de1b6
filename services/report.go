// services/report.go
package services

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/gewnthar/tollwatch/diff"
	"github.com/gewnthar/tollwatch/models"
)

// RenderResult prints the outcome of a comparison. Diffed results are followed
// by a table of the changed cells.
func RenderResult(w io.Writer, res diff.Result) error {
	if _, err := fmt.Fprintln(w, res.Summary()); err != nil {
		return err
	}
	if res.Verdict != models.VerdictDiffed {
		return nil
	}

	keyHeader := res.Kind.KeyColumn()
	if keyHeader == "" {
		keyHeader = "row"
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{keyHeader, "Column", "Previous", "Current"})
	for _, rec := range res.Records {
		t.AppendRow(table.Row{rec.Key, rec.Column, rec.Previous, rec.Current})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
	return nil
}

// RenderHistory prints recent comparison outcomes for kind, newest first.
func RenderHistory(w io.Writer, kind models.Kind, runs []models.ComparisonRun) error {
	if len(runs) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "Recent %s comparisons\n", kind); err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Compared", "Verdict", "Changed", "Artifact"})
	for _, r := range runs {
		t.AppendRow(table.Row{r.ComparedAt.Format(time.DateTime), r.Verdict, r.ChangedCells, r.ArtifactPath})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
	return nil
}
