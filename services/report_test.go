package services

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gewnthar/tollwatch/diff"
	"github.com/gewnthar/tollwatch/models"
)

func TestRenderResult_Diffed(t *testing.T) {
	res := diff.Result{
		Kind:    models.KindMarkers,
		Verdict: models.VerdictDiffed,
		Records: []models.DiffRecord{
			{Key: "18", Column: "Name", Previous: "Bendemeer Road (18)", Current: "Bendemeer Rd (18)"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderResult(&buf, res))

	out := buf.String()
	assert.Contains(t, out, "Difference found in markers data: 1 changed cells")
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "Bendemeer Rd (18)")
	assert.Contains(t, out, "╭")
}

func TestRenderResult_SummaryOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderResult(&buf, diff.Result{Kind: models.KindTollRates, Verdict: models.VerdictNoChange}))
	assert.Equal(t, "No change in toll-rates data\n", buf.String())
}

func TestRenderHistory(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderHistory(&buf, models.KindTollRates, nil))
	assert.Empty(t, buf.String())

	runs := []models.ComparisonRun{{
		Kind:         models.KindTollRates,
		Verdict:      models.VerdictDiffed,
		ChangedCells: 3,
		ArtifactPath: "toll-rates-difference-2026-10-19.csv",
		ComparedAt:   time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC),
	}}
	require.NoError(t, RenderHistory(&buf, models.KindTollRates, runs))
	out := buf.String()
	assert.Contains(t, out, "Recent toll-rates comparisons")
	assert.Contains(t, out, "2026-10-19 09:00:00")
	assert.Contains(t, out, "toll-rates-difference-2026-10-19.csv")
}
