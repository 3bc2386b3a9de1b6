package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gewnthar/tollwatch/config"
	"github.com/gewnthar/tollwatch/models"
)

func openTestLedger(t *testing.T) {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "ledger", "ledger.db")
	require.NoError(t, InitDB(config.DatabaseConfig{Enabled: true, Driver: "sqlite", DSN: dsn}))
	t.Cleanup(CloseDB)
	assert.FileExists(t, dsn)
}

func countSnapshotRuns(t *testing.T, kind models.Kind) int {
	t.Helper()
	var n int
	require.NoError(t, DB.QueryRow(`SELECT COUNT(*) FROM snapshot_runs WHERE kind = ?`, string(kind)).Scan(&n))
	return n
}

func TestLedger_RoundTrip(t *testing.T) {
	openTestLedger(t)
	base := time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC)

	require.NoError(t, LogSnapshotRun(models.SnapshotRun{Kind: models.KindMarkers, Path: "data/markers-2026-10-19.csv", RowCount: 80, TakenAt: base}))
	require.NoError(t, LogSnapshotRun(models.SnapshotRun{Kind: models.KindMarkers, Path: "data/markers-2026-10-20.csv", RowCount: 81, TakenAt: base.Add(24 * time.Hour)}))

	assert.Equal(t, 2, countSnapshotRuns(t, models.KindMarkers))
	assert.Zero(t, countSnapshotRuns(t, models.KindTollRates))

	var l Ledger
	require.NoError(t, l.LogComparisonRun(models.ComparisonRun{
		Kind:       models.KindTollRates,
		Verdict:    models.VerdictInsufficient,
		Reason:     "found 1 snapshot(s), need 2",
		ComparedAt: base,
	}))
	require.NoError(t, l.LogComparisonRun(models.ComparisonRun{
		Kind:         models.KindTollRates,
		PreviousPath: "data/toll-rates-2026-10-19.csv",
		CurrentPath:  "data/toll-rates-2026-10-20.csv",
		Verdict:      models.VerdictDiffed,
		ChangedCells: 3,
		ArtifactPath: "toll-rates-difference-2026-10-20.csv",
		ComparedAt:   base.Add(24 * time.Hour),
	}))

	runs, err := l.RecentComparisons(models.KindTollRates, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, models.VerdictDiffed, runs[0].Verdict)
	assert.Equal(t, 3, runs[0].ChangedCells)
	assert.Equal(t, "toll-rates-difference-2026-10-20.csv", runs[0].ArtifactPath)
	assert.Empty(t, runs[0].Reason)
	assert.True(t, runs[0].ComparedAt.Equal(base.Add(24*time.Hour)))

	assert.Equal(t, models.VerdictInsufficient, runs[1].Verdict)
	assert.Empty(t, runs[1].PreviousPath)

	runs, err = GetRecentComparisonRuns(models.KindMarkers, 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestLedger_NotInitialized(t *testing.T) {
	CloseDB()
	assert.Error(t, LogSnapshotRun(models.SnapshotRun{Kind: models.KindMarkers}))
	assert.Error(t, LogComparisonRun(models.ComparisonRun{Kind: models.KindMarkers}))
	_, err := GetRecentComparisonRuns(models.KindMarkers, 1)
	assert.Error(t, err)
}

func TestInitDB_UnsupportedDriver(t *testing.T) {
	err := InitDB(config.DatabaseConfig{Driver: "postgres"})
	assert.ErrorContains(t, err, "unsupported database driver")
	assert.Nil(t, DB)
}
