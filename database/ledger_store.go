// database/ledger_store.go
package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/gewnthar/tollwatch/models"
)

// LogSnapshotRun inserts a record of a written snapshot file.
func LogSnapshotRun(run models.SnapshotRun) error {
	if DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	_, err := DB.Exec(
		`INSERT INTO snapshot_runs (kind, path, row_count, taken_at) VALUES (?, ?, ?, ?)`,
		string(run.Kind), run.Path, run.RowCount, run.TakenAt.UTC(),
	)
	if err != nil {
		slog.Error("Database: failed to log snapshot run", "kind", run.Kind, "err", err)
		return fmt.Errorf("failed to log snapshot run for %s: %w", run.Kind, err)
	}
	return nil
}

// LogComparisonRun inserts the outcome of a snapshot comparison.
func LogComparisonRun(run models.ComparisonRun) error {
	if DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	_, err := DB.Exec(`
		INSERT INTO comparison_runs (
			kind, previous_path, current_path, verdict, reason,
			changed_cells, artifact_path, compared_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(run.Kind), nullString(run.PreviousPath), nullString(run.CurrentPath),
		string(run.Verdict), nullString(run.Reason),
		run.ChangedCells, nullString(run.ArtifactPath), run.ComparedAt.UTC(),
	)
	if err != nil {
		slog.Error("Database: failed to log comparison run", "kind", run.Kind, "err", err)
		return fmt.Errorf("failed to log comparison run for %s: %w", run.Kind, err)
	}
	return nil
}

// GetRecentComparisonRuns returns up to limit comparison records for kind, newest first.
func GetRecentComparisonRuns(kind models.Kind, limit int) ([]models.ComparisonRun, error) {
	if DB == nil {
		return nil, fmt.Errorf("database connection is not initialized")
	}

	rows, err := DB.Query(`
		SELECT id, kind, previous_path, current_path, verdict, reason,
		       changed_cells, artifact_path, compared_at
		FROM comparison_runs
		WHERE kind = ?
		ORDER BY compared_at DESC, id DESC
		LIMIT ?`, string(kind), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query comparison_runs: %w", err)
	}
	defer rows.Close()

	var runs []models.ComparisonRun
	for rows.Next() {
		var (
			r                          models.ComparisonRun
			kindStr, verdict           string
			prevPath, currPath, reason sql.NullString
			artifactPath               sql.NullString
		)
		if err := rows.Scan(
			&r.ID, &kindStr, &prevPath, &currPath, &verdict, &reason,
			&r.ChangedCells, &artifactPath, &r.ComparedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan comparison run: %w", err)
		}
		r.Kind = models.Kind(kindStr)
		r.Verdict = models.Verdict(verdict)
		r.PreviousPath = prevPath.String
		r.CurrentPath = currPath.String
		r.Reason = reason.String
		r.ArtifactPath = artifactPath.String
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comparison runs: %w", err)
	}
	return runs, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Ledger exposes the package-level store through the pipeline's ledger interface.
type Ledger struct{}

func (Ledger) LogSnapshotRun(run models.SnapshotRun) error { return LogSnapshotRun(run) }
func (Ledger) LogComparisonRun(run models.ComparisonRun) error { return LogComparisonRun(run) }

func (Ledger) RecentComparisons(kind models.Kind, limit int) ([]models.ComparisonRun, error) {
	return GetRecentComparisonRuns(kind, limit)
}
