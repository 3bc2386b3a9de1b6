// models/ledger.go
package models

import "time"

// SnapshotRun records one snapshot file written by the pipeline.
type SnapshotRun struct {
	ID       int64     `db:"id" json:"id"`
	Kind     Kind      `db:"kind" json:"kind"`
	Path     string    `db:"path" json:"path"`
	RowCount int       `db:"row_count" json:"row_count"`
	TakenAt  time.Time `db:"taken_at" json:"taken_at"`
}

// ComparisonRun records the outcome of comparing the two latest snapshots of a kind.
type ComparisonRun struct {
	ID           int64     `db:"id" json:"id"`
	Kind         Kind      `db:"kind" json:"kind"`
	PreviousPath string    `db:"previous_path" json:"previous_path,omitempty"`
	CurrentPath  string    `db:"current_path" json:"current_path,omitempty"`
	Verdict      Verdict   `db:"verdict" json:"verdict"`
	Reason       string    `db:"reason" json:"reason,omitempty"`
	ChangedCells int       `db:"changed_cells" json:"changed_cells"`
	ArtifactPath string    `db:"artifact_path" json:"artifact_path,omitempty"` // empty unless diffed
	ComparedAt   time.Time `db:"compared_at" json:"compared_at"`
}
