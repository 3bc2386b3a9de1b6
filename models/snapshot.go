// models/snapshot.go
package models

// Kind identifies a family of snapshot files. The string value doubles as the
// filename prefix in the data directory.
type Kind string

const (
	KindMarkers   Kind = "markers"
	KindTollRates Kind = "toll-rates"
)

// Kinds lists every snapshot kind in the order the pipeline compares them.
var Kinds = []Kind{KindMarkers, KindTollRates}

// Keyed reports whether rows of this kind are aligned by a key column rather
// than by position.
func (k Kind) Keyed() bool {
	return k == KindMarkers
}

// KeyColumn is the column rows are indexed by, or "" for positional kinds.
func (k Kind) KeyColumn() string {
	if k == KindMarkers {
		return "id"
	}
	return ""
}

func (k Kind) String() string { return string(k) }

// Verdict is the terminal state of a comparison.
type Verdict string

const (
	VerdictIncomparable Verdict = "incomparable"
	VerdictNoChange     Verdict = "no_change"
	VerdictDiffed       Verdict = "diffed"
	VerdictInsufficient Verdict = "insufficient" // fewer than two snapshots on disk
)

// DiffRecord is one changed (row, column) position between two snapshots.
type DiffRecord struct {
	Key      string // id for keyed kinds, 0-based row index otherwise
	Column   string
	Previous string
	Current  string
}
