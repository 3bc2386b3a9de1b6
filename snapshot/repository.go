// snapshot/repository.go
package snapshot

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jszwec/csvutil"
	"golang.org/x/text/encoding/unicode"

	"github.com/gewnthar/tollwatch/models"
	"github.com/gewnthar/tollwatch/utils"
)

var ErrDirectoryNotFound = errors.New("snapshot directory does not exist")

// Repository stores dated snapshot files under a data directory and diff
// artifacts under a separate output directory.
type Repository struct {
	dataDir string
	diffDir string
	now     func() time.Time
}

type Option func(*Repository)

// WithClock overrides the clock used to date filenames.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

func NewRepository(dataDir, diffDir string, opts ...Option) *Repository {
	r := &Repository{dataDir: dataDir, diffDir: diffDir, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repository) DataDir() string { return r.dataDir }

// EnsureDir creates the data directory if it doesn't exist.
func (r *Repository) EnsureDir() error {
	if err := os.MkdirAll(r.dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory %s: %w", r.dataDir, err)
	}
	return nil
}

// SnapshotPath returns the path of today's snapshot file for kind.
func (r *Repository) SnapshotPath(kind models.Kind) string {
	return filepath.Join(r.dataDir, fmt.Sprintf("%s-%s.csv", kind, utils.DateStamp(r.now())))
}

// DiffPath returns the path of today's diff artifact for kind.
func (r *Repository) DiffPath(kind models.Kind) string {
	return filepath.Join(r.diffDir, fmt.Sprintf("%s-difference-%s.csv", kind, utils.DateStamp(r.now())))
}

// WriteMarkers rewrites today's markers snapshot in full. The file is replaced
// atomically, so readers never observe a partial snapshot.
func (r *Repository) WriteMarkers(records []models.GeoRecord) (string, error) {
	data, err := encodeRecords(models.GeoRecord{}, records)
	if err != nil {
		return "", fmt.Errorf("failed to encode markers: %w", err)
	}
	path := r.SnapshotPath(models.KindMarkers)
	if err := writeFileAtomic(path, data); err != nil {
		return "", err
	}
	slog.Info("Repository: saved markers snapshot", "path", path, "rows", len(records))
	return path, nil
}

// WriteRates appends rows to today's rate snapshot, header included on every
// call. A byte order mark is written only when the file starts out empty.
// Rows are encoded up front so the append is a single write.
func (r *Repository) WriteRates(rows []models.RateRow) (string, error) {
	data, err := encodeRecords(models.RateRow{}, rows)
	if err != nil {
		return "", fmt.Errorf("failed to encode toll rates: %w", err)
	}
	path := r.SnapshotPath(models.KindTollRates)

	if fi, err := os.Stat(path); errors.Is(err, os.ErrNotExist) || (err == nil && fi.Size() == 0) {
		if data, err = unicode.UTF8BOM.NewEncoder().Bytes(data); err != nil {
			return "", fmt.Errorf("failed to add byte order mark: %w", err)
		}
	} else if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to append to %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}

	slog.Info("Repository: saved toll rates snapshot", "path", path, "rows", len(rows))
	return path, nil
}

// WriteDiff writes a diff artifact for kind, replacing any artifact from
// earlier the same day.
func (r *Repository) WriteDiff(kind models.Kind, t Table) (string, error) {
	var buf bytes.Buffer
	if err := writeTable(&buf, t); err != nil {
		return "", fmt.Errorf("failed to encode %s diff: %w", kind, err)
	}
	data, err := unicode.UTF8BOM.NewEncoder().Bytes(buf.Bytes())
	if err != nil {
		return "", fmt.Errorf("failed to add byte order mark: %w", err)
	}
	if err := os.MkdirAll(r.diffDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create diff directory %s: %w", r.diffDir, err)
	}
	path := r.DiffPath(kind)
	if err := writeFileAtomic(path, data); err != nil {
		return "", err
	}
	slog.Info("Repository: difference file saved", "path", path, "rows", len(t.Rows))
	return path, nil
}

// ListLatestTwo returns up to two snapshot files of kind, newest first by
// modification time.
func (r *Repository) ListLatestTwo(kind models.Kind) ([]string, error) {
	if _, err := os.Stat(r.dataDir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Error("Repository: data directory does not exist", "dir", r.dataDir)
			return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, r.dataDir)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", r.dataDir, err)
	}

	matches, err := filepath.Glob(filepath.Join(r.dataDir, string(kind)+"*.csv"))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s snapshots: %w", kind, err)
	}

	type stamped struct {
		path  string
		mtime time.Time
	}
	files := make([]stamped, 0, len(matches))
	for _, m := range matches {
		fi, err := os.Stat(m)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", m, err)
		}
		files = append(files, stamped{path: m, mtime: fi.ModTime()})
	}
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].mtime.Equal(files[j].mtime) {
			return files[i].path > files[j].path
		}
		return files[i].mtime.After(files[j].mtime)
	})

	latest := make([]string, 0, 2)
	for i := 0; i < len(files) && i < 2; i++ {
		latest = append(latest, files[i].path)
	}
	slog.Info("Repository: latest files", "kind", kind, "files", latest)
	return latest, nil
}

// encodeRecords renders records as CSV with a header derived from the
// zero value, so an empty slice still yields a header line.
func encodeRecords(zero, records any) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	enc := csvutil.NewEncoder(w)
	if err := enc.EncodeHeader(zero); err != nil {
		return nil, err
	}
	if err := enc.Encode(records); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to rename %s to %s: %w", tmpName, path, err)
	}
	return nil
}
