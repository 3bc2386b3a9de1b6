// services/pipeline_service.go
package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/gewnthar/tollwatch/config"
	"github.com/gewnthar/tollwatch/diff"
	"github.com/gewnthar/tollwatch/models"
	"github.com/gewnthar/tollwatch/scraper"
	"github.com/gewnthar/tollwatch/snapshot"
)

// historyLimit is how many past comparisons per kind the report shows.
const historyLimit = 5

// Ledger records snapshot writes and comparison outcomes.
type Ledger interface {
	LogSnapshotRun(run models.SnapshotRun) error
	LogComparisonRun(run models.ComparisonRun) error
	RecentComparisons(kind models.Kind, limit int) ([]models.ComparisonRun, error)
}

// Pipeline runs one extraction-and-comparison pass.
type Pipeline struct {
	cfg     *config.Config
	fetcher scraper.Fetcher
	repo    *snapshot.Repository
	ledger  Ledger // nil when the ledger is disabled
	out     io.Writer
	now     func() time.Time
}

// NewPipeline wires a pipeline. ledger may be nil. Reports go to stdout.
func NewPipeline(cfg *config.Config, fetcher scraper.Fetcher, repo *snapshot.Repository, ledger Ledger) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		fetcher: fetcher,
		repo:    repo,
		ledger:  ledger,
		out:     os.Stdout,
		now:     time.Now,
	}
}

// SetOutput redirects the console report.
func (p *Pipeline) SetOutput(w io.Writer) { p.out = w }

// Run extracts markers and rates, writes today's snapshots, then compares the
// two latest snapshots of each kind. Single rate tables that fail are skipped;
// anything else that fails aborts the run.
func (p *Pipeline) Run(ctx context.Context) error {
	slog.InfoContext(ctx, "Service: starting extraction run", "data_dir", p.repo.DataDir())

	if err := p.repo.EnsureDir(); err != nil {
		return err
	}

	records, err := scraper.FetchMarkers(ctx, p.fetcher, p.cfg.Sources.MarkersKML)
	if err != nil {
		return fmt.Errorf("marker extraction failed: %w", err)
	}
	path, err := p.repo.WriteMarkers(records)
	if err != nil {
		return fmt.Errorf("failed to save markers: %w", err)
	}
	p.recordSnapshot(ctx, models.KindMarkers, path, len(records))

	dir, err := scraper.FetchDirectory(ctx, p.fetcher, p.cfg.Sources.CategoryDDL, p.cfg.ScraperSelectors.CategorySelect, records)
	if err != nil {
		return err
	}

	rs := &scraper.RateScraper{
		Fetcher:     p.fetcher,
		URLTemplate: p.cfg.Sources.RateTableURLTmpl,
		Selector:    p.cfg.ScraperSelectors.RateTable,
	}
	rows, stats := rs.Scrape(ctx, records, dir)
	slog.InfoContext(ctx, "Service: rate scrape finished",
		"plazas", stats.Plazas,
		"tables", stats.Tables,
		"placeholders", stats.Placeholders,
		"failures", stats.Failures,
		"rows", stats.Rows,
	)
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("run interrupted: %w", err)
	}

	if len(rows) > 0 {
		path, err := p.repo.WriteRates(rows)
		if err != nil {
			return fmt.Errorf("failed to save toll rates: %w", err)
		}
		p.recordSnapshot(ctx, models.KindTollRates, path, len(rows))
	} else {
		slog.WarnContext(ctx, "Service: no toll rates scraped, skipping rate snapshot")
	}

	for _, kind := range models.Kinds {
		res, err := p.CompareLatest(ctx, kind)
		if err != nil {
			return err
		}
		if err := RenderResult(p.out, res); err != nil {
			slog.WarnContext(ctx, "Service: failed to print comparison", "kind", kind, "err", err)
		}
	}

	p.reportHistory(ctx)

	slog.InfoContext(ctx, "Service: extraction run complete")
	return nil
}

// reportHistory prints recent ledger comparisons for every kind.
func (p *Pipeline) reportHistory(ctx context.Context) {
	if p.ledger == nil {
		return
	}
	for _, kind := range models.Kinds {
		runs, err := p.ledger.RecentComparisons(kind, historyLimit)
		if err != nil {
			slog.ErrorContext(ctx, "Service: failed to read comparison history", "kind", kind, "err", err)
			continue
		}
		if err := RenderHistory(p.out, kind, runs); err != nil {
			slog.WarnContext(ctx, "Service: failed to print comparison history", "kind", kind, "err", err)
		}
	}
}

// CompareLatest compares the two newest snapshots of kind and writes a diff
// artifact when they differ. Fewer than two snapshots is not an error; the
// result carries VerdictInsufficient.
func (p *Pipeline) CompareLatest(ctx context.Context, kind models.Kind) (diff.Result, error) {
	files, err := p.repo.ListLatestTwo(kind)
	if err != nil {
		return diff.Result{}, fmt.Errorf("failed to list %s snapshots: %w", kind, err)
	}

	var res diff.Result
	if len(files) < 2 {
		res = diff.Result{
			Kind:    kind,
			Verdict: models.VerdictInsufficient,
			Reason:  fmt.Sprintf("found %d snapshot(s), need 2", len(files)),
		}
		if len(files) == 1 {
			res.CurrentPath = files[0]
		}
		slog.WarnContext(ctx, "Service: "+res.Summary())
		p.recordComparison(ctx, res, "")
		return res, nil
	}

	// files[0] is the newest.
	res, err = diff.CompareFiles(kind, files[1], files[0])
	if err != nil {
		return diff.Result{}, err
	}

	var artifact string
	switch res.Verdict {
	case models.VerdictDiffed:
		slog.WarnContext(ctx, "Service: "+res.Summary())
		artifact, err = p.repo.WriteDiff(kind, res.Artifact)
		if err != nil {
			return res, fmt.Errorf("failed to save %s difference file: %w", kind, err)
		}
	case models.VerdictIncomparable:
		slog.WarnContext(ctx, "Service: "+res.Summary())
	default:
		slog.InfoContext(ctx, "Service: "+res.Summary())
	}
	p.recordComparison(ctx, res, artifact)
	return res, nil
}

func (p *Pipeline) recordSnapshot(ctx context.Context, kind models.Kind, path string, rows int) {
	if p.ledger == nil {
		return
	}
	err := p.ledger.LogSnapshotRun(models.SnapshotRun{
		Kind:     kind,
		Path:     path,
		RowCount: rows,
		TakenAt:  p.now(),
	})
	if err != nil {
		slog.ErrorContext(ctx, "Service: failed to record snapshot in ledger", "kind", kind, "err", err)
	}
}

func (p *Pipeline) recordComparison(ctx context.Context, res diff.Result, artifact string) {
	if p.ledger == nil {
		return
	}
	err := p.ledger.LogComparisonRun(models.ComparisonRun{
		Kind:         res.Kind,
		PreviousPath: res.PreviousPath,
		CurrentPath:  res.CurrentPath,
		Verdict:      res.Verdict,
		Reason:       res.Reason,
		ChangedCells: len(res.Records),
		ArtifactPath: artifact,
		ComparedAt:   p.now(),
	})
	if err != nil {
		slog.ErrorContext(ctx, "Service: failed to record comparison in ledger", "kind", res.Kind, "err", err)
	}
}
