// scraper/rates.go
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/gewnthar/tollwatch/models"
	"github.com/gewnthar/tollwatch/utils"
)

// placeholderRowCount is the row count of the upstream "not applicable" table
// template. It is a convention of the source pages, not a property of rate
// tables in general; revisit it if the upstream template changes.
const placeholderRowCount = 3

var ErrTableNotFound = errors.New("rate table not found")

// decimalRateRegex accepts plain decimal amounts only; ParseFloat alone would
// also take NaN, Inf and hex floats.
var decimalRateRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// TableRow is one (time window, rate) row of a rate table.
type TableRow struct {
	TimeWindow string
	Rate       models.Rate
}

// ParseRateTable parses one rate table document. ok is false when the table is
// the upstream placeholder (exactly placeholderRowCount rows). Rows without <td>
// cells are header rows and are skipped; a row with a single cell is an error.
func ParseRateTable(html, selector string) (rows []TableRow, ok bool, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, false, fmt.Errorf("failed to parse rate table document: %w", err)
	}

	table := doc.Find(selector).First()
	if table.Length() == 0 {
		return nil, false, fmt.Errorf("%w: selector %q", ErrTableNotFound, selector)
	}

	trs := table.Find("tr")
	if trs.Length() == placeholderRowCount {
		return nil, false, nil
	}

	trs.EachWithBreak(func(i int, tr *goquery.Selection) bool {
		cells := tr.Find("td")
		switch cells.Length() {
		case 0:
			return true
		case 1:
			err = fmt.Errorf("row %d has a single cell", i)
			return false
		}
		rows = append(rows, TableRow{
			TimeWindow: strings.TrimSpace(cells.Eq(0).Text()),
			Rate:       ParseRate(cells.Eq(1).Text()),
		})
		return true
	})
	if err != nil {
		return nil, false, err
	}
	return rows, true, nil
}

// ParseRate converts a rate cell such as "$3.50" to a Rate. Text that is not a
// number after the currency marker is stripped ("Free", "-") is a missing rate.
func ParseRate(cell string) models.Rate {
	text := utils.StripCurrency(cell)
	if !decimalRateRegex.MatchString(text) {
		return models.Rate{}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return models.Rate{}
	}
	return models.NewRate(f)
}

// ScrapeStats summarises one pass over the plaza × category matrix.
type ScrapeStats struct {
	Plazas       int
	Tables       int
	Placeholders int
	Failures     int
	Rows         int
}

// RateScraper fetches and merges the rate table of every (plaza, category) pair.
type RateScraper struct {
	Fetcher     Fetcher
	URLTemplate string // fmt template taking the plaza id (%s) and category index (%d)
	Selector    string
}

// TableURL builds the URL of the rate table for one plaza and category.
func (s *RateScraper) TableURL(plazaID string, categoryIdx int) string {
	return fmt.Sprintf(s.URLTemplate, plazaID, categoryIdx)
}

// Scrape walks every plaza in records order and every category index, and
// returns the merged rows in plaza-then-category order. A table that fails to
// fetch or parse is logged and skipped; it never aborts the scrape.
func (s *RateScraper) Scrape(ctx context.Context, records []models.GeoRecord, dir *Directory) ([]models.RateRow, ScrapeStats) {
	var (
		all   []models.RateRow
		stats ScrapeStats
	)
	for _, rec := range records {
		if ctx.Err() != nil {
			slog.WarnContext(ctx, "Scraper: scrape interrupted", "err", ctx.Err())
			break
		}
		if rec.ID == "" {
			slog.DebugContext(ctx, "Scraper: skipping marker without plaza id", "name", rec.Name)
			continue
		}
		stats.Plazas++
		all = s.scrapePlaza(ctx, rec.ID, dir, all, &stats)
	}
	stats.Rows = len(all)
	return all, stats
}

// scrapePlaza appends the resolved rows of every category table for one plaza to acc.
func (s *RateScraper) scrapePlaza(ctx context.Context, plazaID string, dir *Directory, acc []models.RateRow, stats *ScrapeStats) []models.RateRow {
	var plazaRows []models.RateRow

	for j := 0; j < CategoryCount; j++ {
		url := s.TableURL(plazaID, j)
		stats.Tables++

		body, err := s.Fetcher.Fetch(ctx, url)
		if err != nil {
			stats.Failures++
			slog.WarnContext(ctx, "Scraper: failed to fetch data from URL", "url", url, "err", err)
			continue
		}
		rows, ok, err := ParseRateTable(body, s.Selector)
		if err != nil {
			stats.Failures++
			slog.WarnContext(ctx, "Scraper: failed to parse rate table", "url", url, "err", err)
			continue
		}
		if !ok {
			stats.Placeholders++
			continue
		}

		for _, r := range rows {
			plazaRows = append(plazaRows, models.RateRow{
				PlazaID:       plazaID,
				CategoryIndex: j,
				TimeWindow:    r.TimeWindow,
				Rate:          r.Rate,
			})
		}
	}

	for i := range plazaRows {
		resolveRow(&plazaRows[i], dir)
	}
	return append(acc, plazaRows...)
}

func resolveRow(row *models.RateRow, dir *Directory) {
	row.PlazaName = dir.PlazaName(row.PlazaID)
	row.VehicleCategory, row.Applicability = utils.SplitCategoryLabel(dir.Category(row.CategoryIndex))
}
