// scraper/categories.go
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/gewnthar/tollwatch/models"
)

// CategoryCount is the fixed number of vehicle categories in the upstream schedule.
const CategoryCount = 8

var ErrCategoryCountMismatch = errors.New("category vocabulary does not hold 8 entries")

// Directory resolves raw plaza ids and category indices to display labels.
type Directory struct {
	PlazaNames map[string]string
	Categories [CategoryCount]string
}

// PlazaName returns the display name for id, or id itself when unknown.
func (d *Directory) PlazaName(id string) string {
	if name, ok := d.PlazaNames[id]; ok {
		return name
	}
	return id
}

// Category returns the label for a category index, or the index as text when out of range.
func (d *Directory) Category(idx int) string {
	if idx < 0 || idx >= CategoryCount {
		return strconv.Itoa(idx)
	}
	return d.Categories[idx]
}

// BuildDirectory pairs plaza ids with names (later duplicates overwrite earlier
// ones) and reads the category labels from the vocabulary document's select
// control. The first line of the select text is a placeholder and is dropped;
// the next CategoryCount lines are the labels for indices 0..7.
func BuildDirectory(records []models.GeoRecord, vocabularyHTML, selector string) (*Directory, error) {
	dir := &Directory{PlazaNames: make(map[string]string, len(records))}
	for _, r := range records {
		dir.PlazaNames[r.ID] = r.Name
	}

	labels, err := parseCategoryLabels(vocabularyHTML, selector)
	if err != nil {
		return nil, err
	}
	copy(dir.Categories[:], labels)
	return dir, nil
}

func parseCategoryLabels(vocabularyHTML, selector string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(vocabularyHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse category document: %w", err)
	}

	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil, fmt.Errorf("%w: no element matches %q", ErrCategoryCountMismatch, selector)
	}

	text := strings.ReplaceAll(sel.Text(), "\r", "")
	lines := strings.Split(text, "\n")
	if len(lines) > 0 {
		lines = lines[1:]
	}
	if len(lines) < CategoryCount {
		return nil, fmt.Errorf("%w: found %d", ErrCategoryCountMismatch, len(lines))
	}

	labels := make([]string, CategoryCount)
	for i := range labels {
		labels[i] = strings.TrimSpace(lines[i])
	}
	return labels, nil
}

// FetchDirectory downloads the category vocabulary and builds the directory.
func FetchDirectory(ctx context.Context, f Fetcher, url, selector string, records []models.GeoRecord) (*Directory, error) {
	body, err := f.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch category vocabulary: %w", err)
	}
	dir, err := BuildDirectory(records, body, selector)
	if err != nil {
		return nil, fmt.Errorf("error in creating category dictionary: %w", err)
	}
	slog.InfoContext(ctx, "Scraper: category dictionary created", "plazas", len(dir.PlazaNames))
	return dir, nil
}
