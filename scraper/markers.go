// scraper/markers.go
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/gewnthar/tollwatch/models"
	"github.com/gewnthar/tollwatch/utils"
)

var (
	ErrParityMismatch       = errors.New("number of names and coordinates don't match")
	ErrMalformedCoordinates = errors.New("malformed coordinates block")
)

var (
	markerNameRegex  = regexp.MustCompile(`<td>([^<]+)</td>`)
	coordinatesRegex = regexp.MustCompile(`<coordinates>\s*([^<]+)\s*</coordinates>`)
	trailingIDRegex  = regexp.MustCompile(`\((\d+)\)$`)
)

// ParseMarkers extracts plaza markers from a KML document.
//
// Names (<td> cells) and <coordinates> blocks are matched independently and
// paired by position: the nth name belongs to the nth coordinates block. The
// feed is assumed to emit them in the same order; only the counts are checked.
// A count mismatch returns ErrParityMismatch.
func ParseMarkers(kml string) ([]models.GeoRecord, error) {
	names := markerNameRegex.FindAllStringSubmatch(kml, -1)
	coords := coordinatesRegex.FindAllStringSubmatch(kml, -1)

	if len(names) != len(coords) {
		return nil, fmt.Errorf("%w: %d names, %d coordinates", ErrParityMismatch, len(names), len(coords))
	}

	records := make([]models.GeoRecord, 0, len(names))
	for i := range names {
		name := strings.TrimSpace(names[i][1])
		lon, lat, err := parseCoordinates(coords[i][1])
		if err != nil {
			return nil, fmt.Errorf("marker %q: %w", name, err)
		}
		records = append(records, models.GeoRecord{
			Name:      name,
			Longitude: models.Coordinate(lon),
			Latitude:  models.Coordinate(lat),
			ID:        plazaID(name),
		})
	}
	return records, nil
}

// parseCoordinates reads "lon,lat[,alt]". Altitude is discarded.
func parseCoordinates(block string) (lon, lat float64, err error) {
	parts := strings.Split(strings.TrimSpace(block), ",")
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedCoordinates, block)
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: longitude %q", ErrMalformedCoordinates, parts[0])
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: latitude %q", ErrMalformedCoordinates, parts[1])
	}
	return utils.Round7(lon), utils.Round7(lat), nil
}

// plazaID returns the digits of a trailing "(<digits>)" suffix, or "".
func plazaID(name string) string {
	m := trailingIDRegex.FindStringSubmatch(name)
	if m == nil {
		return ""
	}
	return m[1]
}

// FetchMarkers downloads the KML document at url and parses it.
func FetchMarkers(ctx context.Context, f Fetcher, url string) ([]models.GeoRecord, error) {
	slog.InfoContext(ctx, "Scraper: fetching data from KML file", "url", url)

	body, err := f.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch markers: %w", err)
	}
	records, err := ParseMarkers(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse markers: %w", err)
	}

	slog.InfoContext(ctx, "Scraper: parsed markers", "count", len(records))
	return records, nil
}
