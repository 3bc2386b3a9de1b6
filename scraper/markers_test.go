package scraper

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gewnthar/tollwatch/models"
)

func placemark(name, coords string) string {
	return fmt.Sprintf(`<Placemark>
  <description><![CDATA[<table><tr><td>%s</td></tr></table>]]></description>
  <Point><coordinates> %s </coordinates></Point>
</Placemark>`, name, coords)
}

func kmlDoc(placemarks ...string) string {
	return "<kml><Document>" + strings.Join(placemarks, "\n") + "</Document></kml>"
}

func TestParseMarkers(t *testing.T) {
	doc := kmlDoc(
		placemark("Bendemeer Road (18)", "103.86172349999,1.3147611,0"),
		placemark(" Ayer Rajah Expressway (2) ", "103.7860813,1.2952946,0"),
		placemark("Temporary Gantry", "103.8,1.3,0"),
	)

	records, err := ParseMarkers(doc)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, models.GeoRecord{
		Name:      "Bendemeer Road (18)",
		Longitude: 103.8617235,
		Latitude:  1.3147611,
		ID:        "18",
	}, records[0])
	assert.Equal(t, "Ayer Rajah Expressway (2)", records[1].Name)
	assert.Equal(t, "2", records[1].ID)
	assert.Empty(t, records[2].ID, "names without a trailing numeral have no id")
}

func TestParseMarkers_CountMatchesPairs(t *testing.T) {
	for n := 0; n <= 5; n++ {
		var pms []string
		for i := 0; i < n; i++ {
			pms = append(pms, placemark(fmt.Sprintf("Plaza (%d)", i), "103.8,1.3,0"))
		}
		records, err := ParseMarkers(kmlDoc(pms...))
		require.NoError(t, err)
		assert.Len(t, records, n)
	}
}

func TestParseMarkers_ParityMismatch(t *testing.T) {
	doc := kmlDoc(placemark("Plaza (1)", "103.8,1.3,0")) + "<td>Stray cell</td>"

	_, err := ParseMarkers(doc)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParityMismatch)
	assert.Contains(t, err.Error(), "2 names, 1 coordinates")
}

func TestParseMarkers_MalformedCoordinates(t *testing.T) {
	_, err := ParseMarkers(kmlDoc(placemark("Plaza (1)", "103.8")))
	assert.ErrorIs(t, err, ErrMalformedCoordinates)

	_, err = ParseMarkers(kmlDoc(placemark("Plaza (1)", "east,1.3,0")))
	assert.ErrorIs(t, err, ErrMalformedCoordinates)
}

func TestFetchMarkers(t *testing.T) {
	f := &stubFetcher{docs: map[string]string{
		"http://erp.test/erp.kml": kmlDoc(placemark("Plaza (7)", "103.8,1.3,0")),
	}}

	records, err := FetchMarkers(context.Background(), f, "http://erp.test/erp.kml")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "7", records[0].ID)

	_, err = FetchMarkers(context.Background(), f, "http://erp.test/missing.kml")
	var fetchErr *FetchError
	assert.ErrorAs(t, err, &fetchErr)
}
