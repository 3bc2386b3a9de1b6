package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gewnthar/tollwatch/scraper"
)

func TestRun_FatalErrorReachesLogFile(t *testing.T) {
	// two names, one coordinates block
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<kml><td>Bendemeer Road (18)</td><td>Ayer Rajah Expressway (2)</td>
<coordinates>103.8617235,1.3147611,0</coordinates></kml>`)
	}))
	t.Cleanup(srv.Close)

	wd, err := os.Getwd()
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, os.Chdir(dir))
	prev := slog.Default()
	t.Cleanup(func() {
		_ = os.Chdir(wd)
		slog.SetDefault(prev)
	})

	cfgYAML := fmt.Sprintf(`sources:
  markers_kml: %[1]s/markers.kml
  category_ddl: %[1]s/ddl.html
  rate_table_url_template: %[1]s/tables/%%s_table_%%d.html
storage:
  data_directory: data
logging:
  file: run.log
database:
  enabled: false
`, srv.URL)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(cfgYAML), 0o644))

	err = run(context.Background())
	require.ErrorIs(t, err, scraper.ErrParityMismatch)

	data, err := os.ReadFile(filepath.Join(dir, "run.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Extraction run failed")
	assert.Contains(t, string(data), "2 names, 1 coordinates")
}
