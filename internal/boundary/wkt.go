package boundary

import (
	"context"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/wkt"
	"go.uber.org/zap"

	"github.com/zsj-atlas/zsj-cli/internal/fetcher"
)

// geomColumns name the WKT column, in order of preference.
var geomColumns = []string{"geom", "geometry", "wkt", "the_geom"}

// LoadWKTCSV reads a CSV with a WKT geometry column and a code column.
// Geometries must already be in WGS84 lon/lat.
func LoadWKTCSV(path string) (Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "boundary: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	rows, err := fetcher.ReadCSV(context.Background(), f, fetcher.CSVOptions{Delimiter: ','})
	if err != nil {
		return nil, eris.Wrapf(err, "boundary: read %s", path)
	}
	if len(rows) == 0 {
		return nil, eris.Errorf("boundary: %s is empty", path)
	}

	header := rows[0]
	codeIdx := codeColumnIndex(header)
	if codeIdx < 0 {
		return nil, eris.Errorf("boundary: %s has no code column (want one of %s)", path, strings.Join(codeColumns, ", "))
	}
	geomIdx := geomColumnIndex(header)
	if geomIdx < 0 {
		return nil, eris.Errorf("boundary: %s has no geometry column", path)
	}

	idx := make(Index, len(rows)-1)
	var failed int
	for i, row := range rows[1:] {
		if geomIdx >= len(row) || codeIdx >= len(row) {
			failed++
			continue
		}
		g, err := wkt.Unmarshal(row[geomIdx])
		if err != nil {
			failed++
			if failed <= 5 {
				zap.L().Warn("boundary: bad WKT", zap.Int("line", i+2), zap.Error(err))
			}
			continue
		}
		if !idx.Add(row[codeIdx], g) {
			failed++
		}
	}
	if failed > 0 {
		zap.L().Warn("boundary: skipped rows", zap.String("path", path), zap.Int("skipped", failed))
	}
	return idx, nil
}

func geomColumnIndex(header []string) int {
	for _, want := range geomColumns {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), want) {
				return i
			}
		}
	}
	return -1
}
