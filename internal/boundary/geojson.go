package boundary

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

// LoadGeoJSON reads a FeatureCollection in WGS84. The code comes from the
// first present code property, else the feature id.
func LoadGeoJSON(path string) (Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "boundary: read %s", path)
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrapf(err, "boundary: decode %s", path)
	}

	idx := make(Index, len(fc.Features))
	var skipped int
	for _, f := range fc.Features {
		if f == nil || !idx.Add(featureCode(f), f.Geometry) {
			skipped++
		}
	}
	if skipped > 0 {
		zap.L().Warn("boundary: skipped features without code or geometry",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	return idx, nil
}

func featureCode(f *geojson.Feature) string {
	lower := make(map[string]any, len(f.Properties))
	for k, v := range f.Properties {
		lower[strings.ToLower(k)] = v
	}
	for _, col := range codeColumns {
		switch c := lower[col].(type) {
		case string:
			if c != "" {
				return c
			}
		case float64:
			return strconv.FormatFloat(c, 'f', -1, 64)
		}
	}
	return f.ID
}
