// Package boundary loads micro-area polygons and substitutes them for the
// point geometry of matching features.
package boundary

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/zsj-atlas/zsj-cli/internal/model"
)

// codeLength is the length of the census micro-area code. Boundary
// datasets prefix it with country and region digits (SK01012045520).
const codeLength = 7

// codeColumns are the attribute names that may carry the micro-area code,
// in order of preference.
var codeColumns = []string{"kod_zsj", "ic_zsj", "zsj_kod", "code"}

// Index maps normalized micro-area codes to boundary geometries.
type Index map[string]geom.T

// Add stores g under the normalized code. Blank codes and nil geometries
// are ignored; a later geometry for the same code replaces the earlier.
func (idx Index) Add(code string, g geom.T) bool {
	key := NormalizeCode(code)
	if key == "" || g == nil {
		return false
	}
	idx[key] = g
	return true
}

// Lookup returns the geometry for a code in any accepted form.
func (idx Index) Lookup(code string) (geom.T, bool) {
	g, ok := idx[NormalizeCode(code)]
	return g, ok
}

// NormalizeCode trims a code and keeps its last seven characters, so
// "SK01012045520" and "2045520" compare equal. A trailing ".0" left by
// spreadsheet exports is dropped first.
func NormalizeCode(code string) string {
	code = strings.TrimSuffix(strings.TrimSpace(code), ".0")
	r := []rune(code)
	if len(r) > codeLength {
		r = r[len(r)-codeLength:]
	}
	return string(r)
}

// MergeStats counts the outcome of a Merge.
type MergeStats struct {
	Matched   int `json:"matched"`
	Unmatched int `json:"unmatched"`
}

// Merge returns features with polygon geometry substituted where the index
// has the code. Unmatched features pass through unchanged; order is kept.
func Merge(features []model.EnrichedFeature, idx Index) ([]model.EnrichedFeature, MergeStats) {
	out := make([]model.EnrichedFeature, len(features))
	var stats MergeStats
	for i, f := range features {
		out[i] = f
		if g, ok := idx.Lookup(f.Record.MicroAreaCode); ok {
			out[i].Geometry = g
			stats.Matched++
			continue
		}
		stats.Unmatched++
	}
	return out, stats
}

// Load reads boundaries, choosing the reader by file extension.
func Load(path string) (Index, error) {
	var (
		idx Index
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		idx, err = LoadGeoJSON(path)
	case ".csv":
		idx, err = LoadWKTCSV(path)
	case ".shp":
		idx, err = LoadShapefile(path)
	default:
		return nil, eris.Errorf("boundary: unsupported file type %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	zap.L().Info("boundary: loaded polygons", zap.String("path", path), zap.Int("count", len(idx)))
	return idx, nil
}

func codeColumnIndex(names []string) int {
	lower := make([]string, len(names))
	for i, n := range names {
		lower[i] = strings.ToLower(strings.TrimSpace(n))
	}
	for _, want := range codeColumns {
		for i, n := range lower {
			if n == want {
				return i
			}
		}
	}
	return -1
}
