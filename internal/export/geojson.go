// Package export reads and writes the GeoJSON FeatureCollection files
// produced by a batch run.
package export

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zsj-atlas/zsj-cli/internal/model"
)

// Default file name prefixes.
const (
	PointsPrefix   = "zsj_points"
	PolygonsPrefix = "zsj_polygons"
)

// FileName returns "<prefix>_<subset>.geojson".
func FileName(prefix string, subset model.Subset) string {
	return prefix + "_" + string(subset) + ".geojson"
}

// Collection converts features to a GeoJSON FeatureCollection. Feature ids
// are micro-area codes.
func Collection(features []model.EnrichedFeature) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(features))}
	for _, f := range features {
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         f.Record.MicroAreaCode,
			Geometry:   f.Shape(),
			Properties: f.Properties(),
		})
	}
	return fc
}

// WriteCollection writes features to path, replacing any existing file
// only once the new content is complete.
func WriteCollection(path string, features []model.EnrichedFeature) error {
	data, err := json.Marshal(Collection(features))
	if err != nil {
		return eris.Wrapf(err, "export: encode %s", path)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "export: create dir %s", dir)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*.geojson")
	if err != nil {
		return eris.Wrap(err, "export: create temp file")
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	w := bufio.NewWriter(tmp)
	if _, err := w.Write(data); err != nil {
		_ = tmp.Close()
		return eris.Wrapf(err, "export: write %s", path)
	}
	if err := w.Flush(); err != nil {
		_ = tmp.Close()
		return eris.Wrapf(err, "export: flush %s", path)
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrapf(err, "export: close %s", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return eris.Wrapf(err, "export: rename to %s", path)
	}
	return nil
}

// WriteAll writes one file per subset into dir concurrently and returns the
// written paths in subset order.
func WriteAll(ctx context.Context, dir, prefix string, parts map[model.Subset][]model.EnrichedFeature) ([]string, error) {
	subsets := model.AllSubsets()
	paths := make([]string, len(subsets))

	g, gctx := errgroup.WithContext(ctx)
	for i, s := range subsets {
		path := filepath.Join(dir, FileName(prefix, s))
		paths[i] = path
		features := parts[s]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := WriteCollection(path, features); err != nil {
				return err
			}
			zap.L().Info("export: wrote collection",
				zap.String("path", path),
				zap.Int("features", len(features)),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "export: write all")
	}
	return paths, nil
}

// ReadCollection decodes a FeatureCollection written by WriteCollection.
// Point geometries become the feature coordinate; any other geometry is
// kept as the feature's shape.
func ReadCollection(path string) ([]model.EnrichedFeature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "export: read %s", path)
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrapf(err, "export: decode %s", path)
	}

	out := make([]model.EnrichedFeature, 0, len(fc.Features))
	for i, gf := range fc.Features {
		if gf == nil {
			continue
		}
		var lon, lat float64
		var shape geom.T
		switch g := gf.Geometry.(type) {
		case *geom.Point:
			lon, lat = g.X(), g.Y()
		case nil:
			zap.L().Warn("export: feature without geometry", zap.String("path", path), zap.Int("index", i))
		default:
			shape = g
		}

		f := model.FeatureFromProperties(gf.Properties, lon, lat)
		if f.Record.MicroAreaCode == "" {
			f.Record.MicroAreaCode = gf.ID
		}
		f.Geometry = shape
		out = append(out, f)
	}
	return out, nil
}

// ReadAll reads every subset file with prefix from dir. Missing files are
// an error.
func ReadAll(dir, prefix string) (map[model.Subset][]model.EnrichedFeature, error) {
	out := make(map[model.Subset][]model.EnrichedFeature, len(model.AllSubsets()))
	for _, s := range model.AllSubsets() {
		features, err := ReadCollection(filepath.Join(dir, FileName(prefix, s)))
		if err != nil {
			return nil, err
		}
		out[s] = features
	}
	return out, nil
}
