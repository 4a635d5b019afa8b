package boundary

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// LoadShapefile reads polygon shapes and their code attribute. The .prj is
// not consulted; coordinates must be WGS84.
func LoadShapefile(path string) (Index, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "boundary: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.TrimRight(f.String(), "\x00")
	}
	codeIdx := codeColumnIndex(names)
	if codeIdx < 0 {
		return nil, eris.Errorf("boundary: %s has no code field (want one of %s)", path, strings.Join(codeColumns, ", "))
	}

	idx := make(Index)
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()
		code := strings.TrimSpace(strings.TrimRight(reader.Attribute(codeIdx), "\x00"))

		poly, ok := shape.(*shp.Polygon)
		if !ok {
			skipped++
			continue
		}
		if !idx.Add(code, polygonToMultiPolygon(poly)) {
			skipped++
		}
	}

	if skipped > 0 {
		zap.L().Debug("boundary: skipped shapefile records",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	return idx, nil
}

// polygonToMultiPolygon turns every ring of a shapefile polygon into its
// own polygon. Holes are not reattached to their shells.
func polygonToMultiPolygon(p *shp.Polygon) geom.T {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)
	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}

		flat := make([]float64, 0, 2*(end-start))
		for _, pt := range p.Points[start:end] {
			flat = append(flat, pt.X, pt.Y)
		}

		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(geom.NewLinearRingFlat(geom.XY, flat)); err != nil {
			zap.L().Debug("boundary: skipping malformed ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("boundary: skipping malformed polygon part", zap.Int32("part", i), zap.Error(err))
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}
