// Package validate checks the coordinates of emitted GeoJSON files.
package validate

import (
	"encoding/json"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// BBox is a lon/lat rectangle.
type BBox struct {
	MinLon, MinLat, MaxLon, MaxLat float64
}

// Contains reports whether lon/lat lies inside the box, edges included.
func (b BBox) Contains(lon, lat float64) bool {
	return lon >= b.MinLon && lon <= b.MaxLon && lat >= b.MinLat && lat <= b.MaxLat
}

// ParseBBox parses "minLon,minLat,maxLon,maxLat".
func ParseBBox(s string) (*BBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, eris.Errorf("validate: bbox %q needs 4 comma-separated numbers", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, eris.Wrapf(err, "validate: bbox value %q", p)
		}
		v[i] = f
	}
	b := &BBox{MinLon: v[0], MinLat: v[1], MaxLon: v[2], MaxLat: v[3]}
	if b.MinLon > b.MaxLon || b.MinLat > b.MaxLat {
		return nil, eris.Errorf("validate: bbox %q has min greater than max", s)
	}
	return b, nil
}

// InvalidPoint is a coordinate that failed a check.
type InvalidPoint struct {
	Code string  `json:"zsj_kod"`
	Name string  `json:"zsj_nazov"`
	Lon  float64 `json:"lon"`
	Lat  float64 `json:"lat"`
}

// Report summarizes a check.
type Report struct {
	Total       int            `json:"total"`
	WithCoords  int            `json:"with_coords"`
	Invalid     []InvalidPoint `json:"invalid"`
	OutsideBBox []InvalidPoint `json:"outside_bbox,omitempty"`
	MinLat      float64        `json:"min_lat"`
	MaxLat      float64        `json:"max_lat"`
	MinLon      float64        `json:"min_lon"`
	MaxLon      float64        `json:"max_lon"`
}

// WithoutCoords returns the number of features lacking a geometry.
func (r Report) WithoutCoords() int { return r.Total - r.WithCoords }

// OK reports whether every coordinate passed.
func (r Report) OK() bool { return len(r.Invalid) == 0 && len(r.OutsideBBox) == 0 }

// CheckFile decodes a FeatureCollection and checks it.
func CheckFile(path string, bbox *BBox) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, eris.Wrapf(err, "validate: read %s", path)
	}
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return Report{}, eris.Wrapf(err, "validate: decode %s", path)
	}
	return Check(&fc, bbox), nil
}

// Check verifies that every vertex is a WGS84 lon/lat pair and, when bbox
// is set, inside it. A feature is reported once, at its first bad vertex.
func Check(fc *geojson.FeatureCollection, bbox *BBox) Report {
	r := Report{
		MinLat: math.Inf(1), MaxLat: math.Inf(-1),
		MinLon: math.Inf(1), MaxLon: math.Inf(-1),
	}

	for _, f := range fc.Features {
		if f == nil {
			continue
		}
		r.Total++
		if !hasCoords(f.Geometry) {
			continue
		}
		r.WithCoords++

		code, name := labels(f)
		invalid, outside := false, false
		forEachVertex(f.Geometry, func(lon, lat float64) {
			if !inRange(lon, lat) {
				if !invalid {
					r.Invalid = append(r.Invalid, InvalidPoint{Code: code, Name: name, Lon: lon, Lat: lat})
					invalid = true
				}
				return
			}
			r.MinLat = math.Min(r.MinLat, lat)
			r.MaxLat = math.Max(r.MaxLat, lat)
			r.MinLon = math.Min(r.MinLon, lon)
			r.MaxLon = math.Max(r.MaxLon, lon)
			if bbox != nil && !bbox.Contains(lon, lat) && !outside {
				r.OutsideBBox = append(r.OutsideBBox, InvalidPoint{Code: code, Name: name, Lon: lon, Lat: lat})
				outside = true
			}
		})
	}

	if math.IsInf(r.MinLat, 1) {
		r.MinLat, r.MaxLat, r.MinLon, r.MaxLon = 0, 0, 0, 0
	}
	return r
}

func hasCoords(g geom.T) bool {
	if g == nil {
		return false
	}
	if _, ok := g.(*geom.GeometryCollection); ok {
		return false
	}
	return len(g.FlatCoords()) > 0
}

func forEachVertex(g geom.T, fn func(lon, lat float64)) {
	flat := g.FlatCoords()
	stride := g.Stride()
	if stride < 2 {
		return
	}
	for i := 0; i+1 < len(flat); i += stride {
		fn(flat[i], flat[i+1])
	}
}

func inRange(lon, lat float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func labels(f *geojson.Feature) (code, name string) {
	code, _ = f.Properties["zsj_kod"].(string)
	if code == "" {
		code = f.ID
	}
	name, _ = f.Properties["zsj_nazov"].(string)
	if name == "" {
		name = "Unknown"
	}
	return code, name
}
