package validate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

func point(code string, lon, lat float64) *geojson.Feature {
	return &geojson.Feature{
		ID:         code,
		Geometry:   geom.NewPointFlat(geom.XY, []float64{lon, lat}),
		Properties: map[string]any{"zsj_kod": code, "zsj_nazov": "ZSJ " + code},
	}
}

func TestCheck_AllValid(t *testing.T) {
	fc := &geojson.FeatureCollection{Features: []*geojson.Feature{
		point("1", 17.10, 48.14),
		point("2", 17.20, 48.20),
		{ID: "3", Properties: map[string]any{}},
	}}

	r := Check(fc, nil)
	assert.True(t, r.OK())
	assert.Equal(t, 3, r.Total)
	assert.Equal(t, 2, r.WithCoords)
	assert.Equal(t, 1, r.WithoutCoords())
	assert.InDelta(t, 48.14, r.MinLat, 1e-12)
	assert.InDelta(t, 48.20, r.MaxLat, 1e-12)
	assert.InDelta(t, 17.10, r.MinLon, 1e-12)
	assert.InDelta(t, 17.20, r.MaxLon, 1e-12)
}

func TestCheck_OutOfRange(t *testing.T) {
	fc := &geojson.FeatureCollection{Features: []*geojson.Feature{
		point("1", 17.1, 48.1),
		point("2", 48.1, 170.0),
		point("3", -181, 0),
	}}

	r := Check(fc, nil)
	assert.False(t, r.OK())
	require.Len(t, r.Invalid, 2)
	assert.Equal(t, InvalidPoint{Code: "2", Name: "ZSJ 2", Lon: 48.1, Lat: 170.0}, r.Invalid[0])
	assert.Equal(t, "3", r.Invalid[1].Code)
}

func TestCheck_BBox(t *testing.T) {
	bbox, err := ParseBBox("16.8,47.9,17.4,48.4")
	require.NoError(t, err)

	fc := &geojson.FeatureCollection{Features: []*geojson.Feature{
		point("1", 17.1, 48.1),
		point("2", 19.1, 48.7),
	}}
	r := Check(fc, bbox)
	assert.Empty(t, r.Invalid)
	require.Len(t, r.OutsideBBox, 1)
	assert.Equal(t, "2", r.OutsideBBox[0].Code)
	assert.False(t, r.OK())
}

func TestCheck_PolygonVertices(t *testing.T) {
	poly := geom.NewPolygonFlat(geom.XY, []float64{17.1, 48.1, 17.2, 48.1, 17.2, 95.0, 17.1, 48.1}, []int{8})
	fc := &geojson.FeatureCollection{Features: []*geojson.Feature{
		{ID: "9", Geometry: poly, Properties: map[string]any{}},
	}}
	r := Check(fc, nil)
	require.Len(t, r.Invalid, 1)
	assert.Equal(t, "9", r.Invalid[0].Code)
	assert.Equal(t, "Unknown", r.Invalid[0].Name)
}

func TestCheck_Empty(t *testing.T) {
	r := Check(&geojson.FeatureCollection{}, nil)
	assert.True(t, r.OK())
	assert.Zero(t, r.MinLat)
}

func TestCheckFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pts.geojson")
	require.NoError(t, os.WriteFile(path, []byte(`{"type":"FeatureCollection","features":[
		{"type":"Feature","id":"2040640","geometry":{"type":"Point","coordinates":[17.1,48.14]},"properties":{"zsj_nazov":"Hradný svah"}}
	]}`), 0o644))

	r, err := CheckFile(path, nil)
	require.NoError(t, err)
	assert.True(t, r.OK())
	assert.Equal(t, 1, r.WithCoords)

	_, err = CheckFile(filepath.Join(t.TempDir(), "missing.geojson"), nil)
	assert.Error(t, err)
}

func TestParseBBox_Errors(t *testing.T) {
	for _, s := range []string{"", "1,2,3", "a,b,c,d", "2,0,1,1"} {
		_, err := ParseBBox(s)
		assert.Error(t, err, s)
	}
}
