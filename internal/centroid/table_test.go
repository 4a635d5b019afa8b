package centroid

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_ContainsBoroughs(t *testing.T) {
	tbl := Default()

	for _, name := range []string{"Staré Mesto", "Ružinov", "Petržalka", "Čunovo", "Malacky"} {
		c, ok := tbl.Lookup(name)
		assert.True(t, ok, "district %s", name)
		assert.InDelta(t, 48.2, c.Latitude, 0.3)
		assert.InDelta(t, 17.1, c.Longitude, 0.4)
	}
	assert.Equal(t, "Bratislava", tbl.Fallback().District)
}

func TestLookup_Normalized(t *testing.T) {
	tbl := Default()

	exact, ok := tbl.Lookup("Staré Mesto")
	require.True(t, ok)

	for _, variant := range []string{"Stare Mesto", "staré mesto", "  STARE  MESTO "} {
		c, ok := tbl.Lookup(variant)
		assert.True(t, ok, variant)
		assert.Equal(t, exact, c)
	}
}

func TestResolve_UnknownUsesFallback(t *testing.T) {
	tbl := NewTable(
		[]Centroid{{District: "A", Longitude: 1, Latitude: 2}},
		Centroid{District: "fb", Longitude: 10, Latitude: 20},
	)

	c, ok := tbl.Resolve("Atlantis")
	assert.False(t, ok)
	assert.Equal(t, 10.0, c.Longitude)
	assert.Equal(t, 20.0, c.Latitude)

	c, ok = tbl.Resolve("a")
	assert.True(t, ok)
	assert.Equal(t, 1.0, c.Longitude)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	data := `
fallback: {district: X, lon: 19.7, lat: 48.7}
districts:
  - {district: Košice I, lon: 21.25, lat: 48.72, radius: 0.02}
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	tbl, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Len())

	c, ok := tbl.Lookup("Kosice I")
	require.True(t, ok)
	assert.InDelta(t, 0.02, c.Radius, 1e-9)
}

func TestParse_Errors(t *testing.T) {
	tests := map[string]string{
		"empty":        `fallback: {district: X, lon: 1, lat: 1}`,
		"bad range":    "fallback: {district: X, lon: 1, lat: 1}\ndistricts:\n  - {district: A, lon: 200, lat: 1}\n",
		"no fallback":  "districts:\n  - {district: A, lon: 1, lat: 1}\n",
		"invalid yaml": "districts: [",
	}
	for name, data := range tests {
		_, err := Parse([]byte(data))
		assert.Error(t, err, name)
	}

	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
