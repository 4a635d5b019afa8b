// Package centroid holds the district reference points used to place
// micro-areas when no geocoded coordinate is available.
package centroid

import (
	_ "embed"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/zsj-atlas/zsj-cli/internal/textnorm"
)

//go:embed centroids.yaml
var defaultCentroids []byte

// Centroid is the reference point of one district. Radius, when positive,
// overrides the offset generator's default disk radius for this district.
type Centroid struct {
	District  string  `yaml:"district"`
	Longitude float64 `yaml:"lon"`
	Latitude  float64 `yaml:"lat"`
	Radius    float64 `yaml:"radius,omitempty"`
}

// Table is an immutable district -> centroid mapping with a global
// fallback. Build one with NewTable, Default, or LoadFile and pass it to
// the components that need it.
type Table struct {
	exact    map[string]Centroid
	byKey    map[string]Centroid
	fallback Centroid
}

type tableFile struct {
	Fallback  Centroid   `yaml:"fallback"`
	Districts []Centroid `yaml:"districts"`
}

// NewTable builds a table. Later entries win on duplicate names.
func NewTable(entries []Centroid, fallback Centroid) *Table {
	t := &Table{
		exact:    make(map[string]Centroid, len(entries)),
		byKey:    make(map[string]Centroid, len(entries)),
		fallback: fallback,
	}
	for _, c := range entries {
		t.exact[c.District] = c
		t.byKey[textnorm.Key(c.District)] = c
	}
	return t
}

// Default returns the embedded Bratislava region table.
func Default() *Table {
	t, err := Parse(defaultCentroids)
	if err != nil {
		panic(eris.Wrap(err, "centroid: embedded table"))
	}
	return t
}

// LoadFile reads a table from a YAML file with the embedded table's schema.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "centroid: read %s", path)
	}
	return Parse(data)
}

// Parse decodes a YAML centroid table.
func Parse(data []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "centroid: parse yaml")
	}
	if len(f.Districts) == 0 {
		return nil, eris.New("centroid: table has no districts")
	}
	for _, c := range f.Districts {
		if c.District == "" {
			return nil, eris.New("centroid: entry without district name")
		}
		if !validLonLat(c.Longitude, c.Latitude) {
			return nil, eris.Errorf("centroid: %s has out-of-range coordinate", c.District)
		}
	}
	if f.Fallback.District == "" || !validLonLat(f.Fallback.Longitude, f.Fallback.Latitude) {
		return nil, eris.New("centroid: missing or invalid fallback")
	}
	return NewTable(f.Districts, f.Fallback), nil
}

// Lookup finds a district by exact name, then by normalized name.
func (t *Table) Lookup(district string) (Centroid, bool) {
	if c, ok := t.exact[district]; ok {
		return c, true
	}
	c, ok := t.byKey[textnorm.Key(district)]
	return c, ok
}

// Resolve is Lookup that substitutes the global fallback for unknown
// districts. The bool reports whether the district itself was found.
func (t *Table) Resolve(district string) (Centroid, bool) {
	if c, ok := t.Lookup(district); ok {
		return c, true
	}
	return t.fallback, false
}

// Fallback returns the global fallback centroid.
func (t *Table) Fallback() Centroid { return t.fallback }

// Len returns the number of districts.
func (t *Table) Len() int { return len(t.exact) }

func validLonLat(lon, lat float64) bool {
	return lon >= -180 && lon <= 180 && lat >= -90 && lat <= 90
}
