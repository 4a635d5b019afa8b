// Package offset spreads micro-areas around their district centroid with
// deterministic, hash-derived displacements.
package offset

import (
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/zsj-atlas/zsj-cli/internal/centroid"
)

// DefaultRadius is the disk radius in degrees used when neither the
// generator nor the district sets one.
const DefaultRadius = 0.01

// Generator maps (district, micro-area code) to a displacement inside a
// disk of the district's radius. It is safe for concurrent use.
type Generator struct {
	radius float64
	table  *centroid.Table
}

// New creates a Generator. A nil table means every district uses radius;
// a non-positive radius means DefaultRadius.
func New(table *centroid.Table, radius float64) *Generator {
	if radius <= 0 {
		radius = DefaultRadius
	}
	return &Generator{radius: radius, table: table}
}

// Radius returns the disk radius used for district.
func (g *Generator) Radius(district string) float64 {
	if g.table != nil {
		if c, ok := g.table.Lookup(district); ok && c.Radius > 0 {
			return c.Radius
		}
	}
	return g.radius
}

// Offset returns (dx, dy) in degrees with sqrt(dx²+dy²) <= Radius(district).
// The same code always yields the same offset, in any process: the value
// depends only on the xxhash64 of the code and the district's radius.
func (g *Generator) Offset(district, code string) (dx, dy float64) {
	return g.OffsetWithin(district, code, 0)
}

// OffsetWithin is Offset on a disk shrunk by inset degrees, never below
// zero. Callers that round the displaced point pass the worst-case
// rounding error so the rounded point stays inside Radius(district).
func (g *Generator) OffsetWithin(district, code string, inset float64) (dx, dy float64) {
	radius := g.Radius(district) - inset
	if radius <= 0 {
		return 0, 0
	}
	h := xxhash.Sum64String(code)

	// High and low 32 bits give two independent uniforms in [0, 1).
	u1 := float64(h>>32) / (1 << 32)
	u2 := float64(h&0xffffffff) / (1 << 32)

	// sqrt keeps the points uniform over the disk area instead of
	// clustering at the centre.
	r := radius * math.Sqrt(u1)
	theta := 2 * math.Pi * u2
	return r * math.Cos(theta), r * math.Sin(theta)
}
