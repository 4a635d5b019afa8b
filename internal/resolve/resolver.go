// Package resolve assigns each population record exactly one coordinate,
// trying the geocoder when enabled and falling back to a deterministic
// position around the district centroid.
package resolve

import (
	"context"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/zsj-atlas/zsj-cli/internal/centroid"
	"github.com/zsj-atlas/zsj-cli/internal/label"
	"github.com/zsj-atlas/zsj-cli/internal/model"
	"github.com/zsj-atlas/zsj-cli/internal/offset"
	"github.com/zsj-atlas/zsj-cli/internal/ratelimit"
	"github.com/zsj-atlas/zsj-cli/pkg/geocode"
)

// DefaultPrecision is the number of decimals kept in output coordinates.
const DefaultPrecision = 6

// Limiter gates outbound geocoding requests.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Stats counts how records were resolved.
type Stats struct {
	Geocoded         int `json:"geocoded"`
	Approximate      int `json:"approximate"`
	GeocodeFailures  int `json:"geocode_failures"`
	GeocodeMisses    int `json:"geocode_misses"`
	FallbackCentroid int `json:"fallback_centroid"`
}

// Resolver turns records into coordinates. Without a geocoder every
// coordinate is approximate and Resolve is deterministic.
type Resolver struct {
	table     *centroid.Table
	offsets   *offset.Generator
	geocoder  geocode.Client
	limiter   Limiter
	precision int
	scale     float64
	country   string

	mu      sync.Mutex
	stats   Stats
	missing map[string]struct{}
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithGeocoder enables the network path. Every lookup waits on limiter
// first; a nil limiter means a one-per-second ratelimit.Limiter.
func WithGeocoder(client geocode.Client, limiter Limiter) Option {
	return func(r *Resolver) {
		r.geocoder = client
		r.limiter = limiter
	}
}

// WithPrecision sets the number of decimals coordinates are rounded to.
func WithPrecision(decimals int) Option {
	return func(r *Resolver) {
		if decimals >= 0 {
			r.precision = decimals
		}
	}
}

// WithCountry sets the country appended to geocoding queries.
func WithCountry(country string) Option {
	return func(r *Resolver) {
		r.country = country
	}
}

// New creates a Resolver over an immutable centroid table. A nil offsets
// generator means offset.New(table, offset.DefaultRadius).
func New(table *centroid.Table, offsets *offset.Generator, opts ...Option) *Resolver {
	if offsets == nil {
		offsets = offset.New(table, offset.DefaultRadius)
	}
	r := &Resolver{
		table:     table,
		offsets:   offsets,
		precision: DefaultPrecision,
		country:   label.DefaultCountry,
		missing:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.geocoder != nil && r.limiter == nil {
		r.limiter = ratelimit.New(ratelimit.DefaultInterval)
	}
	r.scale = math.Pow(10, float64(r.precision))
	return r
}

// GeocodingEnabled reports whether Resolve may perform network I/O.
func (r *Resolver) GeocodingEnabled() bool { return r.geocoder != nil }

// Resolve returns the coordinate for rec. It never fails: geocoding
// errors and unknown districts degrade to an approximate coordinate.
func (r *Resolver) Resolve(ctx context.Context, rec model.PopulationRecord) model.ResolvedCoordinate {
	if r.geocoder != nil {
		if c, ok := r.geocode(ctx, rec); ok {
			r.count(func(s *Stats) { s.Geocoded++ })
			return c
		}
	}
	c := r.approximate(rec)
	r.count(func(s *Stats) { s.Approximate++ })
	return c
}

// Approximate returns the deterministic centroid+offset coordinate without
// touching the geocoder or the counters.
func (r *Resolver) Approximate(rec model.PopulationRecord) model.ResolvedCoordinate {
	c, _ := r.table.Resolve(rec.DistrictName)
	dx, dy := r.offsets.OffsetWithin(rec.DistrictName, rec.MicroAreaCode, r.roundingSlack())
	return model.ResolvedCoordinate{
		Longitude: r.round(c.Longitude + dx),
		Latitude:  r.round(c.Latitude + dy),
		Source:    model.CoordApproximate,
	}
}

func (r *Resolver) approximate(rec model.PopulationRecord) model.ResolvedCoordinate {
	if _, ok := r.table.Lookup(rec.DistrictName); !ok {
		r.noteMissing(rec.DistrictName)
	}
	return r.Approximate(rec)
}

func (r *Resolver) geocode(ctx context.Context, rec model.PopulationRecord) (model.ResolvedCoordinate, bool) {
	if err := r.limiter.Wait(ctx); err != nil {
		zap.L().Warn("resolve: rate limiter wait failed, using approximate",
			zap.String("zsj_kod", rec.MicroAreaCode),
			zap.Error(err),
		)
		r.count(func(s *Stats) { s.GeocodeFailures++ })
		return model.ResolvedCoordinate{}, false
	}

	query := label.Query(rec, r.country)
	res := r.geocoder.Lookup(ctx, query)

	switch res.Kind {
	case geocode.Matched:
		if !res.Valid() {
			zap.L().Warn("resolve: geocoder returned invalid coordinate, using approximate",
				zap.String("zsj_kod", rec.MicroAreaCode),
				zap.String("query", query),
				zap.Float64("lat", res.Latitude),
				zap.Float64("lon", res.Longitude),
			)
			r.count(func(s *Stats) { s.GeocodeFailures++ })
			return model.ResolvedCoordinate{}, false
		}
		return model.ResolvedCoordinate{
			Longitude: r.round(res.Longitude),
			Latitude:  r.round(res.Latitude),
			Source:    model.CoordGeocoded,
		}, true
	case geocode.NoMatch:
		zap.L().Warn("resolve: no geocoding result, using approximate",
			zap.String("zsj_kod", rec.MicroAreaCode),
			zap.String("query", query),
			zap.String("provider", res.Provider),
		)
		r.count(func(s *Stats) { s.GeocodeMisses++ })
	default:
		zap.L().Warn("resolve: geocode failed, using approximate",
			zap.String("zsj_kod", rec.MicroAreaCode),
			zap.String("query", query),
			zap.String("provider", res.Provider),
			zap.Error(res.Err),
		)
		r.count(func(s *Stats) { s.GeocodeFailures++ })
	}
	return model.ResolvedCoordinate{}, false
}

func (r *Resolver) noteMissing(district string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.FallbackCentroid++
	if _, seen := r.missing[district]; seen {
		return
	}
	r.missing[district] = struct{}{}
	zap.L().Debug("resolve: district not in centroid table, using fallback",
		zap.String("district", district),
		zap.String("fallback", r.table.Fallback().District),
	)
}

func (r *Resolver) count(fn func(*Stats)) {
	r.mu.Lock()
	fn(&r.stats)
	r.mu.Unlock()
}

// Stats returns a snapshot of the counters.
func (r *Resolver) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// roundingSlack is the largest distance rounding both axes can move a
// point.
func (r *Resolver) roundingSlack() float64 {
	return math.Sqrt2 * 0.5 / r.scale
}

func (r *Resolver) round(v float64) float64 {
	return math.Round(v*r.scale) / r.scale
}
