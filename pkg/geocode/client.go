// Package geocode resolves free-text place queries to WGS84 points via
// Nominatim and Overpass.
package geocode

import (
	"context"
	"math"
)

// Client resolves a place query to a coordinate. Implementations never
// return an error; failures are reported in the Result.
type Client interface {
	Lookup(ctx context.Context, query string) Result
}

// Kind classifies a lookup outcome.
type Kind int

// Lookup outcomes.
const (
	NoMatch Kind = iota
	Matched
	Failed
)

// String returns the lowercase outcome name.
func (k Kind) String() string {
	switch k {
	case Matched:
		return "matched"
	case Failed:
		return "failed"
	default:
		return "no_match"
	}
}

// Result holds the outcome of a single lookup.
type Result struct {
	Kind        Kind
	Latitude    float64
	Longitude   float64
	Provider    string
	DisplayName string
	Err         error
}

// Match returns a Matched result.
func Match(provider string, lat, lon float64, displayName string) Result {
	return Result{
		Kind:        Matched,
		Latitude:    lat,
		Longitude:   lon,
		Provider:    provider,
		DisplayName: displayName,
	}
}

// Miss returns a NoMatch result.
func Miss(provider string) Result {
	return Result{Kind: NoMatch, Provider: provider}
}

// Fail returns a Failed result carrying err.
func Fail(provider string, err error) Result {
	return Result{Kind: Failed, Provider: provider, Err: err}
}

// Valid reports whether the result is Matched with a finite, in-range
// WGS84 coordinate.
func (r Result) Valid() bool {
	if r.Kind != Matched {
		return false
	}
	return ValidCoordinate(r.Latitude, r.Longitude)
}

// ValidCoordinate reports whether lat/lon is a finite WGS84 position.
func ValidCoordinate(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
