package model

import (
	"github.com/twpayne/go-geom"
)

// GeoJSON property names for the synthesized fields.
const (
	PropLocation    = "location"
	PropFullAddress = "full_address"
	PropCoordSource = "coord_source"
)

// EnrichedFeature is a population record with its resolved coordinate and
// labels. Geometry is nil for point features; the boundary merge sets it
// to the micro-area polygon.
type EnrichedFeature struct {
	Record      PopulationRecord
	Coordinate  ResolvedCoordinate
	Location    string
	FullAddress string
	Geometry    geom.T
}

// Point returns the feature's coordinate as a WGS84 point, [lon, lat].
func (f EnrichedFeature) Point() *geom.Point {
	return geom.NewPointFlat(geom.XY, []float64{f.Coordinate.Longitude, f.Coordinate.Latitude}).SetSRID(4326)
}

// Shape returns the polygon set by a merge, or the point otherwise.
func (f EnrichedFeature) Shape() geom.T {
	if f.Geometry != nil {
		return f.Geometry
	}
	return f.Point()
}

// Properties returns the GeoJSON properties of the feature.
func (f EnrichedFeature) Properties() map[string]any {
	r := f.Record
	return map[string]any{
		"kraj_nazov":       r.RegionName,
		"okres_nazov":      r.DistrictName,
		"obec_nazov":       r.MunicipalityName,
		"zsj_kod":          r.MicroAreaCode,
		"zsj_nazov":        r.MicroAreaName,
		"pop_trvaly_pobyt": r.PopPermanent,
		"pop_inde_sr":      r.PopElsewhereDomestic,
		"pop_zahranicie":   r.PopAbroad,
		"pop_total":        r.PopTotal,
		PropLocation:       f.Location,
		PropFullAddress:    f.FullAddress,
		PropCoordSource:    string(f.Coordinate.Source),
	}
}

// FeatureFromProperties rebuilds a feature from decoded GeoJSON properties.
// Numbers decoded from JSON arrive as float64; strings may be absent.
func FeatureFromProperties(props map[string]any, lon, lat float64) EnrichedFeature {
	return EnrichedFeature{
		Record: PopulationRecord{
			RegionName:           stringProp(props, "kraj_nazov"),
			DistrictName:         stringProp(props, "okres_nazov"),
			MunicipalityName:     stringProp(props, "obec_nazov"),
			MicroAreaCode:        stringProp(props, "zsj_kod"),
			MicroAreaName:        stringProp(props, "zsj_nazov"),
			PopPermanent:         intProp(props, "pop_trvaly_pobyt"),
			PopElsewhereDomestic: intProp(props, "pop_inde_sr"),
			PopAbroad:            intProp(props, "pop_zahranicie"),
			PopTotal:             intProp(props, "pop_total"),
		},
		Coordinate: ResolvedCoordinate{
			Longitude: lon,
			Latitude:  lat,
			Source:    CoordSource(stringProp(props, PropCoordSource)),
		},
		Location:    stringProp(props, PropLocation),
		FullAddress: stringProp(props, PropFullAddress),
	}
}

func stringProp(props map[string]any, key string) string {
	s, _ := props[key].(string)
	return s
}

func intProp(props map[string]any, key string) int {
	switch v := props[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	default:
		return 0
	}
}
