package model

// CoordSource records which path produced a coordinate.
type CoordSource string

const (
	CoordApproximate CoordSource = "approximate"
	CoordGeocoded    CoordSource = "geocoded"
)

// ResolvedCoordinate is a WGS84 point assigned to exactly one record.
type ResolvedCoordinate struct {
	Longitude float64     `json:"longitude"`
	Latitude  float64     `json:"latitude"`
	Source    CoordSource `json:"source"`
}
