// Package label composes the human-readable strings attached to each
// micro-area feature and the free-text query sent to geocoders.
package label

import (
	"strings"

	"github.com/zsj-atlas/zsj-cli/internal/model"
)

// DefaultCountry is appended to geocoding queries.
const DefaultCountry = "Slovakia"

// Build returns the location and full_address labels of a record. Absent
// fields are rendered as empty strings.
func Build(rec model.PopulationRecord) (location, fullAddress string) {
	location = rec.MicroAreaName + ", " + rec.MunicipalityName
	fullAddress = location + ", " + rec.DistrictName
	return location, fullAddress
}

// Query returns the geocoding query for a record: micro-area name,
// municipality, district and country, skipping blank parts.
func Query(rec model.PopulationRecord, country string) string {
	if country == "" {
		country = DefaultCountry
	}
	parts := make([]string, 0, 4)
	for _, p := range []string{rec.MicroAreaName, rec.MunicipalityName, rec.DistrictName, country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
