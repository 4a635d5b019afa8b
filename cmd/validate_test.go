package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zsj-atlas/zsj-cli/internal/validate"
)

func TestFormatReport(t *testing.T) {
	r := validate.Report{
		Total:      3,
		WithCoords: 2,
		Invalid:    []validate.InvalidPoint{{Code: "2040640", Name: "Hradný svah", Lon: 17.1, Lat: 95}},
		MinLat:     48.1,
		MaxLat:     95,
		MinLon:     17.1,
		MaxLon:     17.2,
	}

	var buf bytes.Buffer
	formatReport(&buf, "zsj_points_all.geojson", r)
	out := buf.String()

	assert.Contains(t, out, "zsj_points_all.geojson")
	assert.Contains(t, out, "Without coordinates:")
	assert.Contains(t, out, "2040640")
	assert.Contains(t, out, "95.000000")
	assert.NotContains(t, out, "Outside bbox")
}
