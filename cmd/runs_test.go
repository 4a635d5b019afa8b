package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/zsj-atlas/zsj-cli/internal/model"
)

func TestFormatRunsList(t *testing.T) {
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	finished := started.Add(90 * time.Second)
	runs := []model.Run{
		{
			ID:         "0123456789abcdef",
			Input:      model.RunInput{Input: "data/zsj_2021.csv", Points: true},
			Status:     model.RunStatusComplete,
			Summary:    &model.RunSummary{Records: 7512},
			StartedAt:  started,
			FinishedAt: &finished,
		},
		{
			ID:        "short",
			Input:     model.RunInput{MergePath: "bounds.geojson"},
			Status:    model.RunStatusRunning,
			StartedAt: started,
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)
	out := buf.String()

	assert.Contains(t, out, "01234567")
	assert.NotContains(t, out, "0123456789abcdef")
	assert.Contains(t, out, "data/zsj_2021.csv")
	assert.Contains(t, out, "7512")
	assert.Contains(t, out, "1m30s")
	assert.Contains(t, out, "bounds.geojson")
	assert.Contains(t, out, "running")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "abcdefgh", truncateID("abcdefghijkl"))
	assert.Equal(t, "abc", truncateID("abc"))
}
