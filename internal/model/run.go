package model

import "time"

// RunStatus represents the state of a batch run in the run ledger.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// RunInput describes how a batch run was started.
type RunInput struct {
	Input     string `json:"input"`
	OutputDir string `json:"output_dir"`
	Points    bool   `json:"points"`
	Geocode   bool   `json:"geocode"`
	MergePath string `json:"merge_path,omitempty"`
}

// RunSummary holds the counters reported at the end of a run.
type RunSummary struct {
	Records          int            `json:"records"`
	Malformed        int            `json:"malformed"`
	Geocoded         int            `json:"geocoded"`
	Approximate      int            `json:"approximate"`
	GeocodeFailures  int            `json:"geocode_failures"`
	GeocodeMisses    int            `json:"geocode_misses"`
	FallbackCentroid int            `json:"fallback_centroid"`
	Merged           int            `json:"merged"`
	SubsetCounts     map[Subset]int `json:"subset_counts,omitempty"`
}

// Run is one invocation of the batch recorded in the run ledger.
type Run struct {
	ID         string      `json:"id"`
	Input      RunInput    `json:"input"`
	Status     RunStatus   `json:"status"`
	Summary    *RunSummary `json:"summary,omitempty"`
	Error      string      `json:"error,omitempty"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt *time.Time  `json:"finished_at,omitempty"`
}
