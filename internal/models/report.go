package models

import (
	"time"

	"github.com/benmeehan/batch-geotag/internal/constants"
)

// PhotoResult records the outcome for a single photo.
type PhotoResult struct {
	Path      string            `json:"path"`
	Outcome   constants.Outcome `json:"outcome"`
	Latitude  float64           `json:"latitude,omitempty"`
	Longitude float64           `json:"longitude,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// RunReport summarizes a whole tagging run.
type RunReport struct {
	Scanned int                       `json:"scanned"`
	Counts  map[constants.Outcome]int `json:"counts"`
	Results []PhotoResult             `json:"results"`
	Elapsed time.Duration             `json:"elapsed"`
}
