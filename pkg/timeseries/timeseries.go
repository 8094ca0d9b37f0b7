package timeseries

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// ErrEmptySeries is returned when an operation needs at least one sample.
var ErrEmptySeries = errors.New("timeseries: series is empty")

// Sample is a single timestamped coordinate observation.
type Sample struct {
	Timestamp time.Time
	Latitude  float64 // Decimal degrees, [-90, 90]
	Longitude float64 // Decimal degrees, [-180, 180]
	Accuracy  float64 // Reported accuracy in meters, 0 when the source has none
}

// Series holds validated coordinate samples in ascending timestamp order.
type Series struct {
	samples []Sample
}

// NewSeries validates the given samples and returns them as an ordered series.
// Input order does not matter; duplicate timestamps are allowed and input order
// is preserved between them.
func NewSeries(samples []Sample) (*Series, error) {
	sorted := make([]Sample, len(samples))
	copy(sorted, samples)

	for i, s := range sorted {
		if err := validateSample(s); err != nil {
			return nil, fmt.Errorf("timeseries: sample %d: %w", i, err)
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	return &Series{samples: sorted}, nil
}

func validateSample(s Sample) error {
	if s.Timestamp.IsZero() {
		return errors.New("missing timestamp")
	}
	if math.IsNaN(s.Latitude) || math.IsInf(s.Latitude, 0) || s.Latitude < -90 || s.Latitude > 90 {
		return fmt.Errorf("latitude %v out of range", s.Latitude)
	}
	if math.IsNaN(s.Longitude) || math.IsInf(s.Longitude, 0) || s.Longitude < -180 || s.Longitude > 180 {
		return fmt.Errorf("longitude %v out of range", s.Longitude)
	}
	if math.IsNaN(s.Accuracy) || math.IsInf(s.Accuracy, 0) || s.Accuracy < 0 {
		return fmt.Errorf("accuracy %v out of range", s.Accuracy)
	}
	return nil
}

// Len returns the number of samples in the series.
func (s *Series) Len() int {
	return len(s.samples)
}

// Samples returns the samples in ascending timestamp order.
func (s *Series) Samples() []Sample {
	return s.samples
}

// InZone returns a copy of the series with every timestamp expressed in loc.
// The absolute instants are unchanged, only the clock they are displayed on.
func (s *Series) InZone(loc *time.Location) *Series {
	samples := make([]Sample, len(s.samples))
	copy(samples, s.samples)
	for i := range samples {
		samples[i].Timestamp = samples[i].Timestamp.In(loc)
	}
	return &Series{samples: samples}
}
