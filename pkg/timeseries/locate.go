package timeseries

import (
	"time"
)

// Reason explains why a query instant could not be matched.
type Reason string

const (
	ReasonOutOfRange Reason = "out_of_range" // Query falls outside the grid's acceptance window
	ReasonNoData     Reason = "no_data"      // Query resolved to a grid point with no known position
)

// MatchResult is the outcome of locating a query instant on a resampled grid.
type MatchResult struct {
	Matched   bool
	GridTime  time.Time // Grid point the query resolved to, when matched
	Latitude  float64
	Longitude float64
	Reason    Reason // Set when Matched is false
}

// Locate resolves the query instant to the nearest grid point. Half the
// interval is added to the query and the result is the last grid point at or
// before that adjusted instant, which rounds ties upward: a query exactly
// halfway between two grid points resolves to the later one. Queries whose
// adjusted instant falls before the first grid point or beyond the last
// bucket are out of range.
func (r *Resampled) Locate(instant time.Time) MatchResult {
	adjusted := instant.Add(r.interval / 2)

	// Duration division truncates toward zero, so instants just before the
	// grid start would otherwise alias into bucket 0.
	if adjusted.Before(r.start) {
		return MatchResult{Reason: ReasonOutOfRange}
	}
	k := int(adjusted.Sub(r.start) / r.interval)
	if k >= len(r.points) {
		return MatchResult{Reason: ReasonOutOfRange}
	}

	point := r.points[k]
	if !point.Known {
		return MatchResult{Reason: ReasonNoData}
	}
	return MatchResult{
		Matched:   true,
		GridTime:  r.start.Add(time.Duration(k) * r.interval),
		Latitude:  point.Latitude,
		Longitude: point.Longitude,
	}
}
