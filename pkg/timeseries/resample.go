package timeseries

import (
	"fmt"
	"time"
)

// Point is one position on the resampled grid.
type Point struct {
	Latitude  float64
	Longitude float64
	Known     bool // False when no sample covered this grid point and no interpolation applied
}

// Resampled is a coordinate series projected onto a uniform time grid.
// Grid point k sits at Start + k*Interval; each carries the mean position of
// the samples in its half-open bucket [point, point+interval), with interior
// gaps filled by linear interpolation between the nearest known neighbors.
type Resampled struct {
	start    time.Time
	interval time.Duration
	points   []Point
}

// Resample projects the series onto a uniform grid anchored at its first
// sample. The grid covers every sample; interval must be positive.
func Resample(s *Series, interval time.Duration) (*Resampled, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("timeseries: resample interval must be positive, got %v", interval)
	}
	if s == nil || len(s.samples) == 0 {
		return nil, ErrEmptySeries
	}

	start := s.samples[0].Timestamp
	end := s.samples[len(s.samples)-1].Timestamp
	n := int(end.Sub(start)/interval) + 1

	sumLat := make([]float64, n)
	sumLon := make([]float64, n)
	count := make([]int, n)
	for _, sample := range s.samples {
		k := int(sample.Timestamp.Sub(start) / interval)
		sumLat[k] += sample.Latitude
		sumLon[k] += sample.Longitude
		count[k]++
	}

	points := make([]Point, n)
	for k := range points {
		if count[k] > 0 {
			points[k] = Point{
				Latitude:  sumLat[k] / float64(count[k]),
				Longitude: sumLon[k] / float64(count[k]),
				Known:     true,
			}
		}
	}
	interpolateGaps(points)

	return &Resampled{start: start, interval: interval, points: points}, nil
}

// interpolateGaps fills runs of unknown points that have a known point on
// both sides. Positions are interpolated linearly against elapsed grid time,
// latitude and longitude independently. The first and last points are always
// known since the buckets of the first and last samples are never empty.
func interpolateGaps(points []Point) {
	prev := -1
	for k := range points {
		if !points[k].Known {
			continue
		}
		if prev >= 0 && k-prev > 1 {
			span := float64(k - prev)
			for g := prev + 1; g < k; g++ {
				f := float64(g-prev) / span
				points[g] = Point{
					Latitude:  points[prev].Latitude + f*(points[k].Latitude-points[prev].Latitude),
					Longitude: points[prev].Longitude + f*(points[k].Longitude-points[prev].Longitude),
					Known:     true,
				}
			}
		}
		prev = k
	}
}

// Len returns the number of grid points.
func (r *Resampled) Len() int {
	return len(r.points)
}

// Interval returns the grid spacing.
func (r *Resampled) Interval() time.Duration {
	return r.interval
}

// Start returns the timestamp of the first grid point.
func (r *Resampled) Start() time.Time {
	return r.start
}

// End returns the timestamp of the last grid point.
func (r *Resampled) End() time.Time {
	return r.start.Add(time.Duration(len(r.points)-1) * r.interval)
}

// At returns the timestamp and position of grid point k.
func (r *Resampled) At(k int) (time.Time, Point) {
	return r.start.Add(time.Duration(k) * r.interval), r.points[k]
}
