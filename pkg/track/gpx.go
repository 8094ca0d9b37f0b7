package track

import (
	"fmt"

	"github.com/tkrajina/gpxgo/gpx"

	"github.com/benmeehan/batch-geotag/pkg/file"
	"github.com/benmeehan/batch-geotag/pkg/timeseries"
)

// GPXSource reads track points from a GPX file. GPX timestamps carry their
// own offset, so no clock configuration applies.
type GPXSource struct {
	path    string
	fileOps file.FileOperations
}

// NewGPXSource creates a GPX source.
func NewGPXSource(path string, fileOps file.FileOperations) *GPXSource {
	return &GPXSource{
		path:    path,
		fileOps: fileOps,
	}
}

// Name returns the source format name.
func (s *GPXSource) Name() string {
	return string(FormatGPX)
}

// Read collects every timestamped track point across all tracks and segments.
// Points without a timestamp are skipped, they cannot be matched by time.
func (s *GPXSource) Read() ([]timeseries.Sample, error) {
	raw, err := s.fileOps.ReadFileRaw(s.path)
	if err != nil {
		return nil, err
	}

	doc, err := gpx.ParseBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("track: parse %s: %w", s.path, err)
	}

	var samples []timeseries.Sample
	for _, trk := range doc.Tracks {
		for _, segment := range trk.Segments {
			for _, point := range segment.Points {
				if point.Timestamp.IsZero() {
					continue
				}
				samples = append(samples, timeseries.Sample{
					Timestamp: point.Timestamp,
					Latitude:  point.GetLatitude(),
					Longitude: point.GetLongitude(),
				})
			}
		}
	}

	return samples, nil
}
