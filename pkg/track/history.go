package track

import (
	"errors"
	"strconv"
	"time"

	"github.com/benmeehan/batch-geotag/pkg/file"
	"github.com/benmeehan/batch-geotag/pkg/timeseries"
)

// HistoryOptions filters the records taken from a location history export.
type HistoryOptions struct {
	Start       time.Time // Inclusive first day, zero means unbounded
	End         time.Time // Inclusive last day, zero means unbounded
	MaxAccuracy float64   // Meters; drop fixes reported as less accurate when positive
}

// HistorySource reads a Google Takeout location history JSON export.
// Coordinates are stored as integers scaled by 1e7; timestamps are UTC epoch
// milliseconds in older exports and RFC 3339 strings in newer ones.
type HistorySource struct {
	path    string
	opts    HistoryOptions
	fileOps file.FileOperations
}

// NewHistorySource creates a location history source.
func NewHistorySource(path string, opts HistoryOptions, fileOps file.FileOperations) *HistorySource {
	return &HistorySource{
		path:    path,
		opts:    opts,
		fileOps: fileOps,
	}
}

// Name returns the source format name.
func (s *HistorySource) Name() string {
	return string(FormatHistory)
}

type historyFile struct {
	Locations []historyLocation `json:"locations"`
}

type historyLocation struct {
	TimestampMs string  `json:"timestampMs"`
	Timestamp   string  `json:"timestamp"`
	LatitudeE7  int64   `json:"latitudeE7"`
	LongitudeE7 int64   `json:"longitudeE7"`
	Accuracy    float64 `json:"accuracy"`
}

// Read decodes the export and returns the records that pass the configured
// filters. Exports are reverse chronological; ordering is left to the series.
func (s *HistorySource) Read() ([]timeseries.Sample, error) {
	var doc historyFile
	if err := s.fileOps.ReadJsonFile(s.path, &doc); err != nil {
		return nil, err
	}

	var samples []timeseries.Sample
	for i, loc := range doc.Locations {
		ts, err := historyTimestamp(loc)
		if err != nil {
			return nil, &RowError{Path: s.path, Row: i + 1, Err: err}
		}
		if s.opts.MaxAccuracy > 0 && loc.Accuracy > s.opts.MaxAccuracy {
			continue
		}
		if !s.opts.Start.IsZero() && ts.Before(s.opts.Start) {
			continue
		}
		if !s.opts.End.IsZero() && !ts.Before(s.opts.End.AddDate(0, 0, 1)) {
			continue
		}
		samples = append(samples, timeseries.Sample{
			Timestamp: ts,
			Latitude:  float64(loc.LatitudeE7) / 1e7,
			Longitude: float64(loc.LongitudeE7) / 1e7,
			Accuracy:  loc.Accuracy,
		})
	}

	return samples, nil
}

func historyTimestamp(loc historyLocation) (time.Time, error) {
	if loc.TimestampMs != "" {
		ms, err := strconv.ParseInt(loc.TimestampMs, 10, 64)
		if err != nil {
			return time.Time{}, errors.New("bad timestampMs " + strconv.Quote(loc.TimestampMs))
		}
		return time.UnixMilli(ms).UTC(), nil
	}
	if loc.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339, loc.Timestamp)
		if err != nil {
			return time.Time{}, errors.New("bad timestamp " + strconv.Quote(loc.Timestamp))
		}
		return ts.UTC(), nil
	}
	return time.Time{}, errors.New("record has no timestamp")
}
