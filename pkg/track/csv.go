package track

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/benmeehan/batch-geotag/pkg/file"
	"github.com/benmeehan/batch-geotag/pkg/timeseries"
	"github.com/benmeehan/batch-geotag/pkg/timezone"
)

// CSVSource reads samples from a CSV file of timestamp, latitude, longitude
// and an optional accuracy column. A header row is detected by its first
// field not parsing as a timestamp.
type CSVSource struct {
	path    string
	clock   *time.Location // Clock for timestamps without an explicit offset
	fileOps file.FileOperations
}

// NewCSVSource creates a CSV source. A nil clock falls back to UTC.
func NewCSVSource(path string, clock *time.Location, fileOps file.FileOperations) *CSVSource {
	if clock == nil {
		clock = time.UTC
	}
	return &CSVSource{
		path:    path,
		clock:   clock,
		fileOps: fileOps,
	}
}

// Name returns the source format name.
func (s *CSVSource) Name() string {
	return string(FormatCSV)
}

// Read parses every row into a sample. Any malformed row aborts the read with
// a RowError naming the row.
func (s *CSVSource) Read() ([]timeseries.Sample, error) {
	raw, err := s.fileOps.ReadFileRaw(s.path)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var samples []timeseries.Sample
	row := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &RowError{Path: s.path, Row: row + 1, Err: err}
		}
		row++

		sample, err := s.parseRecord(record)
		if err != nil {
			if row == 1 {
				// First row with an unparsable timestamp is the header.
				if _, tsErr := timezone.ParseTimestamp(record[0], s.clock); tsErr != nil {
					continue
				}
			}
			return nil, &RowError{Path: s.path, Row: row, Err: err}
		}
		samples = append(samples, sample)
	}

	return samples, nil
}

func (s *CSVSource) parseRecord(record []string) (timeseries.Sample, error) {
	if len(record) < 3 || len(record) > 4 {
		return timeseries.Sample{}, fmt.Errorf("expected 3 or 4 columns, got %d", len(record))
	}

	ts, err := timezone.ParseTimestamp(record[0], s.clock)
	if err != nil {
		return timeseries.Sample{}, err
	}

	lat, err := parseCoordinate("latitude", record[1])
	if err != nil {
		return timeseries.Sample{}, err
	}
	lon, err := parseCoordinate("longitude", record[2])
	if err != nil {
		return timeseries.Sample{}, err
	}

	var accuracy float64
	if len(record) == 4 && record[3] != "" {
		accuracy, err = parseCoordinate("accuracy", record[3])
		if err != nil {
			return timeseries.Sample{}, err
		}
	}

	return timeseries.Sample{
		Timestamp: ts,
		Latitude:  lat,
		Longitude: lon,
		Accuracy:  accuracy,
	}, nil
}

func parseCoordinate(name, field string) (float64, error) {
	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0, fmt.Errorf("bad %s %q", name, field)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s %q is not finite", name, field)
	}
	return v, nil
}
