package track

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/benmeehan/batch-geotag/pkg/file"
	"github.com/benmeehan/batch-geotag/pkg/timeseries"
)

// Source supplies timestamped coordinate samples from one input format.
type Source interface {
	Name() string
	Read() ([]timeseries.Sample, error)
}

// Format identifies a supported coordinate input format.
type Format string

const (
	FormatAuto    Format = "auto"
	FormatCSV     Format = "csv"
	FormatGPX     Format = "gpx"
	FormatNMEA    Format = "nmea"
	FormatHistory Format = "history"
)

// RowError reports a malformed row in a coordinate input file. One bad row
// fails the whole read, so a typo cannot silently shrink the series.
type RowError struct {
	Path string
	Row  int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s: row %d: %v", e.Path, e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Options carries the per-format settings used when constructing a source.
type Options struct {
	Clock   *time.Location // Clock for CSV timestamps without an explicit offset
	History HistoryOptions // Filters for location history input
}

// DetectFormat infers the input format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".gpx":
		return FormatGPX, nil
	case ".nmea", ".log", ".txt":
		return FormatNMEA, nil
	case ".json":
		return FormatHistory, nil
	default:
		return "", fmt.Errorf("track: cannot infer format of %q, pass one explicitly", path)
	}
}

// NewSource builds the source for the given format, detecting the format from
// the path when it is FormatAuto.
func NewSource(format Format, path string, opts Options, fileOps file.FileOperations) (Source, error) {
	if format == FormatAuto || format == "" {
		detected, err := DetectFormat(path)
		if err != nil {
			return nil, err
		}
		format = detected
	}

	switch format {
	case FormatCSV:
		return NewCSVSource(path, opts.Clock, fileOps), nil
	case FormatGPX:
		return NewGPXSource(path, fileOps), nil
	case FormatNMEA:
		return NewNMEASource(path, fileOps), nil
	case FormatHistory:
		return NewHistorySource(path, opts.History, fileOps), nil
	default:
		return nil, fmt.Errorf("track: unsupported format %q", format)
	}
}
