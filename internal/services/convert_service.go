package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/benmeehan/batch-geotag/pkg/file"
	"github.com/benmeehan/batch-geotag/pkg/timeseries"
	"github.com/benmeehan/batch-geotag/pkg/track"
)

// csvTimeLayout keeps written timestamps self-describing, so a converted file
// reads back identically regardless of the configured source clock.
const csvTimeLayout = "2006-01-02 15:04:05Z07:00"

// ConvertService turns any supported coordinate input into the plain CSV format.
type ConvertService struct {
	// Dependencies
	source     track.Source
	fileClient file.FileOperations
	logger     zerolog.Logger
}

// NewConvertService creates a new ConvertService instance.
func NewConvertService(source track.Source, fileClient file.FileOperations, logger zerolog.Logger) *ConvertService {
	return &ConvertService{
		source:     source,
		fileClient: fileClient,
		logger:     logger,
	}
}

// Run reads the source, validates and orders the samples and writes them to
// outPath as CSV.
func (c *ConvertService) Run(outPath string) error {
	samples, err := c.source.Read()
	if err != nil {
		return fmt.Errorf("read coordinates from %s: %w", c.source.Name(), err)
	}

	series, err := timeseries.NewSeries(samples)
	if err != nil {
		return err
	}
	if series.Len() == 0 {
		return timeseries.ErrEmptySeries
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write([]string{"datetime", "latitude", "longitude", "accuracy"}); err != nil {
		return err
	}
	for _, sample := range series.Samples() {
		record := []string{
			sample.Timestamp.UTC().Format(csvTimeLayout),
			strconv.FormatFloat(sample.Latitude, 'f', 7, 64),
			strconv.FormatFloat(sample.Longitude, 'f', 7, 64),
			strconv.FormatFloat(sample.Accuracy, 'f', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	if err := c.fileClient.WriteFileRaw(outPath, buf.Bytes()); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}

	c.logger.Info().
		Str("source", c.source.Name()).
		Str("output", outPath).
		Int("samples", series.Len()).
		Msg("Coordinate track converted")
	return nil
}
