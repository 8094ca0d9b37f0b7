package services

import (
	"context"
	"fmt"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/rs/zerolog"

	"github.com/benmeehan/batch-geotag/internal/constants"
	"github.com/benmeehan/batch-geotag/internal/models"
	"github.com/benmeehan/batch-geotag/internal/utils"
	"github.com/benmeehan/batch-geotag/pkg/exif"
	"github.com/benmeehan/batch-geotag/pkg/file"
	"github.com/benmeehan/batch-geotag/pkg/timeseries"
	"github.com/benmeehan/batch-geotag/pkg/timezone"
	"github.com/benmeehan/batch-geotag/pkg/track"
)

// GeotagService matches photo capture times against a resampled coordinate
// track and writes the found positions into the photos.
type GeotagService struct {
	// Configuration fields
	folder    string
	recursive bool
	interval  time.Duration
	overwrite bool
	dryRun    bool
	workers   int

	// Clocks
	reference *time.Location
	camera    timezone.Resolver

	// Dependencies
	source     track.Source
	codec      exif.Codec
	fileClient file.FileOperations
	logger     zerolog.Logger
}

// NewGeotagService creates a new GeotagService instance with the provided configuration.
func NewGeotagService(folder string, recursive bool, interval time.Duration, overwrite, dryRun bool, workers int,
	reference *time.Location, camera timezone.Resolver, source track.Source, codec exif.Codec,
	fileClient file.FileOperations, logger zerolog.Logger) *GeotagService {
	return &GeotagService{
		folder:     folder,
		recursive:  recursive,
		interval:   interval,
		overwrite:  overwrite,
		dryRun:     dryRun,
		workers:    workers,
		reference:  reference,
		camera:     camera,
		source:     source,
		codec:      codec,
		fileClient: fileClient,
		logger:     logger,
	}
}

// Run executes one full tagging pass and returns the per-photo report.
func (g *GeotagService) Run(ctx context.Context) (*models.RunReport, error) {
	started := time.Now()

	// Load and validate the coordinate track
	samples, err := g.source.Read()
	if err != nil {
		return nil, fmt.Errorf("read coordinates from %s: %w", g.source.Name(), err)
	}

	series, err := timeseries.NewSeries(samples)
	if err != nil {
		return nil, err
	}
	g.logger.Info().
		Str("source", g.source.Name()).
		Int("samples", series.Len()).
		Msg("Coordinate track loaded")

	// Project the track onto the uniform grid, aligned to the reference clock
	grid, err := timeseries.Resample(series.InZone(g.reference), g.interval)
	if err != nil {
		return nil, err
	}
	g.logger.Debug().
		Time("start", grid.Start()).
		Time("end", grid.End()).
		Int("points", grid.Len()).
		Dur("interval", grid.Interval()).
		Msg("Coordinate track resampled")

	// The first fix of the trip tells the resolver where the camera was
	first := series.Samples()[0]
	cameraZone, err := g.camera.Resolve(ctx, first.Latitude, first.Longitude, first.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("resolve camera zone: %w", err)
	}
	g.logger.Info().
		Str("camera_zone", cameraZone.String()).
		Msg("Camera clock resolved")

	photos, err := g.fileClient.ListImages(g.folder, g.recursive)
	if err != nil {
		return nil, fmt.Errorf("scan photos in %s: %w", g.folder, err)
	}
	if len(photos) == 0 {
		g.logger.Warn().
			Str("folder", g.folder).
			Msg("No photos found")
	}

	// Process the photos in parallel, collecting results by path
	results := cmap.New[models.PhotoResult]()
	pool := utils.NewWorkerPool(g.workers)
	for _, path := range photos {
		if ctx.Err() != nil {
			break
		}
		path := path // pin per-iteration value when compiled before the Go 1.22 loopvar change
		pool.Submit(func() {
			results.Set(path, g.processPhoto(path, grid, cameraZone))
		})
	}
	pool.Shutdown()

	if ctx.Err() != nil {
		g.logger.Warn().Msg("Tagging run interrupted, reporting partial results")
	}

	report := g.buildReport(photos, results, time.Since(started))
	g.logger.Info().
		Int("scanned", report.Scanned).
		Int("written", report.Counts[constants.OutcomeWritten]+report.Counts[constants.OutcomeMatched]).
		Int("skipped", report.Scanned-report.Counts[constants.OutcomeWritten]-report.Counts[constants.OutcomeMatched]).
		Dur("elapsed", report.Elapsed).
		Msg("Tagging run finished")
	return report, nil
}

// processPhoto classifies a single photo and writes its position when the
// policy allows it. Per-photo failures never abort the batch.
func (g *GeotagService) processPhoto(path string, grid *timeseries.Resampled, cameraZone *time.Location) models.PhotoResult {
	result := models.PhotoResult{Path: path}

	meta, err := g.codec.ReadMetadata(path)
	if err != nil {
		g.logger.Error().
			Err(err).
			Str("photo", path).
			Msg("Failed to read photo metadata")
		result.Outcome = constants.OutcomeUnreadable
		result.Error = err.Error()
		return result
	}

	if meta.CaptureTime == "" {
		g.logger.Info().
			Str("photo", path).
			Msg("Photo has no capture time, skipping")
		result.Outcome = constants.OutcomeNoTimestamp
		return result
	}

	captured, err := timezone.ParseTimestamp(meta.CaptureTime, cameraZone)
	if err != nil {
		g.logger.Info().
			Err(err).
			Str("photo", path).
			Str("capture_time", meta.CaptureTime).
			Msg("Unparsable capture time, skipping")
		result.Outcome = constants.OutcomeBadTimestamp
		result.Error = err.Error()
		return result
	}
	g.logger.Debug().
		Str("photo", path).
		Str("tag", meta.TimeTag).
		Time("captured", captured).
		Msg("Capture time parsed")

	match := grid.Locate(captured)
	if !match.Matched {
		if match.Reason == timeseries.ReasonNoData {
			result.Outcome = constants.OutcomeNoData
		} else {
			result.Outcome = constants.OutcomeOutOfRange
		}
		g.logger.Info().
			Str("photo", path).
			Str("reason", string(match.Reason)).
			Msg("No position for capture time, skipping")
		return result
	}
	result.Latitude = match.Latitude
	result.Longitude = match.Longitude

	if meta.HasGeo && !g.overwrite {
		g.logger.Info().
			Str("photo", path).
			Msg("Photo already carries geodata, skipping")
		result.Outcome = constants.OutcomeHasGeo
		return result
	}

	if g.dryRun {
		g.logger.Debug().
			Str("photo", path).
			Float64("latitude", match.Latitude).
			Float64("longitude", match.Longitude).
			Msg("Dry run, position not written")
		result.Outcome = constants.OutcomeMatched
		return result
	}

	if err := g.codec.SetGeo(path, match.Latitude, match.Longitude); err != nil {
		g.logger.Error().
			Err(err).
			Str("photo", path).
			Msg("Failed to write position into photo")
		result.Outcome = constants.OutcomeWriteFailed
		result.Error = err.Error()
		return result
	}

	g.logger.Debug().
		Str("photo", path).
		Float64("latitude", match.Latitude).
		Float64("longitude", match.Longitude).
		Time("grid_time", match.GridTime).
		Msg("Position written")
	result.Outcome = constants.OutcomeWritten
	return result
}

// buildReport assembles the run report in the scan order of the photos.
func (g *GeotagService) buildReport(photos []string, results cmap.ConcurrentMap[string, models.PhotoResult], elapsed time.Duration) *models.RunReport {
	report := &models.RunReport{
		Scanned: len(photos),
		Counts:  make(map[constants.Outcome]int),
		Results: make([]models.PhotoResult, 0, len(photos)),
		Elapsed: elapsed,
	}

	for _, path := range photos {
		result, ok := results.Get(path)
		if !ok {
			continue
		}
		report.Counts[result.Outcome]++
		report.Results = append(report.Results, result)
	}

	return report
}
