package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/benmeehan/batch-geotag/internal/constants"
	"github.com/benmeehan/batch-geotag/internal/mocks"
	"github.com/benmeehan/batch-geotag/pkg/exif"
	"github.com/benmeehan/batch-geotag/pkg/timeseries"
	"github.com/benmeehan/batch-geotag/pkg/timezone"
)

var trackStart = time.Date(2019, 7, 21, 12, 0, 0, 0, time.UTC)

// trackSamples is a three-minute track with one fix per minute.
func trackSamples() []timeseries.Sample {
	return []timeseries.Sample{
		{Timestamp: trackStart, Latitude: 48.0, Longitude: 16.0},
		{Timestamp: trackStart.Add(time.Minute), Latitude: 48.1, Longitude: 16.1},
		{Timestamp: trackStart.Add(2 * time.Minute), Latitude: 48.2, Longitude: 16.2},
	}
}

func newTestService(source *mocks.MockSource, codec *mocks.MockCodec, fileOps *mocks.MockFileOperations,
	overwrite, dryRun bool) *GeotagService {
	return NewGeotagService("/photos", false, time.Minute, overwrite, dryRun, 2,
		time.UTC, timezone.NewFixedResolver(time.UTC), source, codec, fileOps, zerolog.Nop())
}

// TestGeotagService_Run tests the per-photo outcome classification of a full
// run over a mixed folder.
func TestGeotagService_Run(t *testing.T) {
	// Setup
	mockSource := new(mocks.MockSource)
	mockCodec := new(mocks.MockCodec)
	mockFileOps := new(mocks.MockFileOperations)

	mockSource.On("Name").Return("track.csv")
	mockSource.On("Read").Return(trackSamples(), nil)

	photos := []string{
		"/photos/a.jpg", "/photos/b.jpg", "/photos/c.jpg",
		"/photos/d.jpg", "/photos/e.jpg", "/photos/f.jpg",
	}
	mockFileOps.On("ListImages", "/photos", false).Return(photos, nil)

	// a: matches the first grid point and is written
	mockCodec.On("ReadMetadata", "/photos/a.jpg").
		Return(&exif.Metadata{CaptureTime: "2019:07:21 12:00:20"}, nil)
	mockCodec.On("SetGeo", "/photos/a.jpg", 48.0, 16.0).Return(nil)
	// b: carries no capture time
	mockCodec.On("ReadMetadata", "/photos/b.jpg").
		Return(&exif.Metadata{}, nil)
	// c: capture time is garbage
	mockCodec.On("ReadMetadata", "/photos/c.jpg").
		Return(&exif.Metadata{CaptureTime: "yesterday afternoon"}, nil)
	// d: captured hours after the track ended
	mockCodec.On("ReadMetadata", "/photos/d.jpg").
		Return(&exif.Metadata{CaptureTime: "2019:07:21 18:00:00"}, nil)
	// e: already tagged, overwrite is off
	mockCodec.On("ReadMetadata", "/photos/e.jpg").
		Return(&exif.Metadata{CaptureTime: "2019:07:21 12:01:10", HasGeo: true}, nil)
	// f: not parsable at all
	mockCodec.On("ReadMetadata", "/photos/f.jpg").
		Return(nil, errors.New("no exif data"))

	service := newTestService(mockSource, mockCodec, mockFileOps, false, false)

	// Execute
	report, err := service.Run(context.Background())

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 6, report.Scanned)
	assert.Equal(t, map[constants.Outcome]int{
		constants.OutcomeWritten:      1,
		constants.OutcomeNoTimestamp:  1,
		constants.OutcomeBadTimestamp: 1,
		constants.OutcomeOutOfRange:   1,
		constants.OutcomeHasGeo:       1,
		constants.OutcomeUnreadable:   1,
	}, report.Counts)

	// Results follow the scan order
	assert.Len(t, report.Results, 6)
	assert.Equal(t, "/photos/a.jpg", report.Results[0].Path)
	assert.Equal(t, constants.OutcomeWritten, report.Results[0].Outcome)
	assert.Equal(t, 48.0, report.Results[0].Latitude)
	assert.Equal(t, 16.0, report.Results[0].Longitude)
	assert.Equal(t, constants.OutcomeHasGeo, report.Results[4].Outcome)

	mockCodec.AssertExpectations(t)
	mockCodec.AssertNotCalled(t, "SetGeo", "/photos/e.jpg", mock.Anything, mock.Anything)
}

// TestGeotagService_Run_CameraClock tests that capture times are read on the
// camera clock before matching against the reference-aligned track.
func TestGeotagService_Run_CameraClock(t *testing.T) {
	// Setup
	vienna, err := time.LoadLocation("Europe/Vienna")
	assert.NoError(t, err)

	mockSource := new(mocks.MockSource)
	mockCodec := new(mocks.MockCodec)
	mockFileOps := new(mocks.MockFileOperations)

	mockSource.On("Name").Return("track.csv")
	mockSource.On("Read").Return(trackSamples(), nil)
	mockFileOps.On("ListImages", "/photos", false).Return([]string{"/photos/a.jpg"}, nil)

	// 14:00:20 Vienna summer time is 12:00:20 UTC, the first grid point
	mockCodec.On("ReadMetadata", "/photos/a.jpg").
		Return(&exif.Metadata{CaptureTime: "2019:07:21 14:00:20"}, nil)
	mockCodec.On("SetGeo", "/photos/a.jpg", 48.0, 16.0).Return(nil)

	service := NewGeotagService("/photos", false, time.Minute, false, false, 1,
		time.UTC, timezone.NewFixedResolver(vienna), mockSource, mockCodec, mockFileOps, zerolog.Nop())

	// Execute
	report, err := service.Run(context.Background())

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 1, report.Counts[constants.OutcomeWritten])
	mockCodec.AssertExpectations(t)
}

// TestGeotagService_Run_DryRun tests that a dry run reports matches without
// writing anything.
func TestGeotagService_Run_DryRun(t *testing.T) {
	// Setup
	mockSource := new(mocks.MockSource)
	mockCodec := new(mocks.MockCodec)
	mockFileOps := new(mocks.MockFileOperations)

	mockSource.On("Name").Return("track.csv")
	mockSource.On("Read").Return(trackSamples(), nil)
	mockFileOps.On("ListImages", "/photos", false).Return([]string{"/photos/a.jpg"}, nil)
	mockCodec.On("ReadMetadata", "/photos/a.jpg").
		Return(&exif.Metadata{CaptureTime: "2019:07:21 12:00:20"}, nil)

	service := newTestService(mockSource, mockCodec, mockFileOps, false, true)

	// Execute
	report, err := service.Run(context.Background())

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 1, report.Counts[constants.OutcomeMatched])
	assert.Equal(t, 48.0, report.Results[0].Latitude)
	mockCodec.AssertNotCalled(t, "SetGeo", mock.Anything, mock.Anything, mock.Anything)
}

// TestGeotagService_Run_Overwrite tests that the overwrite flag lets already
// tagged photos be rewritten.
func TestGeotagService_Run_Overwrite(t *testing.T) {
	// Setup
	mockSource := new(mocks.MockSource)
	mockCodec := new(mocks.MockCodec)
	mockFileOps := new(mocks.MockFileOperations)

	mockSource.On("Name").Return("track.csv")
	mockSource.On("Read").Return(trackSamples(), nil)
	mockFileOps.On("ListImages", "/photos", false).Return([]string{"/photos/a.jpg"}, nil)
	mockCodec.On("ReadMetadata", "/photos/a.jpg").
		Return(&exif.Metadata{CaptureTime: "2019:07:21 12:01:10", HasGeo: true, Latitude: 1, Longitude: 1}, nil)
	mockCodec.On("SetGeo", "/photos/a.jpg", 48.1, 16.1).Return(nil)

	service := newTestService(mockSource, mockCodec, mockFileOps, true, false)

	// Execute
	report, err := service.Run(context.Background())

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 1, report.Counts[constants.OutcomeWritten])
	mockCodec.AssertExpectations(t)
}

// TestGeotagService_Run_WriteFailed tests that a failed write is reported and
// does not abort the batch.
func TestGeotagService_Run_WriteFailed(t *testing.T) {
	// Setup
	mockSource := new(mocks.MockSource)
	mockCodec := new(mocks.MockCodec)
	mockFileOps := new(mocks.MockFileOperations)

	mockSource.On("Name").Return("track.csv")
	mockSource.On("Read").Return(trackSamples(), nil)
	mockFileOps.On("ListImages", "/photos", false).Return([]string{"/photos/a.jpg", "/photos/b.jpg"}, nil)
	mockCodec.On("ReadMetadata", "/photos/a.jpg").
		Return(&exif.Metadata{CaptureTime: "2019:07:21 12:00:20"}, nil)
	mockCodec.On("SetGeo", "/photos/a.jpg", 48.0, 16.0).Return(errors.New("disk full"))
	mockCodec.On("ReadMetadata", "/photos/b.jpg").
		Return(&exif.Metadata{CaptureTime: "2019:07:21 12:01:10"}, nil)
	mockCodec.On("SetGeo", "/photos/b.jpg", 48.1, 16.1).Return(nil)

	service := newTestService(mockSource, mockCodec, mockFileOps, false, false)

	// Execute
	report, err := service.Run(context.Background())

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 1, report.Counts[constants.OutcomeWriteFailed])
	assert.Equal(t, 1, report.Counts[constants.OutcomeWritten])
	assert.Equal(t, "disk full", report.Results[0].Error)
}

// TestGeotagService_Run_SourceError tests that an unreadable coordinate
// source fails the whole run.
func TestGeotagService_Run_SourceError(t *testing.T) {
	// Setup
	mockSource := new(mocks.MockSource)
	mockSource.On("Name").Return("track.csv")
	mockSource.On("Read").Return(nil, errors.New("no such file"))

	service := newTestService(mockSource, new(mocks.MockCodec), new(mocks.MockFileOperations), false, false)

	// Execute
	report, err := service.Run(context.Background())

	// Assert
	assert.Error(t, err)
	assert.Nil(t, report)
	assert.Contains(t, err.Error(), "track.csv")
}

// TestGeotagService_Run_EmptyTrack tests that a track without samples is
// fatal.
func TestGeotagService_Run_EmptyTrack(t *testing.T) {
	// Setup
	mockSource := new(mocks.MockSource)
	mockSource.On("Name").Return("track.csv")
	mockSource.On("Read").Return([]timeseries.Sample{}, nil)

	service := newTestService(mockSource, new(mocks.MockCodec), new(mocks.MockFileOperations), false, false)

	// Execute
	_, err := service.Run(context.Background())

	// Assert
	assert.ErrorIs(t, err, timeseries.ErrEmptySeries)
}

// TestGeotagService_Run_InvalidSample tests that a corrupt coordinate sample
// is fatal.
func TestGeotagService_Run_InvalidSample(t *testing.T) {
	// Setup
	mockSource := new(mocks.MockSource)
	mockSource.On("Name").Return("track.csv")
	mockSource.On("Read").Return([]timeseries.Sample{
		{Timestamp: trackStart, Latitude: 91.0, Longitude: 16.0},
	}, nil)

	service := newTestService(mockSource, new(mocks.MockCodec), new(mocks.MockFileOperations), false, false)

	// Execute
	_, err := service.Run(context.Background())

	// Assert
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "sample 0")
}

// TestGeotagService_Run_ResolverError tests that an unresolvable camera zone
// is fatal.
func TestGeotagService_Run_ResolverError(t *testing.T) {
	// Setup
	mockSource := new(mocks.MockSource)
	mockResolver := new(mocks.MockResolver)

	mockSource.On("Name").Return("track.csv")
	mockSource.On("Read").Return(trackSamples(), nil)
	mockResolver.On("Resolve", mock.Anything, 48.0, 16.0, mock.Anything).
		Return(nil, timezone.ErrUnknownZone)

	service := NewGeotagService("/photos", false, time.Minute, false, false, 1,
		time.UTC, mockResolver, mockSource, new(mocks.MockCodec), new(mocks.MockFileOperations), zerolog.Nop())

	// Execute
	_, err := service.Run(context.Background())

	// Assert
	assert.ErrorIs(t, err, timezone.ErrUnknownZone)
	mockResolver.AssertExpectations(t)
}

// TestGeotagService_Run_ScanError tests that an unreadable photo folder is
// fatal.
func TestGeotagService_Run_ScanError(t *testing.T) {
	// Setup
	mockSource := new(mocks.MockSource)
	mockFileOps := new(mocks.MockFileOperations)

	mockSource.On("Name").Return("track.csv")
	mockSource.On("Read").Return(trackSamples(), nil)
	mockFileOps.On("ListImages", "/photos", false).Return(nil, errors.New("permission denied"))

	service := newTestService(mockSource, new(mocks.MockCodec), mockFileOps, false, false)

	// Execute
	_, err := service.Run(context.Background())

	// Assert
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "/photos")
}

// TestGeotagService_Run_NoPhotos tests that an empty folder yields an empty
// report instead of an error.
func TestGeotagService_Run_NoPhotos(t *testing.T) {
	// Setup
	mockSource := new(mocks.MockSource)
	mockFileOps := new(mocks.MockFileOperations)

	mockSource.On("Name").Return("track.csv")
	mockSource.On("Read").Return(trackSamples(), nil)
	mockFileOps.On("ListImages", "/photos", false).Return([]string{}, nil)

	service := newTestService(mockSource, new(mocks.MockCodec), mockFileOps, false, false)

	// Execute
	report, err := service.Run(context.Background())

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 0, report.Scanned)
	assert.Empty(t, report.Results)
}
