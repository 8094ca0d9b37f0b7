package exif

import (
	"bytes"
	"fmt"
	"math"

	exif "github.com/dsoprea/go-exif/v3"
	jpegstructure "github.com/dsoprea/go-jpeg-image-structure/v2"
	log "github.com/dsoprea/go-logging"

	"github.com/benmeehan/batch-geotag/pkg/file"
)

// captureTimeTags are probed in order for the capture time. DateTime lives in
// the root IFD, the other two in the Exif sub-IFD.
var captureTimeTags = []string{"DateTime", "DateTimeOriginal", "DateTimeDigitized"}

// JpegCodec implements Codec for JPEG files. Reads and writes go through the
// injected file operations, so updates inherit the atomic rename behavior.
type JpegCodec struct {
	parser  *jpegstructure.JpegMediaParser
	fileOps file.FileOperations
}

// NewJpegCodec creates a JPEG metadata codec.
func NewJpegCodec(fileOps file.FileOperations) *JpegCodec {
	return &JpegCodec{
		parser:  jpegstructure.NewJpegMediaParser(),
		fileOps: fileOps,
	}
}

// ReadMetadata extracts the capture time and any existing GPS data from the
// photo. A photo without an EXIF block yields empty metadata, not an error.
func (c *JpegCodec) ReadMetadata(path string) (*Metadata, error) {
	sl, err := c.parse(path)
	if err != nil {
		return nil, err
	}

	rootIfd, _, err := sl.Exif()
	if err != nil {
		if log.Is(err, exif.ErrNoExif) {
			return &Metadata{}, nil
		}
		return nil, fmt.Errorf("exif: read %s: %w", path, err)
	}

	meta := &Metadata{}
	meta.CaptureTime, meta.TimeTag = findCaptureTime(rootIfd)

	if gpsIfd, err := exif.FindIfdFromRootIfd(rootIfd, "IFD/GPSInfo"); err == nil {
		// Any populated GPS IFD counts as existing geodata, even when it
		// holds no usable position.
		meta.HasGeo = len(gpsIfd.Entries()) > 0
		if gi, err := gpsIfd.GpsInfo(); err == nil {
			meta.Latitude = gi.Latitude.Decimal()
			meta.Longitude = gi.Longitude.Decimal()
		}
	}

	return meta, nil
}

// SetGeo writes the position into the photo's GPS IFD, replacing whatever was
// there, and updates the file in place.
func (c *JpegCodec) SetGeo(path string, lat, lon float64) error {
	sl, err := c.parse(path)
	if err != nil {
		return err
	}

	rootIb, err := sl.ConstructExifBuilder()
	if err != nil {
		return fmt.Errorf("exif: build %s: %w", path, err)
	}
	gpsIb, err := exif.GetOrCreateIbFromRootIb(rootIb, "IFD/GPSInfo")
	if err != nil {
		return fmt.Errorf("exif: gps ifd %s: %w", path, err)
	}

	tags := []struct {
		name  string
		value interface{}
	}{
		{"GPSVersionID", []byte{2, 3, 0, 0}},
		{"GPSLatitudeRef", latitudeRef(lat)},
		{"GPSLatitude", decimalToRationals(math.Abs(lat))},
		{"GPSLongitudeRef", longitudeRef(lon)},
		{"GPSLongitude", decimalToRationals(math.Abs(lon))},
	}
	for _, tag := range tags {
		if err := gpsIb.SetStandardWithName(tag.name, tag.value); err != nil {
			return fmt.Errorf("exif: set %s on %s: %w", tag.name, path, err)
		}
	}

	if err := sl.SetExif(rootIb); err != nil {
		return fmt.Errorf("exif: attach %s: %w", path, err)
	}

	buf := new(bytes.Buffer)
	if err := sl.Write(buf); err != nil {
		return fmt.Errorf("exif: encode %s: %w", path, err)
	}
	return c.fileOps.WriteFileRaw(path, buf.Bytes())
}

func (c *JpegCodec) parse(path string) (*jpegstructure.SegmentList, error) {
	raw, err := c.fileOps.ReadFileRaw(path)
	if err != nil {
		return nil, err
	}
	intfc, err := c.parser.ParseBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("exif: parse %s: %w", path, err)
	}
	return intfc.(*jpegstructure.SegmentList), nil
}

func findCaptureTime(rootIfd *exif.Ifd) (string, string) {
	if s, ok := tagString(rootIfd, captureTimeTags[0]); ok {
		return s, captureTimeTags[0]
	}

	exifIfd, err := exif.FindIfdFromRootIfd(rootIfd, "IFD/Exif")
	if err != nil {
		return "", ""
	}
	for _, name := range captureTimeTags[1:] {
		if s, ok := tagString(exifIfd, name); ok {
			return s, name
		}
	}
	return "", ""
}

func tagString(ifd *exif.Ifd, name string) (string, bool) {
	entries, err := ifd.FindTagWithName(name)
	if err != nil || len(entries) == 0 {
		return "", false
	}
	value, err := entries[0].FormatFirst()
	if err != nil || value == "" {
		return "", false
	}
	return value, true
}
