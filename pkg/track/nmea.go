package track

import (
	"bufio"
	"bytes"
	"strings"
	"time"

	"github.com/adrianmo/go-nmea"

	"github.com/benmeehan/batch-geotag/pkg/file"
	"github.com/benmeehan/batch-geotag/pkg/timeseries"
)

// hdopAccuracyMeters scales a reported HDOP into a rough position accuracy,
// assuming a nominal 5 m user range error.
const hdopAccuracyMeters = 5.0

// NMEASource reads position fixes from a raw NMEA sentence log, as written by
// GPS dongles and trackers. RMC sentences supply the fixes since they carry
// both date and time; the HDOP of the nearest preceding GGA sentence is used
// as the accuracy estimate. NMEA clocks are UTC.
type NMEASource struct {
	path    string
	fileOps file.FileOperations
}

// NewNMEASource creates an NMEA log source.
func NewNMEASource(path string, fileOps file.FileOperations) *NMEASource {
	return &NMEASource{
		path:    path,
		fileOps: fileOps,
	}
}

// Name returns the source format name.
func (s *NMEASource) Name() string {
	return string(FormatNMEA)
}

// Read scans the log line by line. Lines that are not valid sentences are
// skipped, real logs contain interrupted and proprietary sentences.
func (s *NMEASource) Read() ([]timeseries.Sample, error) {
	raw, err := s.fileOps.ReadFileRaw(s.path)
	if err != nil {
		return nil, err
	}

	var samples []timeseries.Sample
	hdop := 0.0

	scanner := bufio.NewScanner(bytes.NewReader(raw))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "$") {
			continue
		}

		sentence, err := nmea.Parse(line)
		if err != nil {
			continue
		}

		switch v := sentence.(type) {
		case nmea.GGA:
			hdop = v.HDOP
		case nmea.RMC:
			if v.Validity != "A" { // "A" marks an active fix
				continue
			}
			if !v.Date.Valid || !v.Time.Valid {
				continue
			}
			samples = append(samples, timeseries.Sample{
				Timestamp: rmcTimestamp(v.Date, v.Time),
				Latitude:  v.Latitude,
				Longitude: v.Longitude,
				Accuracy:  hdop * hdopAccuracyMeters,
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return samples, nil
}

// rmcTimestamp combines the two-digit RMC date with its time of day. Years
// below 80 are read as 20xx, the rest as 19xx, matching GPS receiver output.
func rmcTimestamp(d nmea.Date, t nmea.Time) time.Time {
	year := d.YY + 1900
	if d.YY < 80 {
		year = d.YY + 2000
	}
	return time.Date(year, time.Month(d.MM), d.DD,
		t.Hour, t.Minute, t.Second, t.Millisecond*int(time.Millisecond), time.UTC)
}
