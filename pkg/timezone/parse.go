package timezone

import (
	"fmt"
	"strings"
	"time"
)

// layouts accepted for capture times and coordinate file timestamps, tried in
// order: the EXIF colon-separated form first, then dashed and slashed
// variants, then the same three with an explicit UTC offset.
var layouts = []string{
	"2006:01:02 15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"2006:01:02 15:04:05Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006/01/02 15:04:05Z07:00",
}

// ParseTimestamp parses s against the accepted layouts. Timestamps without an
// explicit UTC offset are read as wall-clock time on the given clock; an
// explicit offset in the string wins over clock. This is the reconciliation
// point between independently set clocks: parse each source's timestamps on
// that source's clock and the results are comparable as absolute instants.
func ParseTimestamp(s string, clock *time.Location) (time.Time, error) {
	// EXIF ASCII values may carry a trailing NUL.
	trimmed := strings.Trim(s, "\x00 \t\r\n")
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, trimmed, clock); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("timezone: unrecognized timestamp %q", s)
}
