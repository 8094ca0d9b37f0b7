package timezone

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownZone is returned when a zone name or lookup cannot be resolved.
var ErrUnknownZone = errors.New("timezone: unknown zone")

// Resolve maps an IANA zone name to its location. "Local" selects the system
// zone. The empty string is rejected rather than silently meaning UTC.
func Resolve(name string) (*time.Location, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty zone name", ErrUnknownZone)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownZone, name)
	}
	return loc, nil
}
