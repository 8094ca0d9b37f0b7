package timezone

import (
	"context"
	"fmt"
	"time"

	"github.com/bradfitz/latlong"
	"googlemaps.github.io/maps"
)

// Resolver derives the location of a clock, optionally from a known GPS fix.
type Resolver interface {
	Resolve(ctx context.Context, lat, lon float64, at time.Time) (*time.Location, error)
}

// StaticResolver resolves a fixed IANA zone name and ignores the fix.
type StaticResolver struct {
	name string
}

// NewStaticResolver creates a resolver for the named zone.
func NewStaticResolver(name string) *StaticResolver {
	return &StaticResolver{name: name}
}

// Resolve loads the configured zone.
func (r *StaticResolver) Resolve(_ context.Context, _, _ float64, _ time.Time) (*time.Location, error) {
	return Resolve(r.name)
}

// FixedResolver hands back an already resolved location.
type FixedResolver struct {
	loc *time.Location
}

// NewFixedResolver creates a resolver around an existing location.
func NewFixedResolver(loc *time.Location) *FixedResolver {
	return &FixedResolver{loc: loc}
}

// Resolve returns the wrapped location.
func (r *FixedResolver) Resolve(_ context.Context, _, _ float64, _ time.Time) (*time.Location, error) {
	return r.loc, nil
}

// TrackResolver derives the zone from the fix coordinates using the embedded
// world zone tables. Works offline; open water and poles are not covered.
type TrackResolver struct{}

// NewTrackResolver creates an offline coordinate-based resolver.
func NewTrackResolver() *TrackResolver {
	return &TrackResolver{}
}

// Resolve looks up the zone containing the fix.
func (r *TrackResolver) Resolve(_ context.Context, lat, lon float64, _ time.Time) (*time.Location, error) {
	name := latlong.LookupZoneName(lat, lon)
	if name == "" {
		return nil, fmt.Errorf("%w: no zone at %.5f, %.5f", ErrUnknownZone, lat, lon)
	}
	return Resolve(name)
}

// GoogleResolver queries the Google Maps Time Zone API for the zone at the
// fix. The fix time lets the API account for daylight saving at that date.
type GoogleResolver struct {
	client *maps.Client // Maps API client for time zone requests
}

// NewGoogleResolver creates a resolver backed by the Google Maps API.
func NewGoogleResolver(apiKey string) (*GoogleResolver, error) {
	c, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	return &GoogleResolver{client: c}, nil
}

// Resolve requests the zone for the fix from the Time Zone API.
func (r *GoogleResolver) Resolve(ctx context.Context, lat, lon float64, at time.Time) (*time.Location, error) {
	resp, err := r.client.Timezone(ctx, &maps.TimezoneRequest{
		Location:  &maps.LatLng{Lat: lat, Lng: lon},
		Timestamp: at,
	})
	if err != nil {
		return nil, err
	}

	return Resolve(resp.TimeZoneID)
}
