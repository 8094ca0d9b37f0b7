package timezone

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestResolve_KnownZones tests resolution of valid zone names.
func TestResolve_KnownZones(t *testing.T) {
	loc, err := Resolve("UTC")
	assert.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	loc, err = Resolve("Europe/Vienna")
	assert.NoError(t, err)
	assert.Equal(t, "Europe/Vienna", loc.String())

	loc, err = Resolve("Local")
	assert.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

// TestResolve_UnknownZone tests that bad names map to ErrUnknownZone.
func TestResolve_UnknownZone(t *testing.T) {
	_, err := Resolve("Nowhere/Particular")
	assert.ErrorIs(t, err, ErrUnknownZone)

	_, err = Resolve("")
	assert.ErrorIs(t, err, ErrUnknownZone)
}

// TestParseTimestamp_Layouts tests the accepted timestamp layouts.
func TestParseTimestamp_Layouts(t *testing.T) {
	want := time.Date(2019, 7, 21, 14, 3, 22, 0, time.UTC)

	for _, input := range []string{
		"2019:07:21 14:03:22",
		"2019-07-21 14:03:22",
		"2019/07/21 14:03:22",
	} {
		got, err := ParseTimestamp(input, time.UTC)
		assert.NoError(t, err, input)
		assert.True(t, got.Equal(want), input)
	}
}

// TestParseTimestamp_ClockBinding tests that naive timestamps are read on the
// given clock.
func TestParseTimestamp_ClockBinding(t *testing.T) {
	vienna, err := time.LoadLocation("Europe/Vienna")
	assert.NoError(t, err)

	got, err := ParseTimestamp("2019:07:21 14:03:22", vienna)

	assert.NoError(t, err)
	// Vienna is UTC+2 in July.
	assert.True(t, got.Equal(time.Date(2019, 7, 21, 12, 3, 22, 0, time.UTC)))
}

// TestParseTimestamp_ExplicitOffsetWins tests that an offset in the string
// overrides the clock argument.
func TestParseTimestamp_ExplicitOffsetWins(t *testing.T) {
	vienna, err := time.LoadLocation("Europe/Vienna")
	assert.NoError(t, err)

	got, err := ParseTimestamp("2019-07-21 14:03:22+00:00", vienna)
	assert.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2019, 7, 21, 14, 3, 22, 0, time.UTC)))

	got, err = ParseTimestamp("2019-07-21 14:03:22Z", vienna)
	assert.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2019, 7, 21, 14, 3, 22, 0, time.UTC)))
}

// TestParseTimestamp_TrimsPadding tests tolerance for EXIF NUL padding and
// surrounding whitespace.
func TestParseTimestamp_TrimsPadding(t *testing.T) {
	got, err := ParseTimestamp("2019:07:21 14:03:22\x00", time.UTC)
	assert.NoError(t, err)
	assert.Equal(t, 14, got.Hour())

	got, err = ParseTimestamp("  2019:07:21 14:03:22  ", time.UTC)
	assert.NoError(t, err)
	assert.Equal(t, 14, got.Hour())
}

// TestParseTimestamp_Unrecognized tests rejection of malformed timestamps.
func TestParseTimestamp_Unrecognized(t *testing.T) {
	for _, input := range []string{
		"",
		"yesterday",
		"2019:07:21",
		"14:03:22",
		"2019.07.21 14:03:22",
	} {
		_, err := ParseTimestamp(input, time.UTC)
		assert.Error(t, err, input)
	}
}

// TestStaticResolver tests name-based resolution through the Resolver
// interface.
func TestStaticResolver(t *testing.T) {
	loc, err := NewStaticResolver("Europe/Vienna").Resolve(context.Background(), 0, 0, time.Time{})
	assert.NoError(t, err)
	assert.Equal(t, "Europe/Vienna", loc.String())

	_, err = NewStaticResolver("Nowhere/Particular").Resolve(context.Background(), 0, 0, time.Time{})
	assert.ErrorIs(t, err, ErrUnknownZone)
}

// TestFixedResolver tests that a fixed resolver hands back its location.
func TestFixedResolver(t *testing.T) {
	loc, err := NewFixedResolver(time.UTC).Resolve(context.Background(), 48.2, 16.37, time.Now())

	assert.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

// TestTrackResolver tests offline zone lookup from coordinates.
func TestTrackResolver(t *testing.T) {
	resolver := NewTrackResolver()

	loc, err := resolver.Resolve(context.Background(), 48.2082, 16.3738, time.Time{})
	assert.NoError(t, err)
	assert.Equal(t, "Europe/Vienna", loc.String())

	// Open ocean is not covered by the zone tables.
	_, err = resolver.Resolve(context.Background(), 0, -140.0, time.Time{})
	assert.ErrorIs(t, err, ErrUnknownZone)
}

// TestNewGoogleResolver_RequiresKey tests client construction without
// credentials.
func TestNewGoogleResolver_RequiresKey(t *testing.T) {
	_, err := NewGoogleResolver("")

	assert.Error(t, err)
}
