package constants

const (
	DefaultResampleSeconds = 60 // Grid spacing when none is configured
	DefaultVerbosity       = 2  // Info level
)

// Zone resolver modes
const (
	// ZoneResolverStatic uses the configured zone names as they are
	ZoneResolverStatic = "static"
	// ZoneResolverTrack derives the camera zone from the first fix, offline
	ZoneResolverTrack = "track"
	// ZoneResolverGoogle derives the camera zone via the Maps Time Zone API
	ZoneResolverGoogle = "google"
)

// Outcome classifies what happened to one photo during a run.
type Outcome string

const (
	OutcomeWritten      Outcome = "written"       // Position written into the file
	OutcomeMatched      Outcome = "matched"       // Dry run, position found but not written
	OutcomeHasGeo       Outcome = "has_geodata"   // Skipped, photo already carries geodata
	OutcomeOutOfRange   Outcome = "out_of_range"  // Capture time outside the coordinate range
	OutcomeNoData       Outcome = "no_data"       // Capture time hit a grid point without a position
	OutcomeNoTimestamp  Outcome = "no_timestamp"  // Photo has no EXIF capture time
	OutcomeBadTimestamp Outcome = "bad_timestamp" // Capture time present but unparsable
	OutcomeUnreadable   Outcome = "unreadable"    // Photo could not be parsed at all
	OutcomeWriteFailed  Outcome = "write_failed"  // Position found but the update failed
)
