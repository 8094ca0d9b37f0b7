package exif

// Metadata holds the EXIF fields the geotagger reads from a photo.
type Metadata struct {
	CaptureTime string  // Raw EXIF datetime string, empty when absent
	TimeTag     string  // EXIF tag that supplied CaptureTime
	HasGeo      bool    // True when the photo already carries a GPS IFD with entries
	Latitude    float64 // Existing position, set when the GPS IFD is complete
	Longitude   float64
}

// Codec reads photo metadata and writes positions back into photo files.
type Codec interface {
	ReadMetadata(path string) (*Metadata, error)
	SetGeo(path string, lat, lon float64) error
}
