package exif

import (
	"math"

	exifcommon "github.com/dsoprea/go-exif/v3/common"
)

// secondScale is the denominator used for the seconds rational, giving a
// resolution of 1/10000 arc second, about 3 mm at the equator.
const secondScale = 10000

// decimalToRationals converts non-negative decimal degrees into the EXIF
// degrees/minutes/seconds rational triplet.
func decimalToRationals(deg float64) []exifcommon.Rational {
	d := int(deg)
	remMinutes := (deg - float64(d)) * 60
	m := int(remMinutes)
	seconds := (remMinutes - float64(m)) * 60

	s := int(math.Round(seconds * secondScale))
	if s >= 60*secondScale {
		s -= 60 * secondScale
		m++
	}
	if m >= 60 {
		m -= 60
		d++
	}

	return []exifcommon.Rational{
		{Numerator: uint32(d), Denominator: 1},
		{Numerator: uint32(m), Denominator: 1},
		{Numerator: uint32(s), Denominator: secondScale},
	}
}

func latitudeRef(lat float64) string {
	if lat < 0 {
		return "S"
	}
	return "N"
}

func longitudeRef(lon float64) string {
	if lon < 0 {
		return "W"
	}
	return "E"
}
