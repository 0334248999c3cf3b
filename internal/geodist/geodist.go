// Package geodist computes great-circle distances between geographic
// coordinates using the haversine formula.
package geodist

import (
	"math"

	"github.com/twpayne/go-geom"
)

// EarthRadiusMiles is the mean Earth radius used for the spherical
// approximation.
const EarthRadiusMiles = 3958.8

// MetersPerMile converts statute miles to meters.
const MetersPerMile = 1609.34

// Coord builds a go-geom coordinate from latitude and longitude in degrees.
// go-geom convention: X is longitude, Y is latitude.
func Coord(lat, lon float64) geom.Coord {
	return geom.Coord{lon, lat}
}

// Miles returns the great-circle distance between a and b in statute miles.
// Identical points yield exactly 0.
func Miles(a, b geom.Coord) float64 {
	lat1, lon1 := a.Y(), a.X()
	lat2, lon2 := b.Y(), b.X()

	if lat1 == lat2 && lon1 == lon2 {
		return 0
	}

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*sinLon*sinLon

	// Guard against floating point drift pushing h past 1 near antipodes.
	if h > 1 {
		h = 1
	}

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusMiles * c
}

// MetersFromMiles converts a radius in miles to whole meters, rounded to the
// nearest integer, as expected by provider query parameters.
func MetersFromMiles(miles float64) int {
	return int(math.Round(miles * MetersPerMile))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
