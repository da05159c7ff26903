// Package geo implements great-circle distance on a spherical-earth
// approximation, in statute miles.
package geo

import "math"

// EarthRadiusMiles is the spherical-earth radius used for all geofence math.
const EarthRadiusMiles = 3959.0

// DistanceMiles returns the haversine distance between two points.
func DistanceMiles(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Pow(math.Sin(dLon/2), 2)
	c := 2 * math.Asin(math.Sqrt(a))
	return EarthRadiusMiles * c
}
