package geospatial

import "math"

const (
	earthRadiusKm = 6371.0

	// kmPerDegree is the flat-earth conversion used for bounding-box areas.
	kmPerDegree = 111.0
)

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c * 1000 // meters
}

// BoxAreaKm2 approximates the area of an axis-aligned bounding box in km².
//
// Latitude span and longitude span are converted with 111 km per degree, the
// longitude side scaled by cos(mean latitude). The approximation degrades near
// the poles; a zero-size box returns 0.
func BoxAreaKm2(north, south, east, west float64) float64 {
	latKm := (north - south) * kmPerDegree
	lonKm := (east - west) * kmPerDegree * math.Cos(toRad((north+south)/2))
	area := math.Abs(latKm * lonKm)
	if math.IsNaN(area) || math.IsInf(area, 0) {
		return 0
	}
	return area
}

// Midpoint returns the arithmetic center of a bounding box.
func Midpoint(north, south, east, west float64) (lat, lon float64) {
	return (north + south) / 2, (east + west) / 2
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
