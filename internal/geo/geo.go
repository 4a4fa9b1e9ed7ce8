// Package geo provides the map-support math for the locations view:
// great-circle distance between the two partners and the midpoint used
// to place the distance marker. Display support only, not part of the
// stored data model.
package geo

import "math"

// earthRadiusKm is the mean Earth radius. A spherical model is accurate
// to ~0.5% which is more than enough for a map annotation.
const earthRadiusKm = 6371.0088

type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Distance returns the great-circle distance between a and b in
// kilometers, using the haversine formula on a spherical Earth.
func Distance(a, b Point) float64 {
	lat1 := radians(a.Latitude)
	lat2 := radians(b.Latitude)
	dLat := radians(b.Latitude - a.Latitude)
	dLon := radians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// Midpoint returns the arithmetic average of the two coordinate pairs.
// Fine for the short distances a pair map shows; not valid near the
// antimeridian or poles.
func Midpoint(a, b Point) Point {
	return Point{
		Latitude:  (a.Latitude + b.Latitude) / 2,
		Longitude: (a.Longitude + b.Longitude) / 2,
	}
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
