package geo

import (
	"math"

	"ilanhub/internal/domain"
)

// EarthRadius is the mean Earth radius in meters.
const EarthRadius = 6371000.0

// Distance returns the great-circle distance between two points in
// meters, rounded to the nearest meter (haversine formula).
func Distance(a, b domain.Point) float64 {
	phi1 := radians(a.Lat)
	phi2 := radians(b.Lat)
	dPhi := radians(b.Lat - a.Lat)
	dLambda := radians(b.Lon - a.Lon)

	s := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(s), math.Sqrt(1-s))

	return math.Round(EarthRadius * c)
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
