package geo

import (
	"math"

	"github.com/UnknownOlympus/tremor/internal/models"
)

// earthRadiusKM is the mean Earth radius used by the haversine formula.
const earthRadiusKM = 6371.0

// DistanceKm calculates the great-circle distance in kilometers between two
// geographic coordinates using the haversine formula.
func DistanceKm(a, b models.Coordinates) float64 {
	lat1Rad := a.Latitude * math.Pi / 180
	lat2Rad := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKM * c
}
