package geo

import "github.com/UnknownOlympus/tremor/internal/models"

// Monitored region bounds, degrees. Events outside this box never qualify,
// no matter how close they are to the reference point.
const (
	minLatitude  = 3.0
	maxLatitude  = 17.0
	minLongitude = 30.0
	maxLongitude = 50.0
)

// MaxDistanceKm is the cutoff distance from the reference point beyond which
// an in-box event still does not qualify.
const MaxDistanceKm = 500.0

// Qualify filters earthquakes down to those inside the monitored bounding box
// and within MaxDistanceKm of the reference point. Both conditions must hold.
// The returned slice is a subset of the input with the original order
// preserved; the input is never modified.
func Qualify(quakes []models.Earthquake, reference models.Coordinates) []models.Earthquake {
	qualified := make([]models.Earthquake, 0, len(quakes))

	for _, quake := range quakes {
		if !inBounds(quake.Coords) {
			continue
		}
		if DistanceKm(reference, quake.Coords) > MaxDistanceKm {
			continue
		}
		qualified = append(qualified, quake)
	}

	return qualified
}

func inBounds(coords models.Coordinates) bool {
	return coords.Latitude >= minLatitude &&
		coords.Latitude <= maxLatitude &&
		coords.Longitude >= minLongitude &&
		coords.Longitude <= maxLongitude
}
