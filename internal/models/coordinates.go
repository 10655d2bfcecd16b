package models

// Coordinates represents a geographical point defined by its latitude and longitude
// in WGS84 degrees. No datum conversion is performed anywhere in the service.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`  // Latitude of the geographical point.
	Longitude float64 `json:"longitude"` // Longitude of the geographical point.
}
