package models

import "time"

// Earthquake represents a single seismic event as reported by the external
// feed. Records are immutable once fetched and are never persisted.
type Earthquake struct {
	ID         string      `json:"id"`         // ID is the feed's opaque unique event identifier.
	Coords     Coordinates `json:"coords"`     // Coords is the event epicenter.
	Magnitude  float64     `json:"magnitude"`  // Magnitude of the event.
	Place      string      `json:"place"`      // Place is the human-readable location description.
	OccurredAt time.Time   `json:"occurredAt"` // OccurredAt is the event origin time.
}
