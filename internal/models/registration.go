package models

import "time"

// Registration is a device registration: one row per FCM token holding the
// device's last known location. Upserts overwrite, so the row always carries
// the most recent location reported for the token.
type Registration struct {
	Token     string      // Token is the FCM device token (primary key).
	Location  Coordinates // Location is the last known device location.
	UpdatedAt time.Time   // UpdatedAt is the time of the last upsert.
}
