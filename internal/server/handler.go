package server

import (
	"encoding/json"
	"net/http"

	"github.com/UnknownOlympus/tremor/internal/feed"
	"github.com/UnknownOlympus/tremor/internal/geo"
	"github.com/UnknownOlympus/tremor/internal/models"
)

// locationRequest is the body of POST /api/earthquakes/location. Latitude
// and longitude are pointers so that 0 is a legal coordinate and only absent
// fields fail validation.
type locationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	TimeRange string   `json:"timeRange"`
	FCMToken  string   `json:"fcmToken"`
}

type statusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type locationResponse struct {
	Success        bool                `json:"success"`
	Message        string              `json:"message"`
	EarthquakeData []models.Earthquake `json:"earthquakeData"`
}

// handleWelcome responds to GET / with a small liveness payload.
func (s *Server) handleWelcome(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, statusResponse{
		Success: true,
		Message: "Earthquake alerting service is running",
	})
}

// handleLocationUpdate upserts the caller's registration and returns the
// qualifying earthquakes for the requested lookback window. Validation
// failures have no side effects; a registration write that succeeded before
// a downstream failure is not rolled back.
func (s *Server) handleLocationUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	var req locationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, r, http.StatusBadRequest, statusResponse{
			Success: false,
			Message: "Invalid location data or missing FCM token",
		})
		return
	}

	if req.Latitude == nil || req.Longitude == nil || req.FCMToken == "" {
		s.writeJSON(w, r, http.StatusBadRequest, statusResponse{
			Success: false,
			Message: "Invalid location data or missing FCM token",
		})
		return
	}

	location := models.Coordinates{Latitude: *req.Latitude, Longitude: *req.Longitude}

	err := s.repo.UpsertRegistration(ctx, models.Registration{
		Token:    req.FCMToken,
		Location: location,
	})
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to upsert registration", "error", err)
		s.writeJSON(w, r, http.StatusInternalServerError, statusResponse{
			Success: false,
			Message: "Internal Server Error",
		})
		return
	}

	s.log.InfoContext(ctx, "User location updated",
		"latitude", location.Latitude, "longitude", location.Longitude)

	window := req.TimeRange
	if window == "" {
		window = feed.DefaultWindow
	}

	quakes, err := s.feed.FetchEarthquakes(ctx, window)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to fetch earthquake data", "error", err)
		s.writeJSON(w, r, http.StatusInternalServerError, statusResponse{
			Success: false,
			Message: "Internal Server Error",
		})
		return
	}

	s.writeJSON(w, r, http.StatusOK, locationResponse{
		Success:        true,
		Message:        "Location updated and earthquake data fetched successfully",
		EarthquakeData: geo.Qualify(quakes, location),
	})
}
