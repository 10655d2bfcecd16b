package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/UnknownOlympus/tremor/internal/models"
)

// Default query scope: the reference point the feed is searched around when
// the caller does not narrow it, and the search radius in degrees.
const (
	defaultLatitude  = 9.145
	defaultLongitude = 40.4897
	defaultRadiusDeg = 20.0

	// maxRadiusDeg is the provider-imposed maximum search radius. Larger
	// values are silently capped, not rejected.
	maxRadiusDeg = 20.0
)

// USGSProvider implements the Provider interface against the USGS FDSN event
// web service (https://earthquake.usgs.gov/fdsnws/event/1/).
type USGSProvider struct {
	client    HTTPClient         // HTTP client for making requests
	baseURL   string             // Base URL for the FDSN event query endpoint
	log       *slog.Logger       // Logger for logging operations
	reference models.Coordinates // Center of the search circle
	radiusDeg float64            // Search radius in degrees, capped at maxRadiusDeg
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// usgsResponse represents the GeoJSON response from the FDSN query endpoint.
// Geometry coordinates come as [longitude, latitude, depth]; event time is
// epoch milliseconds.
type usgsResponse struct {
	Features []usgsFeature `json:"features"`
}

type usgsFeature struct {
	ID       string `json:"id"`
	Geometry struct {
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
	Properties struct {
		Mag   float64 `json:"mag"`
		Place string  `json:"place"`
		Time  int64   `json:"time"`
	} `json:"properties"`
}

// NewUSGSProvider creates a new USGS feed provider with the default HTTP
// client and the default search scope.
func NewUSGSProvider(log *slog.Logger) *USGSProvider {
	const timeout = 10
	return NewUSGSProviderWithClient(&http.Client{
		Timeout: timeout * time.Second,
	}, log)
}

// NewUSGSProviderWithClient creates a USGS provider with a custom HTTP client.
// Useful for testing with mocked HTTP clients.
func NewUSGSProviderWithClient(client HTTPClient, log *slog.Logger) *USGSProvider {
	return &USGSProvider{
		client:  client,
		baseURL: "https://earthquake.usgs.gov/fdsnws/event/1/query",
		log:     log,
		reference: models.Coordinates{
			Latitude:  defaultLatitude,
			Longitude: defaultLongitude,
		},
		radiusDeg: defaultRadiusDeg,
	}
}

// Scope narrows the feed search to a circle around ref. A radius above the
// provider maximum is capped, a zero or negative radius keeps the default.
func (up *USGSProvider) Scope(ref models.Coordinates, radiusDeg float64) {
	up.reference = ref
	if radiusDeg > 0 {
		up.radiusDeg = min(radiusDeg, maxRadiusDeg)
	}
}

// FetchEarthquakes issues a single query to the FDSN endpoint for all events
// at or after the start of the given lookback window. Transport failures and
// non-success responses are returned to the caller; no retry happens here.
func (up *USGSProvider) FetchEarthquakes(ctx context.Context, window string) ([]models.Earthquake, error) {
	startTime := WindowStart(clock.Now(), window)

	reqURL, err := url.Parse(up.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("format", "geojson")
	query.Set("latitude", strconv.FormatFloat(up.reference.Latitude, 'f', -1, 64))
	query.Set("longitude", strconv.FormatFloat(up.reference.Longitude, 'f', -1, 64))
	query.Set("maxradius", strconv.FormatFloat(min(up.radiusDeg, maxRadiusDeg), 'f', -1, 64))
	query.Set("starttime", startTime.UTC().Format(time.RFC3339))
	reqURL.RawQuery = query.Encode()

	up.log.DebugContext(ctx, "USGS request URL", "url", reqURL.String(), "window", window)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := up.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute feed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		up.log.ErrorContext(ctx, "USGS API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("usgs API returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var parsed usgsResponse
	if err = json.Unmarshal(body, &parsed); err != nil {
		up.log.ErrorContext(ctx, "Failed to parse USGS response", "error", err)
		return nil, fmt.Errorf("failed to decode usgs response: %w", err)
	}

	quakes := make([]models.Earthquake, 0, len(parsed.Features))
	for _, feature := range parsed.Features {
		const lonLat = 2
		if len(feature.Geometry.Coordinates) < lonLat {
			up.log.WarnContext(ctx, "Skipping feature with malformed geometry", "id", feature.ID)
			continue
		}

		quakes = append(quakes, models.Earthquake{
			ID: feature.ID,
			Coords: models.Coordinates{
				Longitude: feature.Geometry.Coordinates[0],
				Latitude:  feature.Geometry.Coordinates[1],
			},
			Magnitude:  feature.Properties.Mag,
			Place:      feature.Properties.Place,
			OccurredAt: time.UnixMilli(feature.Properties.Time),
		})
	}

	up.log.DebugContext(ctx, "Fetched earthquake data", "window", window, "events", len(quakes))

	return quakes, nil
}
