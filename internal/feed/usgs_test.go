package feed_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/UnknownOlympus/tremor/internal/feed"
	"github.com/UnknownOlympus/tremor/internal/models"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockHTTPClient is a mock implementation of HTTPClient for testing.
type mockHTTPClient struct {
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.doFunc(req)
}

func TestUSGSProvider_FetchEarthquakes(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	now := time.Date(2026, time.August, 29, 12, 0, 0, 0, time.UTC)
	feed.SetClock(clockwork.NewFakeClockAt(now))
	t.Cleanup(func() { feed.SetClock(nil) })

	t.Run("successful fetch with default scope", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, http.MethodGet, req.Method)
				assert.Contains(t, req.URL.String(), "earthquake.usgs.gov")
				assert.Equal(t, "geojson", req.URL.Query().Get("format"))
				assert.Equal(t, "9.145", req.URL.Query().Get("latitude"))
				assert.Equal(t, "40.4897", req.URL.Query().Get("longitude"))
				assert.Equal(t, "20", req.URL.Query().Get("maxradius"))
				assert.Equal(t, "2026-08-28T12:00:00Z", req.URL.Query().Get("starttime"))

				responseBody := `{
					"features": [
						{
							"id": "us7000abcd",
							"geometry": {"coordinates": [40.05, 9.05, 10.0]},
							"properties": {"mag": 4.5, "place": "12 km E of Awash, Ethiopia", "time": 1777377600000}
						},
						{
							"id": "us7000dcba",
							"geometry": {"coordinates": []},
							"properties": {"mag": 3.1, "place": "malformed", "time": 1777377600000}
						}
					]
				}`
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(bytes.NewBufferString(responseBody)),
				}, nil
			},
		}

		provider := feed.NewUSGSProviderWithClient(mockClient, logger)
		quakes, err := provider.FetchEarthquakes(ctx, feed.WindowRecent)

		require.NoError(t, err)
		require.Len(t, quakes, 1, "malformed geometry must be skipped")
		assert.Equal(t, "us7000abcd", quakes[0].ID)
		assert.InEpsilon(t, 9.05, quakes[0].Coords.Latitude, 1e-9)
		assert.InEpsilon(t, 40.05, quakes[0].Coords.Longitude, 1e-9)
		assert.InEpsilon(t, 4.5, quakes[0].Magnitude, 1e-9)
		assert.Equal(t, "12 km E of Awash, Ethiopia", quakes[0].Place)
		assert.Equal(t, time.UnixMilli(1777377600000), quakes[0].OccurredAt)
	})

	t.Run("week window resolves to seven days back", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, "2026-08-22T12:00:00Z", req.URL.Query().Get("starttime"))
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(bytes.NewBufferString(`{"features":[]}`)),
				}, nil
			},
		}

		provider := feed.NewUSGSProviderWithClient(mockClient, logger)
		quakes, err := provider.FetchEarthquakes(ctx, feed.WindowWeek)

		require.NoError(t, err)
		assert.Empty(t, quakes)
	})

	t.Run("oversized radius is capped at the provider maximum", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, "20", req.URL.Query().Get("maxradius"))
				assert.Equal(t, "8.98", req.URL.Query().Get("latitude"))
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(bytes.NewBufferString(`{"features":[]}`)),
				}, nil
			},
		}

		provider := feed.NewUSGSProviderWithClient(mockClient, logger)
		provider.Scope(models.Coordinates{Latitude: 8.98, Longitude: 38.76}, 150)

		_, err := provider.FetchEarthquakes(ctx, feed.WindowRecent)
		require.NoError(t, err)
	})

	t.Run("smaller radius is passed through", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, "5", req.URL.Query().Get("maxradius"))
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(bytes.NewBufferString(`{"features":[]}`)),
				}, nil
			},
		}

		provider := feed.NewUSGSProviderWithClient(mockClient, logger)
		provider.Scope(models.Coordinates{Latitude: 9.0, Longitude: 40.0}, 5)

		_, err := provider.FetchEarthquakes(ctx, feed.WindowRecent)
		require.NoError(t, err)
	})

	t.Run("HTTP error status", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusServiceUnavailable,
					Body:       io.NopCloser(bytes.NewBufferString(`upstream down`)),
				}, nil
			},
		}

		provider := feed.NewUSGSProviderWithClient(mockClient, logger)
		quakes, err := provider.FetchEarthquakes(ctx, feed.WindowRecent)

		require.Error(t, err)
		require.Nil(t, quakes)
		assert.Contains(t, err.Error(), "usgs API returned status 503")
	})

	t.Run("transport error", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return nil, assert.AnError
			},
		}

		provider := feed.NewUSGSProviderWithClient(mockClient, logger)
		quakes, err := provider.FetchEarthquakes(ctx, feed.WindowRecent)

		require.Error(t, err)
		require.Nil(t, quakes)
		require.ErrorIs(t, err, assert.AnError)
		assert.Contains(t, err.Error(), "failed to execute feed request")
	})

	t.Run("invalid JSON response", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(bytes.NewBufferString(`not json`)),
				}, nil
			},
		}

		provider := feed.NewUSGSProviderWithClient(mockClient, logger)
		quakes, err := provider.FetchEarthquakes(ctx, feed.WindowRecent)

		require.Error(t, err)
		require.Nil(t, quakes)
		assert.Contains(t, err.Error(), "failed to decode usgs response")
	})
}
