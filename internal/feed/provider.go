package feed

import (
	"context"

	"github.com/UnknownOlympus/tremor/internal/models"
)

// Provider is an interface that defines a method for fetching earthquake
// events from an external feed. The window argument is one of the lookback
// tokens understood by WindowStart; unrecognized tokens fall back to the
// default one-day lookback.
type Provider interface {
	FetchEarthquakes(ctx context.Context, window string) ([]models.Earthquake, error)
}
