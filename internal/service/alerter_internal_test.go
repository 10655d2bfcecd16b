package service

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/UnknownOlympus/tremor/internal/feed"
	"github.com/UnknownOlympus/tremor/internal/metrics"
	"github.com/UnknownOlympus/tremor/internal/models"
	"github.com/UnknownOlympus/tremor/test/mocks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var (
	testRegistration = models.Registration{
		Token:    "tok-a",
		Location: models.Coordinates{Latitude: 9.0, Longitude: 40.0},
	}
	qualifyingQuake = models.Earthquake{
		ID:         "us7000abcd",
		Coords:     models.Coordinates{Latitude: 9.05, Longitude: 40.05},
		Magnitude:  4.5,
		Place:      "12 km E of Awash, Ethiopia",
		OccurredAt: time.Date(2026, time.August, 29, 8, 15, 0, 0, time.UTC),
	}
	outOfBoxQuake = models.Earthquake{
		ID:     "us7000ffff",
		Coords: models.Coordinates{Latitude: 1.0, Longitude: 40.0},
	}
)

func newTestAlerter(t *testing.T) (*Alerter, *mocks.Interface, *mocks.Provider, *mocks.Sender) {
	t.Helper()

	mockRepo := mocks.NewInterface(t)
	mockFeed := mocks.NewProvider(t)
	mockSender := mocks.NewSender(t)
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	appMetrics := metrics.NewMetrics(prometheus.NewRegistry())
	alerter := NewAlerter(logger, mockRepo, mockFeed, mockSender, appMetrics, 1*time.Second, 5*time.Second)

	return alerter, mockRepo, mockFeed, mockSender
}

func TestRunPass(t *testing.T) {
	ctx := context.Background()

	t.Run("dispatches and records a new qualifying quake", func(t *testing.T) {
		alerter, mockRepo, mockFeed, mockSender := newTestAlerter(t)

		mockRepo.On("ListRegistrations", mock.Anything).
			Return([]models.Registration{testRegistration}, nil).Once()
		mockFeed.On("FetchEarthquakes", mock.Anything, feed.WindowRecent).
			Return([]models.Earthquake{qualifyingQuake, outOfBoxQuake}, nil).Once()
		mockRepo.On("WasNotified", mock.Anything, "tok-a", "us7000abcd").
			Return(false, nil).Once()
		mockSender.On("Send", mock.Anything, "tok-a", "Earthquake Alert", FormatAlert(qualifyingQuake)).
			Return(nil).Once()
		mockRepo.On("MarkNotified", mock.Anything, "tok-a", "us7000abcd").
			Return(nil).Once()

		alerter.runPass(ctx)
	})

	t.Run("already-notified pair is not dispatched again", func(t *testing.T) {
		alerter, mockRepo, mockFeed, _ := newTestAlerter(t)

		mockRepo.On("ListRegistrations", mock.Anything).
			Return([]models.Registration{testRegistration}, nil).Once()
		mockFeed.On("FetchEarthquakes", mock.Anything, feed.WindowRecent).
			Return([]models.Earthquake{qualifyingQuake}, nil).Once()
		mockRepo.On("WasNotified", mock.Anything, "tok-a", "us7000abcd").
			Return(true, nil).Once()

		alerter.runPass(ctx)
	})

	t.Run("two passes over an unchanged event set dispatch exactly once", func(t *testing.T) {
		alerter, mockRepo, mockFeed, mockSender := newTestAlerter(t)

		mockRepo.On("ListRegistrations", mock.Anything).
			Return([]models.Registration{testRegistration}, nil).Twice()
		mockFeed.On("FetchEarthquakes", mock.Anything, feed.WindowRecent).
			Return([]models.Earthquake{qualifyingQuake}, nil).Twice()
		mockRepo.On("WasNotified", mock.Anything, "tok-a", "us7000abcd").
			Return(false, nil).Once()
		mockSender.On("Send", mock.Anything, "tok-a", "Earthquake Alert", FormatAlert(qualifyingQuake)).
			Return(nil).Once()
		mockRepo.On("MarkNotified", mock.Anything, "tok-a", "us7000abcd").
			Return(nil).Once()
		// The ledger now holds the pair, second pass must only check it.
		mockRepo.On("WasNotified", mock.Anything, "tok-a", "us7000abcd").
			Return(true, nil).Once()

		alerter.runPass(ctx)
		alerter.runPass(ctx)

		mockSender.AssertNumberOfCalls(t, "Send", 1)
	})

	t.Run("dispatch failure still writes the ledger record", func(t *testing.T) {
		alerter, mockRepo, mockFeed, mockSender := newTestAlerter(t)

		mockRepo.On("ListRegistrations", mock.Anything).
			Return([]models.Registration{testRegistration}, nil).Once()
		mockFeed.On("FetchEarthquakes", mock.Anything, feed.WindowRecent).
			Return([]models.Earthquake{qualifyingQuake}, nil).Once()
		mockRepo.On("WasNotified", mock.Anything, "tok-a", "us7000abcd").
			Return(false, nil).Once()
		mockSender.On("Send", mock.Anything, "tok-a", "Earthquake Alert", FormatAlert(qualifyingQuake)).
			Return(assert.AnError).Once()
		mockRepo.On("MarkNotified", mock.Anything, "tok-a", "us7000abcd").
			Return(nil).Once()

		alerter.runPass(ctx)
	})

	t.Run("feed failure for one endpoint does not abort the pass", func(t *testing.T) {
		alerter, mockRepo, mockFeed, mockSender := newTestAlerter(t)
		regB := models.Registration{
			Token:    "tok-b",
			Location: models.Coordinates{Latitude: 9.0, Longitude: 40.0},
		}

		mockRepo.On("ListRegistrations", mock.Anything).
			Return([]models.Registration{testRegistration, regB}, nil).Once()
		mockFeed.On("FetchEarthquakes", mock.Anything, feed.WindowRecent).
			Return(nil, assert.AnError).Once()
		mockFeed.On("FetchEarthquakes", mock.Anything, feed.WindowRecent).
			Return([]models.Earthquake{qualifyingQuake}, nil).Once()
		mockRepo.On("WasNotified", mock.Anything, "tok-b", "us7000abcd").
			Return(false, nil).Once()
		mockSender.On("Send", mock.Anything, "tok-b", "Earthquake Alert", FormatAlert(qualifyingQuake)).
			Return(nil).Once()
		mockRepo.On("MarkNotified", mock.Anything, "tok-b", "us7000abcd").
			Return(nil).Once()

		alerter.runPass(ctx)
	})

	t.Run("ledger check failure skips dispatch for that quake", func(t *testing.T) {
		alerter, mockRepo, mockFeed, _ := newTestAlerter(t)

		mockRepo.On("ListRegistrations", mock.Anything).
			Return([]models.Registration{testRegistration}, nil).Once()
		mockFeed.On("FetchEarthquakes", mock.Anything, feed.WindowRecent).
			Return([]models.Earthquake{qualifyingQuake}, nil).Once()
		mockRepo.On("WasNotified", mock.Anything, "tok-a", "us7000abcd").
			Return(false, assert.AnError).Once()

		alerter.runPass(ctx)
	})

	t.Run("list registrations failure ends the pass", func(t *testing.T) {
		alerter, mockRepo, _, _ := newTestAlerter(t)

		mockRepo.On("ListRegistrations", mock.Anything).
			Return(nil, assert.AnError).Once()

		alerter.runPass(ctx)
	})

	t.Run("no registrations is a quiet pass", func(t *testing.T) {
		alerter, mockRepo, _, _ := newTestAlerter(t)

		mockRepo.On("ListRegistrations", mock.Anything).
			Return([]models.Registration{}, nil).Once()

		alerter.runPass(ctx)
	})
}

func TestTick(t *testing.T) {
	ctx := context.Background()

	t.Run("tick is skipped while a pass is running", func(t *testing.T) {
		alerter, _, _, _ := newTestAlerter(t)

		alerter.running.Store(true)
		assert.False(t, alerter.tick(ctx))
	})

	t.Run("tick runs a pass when idle and releases the guard", func(t *testing.T) {
		alerter, mockRepo, _, _ := newTestAlerter(t)

		mockRepo.On("ListRegistrations", mock.Anything).
			Return([]models.Registration{}, nil).Twice()

		assert.True(t, alerter.tick(ctx))
		assert.False(t, alerter.running.Load())
		assert.True(t, alerter.tick(ctx), "guard must be released after a pass")
	})
}

func TestRun_ContextCancelled(t *testing.T) {
	alerter, _, _, _ := newTestAlerter(t)

	tctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	alerter.Run(tctx)
}

func TestFormatAlert(t *testing.T) {
	body := FormatAlert(qualifyingQuake)

	assert.Contains(t, body, "Earthquake detected near 12 km E of Awash, Ethiopia.")
	assert.Contains(t, body, "Magnitude: 4.5.")
	assert.Contains(t, body, "Time: ")
}
