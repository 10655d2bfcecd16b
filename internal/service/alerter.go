package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/UnknownOlympus/tremor/internal/dispatch"
	"github.com/UnknownOlympus/tremor/internal/feed"
	"github.com/UnknownOlympus/tremor/internal/geo"
	"github.com/UnknownOlympus/tremor/internal/metrics"
	"github.com/UnknownOlympus/tremor/internal/models"
	"github.com/UnknownOlympus/tremor/internal/repository"
)

// alertTitle is the push notification title for every earthquake alert.
const alertTitle = "Earthquake Alert"

// Alerter is the background alert scheduler. On every tick it walks all
// registrations, qualifies recent earthquakes against each registration's
// location, and dispatches one push alert per new (token, quake) pair.
//
// Ticks never overlap: a tick that fires while a pass is still in flight is
// skipped, so at most one pass runs against the registration set at a time.
type Alerter struct {
	log             *slog.Logger         // Logger for logging service activities
	repo            repository.Interface // Registration store and notification ledger
	feed            feed.Provider        // External earthquake feed
	sender          dispatch.Sender      // Push delivery channel
	metrics         *metrics.Metrics     // Metrics for tracking service performance
	interval        time.Duration        // Interval between scheduler ticks
	endpointTimeout time.Duration        // Deadline for processing one registration
	running         atomic.Bool          // Idle/Running pass guard
}

// NewAlerter creates a new instance of Alerter. It takes a logger, a
// repository interface, an earthquake feed provider, a push sender, metrics
// for monitoring, the tick interval, and the per-registration timeout.
func NewAlerter(
	log *slog.Logger,
	repo repository.Interface,
	feedProvider feed.Provider,
	sender dispatch.Sender,
	metrics *metrics.Metrics,
	interval time.Duration,
	endpointTimeout time.Duration,
) *Alerter {
	return &Alerter{
		log:             log,
		repo:            repo,
		feed:            feedProvider,
		sender:          sender,
		metrics:         metrics,
		interval:        interval,
		endpointTimeout: endpointTimeout,
	}
}

// Run starts the alert scheduler, which periodically checks for new
// qualifying earthquakes. It listens for a cancellation signal from the
// context to gracefully stop the service.
func (a *Alerter) Run(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	a.log.InfoContext(ctx, "Alert scheduler started...", "interval", a.interval)

	for {
		select {
		case <-ctx.Done():
			a.log.InfoContext(ctx, "Alert scheduler stopped.")
			return
		case <-ticker.C:
			go a.tick(ctx)
		}
	}
}

// tick runs one full pass, unless a previous pass is still in flight, in
// which case the tick is skipped. Skipping instead of queueing keeps passes
// from racing each other against the notification ledger. Reports whether a
// pass was started.
func (a *Alerter) tick(ctx context.Context) bool {
	if !a.running.CompareAndSwap(false, true) {
		a.log.WarnContext(ctx, "Previous pass still in progress, skipping tick")
		a.metrics.PassesSkipped.Inc()
		return false
	}
	defer a.running.Store(false)

	a.runPass(ctx)
	return true
}

// runPass iterates all registrations once. Failures are isolated per
// registration: one endpoint erroring or timing out never aborts the rest of
// the pass.
func (a *Alerter) runPass(ctx context.Context) {
	start := time.Now()

	regs, err := a.repo.ListRegistrations(ctx)
	if err != nil {
		a.log.ErrorContext(ctx, "Failed to list registrations", "error", err)
		return
	}
	if len(regs) == 0 {
		a.log.DebugContext(ctx, "No registrations to process.")
		return
	}

	a.metrics.PassRegistrations.Set(float64(len(regs)))
	a.log.InfoContext(ctx, "Starting alert pass", "registrations", len(regs))

	for _, reg := range regs {
		if ctx.Err() != nil {
			a.log.InfoContext(ctx, "Alert pass interrupted", "error", ctx.Err())
			return
		}
		a.processRegistration(ctx, reg)
	}

	a.metrics.PassSeconds.Observe(time.Since(start).Seconds())
	a.log.InfoContext(ctx, "Alert pass finished", "registrations", len(regs))
}

// processRegistration handles one endpoint under its own deadline, so a hang
// on one device cannot stall the registrations behind it.
func (a *Alerter) processRegistration(ctx context.Context, reg models.Registration) {
	endpointCtx, cancel := context.WithTimeout(ctx, a.endpointTimeout)
	defer cancel()

	startTime := time.Now()
	quakes, err := a.feed.FetchEarthquakes(endpointCtx, feed.WindowRecent)
	a.metrics.FeedRequestSeconds.Observe(time.Since(startTime).Seconds())
	if err != nil {
		a.metrics.FeedErrors.Inc()
		a.log.ErrorContext(endpointCtx, "Failed to fetch earthquakes for registration", "error", err)
		return
	}

	for _, quake := range geo.Qualify(quakes, reg.Location) {
		a.notify(endpointCtx, reg, quake)
	}
}

// notify dispatches one alert for a qualifying quake unless the ledger shows
// the pair was already notified. The ledger record is written after the
// dispatch attempt regardless of the dispatch outcome (at-least-once policy):
// a failed push is not retried on later passes.
func (a *Alerter) notify(ctx context.Context, reg models.Registration, quake models.Earthquake) {
	notified, err := a.repo.WasNotified(ctx, reg.Token, quake.ID)
	if err != nil {
		a.log.ErrorContext(ctx, "Failed to check notification ledger", "quake", quake.ID, "error", err)
		return
	}
	if notified {
		a.log.DebugContext(ctx, "Already notified, skipping", "quake", quake.ID)
		return
	}

	if err = a.sender.Send(ctx, reg.Token, alertTitle, FormatAlert(quake)); err != nil {
		a.metrics.AlertsDispatched.WithLabelValues("failure").Inc()
		a.log.ErrorContext(ctx, "Failed to dispatch alert", "quake", quake.ID, "error", err)
	} else {
		a.metrics.AlertsDispatched.WithLabelValues("success").Inc()
		a.log.DebugContext(ctx, "Alert dispatched", "quake", quake.ID, "magnitude", quake.Magnitude)
	}

	if err = a.repo.MarkNotified(ctx, reg.Token, quake.ID); err != nil {
		a.log.ErrorContext(ctx, "Failed to record notification", "quake", quake.ID, "error", err)
	}
}

// FormatAlert renders the push notification body for one earthquake.
func FormatAlert(quake models.Earthquake) string {
	return fmt.Sprintf("Earthquake detected near %s. Magnitude: %s. Time: %s",
		quake.Place,
		strconv.FormatFloat(quake.Magnitude, 'f', -1, 64),
		quake.OccurredAt.Local().Format("1/2/2006, 3:04:05 PM"),
	)
}
