package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	AlertsDispatched   *prometheus.CounterVec
	FeedErrors         prometheus.Counter
	FeedRequestSeconds prometheus.Histogram
	PassSeconds        prometheus.Histogram
	PassesSkipped      prometheus.Counter
	PassRegistrations  prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		AlertsDispatched: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "tremor_alerts_dispatched_total",
			Help: "Total number of push alert dispatch attempts.",
		}, []string{"status"}),
		FeedErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "tremor_feed_api_errors_total",
			Help: "Total number of errors received from the earthquake feed API.",
		}),
		FeedRequestSeconds: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "tremor_feed_request_duration_seconds",
			Help:    "Duration of requests to the earthquake feed API.",
			Buckets: prometheus.DefBuckets,
		}),
		PassSeconds: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "tremor_alert_pass_duration_seconds",
			Help:    "Duration of one full alert scheduler pass over all registrations.",
			Buckets: prometheus.DefBuckets,
		}),
		PassesSkipped: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "tremor_alert_passes_skipped_total",
			Help: "Total number of scheduler ticks skipped because a pass was still running.",
		}),
		PassRegistrations: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "tremor_alert_pass_registrations",
			Help: "Number of registrations seen by the most recent scheduler pass.",
		}),
	}
}
