package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sessiond"

// Refresh outcomes
const (
	RefreshSuccess     = "success"
	RefreshRejected    = "rejected"
	RefreshUnavailable = "unavailable"
	RefreshMissing     = "refresh_missing"
	RefreshExpired     = "refresh_expired"
	RefreshStoreFailed = "store_failed"
	RefreshSuperseded  = "superseded"
)

// Wait outcomes
const (
	WaitCompleted = "completed"
	WaitTimedOut  = "timed_out"
	WaitCanceled  = "canceled"
)

// Coordinator collectors
type Metrics struct {
	refreshes *prometheus.CounterVec
	waits     *prometheus.CounterVec
	fastPath  prometheus.Counter
	waiters   prometheus.Gauge
	duration  prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		refreshes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_total",
			Help:      "Refresh episodes by outcome.",
		}, []string{"outcome"}),
		waits: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_wait_total",
			Help:      "Callers that waited for a running refresh, by outcome.",
		}, []string{"outcome"}),
		fastPath: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fresh_hits_total",
			Help:      "EnsureFresh calls answered without refresh.",
		}),
		waiters: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "refresh_waiters",
			Help:      "Callers currently waiting for a running refresh.",
		}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Duration of refresh episodes.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) RefreshDone(outcome string, seconds float64) {
	m.refreshes.WithLabelValues(outcome).Inc()
	m.duration.Observe(seconds)
}

func (m *Metrics) WaitDone(outcome string) {
	m.waits.WithLabelValues(outcome).Inc()
}

func (m *Metrics) FastPath() {
	m.fastPath.Inc()
}

func (m *Metrics) WaitersAdd(delta float64) {
	m.waiters.Add(delta)
}

// Expose metrics of gatherer in text format
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
